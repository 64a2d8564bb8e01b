package orders

import (
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ToSaleResponse convierte una venta a su DTO de salida.
func ToSaleResponse(o *entity.Order) dto.SaleResponse {
	return dto.SaleResponse{
		ID:        o.ID,
		Client:    o.Party,
		ClientID:  o.PartyID,
		Items:     toLineItems(o.Items),
		Total:     o.Total,
		Points:    o.Points,
		Status:    o.Status,
		CreatedBy: o.CreatedBy,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// ToPurchaseResponse convierte una compra a su DTO de salida.
func ToPurchaseResponse(o *entity.Order) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		ID:        o.ID,
		Supplier:  o.Party,
		Items:     toLineItems(o.Items),
		Total:     o.Total,
		Status:    o.Status,
		CreatedBy: o.CreatedBy,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// ToResponse elige el DTO según el tipo de pedido.
func ToResponse(o *entity.Order) interface{} {
	if o.Kind == entity.OrderSale {
		return ToSaleResponse(o)
	}
	return ToPurchaseResponse(o)
}

func toLineItems(items []entity.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LineItemResponse{
			ProductCode: it.ProductCode,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return out
}
