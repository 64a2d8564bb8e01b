package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest una línea de venta/compra.
type LineItemRequest struct {
	ProductCode string          `json:"product_code" validate:"required,max=64"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price" validate:"min=0"`
}

// SaleRequest body de POST/PUT /api/sales. El total se calcula en el servidor.
type SaleRequest struct {
	Client   string            `json:"client" validate:"required,max=200"`
	ClientID string            `json:"client_id" validate:"omitempty,max=64"`
	Items    []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseRequest body de POST/PUT /api/purchases.
type PurchaseRequest struct {
	Supplier string            `json:"supplier" validate:"required,max=200"`
	Items    []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderInput entrada común del ciclo de vida de ventas y compras.
type OrderInput struct {
	Party   string
	PartyID string
	Items   []LineItemRequest
}

// ToInput adapta el request de venta.
func (r SaleRequest) ToInput() OrderInput {
	return OrderInput{Party: r.Client, PartyID: r.ClientID, Items: r.Items}
}

// ToInput adapta el request de compra.
func (r PurchaseRequest) ToInput() OrderInput {
	return OrderInput{Party: r.Supplier, Items: r.Items}
}

// OrderListQuery filtros de listado (?query=&product_code=&from=&to=).
type OrderListQuery struct {
	PageRequest
	Query       string     `query:"query"`
	ProductCode string     `query:"product_code"`
	From        *time.Time `query:"-"`
	To          *time.Time `query:"-"`
}

// LineItemResponse línea en la respuesta.
type LineItemResponse struct {
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID        string             `json:"id"`
	Client    string             `json:"client"`
	ClientID  string             `json:"client_id,omitempty"`
	Items     []LineItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	Points    int                `json:"points"`
	Status    string             `json:"status"`
	CreatedBy string             `json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PurchaseResponse salida de una compra.
type PurchaseResponse struct {
	ID        string             `json:"id"`
	Supplier  string             `json:"supplier"`
	Items     []LineItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	Status    string             `json:"status"`
	CreatedBy string             `json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// OrderListResponse lista paginada (Items contiene SaleResponse o PurchaseResponse).
type OrderListResponse struct {
	Items interface{}  `json:"items"`
	Page  PageResponse `json:"page"`
}
