package orders

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ReceiptLine línea del comprobante con el nombre del producto resuelto.
type ReceiptLine struct {
	ProductCode string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReceiptGenerator genera el comprobante (PDF) de una venta o compra.
type ReceiptGenerator interface {
	OrderReceipt(ctx context.Context, order *entity.Order, lines []ReceiptLine) ([]byte, error)
}
