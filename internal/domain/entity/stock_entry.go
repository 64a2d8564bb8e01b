package entity

import "time"

// Motivos de movimiento de stock.
const (
	ReasonSale             = "venta"
	ReasonPurchase         = "compra"
	ReasonSaleEdit         = "edición venta"
	ReasonPurchaseEdit     = "edición compra"
	ReasonSaleReversal     = "reversión venta"
	ReasonPurchaseReversal = "reversión compra"
	ReasonAdjustment       = "ajuste"
)

// StockEntry fila del ledger de stock (stock_history). Solo se agrega, nunca se modifica.
// Change es el delta con signo aplicado al contador del producto en la misma transacción.
type StockEntry struct {
	ID          string
	ProductCode string
	Change      int
	Reason      string
	ReferenceID string // venta/compra que originó el movimiento, vacío en ajustes
	CreatedBy   string
	CreatedAt   time.Time
}

// StockEvent evento pendiente de publicar (outbox), escrito junto con la fila del ledger.
type StockEvent struct {
	ID          string
	EntryID     string
	ProductCode string
	Change      int
	StockAfter  int
	Reason      string
	ReferenceID string
	OccurredAt  time.Time
	PublishedAt *time.Time
}
