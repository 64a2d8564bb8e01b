package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distingue ventas de compras. Ambas comparten forma y ciclo de vida;
// solo cambia el sentido en que mueven el stock.
type OrderKind string

const (
	OrderSale     OrderKind = "sale"
	OrderPurchase OrderKind = "purchase"
)

// OrderStatusCompleted es el único estado usado; no hay flujo de aprobación.
const OrderStatusCompleted = "completada"

// Direction signo con el que la cantidad de una línea afecta al stock.
func (k OrderKind) Direction() int {
	if k == OrderSale {
		return -1
	}
	return 1
}

// Valid indica si el tipo es conocido.
func (k OrderKind) Valid() bool {
	return k == OrderSale || k == OrderPurchase
}

// Motivos registrados en el ledger por cada operación del ciclo de vida.
func (k OrderKind) CreateReason() string {
	if k == OrderSale {
		return ReasonSale
	}
	return ReasonPurchase
}

func (k OrderKind) EditReason() string {
	if k == OrderSale {
		return ReasonSaleEdit
	}
	return ReasonPurchaseEdit
}

func (k OrderKind) ReversalReason() string {
	if k == OrderSale {
		return ReasonSaleReversal
	}
	return ReasonPurchaseReversal
}

// LineItem una línea de pedido (producto por código, cantidad, precio unitario).
type LineItem struct {
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal cantidad por precio unitario.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order venta o compra. Party es el cliente (venta) o el proveedor (compra);
// PartyID referencia opcionalmente al usuario cliente para acumular puntos.
type Order struct {
	ID        string
	Kind      OrderKind
	Party     string
	PartyID   string
	Items     []LineItem
	Total     decimal.Decimal
	Points    int
	Status    string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputeTotal suma los subtotales de las líneas.
func ComputeTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
