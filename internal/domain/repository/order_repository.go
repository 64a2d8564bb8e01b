package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// OrderFilter criterios de listado de ventas o compras.
type OrderFilter struct {
	Query       string // cliente/proveedor o código de producto
	ProductCode string
	PartyID     string
	CreatedBy   string
	From, To    *time.Time
	Limit       int
	Offset      int
}

// OrderSummary agregado para los paneles.
type OrderSummary struct {
	Count int
	Total decimal.Decimal
}

// OrderRepository puerto de persistencia para ventas o compras (una instancia por OrderKind).
type OrderRepository interface {
	Kind() entity.OrderKind
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
	Summary(ctx context.Context, filter OrderFilter) (OrderSummary, error)
}
