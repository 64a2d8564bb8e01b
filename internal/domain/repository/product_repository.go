package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo.
type ProductFilter struct {
	Search   string // nombre, descripción o código (sin distinguir mayúsculas)
	Category string
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetByCodeForUpdate bloquea la fila hasta el fin de la transacción.
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error)
	// Update modifica datos descriptivos; nunca el stock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, code string, stock int, at time.Time) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// ListAll devuelve todo el catálogo ordenado por código (vista de inventario).
	ListAll(ctx context.Context) ([]*entity.Product, error)
	CountBelowStock(ctx context.Context, threshold int) (int, error)
	Delete(ctx context.Context, code string) error
}
