package inventory

import (
	"context"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// Stores repositorios atados a una misma transacción.
type Stores struct {
	Products  repository.ProductRepository
	History   repository.StockHistoryRepository
	Outbox    repository.OutboxRepository
	Sales     repository.OrderRepository
	Purchases repository.OrderRepository
	Users     repository.UserRepository
}

// Orders devuelve el repositorio de ventas o de compras según el tipo.
func (s Stores) Orders(kind entity.OrderKind) repository.OrderRepository {
	if kind == entity.OrderSale {
		return s.Sales
	}
	return s.Purchases
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ninguna escritura queda persistida.
type TxRunner interface {
	Run(ctx context.Context, fn func(s Stores) error) error
}

// StockListCache caché versionada de la vista de stock. Get devuelve también la generación
// vigente; Set guarda el listado bajo esa generación y la entrada deja de servirse en cuanto
// Invalidate la incrementa. Un gen negativo significa que no se puede cachear.
type StockListCache interface {
	Get(ctx context.Context) (items []dto.StockItemResponse, gen int64, ok bool)
	Set(ctx context.Context, gen int64, items []dto.StockItemResponse)
	Invalidate(ctx context.Context)
}

// MovementRecorder recibe los movimientos ya confirmados (métricas).
type MovementRecorder interface {
	MovementCommitted(reason string)
	MovementRejected()
}

type noopRecorder struct{}

func (noopRecorder) MovementCommitted(string) {}
func (noopRecorder) MovementRejected()        {}
