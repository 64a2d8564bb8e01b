package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// HistoryFilter criterios de consulta del ledger.
type HistoryFilter struct {
	ProductCode string
	From, To    *time.Time
	Limit       int
	Offset      int
}

// LedgerRow fila del ledger junto con el nombre del producto (join).
type LedgerRow struct {
	Entry       entity.StockEntry
	ProductName string
}

// StockHistoryRepository puerto del ledger de stock. Solo agrega filas.
// Los listados vienen ordenados del más reciente al más antiguo.
type StockHistoryRepository interface {
	Append(ctx context.Context, entry *entity.StockEntry) error
	ListByProduct(ctx context.Context, code string, limit int) ([]*entity.StockEntry, error)
	List(ctx context.Context, filter HistoryFilter) ([]LedgerRow, int, error)
	// SumByProduct suma de cambios por código de producto. reasons vacío = todos los motivos;
	// since nil = desde el inicio.
	SumByProduct(ctx context.Context, reasons []string, since *time.Time) (map[string]int, error)
	CountByProduct(ctx context.Context, code string) (int, error)
}
