package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.StockHistoryRepository = (*StockHistoryRepo)(nil)

// StockHistoryRepo ledger de stock (solo inserciones).
type StockHistoryRepo struct {
	q Querier
}

// NewStockHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockHistoryRepository(q Querier) *StockHistoryRepo {
	return &StockHistoryRepo{q: q}
}

// Append agrega una fila al ledger.
func (r *StockHistoryRepo) Append(ctx context.Context, e *entity.StockEntry) error {
	query := `
		INSERT INTO stock_history (id, product_code, change, reason, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.ProductCode, e.Change, e.Reason, e.ReferenceID, e.CreatedBy, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock entry: %w", err)
	}
	return nil
}

// ListByProduct movimientos del producto, más reciente primero. limit <= 0 = todos.
func (r *StockHistoryRepo) ListByProduct(ctx context.Context, code string, limit int) ([]*entity.StockEntry, error) {
	query := `
		SELECT id, product_code, change, reason, reference_id, created_by, created_at
		FROM stock_history WHERE product_code = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, code, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockEntry
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ID, &e.ProductCode, &e.Change, &e.Reason, &e.ReferenceID, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// List ledger paginado con el nombre del producto.
func (r *StockHistoryRepo) List(ctx context.Context, f repository.HistoryFilter) ([]repository.LedgerRow, int, error) {
	var (
		where []string
		args  []any
	)
	if f.ProductCode != "" {
		args = append(args, f.ProductCode)
		where = append(where, fmt.Sprintf("h.product_code = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("h.created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("h.created_at < $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_history h`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock history: %w", err)
	}

	args = append(args, limitOrAll(f.Limit), f.Offset)
	query := fmt.Sprintf(`
		SELECT h.id, h.product_code, h.change, h.reason, h.reference_id, h.created_by, h.created_at, COALESCE(p.name, '')
		FROM stock_history h
		LEFT JOIN products p ON p.code = h.product_code%s
		ORDER BY h.created_at DESC, h.id DESC LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var list []repository.LedgerRow
	for rows.Next() {
		var row repository.LedgerRow
		e := &row.Entry
		if err := rows.Scan(&e.ID, &e.ProductCode, &e.Change, &e.Reason, &e.ReferenceID, &e.CreatedBy, &e.CreatedAt, &row.ProductName); err != nil {
			return nil, 0, fmt.Errorf("scan ledger row: %w", err)
		}
		list = append(list, row)
	}
	return list, total, rows.Err()
}

// SumByProduct suma de cambios agrupada por producto.
func (r *StockHistoryRepo) SumByProduct(ctx context.Context, reasons []string, since *time.Time) (map[string]int, error) {
	var (
		where []string
		args  []any
	)
	if len(reasons) > 0 {
		args = append(args, reasons)
		where = append(where, fmt.Sprintf("reason = ANY($%d)", len(args)))
	}
	if since != nil {
		args = append(args, *since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	query := `SELECT product_code, COALESCE(SUM(change), 0) FROM stock_history`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` GROUP BY product_code`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum stock history: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			code string
			sum  int64
		)
		if err := rows.Scan(&code, &sum); err != nil {
			return nil, fmt.Errorf("scan stock sum: %w", err)
		}
		out[code] = int(sum)
	}
	return out, rows.Err()
}

// CountByProduct número de filas del ledger de un producto.
func (r *StockHistoryRepo) CountByProduct(ctx context.Context, code string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_history WHERE product_code = $1`, code).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock history: %w", err)
	}
	return n, nil
}
