package memory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.StockHistoryRepository = (*StockHistoryRepo)(nil)

// StockHistoryRepo ledger en memoria. El slice conserva el orden de inserción, así que
// recorrerlo al revés da el orden "más reciente primero" aun con marcas de tiempo iguales.
type StockHistoryRepo struct {
	v view
}

func (r *StockHistoryRepo) Append(_ context.Context, e *entity.StockEntry) error {
	return r.v.do(func(st *state) error {
		cp := *e
		st.history = append(st.history, &cp)
		return nil
	})
}

func (r *StockHistoryRepo) ListByProduct(_ context.Context, code string, limit int) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	err := r.v.do(func(st *state) error {
		for i := len(st.history) - 1; i >= 0; i-- {
			e := st.history[i]
			if e.ProductCode != code {
				continue
			}
			cp := *e
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *StockHistoryRepo) List(_ context.Context, f repository.HistoryFilter) ([]repository.LedgerRow, int, error) {
	var (
		out   []repository.LedgerRow
		total int
	)
	err := r.v.do(func(st *state) error {
		var matched []repository.LedgerRow
		for i := len(st.history) - 1; i >= 0; i-- {
			e := st.history[i]
			if f.ProductCode != "" && e.ProductCode != f.ProductCode {
				continue
			}
			if f.From != nil && e.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !e.CreatedAt.Before(*f.To) {
				continue
			}
			row := repository.LedgerRow{Entry: *e}
			if p, ok := st.products[e.ProductCode]; ok {
				row.ProductName = p.Name
			}
			matched = append(matched, row)
		}
		total = len(matched)
		from, to := page(total, f.Limit, f.Offset)
		out = matched[from:to]
		return nil
	})
	return out, total, err
}

func (r *StockHistoryRepo) SumByProduct(_ context.Context, reasons []string, since *time.Time) (map[string]int, error) {
	want := make(map[string]bool, len(reasons))
	for _, rs := range reasons {
		want[rs] = true
	}
	out := make(map[string]int)
	err := r.v.do(func(st *state) error {
		for _, e := range st.history {
			if len(want) > 0 && !want[e.Reason] {
				continue
			}
			if since != nil && e.CreatedAt.Before(*since) {
				continue
			}
			out[e.ProductCode] += e.Change
		}
		return nil
	})
	return out, err
}

func (r *StockHistoryRepo) CountByProduct(_ context.Context, code string) (int, error) {
	n := 0
	err := r.v.do(func(st *state) error {
		for _, e := range st.history {
			if e.ProductCode == code {
				n++
			}
		}
		return nil
	})
	return n, err
}
