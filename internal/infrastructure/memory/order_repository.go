package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo ventas o compras en memoria.
type OrderRepo struct {
	v    view
	kind entity.OrderKind
}

func (r *OrderRepo) Kind() entity.OrderKind { return r.kind }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.orders[r.kind][o.ID]; ok {
			return domain.ErrDuplicate
		}
		st.orders[r.kind][o.ID] = copyOrder(o)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.do(func(st *state) error {
		if o, ok := st.orders[r.kind][id]; ok {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.orders[r.kind][o.ID]; !ok {
			return domain.ErrNotFound
		}
		st.orders[r.kind][o.ID] = copyOrder(o)
		return nil
	})
}

func (r *OrderRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		delete(st.orders[r.kind], id)
		return nil
	})
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var (
		out   []*entity.Order
		total int
	)
	err := r.v.do(func(st *state) error {
		matched := r.filter(st, f)
		total = len(matched)
		from, to := page(total, f.Limit, f.Offset)
		out = matched[from:to]
		return nil
	})
	return out, total, err
}

func (r *OrderRepo) Summary(_ context.Context, f repository.OrderFilter) (repository.OrderSummary, error) {
	sum := repository.OrderSummary{Total: decimal.Zero}
	err := r.v.do(func(st *state) error {
		for _, o := range r.filter(st, f) {
			sum.Count++
			sum.Total = sum.Total.Add(o.Total)
		}
		return nil
	})
	return sum, err
}

// filter copias de los pedidos que cumplen el filtro, del más reciente al más antiguo.
func (r *OrderRepo) filter(st *state, f repository.OrderFilter) []*entity.Order {
	var out []*entity.Order
	for _, o := range st.orders[r.kind] {
		if f.PartyID != "" && o.PartyID != f.PartyID {
			continue
		}
		if f.CreatedBy != "" && o.CreatedBy != f.CreatedBy {
			continue
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !o.CreatedAt.Before(*f.To) {
			continue
		}
		if f.ProductCode != "" && !hasProduct(o, f.ProductCode, false) {
			continue
		}
		if f.Query != "" && !containsFold(o.Party, f.Query) && !hasProduct(o, f.Query, true) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func hasProduct(o *entity.Order, code string, partial bool) bool {
	for _, it := range o.Items {
		if partial && containsFold(it.ProductCode, code) {
			return true
		}
		if !partial && it.ProductCode == code {
			return true
		}
	}
	return false
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.LineItem(nil), o.Items...)
	return &cp
}
