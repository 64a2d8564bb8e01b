package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria, indexados por código.
type ProductRepo struct {
	v view
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[p.Code]; ok {
			return domain.ErrDuplicate
		}
		cp := *p
		st.products[p.Code] = &cp
		return nil
	})
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		if p, ok := st.products[code]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

// GetByCodeForUpdate equivale a GetByCode: la transacción ya tiene el almacén bloqueado.
func (r *ProductRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error) {
	return r.GetByCode(ctx, code)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.products[p.Code]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name = p.Name
		cur.Description = p.Description
		cur.Category = p.Category
		cur.Price = p.Price
		cur.Points = p.Points
		cur.UpdatedAt = p.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, code string, stock int, at time.Time) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.products[code]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Stock = stock
		cur.UpdatedAt = at
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		out   []*entity.Product
		total int
	)
	err := r.v.do(func(st *state) error {
		var matched []*entity.Product
		for _, p := range sortedProducts(st) {
			if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
				continue
			}
			if f.Search != "" && !containsFold(p.Name, f.Search) &&
				!containsFold(p.Description, f.Search) && !containsFold(p.Code, f.Search) {
				continue
			}
			matched = append(matched, p)
		}
		total = len(matched)
		from, to := page(total, f.Limit, f.Offset)
		out = matched[from:to]
		return nil
	})
	return out, total, err
}

func (r *ProductRepo) ListAll(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do(func(st *state) error {
		out = sortedProducts(st)
		return nil
	})
	return out, err
}

func (r *ProductRepo) CountBelowStock(_ context.Context, threshold int) (int, error) {
	n := 0
	err := r.v.do(func(st *state) error {
		for _, p := range st.products {
			if p.Stock < threshold {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepo) Delete(_ context.Context, code string) error {
	return r.v.do(func(st *state) error {
		delete(st.products, code)
		return nil
	})
}

// sortedProducts copias de todos los productos ordenadas por código.
func sortedProducts(st *state) []*entity.Product {
	out := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
