package inventory

import (
	"context"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// QueryUseCase vistas de solo lectura del inventario: stock actual, historial por producto,
// ledger paginado y conciliación contador/ledger.
type QueryUseCase struct {
	products repository.ProductRepository
	history  repository.StockHistoryRepository
	cache    StockListCache
}

// NewQueryUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewQueryUseCase(products repository.ProductRepository, history repository.StockHistoryRepository, cache StockListCache) *QueryUseCase {
	return &QueryUseCase{products: products, history: history, cache: cache}
}

// ListStock stock actual por producto, ordenado por código. recent > 0 adjunta los últimos
// movimientos de cada producto (esa parte no se cachea).
func (uc *QueryUseCase) ListStock(ctx context.Context, recent int) ([]dto.StockItemResponse, error) {
	items, err := uc.stockList(ctx)
	if err != nil {
		return nil, err
	}
	if recent <= 0 {
		return items, nil
	}
	if recent > 50 {
		recent = 50
	}
	out := make([]dto.StockItemResponse, len(items))
	for i, it := range items {
		entries, err := uc.history.ListByProduct(ctx, it.Code, recent)
		if err != nil {
			return nil, err
		}
		it.Recent = toHistoryItems(entries)
		out[i] = it
	}
	return out, nil
}

// stockList lee la generación antes de consultar la base: si una transacción confirma
// mientras tanto, su Invalidate deja el listado recalculado fuera de servicio.
func (uc *QueryUseCase) stockList(ctx context.Context) ([]dto.StockItemResponse, error) {
	gen := int64(-1)
	if uc.cache != nil {
		items, g, ok := uc.cache.Get(ctx)
		if ok {
			return items, nil
		}
		gen = g
	}
	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockItemResponse, 0, len(products))
	for _, p := range products {
		items = append(items, dto.StockItemResponse{
			Code:         p.Code,
			Name:         p.Name,
			CurrentStock: p.Stock,
			LastUpdated:  p.UpdatedAt,
		})
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, gen, items)
	}
	return items, nil
}

// ProductHistory movimientos de un producto, del más reciente al más antiguo.
func (uc *QueryUseCase) ProductHistory(ctx context.Context, code string, limit int) ([]dto.HistoryItemResponse, error) {
	if code == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	p, err := uc.products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto", code)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := uc.history.ListByProduct(ctx, code, limit)
	if err != nil {
		return nil, err
	}
	return toHistoryItems(entries), nil
}

// Ledger filas del ledger unidas con el nombre del producto, paginadas y del más reciente al más antiguo.
func (uc *QueryUseCase) Ledger(ctx context.Context, q dto.LedgerListQuery) (*dto.LedgerListResponse, error) {
	q.DefaultPage()
	rows, total, err := uc.history.List(ctx, repository.HistoryFilter{
		ProductCode: q.ProductCode,
		From:        q.From,
		To:          q.To,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.LedgerEntryResponse{
			ID:          r.Entry.ID,
			ProductCode: r.Entry.ProductCode,
			ProductName: r.ProductName,
			Change:      r.Entry.Change,
			Reason:      r.Entry.Reason,
			ReferenceID: r.Entry.ReferenceID,
			CreatedBy:   r.Entry.CreatedBy,
			Timestamp:   r.Entry.CreatedAt,
		})
	}
	return &dto.LedgerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Reconcile compara, por producto, stock contra stock inicial + suma del ledger.
func (uc *QueryUseCase) Reconcile(ctx context.Context) (*dto.ReconcileResponse, error) {
	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := uc.history.SumByProduct(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	out := &dto.ReconcileResponse{Checked: len(products), Mismatches: []dto.ReconcileItem{}}
	for _, p := range products {
		expected := p.InitialStock + sums[p.Code]
		if expected != p.Stock {
			out.Mismatches = append(out.Mismatches, dto.ReconcileItem{
				Code:         p.Code,
				Stock:        p.Stock,
				InitialStock: p.InitialStock,
				LedgerSum:    sums[p.Code],
				Expected:     expected,
			})
		}
	}
	out.Consistent = len(out.Mismatches) == 0
	return out, nil
}

func toHistoryItems(entries []*entity.StockEntry) []dto.HistoryItemResponse {
	out := make([]dto.HistoryItemResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryItemResponse{
			Date:        e.CreatedAt,
			Reason:      e.Reason,
			Change:      e.Change,
			ReferenceID: e.ReferenceID,
		})
	}
	return out
}
