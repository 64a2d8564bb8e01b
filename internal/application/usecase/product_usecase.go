package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// StockListInvalidator descarta la vista de stock cacheada tras cambios del catálogo.
type StockListInvalidator interface {
	InvalidateStockList(ctx context.Context)
}

// ProductUseCase casos de uso CRUD para productos. Stock solo cambia vía movimientos del ledger.
type ProductUseCase struct {
	repo    repository.ProductRepository
	history repository.StockHistoryRepository
	cache   StockListInvalidator
	now     func() time.Time
}

// NewProductUseCase construye el caso de uso. cache puede ser nil.
func NewProductUseCase(repo repository.ProductRepository, history repository.StockHistoryRepository, cache StockListInvalidator) *ProductUseCase {
	return &ProductUseCase{repo: repo, history: history, cache: cache, now: time.Now}
}

// Create crea un nuevo producto. El stock indicado queda como stock inicial.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.Invalid("code", "requerido")
	}
	if in.Stock < 0 {
		return nil, domain.Invalid("stock", "no puede ser negativo")
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Code:         code,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Category:     strings.TrimSpace(in.Category),
		Price:        in.Price,
		Points:       in.Points,
		Stock:        in.Stock,
		InitialStock: in.Stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return toProductResponse(product), nil
}

// GetByCode obtiene un producto por código.
func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, code)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza los datos descriptivos del producto.
func (uc *ProductUseCase) Update(ctx context.Context, code string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, code)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Points != nil {
		product.Points = *in.Points
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return toProductResponse(product), nil
}

// Delete elimina un producto sin movimientos. Con movimientos en el ledger → ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, code string) error {
	if _, err := uc.get(ctx, code); err != nil {
		return err
	}
	n, err := uc.history.CountByProduct(ctx, code)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrConflict
	}
	if err := uc.repo.Delete(ctx, code); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// List lista productos con búsqueda, categoría y paginación.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

func (uc *ProductUseCase) get(ctx context.Context, code string) (*entity.Product, error) {
	product, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", code)
	}
	return product, nil
}

func (uc *ProductUseCase) invalidate(ctx context.Context) {
	if uc.cache != nil {
		uc.cache.InvalidateStockList(ctx)
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Price:        p.Price,
		Points:       p.Points,
		Stock:        p.Stock,
		InitialStock: p.InitialStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
