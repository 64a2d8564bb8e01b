package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: productos bajo el umbral de stock
// con una cantidad sugerida de pedido, priorizados por ventas recientes.
type ReplenishmentUseCase struct {
	products  repository.ProductRepository
	history   repository.StockHistoryRepository
	threshold int
	now       func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(products repository.ProductRepository, history repository.StockHistoryRepository, threshold int) *ReplenishmentUseCase {
	if threshold <= 0 {
		threshold = 5
	}
	return &ReplenishmentUseCase{products: products, history: history, threshold: threshold, now: time.Now}
}

// Threshold umbral de stock bajo configurado.
func (uc *ReplenishmentUseCase) Threshold() int { return uc.threshold }

// GenerateReplenishmentList devuelve los productos con stock < umbral. La cantidad sugerida
// lleva el stock al doble del umbral más lo vendido en los últimos 30 días.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	since := uc.now().AddDate(0, 0, -30)
	sold, err := uc.history.SumByProduct(ctx, []string{entity.ReasonSale, entity.ReasonSaleEdit, entity.ReasonSaleReversal}, &since)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range products {
		if p.Stock >= uc.threshold {
			continue
		}
		// Las ventas restan stock: el volumen vendido es el negativo de la suma.
		units := -sold[p.Code]
		if units < 0 {
			units = 0
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			Code:              p.Code,
			Name:              p.Name,
			CurrentStock:      p.Stock,
			Threshold:         uc.threshold,
			SuggestedOrderQty: 2*uc.threshold - p.Stock + units,
			UnitsSoldLast30d:  units,
		})
	}

	// Primero mayor volumen de ventas, luego menor stock, luego código.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.UnitsSoldLast30d != b.UnitsSoldLast30d {
			return a.UnitsSoldLast30d > b.UnitsSoldLast30d
		}
		if a.CurrentStock != b.CurrentStock {
			return a.CurrentStock < b.CurrentStock
		}
		return a.Code < b.Code
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
