package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
)

type countingInvalidator struct{ n int }

func (c *countingInvalidator) InvalidateStockList(context.Context) { c.n++ }

func newProducts(t *testing.T) (*ProductUseCase, *memory.Store, *countingInvalidator) {
	t.Helper()
	store := memory.NewStore()
	inv := &countingInvalidator{}
	return NewProductUseCase(store.Products(), store.History(), inv), store, inv
}

func createReq(code string, stock int) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Code: code, Name: "Producto " + code, Category: "aceites",
		Price: decimal.RequireFromString("2.50"), Points: 1, Stock: stock,
	}
}

func TestProductCreate_StockInicial(t *testing.T) {
	uc, _, inv := newProducts(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, createReq(" AP001 ", 20))
	require.NoError(t, err)
	assert.Equal(t, "AP001", out.Code)
	assert.Equal(t, 20, out.Stock)
	assert.Equal(t, 20, out.InitialStock)
	assert.Equal(t, 1, inv.n)

	_, err = uc.Create(ctx, createReq("AP001", 5))
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestProductCreate_Validaciones(t *testing.T) {
	uc, _, _ := newProducts(t)
	_, err := uc.Create(context.Background(), createReq("  ", 1))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.Create(context.Background(), createReq("X1", -1))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProductUpdate_CamposParcialesSinTocarStock(t *testing.T) {
	uc, _, _ := newProducts(t)
	ctx := context.Background()
	_, err := uc.Create(ctx, createReq("AP001", 20))
	require.NoError(t, err)

	name := "Aceite de palma"
	price := decimal.RequireFromString("3.10")
	out, err := uc.Update(ctx, "AP001", dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.True(t, price.Equal(out.Price))
	assert.Equal(t, "aceites", out.Category)
	assert.Equal(t, 20, out.Stock)

	_, err = uc.Update(ctx, "NOPE", dto.UpdateProductRequest{Name: &name})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductDelete_ConHistorialEsConflicto(t *testing.T) {
	uc, store, _ := newProducts(t)
	ctx := context.Background()
	_, err := uc.Create(ctx, createReq("AP001", 20))
	require.NoError(t, err)
	_, err = uc.Create(ctx, createReq("AP002", 0))
	require.NoError(t, err)

	require.NoError(t, store.History().Append(ctx, &entity.StockEntry{
		ID: "h1", ProductCode: "AP001", Change: -2, Reason: "venta", CreatedAt: time.Now(),
	}))

	assert.True(t, errors.Is(uc.Delete(ctx, "AP001"), domain.ErrConflict))
	require.NoError(t, uc.Delete(ctx, "AP002"))
	_, err = uc.GetByCode(ctx, "AP002")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductList_BusquedaYPaginacion(t *testing.T) {
	uc, _, _ := newProducts(t)
	ctx := context.Background()
	for _, code := range []string{"AP001", "AP002", "BX001"} {
		_, err := uc.Create(ctx, createReq(code, 1))
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, dto.ProductListQuery{Search: "ap0"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)

	out, err = uc.List(ctx, dto.ProductListQuery{PageRequest: dto.PageRequest{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "AP002", out.Items[0].Code)
}
