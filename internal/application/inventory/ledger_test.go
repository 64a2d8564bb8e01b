package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/infrastructure/cache"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
)

// fakeCache caché de stock en memoria que cuenta invalidaciones.
type fakeCache struct {
	mu          sync.Mutex
	items       []dto.StockItemResponse
	ok          bool
	gen         int64
	sets        int
	invalidated int
}

func (c *fakeCache) Get(context.Context) ([]dto.StockItemResponse, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items, c.gen, c.ok
}

func (c *fakeCache) Set(_ context.Context, gen int64, items []dto.StockItemResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if gen != c.gen {
		return
	}
	c.items, c.ok = items, true
}

func (c *fakeCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items, c.ok = nil, false
	c.gen++
	c.invalidated++
}

// fakeRecorder registra métricas en memoria.
type fakeRecorder struct {
	committed []string
	rejected  int
}

func (r *fakeRecorder) MovementCommitted(reason string) { r.committed = append(r.committed, reason) }
func (r *fakeRecorder) MovementRejected()               { r.rejected++ }

func seed(t *testing.T, store *memory.Store, code string, stock int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: code, Code: code, Name: "Producto " + code, Price: decimal.NewFromInt(1),
		Stock: stock, InitialStock: stock, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestApply_RechazoNoEscribeNada(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 2)
	rec := &fakeRecorder{}
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, rec)

	err := ledger.Transact(ctx, func(tx *inventory.Tx) error {
		_, err := tx.Apply(ctx, inventory.Movement{ProductCode: "A1", Delta: -3, Reason: entity.ReasonSale})
		return err
	})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 1, rec.rejected)
	assert.Empty(t, rec.committed)

	entries, err := store.History().ListByProduct(ctx, "A1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, store.Outbox().Pending())
}

func TestApply_EncolaEventoConStockResultante(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 2)
	rec := &fakeRecorder{}
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, rec)

	require.NoError(t, ledger.Transact(ctx, func(tx *inventory.Tx) error {
		_, err := tx.Apply(ctx, inventory.Movement{ProductCode: "A1", Delta: 5, Reason: entity.ReasonPurchase, ReferenceID: "p-1"})
		return err
	}))
	assert.Equal(t, []string{entity.ReasonPurchase}, rec.committed)

	events, err := store.Outbox().ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "A1", events[0].ProductCode)
	assert.Equal(t, 5, events[0].Change)
	assert.Equal(t, 7, events[0].StockAfter)
	assert.Equal(t, "p-1", events[0].ReferenceID)
}

func TestApply_Validaciones(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 2)
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, nil)

	cases := map[string]inventory.Movement{
		"sin código":  {Delta: 1, Reason: entity.ReasonAdjustment},
		"cambio cero": {ProductCode: "A1", Reason: entity.ReasonAdjustment},
		"sin motivo":  {ProductCode: "A1", Delta: 1},
	}
	for name, mv := range cases {
		t.Run(name, func(t *testing.T) {
			err := ledger.Transact(ctx, func(tx *inventory.Tx) error {
				_, err := tx.Apply(ctx, mv)
				return err
			})
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}

	err := ledger.Transact(ctx, func(tx *inventory.Tx) error {
		_, err := tx.Apply(ctx, inventory.Movement{ProductCode: "ZZ", Delta: 1, Reason: entity.ReasonAdjustment})
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAdjust_MotivoPorDefectoYConciliacion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 4)
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, nil)

	entry, err := ledger.Adjust(ctx, "admin-1", dto.AdjustmentRequest{ProductCode: "A1", Change: -1})
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonAdjustment, entry.Reason)
	assert.Equal(t, "Producto A1", entry.ProductName)
	assert.Equal(t, "admin-1", entry.CreatedBy)

	_, err = ledger.Adjust(ctx, "admin-1", dto.AdjustmentRequest{ProductCode: "A1", Change: 6, Reason: "conteo físico"})
	require.NoError(t, err)

	query := inventory.NewQueryUseCase(store.Products(), store.History(), nil)
	rec, err := query.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 1, rec.Checked)

	history, err := query.ProductHistory(ctx, "A1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "conteo físico", history[0].Reason, "más reciente primero")
	assert.Equal(t, 6, history[0].Change)
}

func TestReconcile_DetectaDescuadre(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 4)
	require.NoError(t, store.Products().UpdateStock(ctx, "A1", 9, time.Now()))

	rec, err := inventory.NewQueryUseCase(store.Products(), store.History(), nil).Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	require.Len(t, rec.Mismatches, 1)
	assert.Equal(t, 4, rec.Mismatches[0].Expected)
	assert.Equal(t, 9, rec.Mismatches[0].Stock)
}

func TestListStock_CacheSeInvalidaTrasMovimiento(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 4)
	cache := &fakeCache{}
	ledger := inventory.NewLedger(memory.NewTxRunner(store), cache, nil)
	query := inventory.NewQueryUseCase(store.Products(), store.History(), cache)

	items, err := query.ListStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].CurrentStock)
	assert.Equal(t, 1, cache.sets)

	_, err = query.ListStock(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "la segunda lectura sale de la caché")

	_, err = ledger.Adjust(ctx, "u", dto.AdjustmentRequest{ProductCode: "A1", Change: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	items, err = query.ListStock(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, items[0].CurrentStock, "nunca se sirve un stock anterior a una escritura confirmada")
}

// commitAfterRead confirma una escritura justo después de leer el catálogo, antes de que
// el listado llegue a la caché.
type commitAfterRead struct {
	repository.ProductRepository
	once  sync.Once
	write func()
}

func (r *commitAfterRead) ListAll(ctx context.Context) ([]*entity.Product, error) {
	out, err := r.ProductRepository.ListAll(ctx)
	r.once.Do(r.write)
	return out, err
}

func TestListStock_EscrituraDuranteLecturaNoDejaCacheObsoleta(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "AP001", 10)
	stockCache := cache.NewStockListCache(cache.NewMemoryStore(), 5*time.Minute, zerolog.Nop(), nil)
	ledger := inventory.NewLedger(memory.NewTxRunner(store), stockCache, nil)

	products := &commitAfterRead{ProductRepository: store.Products()}
	products.write = func() {
		_, err := ledger.Adjust(ctx, "u", dto.AdjustmentRequest{ProductCode: "AP001", Change: -4, Reason: entity.ReasonSale})
		require.NoError(t, err)
	}
	query := inventory.NewQueryUseCase(products, store.History(), stockCache)

	items, err := query.ListStock(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, items[0].CurrentStock, "la lectura en curso ve el estado previo")

	items, err = query.ListStock(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, items[0].CurrentStock)

	items, err = query.ListStock(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, items[0].CurrentStock)
}

func TestListStock_ConMovimientosRecientes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 4)
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, nil)
	for i := 0; i < 3; i++ {
		_, err := ledger.Adjust(ctx, "u", dto.AdjustmentRequest{ProductCode: "A1", Change: 1})
		require.NoError(t, err)
	}

	items, err := inventory.NewQueryUseCase(store.Products(), store.History(), nil).ListStock(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Len(t, items[0].Recent, 2)
}

func TestProductHistory_ProductoInexistente(t *testing.T) {
	store := memory.NewStore()
	_, err := inventory.NewQueryUseCase(store.Products(), store.History(), nil).ProductHistory(context.Background(), "NOPE", 10)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLedger_PaginaConNombreDeProducto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 0)
	seed(t, store, "B2", 0)
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, nil)
	for _, code := range []string{"A1", "B2", "A1"} {
		_, err := ledger.Adjust(ctx, "u", dto.AdjustmentRequest{ProductCode: code, Change: 2})
		require.NoError(t, err)
	}

	query := inventory.NewQueryUseCase(store.Products(), store.History(), nil)
	res, err := query.Ledger(ctx, dto.LedgerListQuery{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "A1", res.Items[0].ProductCode)
	assert.Equal(t, "Producto A1", res.Items[0].ProductName)

	res, err = query.Ledger(ctx, dto.LedgerListQuery{ProductCode: "B2"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page.Total)
}

func TestReplenishment_PriorizaPorVentas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "A1", 6)
	seed(t, store, "B2", 3)
	seed(t, store, "C3", 50)
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, nil)
	require.NoError(t, ledger.Transact(ctx, func(tx *inventory.Tx) error {
		_, err := tx.Apply(ctx, inventory.Movement{ProductCode: "A1", Delta: -4, Reason: entity.ReasonSale})
		return err
	}))

	list, err := inventory.NewReplenishmentUseCase(store.Products(), store.History(), 5).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "A1", list[0].Code)
	assert.Equal(t, 4, list[0].UnitsSoldLast30d)
	assert.Equal(t, 2*5-2+4, list[0].SuggestedOrderQty)
	assert.Equal(t, 1, list[0].Priority)

	assert.Equal(t, "B2", list[1].Code)
	assert.Equal(t, 0, list[1].UnitsSoldLast30d)
	assert.Equal(t, 2, list[1].Priority)
}
