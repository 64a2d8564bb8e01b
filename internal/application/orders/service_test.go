package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/orders"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testUser = "00000000-0000-0000-0000-000000000001"

type env struct {
	store     *memory.Store
	sales     *orders.Service
	purchases *orders.Service
	query     *inventory.QueryUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewLedger(memory.NewTxRunner(store), nil, nil)
	return &env{
		store:     store,
		sales:     orders.NewService(ledger, store.Orders(entity.OrderSale), store.Products(), nil),
		purchases: orders.NewService(ledger, store.Orders(entity.OrderPurchase), store.Products(), nil),
		query:     inventory.NewQueryUseCase(store.Products(), store.History(), nil),
	}
}

func (e *env) seedProduct(t *testing.T, code string, stock, points int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.store.Products().Create(context.Background(), &entity.Product{
		ID: code + "-id", Code: code, Name: "Producto " + code,
		Price: decimal.NewFromInt(10), Points: points,
		Stock: stock, InitialStock: stock, CreatedAt: now, UpdatedAt: now,
	}))
}

func (e *env) stock(t *testing.T, code string) int {
	t.Helper()
	p, err := e.store.Products().GetByCode(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

// ledger devuelve los cambios del producto en orden cronológico.
func (e *env) ledger(t *testing.T, code string) []int {
	t.Helper()
	entries, err := e.store.History().ListByProduct(context.Background(), code, 0)
	require.NoError(t, err)
	out := make([]int, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i].Change)
	}
	return out
}

func (e *env) assertConsistent(t *testing.T) {
	t.Helper()
	rec, err := e.query.Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "stock debe ser stock inicial + suma del ledger: %+v", rec.Mismatches)
}

func sale(client string, lines ...dto.LineItemRequest) dto.OrderInput {
	return dto.SaleRequest{Client: client, Items: lines}.ToInput()
}

func purchase(supplier string, lines ...dto.LineItemRequest) dto.OrderInput {
	return dto.PurchaseRequest{Supplier: supplier, Items: lines}.ToInput()
}

func line(code string, qty int) dto.LineItemRequest {
	return dto.LineItemRequest{ProductCode: code, Quantity: qty, Price: decimal.RequireFromString("2.50")}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida completo
// ──────────────────────────────────────────────────────────────────────────────

func TestCicloDeVida_EscenarioAP001(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "AP001", 10, 0)

	s, err := e.sales.Create(ctx, testUser, sale("Ana", line("AP001", 4)))
	require.NoError(t, err)
	assert.Equal(t, 6, e.stock(t, "AP001"))
	assert.Equal(t, []int{-4}, e.ledger(t, "AP001"))
	assert.True(t, decimal.RequireFromString("10").Equal(s.Total), "total = 4 x 2.50")

	_, err = e.purchases.Create(ctx, testUser, purchase("Proveedor SA", line("AP001", 20)))
	require.NoError(t, err)
	assert.Equal(t, 26, e.stock(t, "AP001"))
	assert.Equal(t, []int{-4, 20}, e.ledger(t, "AP001"))

	_, err = e.sales.Edit(ctx, testUser, s.ID, sale("Ana", line("AP001", 7)))
	require.NoError(t, err)
	assert.Equal(t, 23, e.stock(t, "AP001"))
	assert.Equal(t, []int{-4, 20, -3}, e.ledger(t, "AP001"))

	_, err = e.sales.Create(ctx, testUser, sale("Luis", line("AP001", 100)))
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient), "debe rechazar por stock insuficiente")
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 23, insufficient.Available)
	assert.Equal(t, "stock insuficiente para AP001, disponible: 23", err.Error())
	assert.Equal(t, 23, e.stock(t, "AP001"))
	assert.Equal(t, []int{-4, 20, -3}, e.ledger(t, "AP001"))

	require.NoError(t, e.sales.Delete(ctx, testUser, s.ID))
	assert.Equal(t, 30, e.stock(t, "AP001"))
	assert.Equal(t, []int{-4, 20, -3, 7}, e.ledger(t, "AP001"))

	_, err = e.sales.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "la venta eliminada ya no existe")
	e.assertConsistent(t)
}

func TestCreate_VentaMultilineaEsAtomica(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 5, 0)
	e.seedProduct(t, "B2", 1, 0)

	_, err := e.sales.Create(ctx, testUser, sale("Ana", line("A1", 2), line("B2", 3)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, 5, e.stock(t, "A1"), "la primera línea no debe quedar aplicada")
	assert.Empty(t, e.ledger(t, "A1"))
	list, _, err := e.sales.List(ctx, dto.OrderListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list, "no debe persistirse la venta")
}

func TestCreate_LineasDelMismoProductoSeAgregan(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 5, 0)

	_, err := e.sales.Create(ctx, testUser, sale("Ana", line("A1", 2), line("A1", 1)))
	require.NoError(t, err)
	assert.Equal(t, 2, e.stock(t, "A1"))
	assert.Equal(t, []int{-3}, e.ledger(t, "A1"))
}

func TestCreate_ProductoInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.purchases.Create(context.Background(), testUser, purchase("Prov", line("NOPE", 1)))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 5, 0)

	cases := map[string]dto.OrderInput{
		"sin cliente":       sale("", line("A1", 1)),
		"sin líneas":        sale("Ana"),
		"cantidad cero":     sale("Ana", dto.LineItemRequest{ProductCode: "A1", Quantity: 0}),
		"cantidad negativa": sale("Ana", dto.LineItemRequest{ProductCode: "A1", Quantity: -2}),
		"precio negativo":   sale("Ana", dto.LineItemRequest{ProductCode: "A1", Quantity: 1, Price: decimal.NewFromInt(-1)}),
		"sin código":        sale("Ana", dto.LineItemRequest{Quantity: 1}),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.sales.Create(ctx, testUser, in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "error: %v", err)
		})
	}
	assert.Equal(t, 5, e.stock(t, "A1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestEdit_DeltaUnicoPorCodigo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 5, 0)

	s, err := e.sales.Create(ctx, testUser, sale("Ana", line("A1", 3)))
	require.NoError(t, err)

	_, err = e.sales.Edit(ctx, testUser, s.ID, sale("Ana", line("A1", 5)))
	require.NoError(t, err)
	assert.Equal(t, 0, e.stock(t, "A1"))
	assert.Equal(t, []int{-3, -2}, e.ledger(t, "A1"))

	entries, err := e.store.History().ListByProduct(ctx, "A1", 1)
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonSaleEdit, entries[0].Reason)
}

func TestEdit_RechazaSinDisponibilidad(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 4, 0)

	s, err := e.sales.Create(ctx, testUser, sale("Ana", line("A1", 3)))
	require.NoError(t, err)

	_, err = e.sales.Edit(ctx, testUser, s.ID, sale("Ana", line("A1", 5)))
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1, insufficient.Available)

	got, err := e.sales.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Items[0].Quantity, "la venta no debe cambiar")
	assert.Equal(t, 1, e.stock(t, "A1"))
	assert.Equal(t, []int{-3}, e.ledger(t, "A1"))
}

func TestEdit_CambioDeCodigo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 10, 0)
	e.seedProduct(t, "B2", 10, 0)

	s, err := e.sales.Create(ctx, testUser, sale("Ana", line("A1", 4)))
	require.NoError(t, err)

	_, err = e.sales.Edit(ctx, testUser, s.ID, sale("Ana", line("B2", 2)))
	require.NoError(t, err)

	assert.Equal(t, 10, e.stock(t, "A1"))
	assert.Equal(t, []int{-4, 4}, e.ledger(t, "A1"))
	assert.Equal(t, 8, e.stock(t, "B2"))
	assert.Equal(t, []int{-2}, e.ledger(t, "B2"))
	e.assertConsistent(t)
}

func TestEdit_CompraReduceStock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 0, 0)

	p, err := e.purchases.Create(ctx, testUser, purchase("Prov", line("A1", 10)))
	require.NoError(t, err)
	_, err = e.sales.Create(ctx, testUser, sale("Ana", line("A1", 8)))
	require.NoError(t, err)

	_, err = e.purchases.Edit(ctx, testUser, p.ID, purchase("Prov", line("A1", 5)))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "bajar la compra dejaría stock negativo")
	assert.Equal(t, 2, e.stock(t, "A1"))
}

func TestEdit_Inexistente(t *testing.T) {
	e := newEnv(t)
	e.seedProduct(t, "A1", 1, 0)
	_, err := e.sales.Edit(context.Background(), testUser, "missing", sale("Ana", line("A1", 1)))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Eliminación
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_CompraRevierteConMotivo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 1, 0)

	p, err := e.purchases.Create(ctx, testUser, purchase("Prov", line("A1", 6)))
	require.NoError(t, err)
	require.NoError(t, e.purchases.Delete(ctx, testUser, p.ID))

	assert.Equal(t, 1, e.stock(t, "A1"))
	entries, err := e.store.History().ListByProduct(ctx, "A1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.ReasonPurchaseReversal, entries[0].Reason)
	assert.Equal(t, -6, entries[0].Change)
	assert.Equal(t, p.ID, entries[0].ReferenceID)
}

func TestDelete_Inexistente(t *testing.T) {
	e := newEnv(t)
	err := e.purchases.Delete(context.Background(), testUser, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Puntos de fidelización
// ──────────────────────────────────────────────────────────────────────────────

func TestPuntos_SeAcreditanYRevierten(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 10, 2)
	require.NoError(t, e.store.Users().Create(ctx, &entity.User{
		ID: "client-1", Email: "cli@erp.test", Name: "Cliente", Role: entity.RoleClient, Active: true,
	}))

	in := sale("Cliente", line("A1", 3))
	in.PartyID = "client-1"
	s, err := e.sales.Create(ctx, testUser, in)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Points)

	u, _ := e.store.Users().GetByID(ctx, "client-1")
	assert.Equal(t, 6, u.Points)

	in.Items = []dto.LineItemRequest{line("A1", 1)}
	_, err = e.sales.Edit(ctx, testUser, s.ID, in)
	require.NoError(t, err)
	u, _ = e.store.Users().GetByID(ctx, "client-1")
	assert.Equal(t, 2, u.Points)

	require.NoError(t, e.sales.Delete(ctx, testUser, s.ID))
	u, _ = e.store.Users().GetByID(ctx, "client-1")
	assert.Equal(t, 0, u.Points)
}

func TestPuntos_ClienteInexistenteRevierteTodo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "A1", 10, 1)

	in := sale("Fantasma", line("A1", 2))
	in.PartyID = "nobody"
	_, err := e.sales.Create(ctx, testUser, in)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 10, e.stock(t, "A1"))
	assert.Empty(t, e.ledger(t, "A1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorClienteOCodigo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "AP001", 50, 0)
	e.seedProduct(t, "BX200", 50, 0)

	_, err := e.sales.Create(ctx, testUser, sale("Ana Pérez", line("AP001", 1)))
	require.NoError(t, err)
	_, err = e.sales.Create(ctx, testUser, sale("Luis", line("BX200", 1)))
	require.NoError(t, err)

	list, page, err := e.sales.List(ctx, dto.OrderListQuery{Query: "perez"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Pérez", list[0].Party)
	assert.Equal(t, 1, page.Total)

	list, _, err = e.sales.List(ctx, dto.OrderListQuery{Query: "bx2"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Luis", list[0].Party)

	list, _, err = e.sales.List(ctx, dto.OrderListQuery{ProductCode: "AP001"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
