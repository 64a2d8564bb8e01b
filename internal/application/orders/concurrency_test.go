package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/orders"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
)

// lockingProducts registra el orden en que una transacción bloquea productos.
type lockingProducts struct {
	repository.ProductRepository
	locked *[]string
}

func (p lockingProducts) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error) {
	*p.locked = append(*p.locked, code)
	return p.ProductRepository.GetByCodeForUpdate(ctx, code)
}

// lockOrderRunner TxRunner en memoria que guarda la secuencia de bloqueos de cada transacción.
type lockOrderRunner struct {
	inner *memory.TxRunner
	mu    sync.Mutex
	txs   [][]string
}

func (r *lockOrderRunner) Run(ctx context.Context, fn func(s inventory.Stores) error) error {
	return r.inner.Run(ctx, func(s inventory.Stores) error {
		var locked []string
		s.Products = lockingProducts{ProductRepository: s.Products, locked: &locked}
		err := fn(s)
		r.mu.Lock()
		r.txs = append(r.txs, locked)
		r.mu.Unlock()
		return err
	})
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("las transacciones concurrentes no terminaron (posible bloqueo mutuo)")
	}
}

func TestConcurrencia_VentasSobreStockEscaso(t *testing.T) {
	const (
		buyers  = 25
		initial = 7
	)
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "AP001", initial, 0)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
		other    []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.sales.Create(ctx, testUser, sale("Mostrador", line("AP001", 1)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	waitOrFail(t, &wg)

	require.Empty(t, other)
	assert.Equal(t, buyers, accepted+rejected)
	assert.Equal(t, initial, accepted, "se venden exactamente las unidades disponibles")
	assert.Equal(t, 0, e.stock(t, "AP001"))
	assert.Len(t, e.ledger(t, "AP001"), initial)
	e.assertConsistent(t)

	_, total, err := e.store.Orders(entity.OrderSale).List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, accepted, total, "solo persisten las ventas aceptadas")
}

func TestConcurrencia_PedidosCruzadosBloqueanEnOrdenDeCodigo(t *testing.T) {
	const rounds = 20
	ctx := context.Background()
	store := memory.NewStore()
	runner := &lockOrderRunner{inner: memory.NewTxRunner(store)}
	ledger := inventory.NewLedger(runner, nil, nil)
	e := &env{
		store:     store,
		sales:     orders.NewService(ledger, store.Orders(entity.OrderSale), store.Products(), nil),
		purchases: orders.NewService(ledger, store.Orders(entity.OrderPurchase), store.Products(), nil),
		query:     inventory.NewQueryUseCase(store.Products(), store.History(), nil),
	}
	e.seedProduct(t, "A1", 100, 0)
	e.seedProduct(t, "B2", 100, 0)

	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.sales.Create(ctx, testUser, sale("Ana", line("A1", 1), line("B2", 2)))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := e.purchases.Create(ctx, testUser, purchase("Proveedor", line("B2", 3), line("A1", 1)))
			errs <- err
		}()
	}
	waitOrFail(t, &wg)
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 100, e.stock(t, "A1"), "cada venta resta 1 y cada compra suma 1")
	assert.Equal(t, 100+rounds, e.stock(t, "B2"), "cada venta resta 2 y cada compra suma 3")
	e.assertConsistent(t)

	require.Len(t, runner.txs, 2*rounds)
	for _, locked := range runner.txs {
		assert.Equal(t, []string{"A1", "B2"}, locked, "los productos se bloquean siempre por código ascendente")
	}
}

func TestConcurrencia_EdicionesYBorradosMantienenElLedger(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedProduct(t, "AP001", 50, 0)

	ids := make([]string, 10)
	for i := range ids {
		s, err := e.sales.Create(ctx, testUser, sale("Ana", line("AP001", 2)))
		require.NoError(t, err)
		ids[i] = s.ID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if i%2 == 0 {
				_ = e.sales.Delete(ctx, testUser, id)
				return
			}
			_, _ = e.sales.Edit(ctx, testUser, id, sale("Ana", line("AP001", 5)))
		}(i, id)
	}
	waitOrFail(t, &wg)

	// 5 ventas borradas devuelven 2 cada una; 5 editadas pasan de 2 a 5
	assert.Equal(t, 50-5*5, e.stock(t, "AP001"))
	e.assertConsistent(t)
}
