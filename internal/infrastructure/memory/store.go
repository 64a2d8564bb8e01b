// Package memory implementa los puertos de persistencia en memoria. Se usa con
// STORAGE_DRIVER=memory (demo/desarrollo sin PostgreSQL) y como doble de prueba.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado
// que solo se publica si la función termina sin error.
package memory

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

type state struct {
	products map[string]*entity.Product
	history  []*entity.StockEntry
	outbox   []*entity.StockEvent
	orders   map[entity.OrderKind]map[string]*entity.Order
	users    map[string]*entity.User
}

func newState() *state {
	return &state{
		products: make(map[string]*entity.Product),
		orders: map[entity.OrderKind]map[string]*entity.Order{
			entity.OrderSale:     {},
			entity.OrderPurchase: {},
		},
		users: make(map[string]*entity.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, p := range s.products {
		cp := *p
		c.products[k] = &cp
	}
	c.history = append([]*entity.StockEntry(nil), s.history...)
	for _, ev := range s.outbox {
		cp := *ev
		c.outbox = append(c.outbox, &cp)
	}
	for kind, m := range s.orders {
		for id, o := range m {
			c.orders[kind][id] = copyOrder(o)
		}
	}
	for id, u := range s.users {
		cp := *u
		c.users[id] = &cp
	}
	return c
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// view ejecuta sobre el estado de la transacción (tx != nil) o bloquea el almacén.
type view struct {
	store *Store
	tx    *state
}

func (v view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{view{store: s}} }

// History repositorio del ledger fuera de transacción.
func (s *Store) History() *StockHistoryRepo { return &StockHistoryRepo{view{store: s}} }

// Outbox repositorio de eventos fuera de transacción.
func (s *Store) Outbox() *OutboxRepo { return &OutboxRepo{view{store: s}} }

// Orders repositorio de ventas o compras fuera de transacción.
func (s *Store) Orders(kind entity.OrderKind) *OrderRepo { return &OrderRepo{view{store: s}, kind} }

// Users repositorio de usuarios fuera de transacción.
func (s *Store) Users() *UserRepo { return &UserRepo{view{store: s}} }

// TxRunner ejecuta funciones de forma atómica sobre el almacén.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner para el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn sobre una copia del estado; la copia reemplaza al estado solo si fn no falla.
// El almacén entero queda bloqueado mientras fn corre: fn no debe esperar E/S externa
// (el relay de eventos usa PublishOutsideTx con este runner).
func (r *TxRunner) Run(ctx context.Context, fn func(s inventory.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.st.clone()
	v := view{store: r.store, tx: work}
	stores := inventory.Stores{
		Products:  &ProductRepo{v},
		History:   &StockHistoryRepo{v},
		Outbox:    &OutboxRepo{v},
		Sales:     &OrderRepo{v, entity.OrderSale},
		Purchases: &OrderRepo{v, entity.OrderPurchase},
		Users:     &UserRepo{v},
	}
	if err := fn(stores); err != nil {
		return err
	}
	r.store.st = work
	return nil
}

// fold normaliza para búsquedas: minúsculas y sin tildes ("Válvula" → "valvula").
// El transformer tiene estado, por eso se construye en cada llamada.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}

func page(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
