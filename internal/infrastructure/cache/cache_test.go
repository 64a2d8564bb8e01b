package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
)

type countingHits struct{ hit, miss int }

func (c *countingHits) CacheHit()  { c.hit++ }
func (c *countingHits) CacheMiss() { c.miss++ }

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("conexión rechazada")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (brokenStore) Delete(context.Context, string) error                     { return nil }
func (brokenStore) Incr(context.Context, string) (int64, error)              { return 0, nil }

func TestMemoryStore_ExpiraPorTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestStockListCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	hits := &countingHits{}
	c := NewStockListCache(NewMemoryStore(), time.Minute, zerolog.Nop(), hits)

	_, gen, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, int64(0), gen)

	c.Set(ctx, gen, []dto.StockItemResponse{{Code: "AP001", Name: "Aceite", CurrentStock: 23}})
	items, _, ok := c.Get(ctx)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, 23, items[0].CurrentStock)

	c.Invalidate(ctx)
	_, gen, ok = c.Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)

	assert.Equal(t, 1, hits.hit)
	assert.Equal(t, 2, hits.miss)
}

func TestStockListCache_FalloDelAlmacenEsMiss(t *testing.T) {
	hits := &countingHits{}
	c := NewStockListCache(brokenStore{}, time.Minute, zerolog.Nop(), hits)
	_, _, ok := c.Get(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 1, hits.miss)
}

func TestStockListCache_SetTardioTrasInvalidacionNoSeSirve(t *testing.T) {
	ctx := context.Background()
	c := NewStockListCache(NewMemoryStore(), time.Minute, zerolog.Nop(), nil)

	// un lector falla la caché y calcula el listado con stock 10
	_, gen, ok := c.Get(ctx)
	require.False(t, ok)
	stale := []dto.StockItemResponse{{Code: "AP001", CurrentStock: 10}}

	// entre su lectura y su Set se confirma una venta
	c.Invalidate(ctx)
	c.Set(ctx, gen, stale)

	_, next, ok := c.Get(ctx)
	assert.False(t, ok, "un listado anterior a la invalidación no se sirve")
	assert.Equal(t, gen+1, next)

	c.Set(ctx, next, []dto.StockItemResponse{{Code: "AP001", CurrentStock: 6}})
	items, _, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, 6, items[0].CurrentStock)
}

func TestStockListCache_SinGeneracionNoGuarda(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewStockListCache(store, time.Minute, zerolog.Nop(), nil)

	c.Set(ctx, -1, []dto.StockItemResponse{{Code: "AP001"}})
	_, err := store.Get(ctx, stockListKey)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_Incr(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	n, err := s.Incr(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Incr(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.Set(ctx, "txt", []byte("abc"), 0))
	_, err = s.Incr(ctx, "txt")
	assert.Error(t, err)
}
