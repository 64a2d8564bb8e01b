package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
)

var _ inventory.StockListCache = (*StockListCache)(nil)

const (
	stockListKey    = "inventory:stock-list"
	stockListGenKey = "inventory:stock-list:gen"
)

// HitRecorder recibe aciertos y fallos de lectura (métricas).
type HitRecorder interface {
	CacheHit()
	CacheMiss()
}

// stockListEntry listado junto con la generación en la que se calculó.
type stockListEntry struct {
	Gen   int64                   `json:"gen"`
	Items []dto.StockItemResponse `json:"items"`
}

// StockListCache listado de stock serializado en JSON y versionado por un contador de
// generación en el mismo almacén. Invalidate incrementa el contador, así que un listado
// calculado antes de una escritura confirmada nunca vuelve a servirse aunque se guarde tarde.
// Un fallo del almacén se trata como miss: la vista se recalcula desde la base de datos.
type StockListCache struct {
	store Store
	ttl   time.Duration
	log   zerolog.Logger
	hits  HitRecorder
}

// NewStockListCache construye la caché. hits puede ser nil.
func NewStockListCache(store Store, ttl time.Duration, log zerolog.Logger, hits HitRecorder) *StockListCache {
	return &StockListCache{store: store, ttl: ttl, log: log, hits: hits}
}

func (c *StockListCache) Get(ctx context.Context) ([]dto.StockItemResponse, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("leer generación de caché de stock")
		c.miss()
		return nil, -1, false
	}
	raw, err := c.store.Get(ctx, stockListKey)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.Warn().Err(err).Msg("leer caché de stock")
		}
		c.miss()
		return nil, gen, false
	}
	var entry stockListEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.log.Warn().Err(err).Msg("caché de stock corrupta")
		c.miss()
		return nil, gen, false
	}
	if entry.Gen != gen {
		c.miss()
		return nil, gen, false
	}
	if c.hits != nil {
		c.hits.CacheHit()
	}
	return entry.Items, gen, true
}

// Set guarda el listado calculado bajo gen. gen < 0 no guarda nada.
func (c *StockListCache) Set(ctx context.Context, gen int64, items []dto.StockItemResponse) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(stockListEntry{Gen: gen, Items: items})
	if err != nil {
		c.log.Warn().Err(err).Msg("serializar caché de stock")
		return
	}
	if err := c.store.Set(ctx, stockListKey, raw, c.ttl); err != nil {
		c.log.Warn().Err(err).Msg("escribir caché de stock")
	}
}

func (c *StockListCache) Invalidate(ctx context.Context) {
	if _, err := c.store.Incr(ctx, stockListGenKey); err != nil {
		c.log.Error().Err(err).Msg("avanzar generación de caché de stock")
	}
	if err := c.store.Delete(ctx, stockListKey); err != nil {
		c.log.Error().Err(err).Msg("invalidar caché de stock")
	}
}

func (c *StockListCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.store.Get(ctx, stockListGenKey)
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("generación de caché inválida %q: %w", raw, err)
	}
	return n, nil
}

func (c *StockListCache) miss() {
	if c.hits != nil {
		c.hits.CacheMiss()
	}
}
