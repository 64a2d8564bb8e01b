// Package cache almacén clave/valor para vistas de lectura (Redis o memoria) y la caché
// tipada del listado de stock.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ErrMiss la clave no existe o expiró.
var ErrMiss = errors.New("cache: miss")

// Store almacén de bytes con TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr incrementa de forma atómica un contador sin vencimiento (clave ausente = 0).
	Incr(ctx context.Context, key string) (int64, error)
}

type memItem struct {
	value   []byte
	expires time.Time // cero = sin vencimiento
}

// MemoryStore almacén en proceso; se usa cuando no hay REDIS_URL.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memItem
	now   func() time.Time
}

// NewMemoryStore crea un almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memItem), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if !it.expires.IsZero() && !s.now().Before(it.expires) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, ErrMiss
	}
	return append([]byte(nil), it.value...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	it := memItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	if it, ok := s.items[key]; ok && (it.expires.IsZero() || s.now().Before(it.expires)) {
		v, err := strconv.ParseInt(string(it.value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache: %s no es un entero", key)
		}
		n = v
	}
	n++
	s.items[key] = memItem{value: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}
