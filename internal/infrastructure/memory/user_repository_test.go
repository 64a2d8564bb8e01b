package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
)

func newClient(t *testing.T, store *memory.Store) *entity.User {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	u := &entity.User{
		ID:        "c1",
		Email:     "cliente@erp.test",
		Name:      "Cliente",
		Role:      entity.RoleClient,
		Active:    true,
		CreatedBy: "admin-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestUserRepo_UpdateNoPisaPuntos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	newClient(t, store)
	users := store.Users()

	stale, err := users.GetByID(ctx, "c1")
	require.NoError(t, err)

	// una venta acredita puntos mientras otra petición tiene la copia anterior
	require.NoError(t, users.AddPoints(ctx, "c1", 5))

	login := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	stale.LastLoginAt = &login
	stale.Name = "Cliente Frecuente"
	stale.CreatedBy = ""
	require.NoError(t, users.Update(ctx, stale))

	got, err := users.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Points)
	assert.Equal(t, "Cliente Frecuente", got.Name)
	assert.Equal(t, "admin-1", got.CreatedBy)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(login))
}

func TestUserRepo_UpdateDentroDeTransaccion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	newClient(t, store)

	stale, err := store.Users().GetByID(ctx, "c1")
	require.NoError(t, err)

	err = memory.NewTxRunner(store).Run(ctx, func(s inventory.Stores) error {
		return s.Users.AddPoints(ctx, "c1", 12)
	})
	require.NoError(t, err)

	stale.Active = false
	require.NoError(t, store.Users().Update(ctx, stale))

	got, err := store.Users().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Points)
	assert.False(t, got.Active)
}

func TestUserRepo_UpdateErrores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	newClient(t, store)
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "c2", Email: "otro@erp.test", Role: entity.RoleClient}))

	err := store.Users().Update(ctx, &entity.User{ID: "nope", Email: "x@erp.test"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = store.Users().Update(ctx, &entity.User{ID: "c2", Email: "CLIENTE@erp.test"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}
