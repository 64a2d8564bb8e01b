package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update modifica datos, rol, estado, contraseña y último acceso; nunca los puntos.
	Update(ctx context.Context, user *entity.User) error
	// AddPoints suma (o resta) puntos de fidelización de forma atómica.
	AddPoints(ctx context.Context, id string, delta int) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, int, error)
	CountActive(ctx context.Context) (int, error)
	ExistsWithRole(ctx context.Context, role entity.Role) (bool, error)
	Delete(ctx context.Context, id string) error
}
