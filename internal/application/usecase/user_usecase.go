package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/policy"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios: jerarquía de roles y credenciales.
type UserUseCase struct {
	repo       repository.UserRepository
	bcryptCost int
	now        func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo, bcryptCost: bcrypt.DefaultCost, now: time.Now}
}

// Create crea un usuario con el rol indicado si el actor puede gestionarlo.
func (uc *UserUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, domain.Invalid("role", err.Error())
	}
	if !policy.CanManageRole(actor.Role, role) {
		return nil, domain.ErrForbidden
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.Invalid("email", "requerido")
	}
	if len(in.Password) < 8 {
		return nil, domain.Invalid("password", "mínimo 8 caracteres")
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		Active:       true,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// List lista usuarios paginados.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	users, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica nombre, rol, estado o password. El actor debe poder gestionar
// tanto el rol actual como el nuevo; nadie cambia su propio rol ni se desactiva.
func (uc *UserUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	self := actor.ID == user.ID
	if !self && !policy.CanManageRole(actor.Role, user.Role) {
		return nil, domain.ErrForbidden
	}
	if in.Role != nil {
		role, err := entity.ParseRole(*in.Role)
		if err != nil {
			return nil, domain.Invalid("role", err.Error())
		}
		if role != user.Role {
			if self || !policy.CanManageRole(actor.Role, role) {
				return nil, domain.ErrForbidden
			}
			user.Role = role
		}
	}
	if in.Active != nil && *in.Active != user.Active {
		if self {
			return nil, domain.Invalid("active", "no puede desactivar su propia cuenta")
		}
		user.Active = *in.Active
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, domain.Invalid("password", "mínimo 8 caracteres")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), uc.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// Delete elimina un usuario. Un superadmin nunca se elimina, ni uno mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	user, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID == user.ID {
		return domain.Invalid("id", "no puede eliminar su propia cuenta")
	}
	if user.Role == entity.RoleSuperadmin || !policy.CanManageRole(actor.Role, user.Role) {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		Active:      u.Active,
		Points:      u.Points,
		CreatedBy:   u.CreatedBy,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
