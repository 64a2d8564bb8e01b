package auth

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
	"github.com/jhoicas/erp-api/pkg/jwt"
)

// SessionConfig configuración para generación de tokens de sesión.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthUseCase casos de uso de autenticación: login, usuario actual y bootstrap del superadmin.
type AuthUseCase struct {
	userRepo repository.UserRepository
	session  SessionConfig
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, session SessionConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, session: session, now: time.Now}
}

// Login verifica email/password, registra el acceso y emite el token de sesión.
// Credenciales incorrectas → ErrInvalidCredentials; usuario inactivo → ErrInactiveUser.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}

	now := uc.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	token, exp, err := jwt.Generate(uc.session.Secret, user.ID, string(user.Role), uc.session.Issuer, uc.session.TTL)
	if err != nil {
		return nil, err
	}
	caps := policy.Capabilities(user.Role)
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return &dto.LoginResponse{
		Token:        token,
		Role:         string(user.Role),
		Redirect:     user.Role.Redirect(),
		Capabilities: names,
		ExpiresAt:    exp,
		User:         *toUserResponse(user),
	}, nil
}

// Authenticate resuelve el usuario de un token. Token inválido, usuario borrado o inactivo → ErrUnauthorized.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	userID, _, err := jwt.Parse(uc.session.Secret, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.CurrentUser(ctx, userID)
}

// CurrentUser carga el usuario de la sesión en cada petición, así un cambio de rol o
// una desactivación aplica de inmediato.
func (uc *AuthUseCase) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// Me usuario de la sesión como DTO.
func (uc *AuthUseCase) Me(user *entity.User) *dto.UserResponse {
	return toUserResponse(user)
}

// EnsureSuperadmin crea un superadmin si no existe ninguno. Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureSuperadmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 8 {
		return false, domain.Invalid("superadmin", "email y password (mínimo 8 caracteres) requeridos")
	}
	exists, err := uc.userRepo.ExistsWithRole(ctx, entity.RoleSuperadmin)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         entity.RoleSuperadmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
