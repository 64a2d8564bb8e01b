package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/policy"
)

// LocalUser key de c.Locals con el *entity.User de la sesión.
const LocalUser = "user"

// sessionAuthenticator es el contrato mínimo que necesita el middleware de sesión.
// Lo implementa *auth.AuthUseCase.
type sessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// SessionMiddleware lee el token de la cookie de sesión (o del header Bearer), recarga el
// usuario y lo deja en c.Locals. Usuario inexistente o inactivo → 401.
func SessionMiddleware(authn sessionAuthenticator, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c, cookieName)
		if token == "" {
			return writeError(c, domain.ErrUnauthorized)
		}
		user, err := authn.Authenticate(c.UserContext(), token)
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

func sessionToken(c *fiber.Ctx, cookieName string) string {
	if v := strings.TrimSpace(c.Cookies(cookieName)); v != "" {
		return v
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireCapability autoriza según la tabla de capacidades del rol. Debe usarse
// DESPUÉS de SessionMiddleware.
func RequireCapability(capability policy.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return writeError(c, domain.ErrUnauthorized)
		}
		if !policy.Can(user.Role, capability) {
			return writeError(c, domain.ErrForbidden)
		}
		return c.Next()
	}
}

// GetUser devuelve el usuario de la sesión (después del middleware de sesión).
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetUserID devuelve el ID del usuario de la sesión.
func GetUserID(c *fiber.Ctx) string {
	if u := GetUser(c); u != nil {
		return u.ID
	}
	return ""
}

// GetRole devuelve el rol del usuario de la sesión.
func GetRole(c *fiber.Ctx) entity.Role {
	if u := GetUser(c); u != nil {
		return u.Role
	}
	return ""
}
