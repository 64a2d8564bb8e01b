package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/policy"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/erp-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/erp-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "erp-api-test"
	testCookie    = "erp_session"
)

type middlewareEnv struct {
	app   *fiber.App
	users *memory.UserRepo
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - SessionMiddleware para validar el token y recargar el usuario
//   - RequireCapability para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(t *testing.T, capability policy.Capability) *middlewareEnv {
	t.Helper()
	users := memory.NewStore().Users()
	authUC := auth.NewAuthUseCase(users, auth.SessionConfig{Secret: testJWTSecret, TTL: time.Hour, Issuer: testIssuer})

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Get("/protected",
		apphttp.SessionMiddleware(authUC, testCookie),
		apphttp.RequireCapability(capability),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"user_id": apphttp.GetUserID(c),
				"role":    apphttp.GetRole(c),
			})
		},
	)
	return &middlewareEnv{app: app, users: users}
}

func (e *middlewareEnv) seed(t *testing.T, id string, role entity.Role, active bool) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &entity.User{
		ID: id, Email: id + "@erp.test", Name: id, Role: role, Active: active,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
}

func tokenFor(t *testing.T, userID string, role entity.Role, ttl time.Duration) string {
	t.Helper()
	tok, _, err := pkgjwt.Generate(testJWTSecret, userID, string(role), testIssuer, ttl)
	require.NoError(t, err, "debe generarse un token válido")
	return tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: cookie})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireCapability
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireCapability_AdminGestionaUsuarios(t *testing.T) {
	env := buildTestApp(t, policy.UsersManage)
	env.seed(t, "u-admin", entity.RoleAdmin, true)

	resp := doRequest(t, env.app, "Bearer "+tokenFor(t, "u-admin", entity.RoleAdmin, time.Hour), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, "u-admin", body["user_id"])
}

func TestRequireCapability_SesionPorCookie(t *testing.T) {
	env := buildTestApp(t, policy.SalesWrite)
	env.seed(t, "u-seller", entity.RoleSeller, true)

	resp := doRequest(t, env.app, "", tokenFor(t, "u-seller", entity.RoleSeller, time.Hour))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "el vendedor puede registrar ventas")
}

func TestRequireCapability_VendedorBloqueadoEnCompras(t *testing.T) {
	env := buildTestApp(t, policy.PurchasesWrite)
	env.seed(t, "u-seller", entity.RoleSeller, true)

	resp := doRequest(t, env.app, "", tokenFor(t, "u-seller", entity.RoleSeller, time.Hour))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
	assert.Contains(t, string(body), `"detail"`)
}

// El rol se toma del usuario recargado, no del claim del token.
func TestRequireCapability_RolDelUsuarioNoDelToken(t *testing.T) {
	env := buildTestApp(t, policy.UsersManage)
	env.seed(t, "u-client", entity.RoleClient, true)

	resp := doRequest(t, env.app, "Bearer "+tokenFor(t, "u-client", entity.RoleSuperadmin, time.Hour), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SessionMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestSession_SinToken_Retorna401(t *testing.T) {
	env := buildTestApp(t, policy.ProductsRead)
	resp := doRequest(t, env.app, "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSession_TokenInvalido_Retorna401(t *testing.T) {
	env := buildTestApp(t, policy.ProductsRead)
	resp := doRequest(t, env.app, "Bearer token.invalido.aqui", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSession_TokenExpirado_Retorna401(t *testing.T) {
	env := buildTestApp(t, policy.ProductsRead)
	env.seed(t, "u-client", entity.RoleClient, true)

	resp := doRequest(t, env.app, "", tokenFor(t, "u-client", entity.RoleClient, -time.Minute))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSession_UsuarioInactivoOEliminado_Retorna401(t *testing.T) {
	env := buildTestApp(t, policy.ProductsRead)
	env.seed(t, "u-off", entity.RoleClient, false)

	resp := doRequest(t, env.app, "", tokenFor(t, "u-off", entity.RoleClient, time.Hour))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, env.app, "", tokenFor(t, "u-ghost", entity.RoleClient, time.Hour))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
