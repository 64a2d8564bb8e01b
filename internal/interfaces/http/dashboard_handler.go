package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/erp-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints de los paneles por rol.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Admin resumen del día: ventas, compras, stock bajo y usuarios activos.
// GET /api/dashboard/admin
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	out, err := h.uc.Admin(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Seller ventas del vendedor autenticado.
// GET /api/dashboard/seller
func (h *DashboardHandler) Seller(c *fiber.Ctx) error {
	out, err := h.uc.Seller(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Client compras, puntos y últimos pedidos del cliente autenticado.
// GET /api/dashboard/client
func (h *DashboardHandler) Client(c *fiber.Ctx) error {
	out, err := h.uc.Client(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
