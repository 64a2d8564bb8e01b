package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
)

// InventoryHandler maneja las vistas del ledger de stock y los ajustes manuales (protegido).
type InventoryHandler struct {
	ledger        *inventory.Ledger
	query         *inventory.QueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger, query *inventory.QueryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, query: query, replenishment: replenishment}
}

// List godoc
// @Summary      Stock actual por producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        recent  query  int  false  "Adjunta los últimos N movimientos de cada producto"
// @Success      200  {array}  dto.StockItemResponse
// @Router       /api/inventory/list [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	items, err := h.query.ListStock(c.UserContext(), c.QueryInt("recent", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// History godoc
// @Summary      Movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Código del producto"
// @Param        limit       query  int     false  "Máximo de filas (por defecto 50)"
// @Success      200  {array}   dto.HistoryItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	code := c.Query("product_id")
	if code == "" {
		return writeError(c, &fieldErrors{fields: map[string]string{"product_id": "requerido"}})
	}
	items, err := h.query.ProductHistory(c.UserContext(), code, c.QueryInt("limit", 50))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// Ledger godoc
// @Summary      Ledger de stock paginado
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_code  query  string  false  "Código del producto"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, inclusive)"
// @Success      200  {object}  dto.LedgerListResponse
// @Router       /api/inventory/ledger [get]
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	var q dto.LedgerListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	q.From, q.To = from, to
	out, err := h.query.Ledger(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_code, change (con signo), reason"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse  "validación o stock insuficiente (available)"
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.ledger.Adjust(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reconcile godoc
// @Summary      Conciliación stock vs ledger
// @Description  Verifica stock = stock inicial + suma de movimientos para cada producto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.query.Reconcile(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos por debajo del umbral de stock con la cantidad sugerida de pedido,
//
//	calculada con las ventas de los últimos 30 días.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"threshold":      h.replenishment.Threshold(),
		"replenishments": list,
	})
}
