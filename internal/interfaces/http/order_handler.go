package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/orders"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// OrderHandler maneja ventas o compras según el tipo del servicio. Ambas comparten
// rutas y ciclo de vida; solo cambia el body (client / supplier).
type OrderHandler struct {
	svc *orders.Service
}

// NewOrderHandler construye el handler.
func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) bind(c *fiber.Ctx) (dto.OrderInput, error) {
	if h.svc.Kind() == entity.OrderSale {
		var in dto.SaleRequest
		if err := bindAndValidate(c, &in); err != nil {
			return dto.OrderInput{}, err
		}
		return in.ToInput(), nil
	}
	var in dto.PurchaseRequest
	if err := bindAndValidate(c, &in); err != nil {
		return dto.OrderInput{}, err
	}
	return in.ToInput(), nil
}

// Create godoc
// @Summary      Registrar venta / compra
// @Description  Descuenta (venta) o suma (compra) el stock de cada línea de forma atómica.
// @Tags         sales,purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "client, client_id, items (compras: supplier, items)"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse  "validación o stock insuficiente (available)"
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
// @Router       /api/purchases [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	in, err := h.bind(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.svc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(orders.ToResponse(order))
}

// GetByID godoc
// @Summary      Obtener venta / compra
// @Tags         sales,purchases
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
// @Router       /api/purchases/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders.ToResponse(order))
}

// List godoc
// @Summary      Listar ventas / compras
// @Tags         sales,purchases
// @Security     Bearer
// @Produce      json
// @Param        query         query  string  false  "Cliente/proveedor o código de producto"
// @Param        product_code  query  string  false  "Código exacto de producto"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, inclusive)"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/sales [get]
// @Router       /api/purchases [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var q dto.OrderListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	q.From, q.To = from, to
	list, page, err := h.svc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]interface{}, 0, len(list))
	for _, o := range list {
		items = append(items, orders.ToResponse(o))
	}
	return c.JSON(dto.OrderListResponse{Items: items, Page: page})
}

// Update godoc
// @Summary      Editar venta / compra
// @Description  Aplica un único delta por código de producto; rechaza si la venta no tiene stock disponible.
// @Tags         sales,purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID"
// @Param        body  body  dto.SaleRequest  true  "Pedido completo"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [put]
// @Router       /api/purchases/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	in, err := h.bind(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.svc.Edit(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders.ToResponse(order))
}

// Delete godoc
// @Summary      Eliminar venta / compra
// @Description  Revierte el stock de cada línea y registra la reversión en el ledger.
// @Tags         sales,purchases
// @Security     Bearer
// @Param        id  path  string  true  "ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
// @Router       /api/purchases/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receipt godoc
// @Summary      Comprobante PDF
// @Tags         sales,purchases
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
// @Router       /api/purchases/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.svc.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
