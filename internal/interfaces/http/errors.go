package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
)

// writeError traduce un error de dominio a la respuesta HTTP. El detalle de errores
// internos se registra en el log y nunca se devuelve al cliente.
func writeError(c *fiber.Ctx, err error) error {
	var (
		stockErr *domain.InsufficientStockError
		valErr   *domain.ValidationError
		fieldErr *fieldErrors
	)
	switch {
	case errors.As(err, &fieldErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Detail: "datos inválidos", Code: "VALIDATION", Fields: fieldErr.fields,
		})
	case errors.As(err, &stockErr):
		available := stockErr.Available
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Detail: stockErr.Error(), Code: "INSUFFICIENT_STOCK", Available: &available,
		})
	case errors.As(err, &valErr):
		resp := dto.ErrorResponse{Detail: valErr.Error(), Code: "VALIDATION"}
		if valErr.Field != "" {
			resp.Fields = map[string]string{valErr.Field: valErr.Message}
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "VALIDATION"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "INVALID_CREDENTIALS"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Detail: "no autenticado", Code: "UNAUTHORIZED"})
	case errors.Is(err, domain.ErrInactiveUser):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "INACTIVE_USER"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "FORBIDDEN"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "EMAIL_EXISTS"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "DUPLICATE"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Detail: err.Error(), Code: "CONFLICT"})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Detail: fe.Message})
	}

	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Detail: "error interno del servidor", Code: "INTERNAL"})
}

// ErrorHandler manejador global de fiber: rutas inexistentes, panics recuperados y
// errores devueltos por los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
