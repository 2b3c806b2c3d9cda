package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
)

// errorMapping sentinel -> (status, code). El orden importa: se usa el primero que coincide.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrPeriodHasPayments, fiber.StatusConflict, "PERIOD_HAS_PAYMENTS"},
	{domain.ErrPaymentAlreadyInvoiced, fiber.StatusConflict, "PAYMENT_ALREADY_INVOICED"},
	{domain.ErrInvoiceExists, fiber.StatusConflict, "INVOICE_EXISTS"},
	{domain.ErrNoActiveAgreement, fiber.StatusUnprocessableEntity, "NO_ACTIVE_AGREEMENT"},
	{domain.ErrPeriodWithoutPayment, fiber.StatusUnprocessableEntity, "PERIOD_WITHOUT_PAYMENT"},
	{domain.ErrInvoiceRequired, fiber.StatusUnprocessableEntity, "INVOICE_REQUIRED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError traduce errores de dominio a dto.ErrorResponse. Los errores no mapeados son 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// badBody respuesta estándar para un cuerpo que no se pudo parsear.
func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
