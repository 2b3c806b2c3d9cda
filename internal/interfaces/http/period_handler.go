package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/application/dto"
)

// PeriodHandler periodos de servicio.
type PeriodHandler struct {
	uc *billing.PeriodUseCase
}

// NewPeriodHandler construye el handler.
func NewPeriodHandler(uc *billing.PeriodUseCase) *PeriodHandler {
	return &PeriodHandler{uc: uc}
}

// Create POST /api/periods
func (h *PeriodHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePeriodRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update PATCH /api/periods/:id
func (h *PeriodHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePeriodRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Renew POST /api/periods/:id/renew
func (h *PeriodHandler) Renew(c *fiber.Ctx) error {
	out, err := h.uc.Renew(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete DELETE /api/periods/:id
func (h *PeriodHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PendingBilling GET /api/billing/pending
func (h *PeriodHandler) PendingBilling(c *fiber.Ctx) error {
	list, err := h.uc.ListPendingBilling(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
