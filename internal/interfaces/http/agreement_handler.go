package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/application/dto"
)

// AgreementHandler convenios comerciales.
type AgreementHandler struct {
	uc *billing.AgreementUseCase
}

// NewAgreementHandler construye el handler.
func NewAgreementHandler(uc *billing.AgreementUseCase) *AgreementHandler {
	return &AgreementHandler{uc: uc}
}

// Create POST /api/agreements
// Desactiva el convenio activo anterior del cliente.
func (h *AgreementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAgreementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/agreements?customer_id=
func (h *AgreementHandler) List(c *fiber.Ctx) error {
	customerID := c.Query("customer_id")
	if customerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "customer_id es requerido"})
	}
	list, err := h.uc.ListByCustomer(c.UserContext(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Deactivate PATCH /api/agreements/:id/deactivate
func (h *AgreementHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
