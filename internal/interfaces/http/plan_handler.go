package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cobranza-api/internal/application/catalog"
	"github.com/jhoicas/Cobranza-api/internal/application/dto"
)

// PlanHandler catálogo de planes.
type PlanHandler struct {
	uc *catalog.PlanUseCase
}

// NewPlanHandler construye el handler.
func NewPlanHandler(uc *catalog.PlanUseCase) *PlanHandler {
	return &PlanHandler{uc: uc}
}

// Create POST /api/plans
func (h *PlanHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/plans?is_active=&type=
func (h *PlanHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), dto.PlanListQuery{IsActive: c.Query("is_active"), Type: c.Query("type")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Get GET /api/plans/:id
func (h *PlanHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PATCH /api/plans/:id
func (h *PlanHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddPricing POST /api/plans/:id/pricing
func (h *PlanHandler) AddPricing(c *fiber.Ctx) error {
	var in dto.PricingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddPricing(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeletePricing DELETE /api/plans/:id/pricing/:pricingId
func (h *PlanHandler) DeletePricing(c *fiber.Ctx) error {
	out, err := h.uc.DeletePricing(c.UserContext(), c.Params("id"), c.Params("pricingId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddUsageLimit POST /api/plans/:id/usage-limits
func (h *PlanHandler) AddUsageLimit(c *fiber.Ctx) error {
	var in dto.UsageLimitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddUsageLimit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteUsageLimit DELETE /api/plans/:id/usage-limits/:limitId
func (h *PlanHandler) DeleteUsageLimit(c *fiber.Ctx) error {
	out, err := h.uc.DeleteUsageLimit(c.UserContext(), c.Params("id"), c.Params("limitId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
