package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Cobranza-api/internal/application/analytics"
	"github.com/jhoicas/Cobranza-api/internal/application/billing"
)

// DashboardHandler maneja el dashboard y las listas de trabajo de cobranza.
type DashboardHandler struct {
	uc        *appanalytics.DashboardUseCase
	statusSvc *billing.StatusService
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, statusSvc *billing.StatusService) *DashboardHandler {
	return &DashboardHandler{uc: uc, statusSvc: statusSvc}
}

// GetStats devuelve los contadores del día.
// GET /api/dashboard/stats
//
// Antes de contar ejecuta el actualizador de ciclo de vida global, así que la
// primera llamada del día puede mover periodos a EXPIRING/EXPIRED.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.uc.GetStats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

// Collections GET /api/collections
// Clientes con saldo o estado operativo distinto de ACTIVE, más atrasados primero.
func (h *DashboardHandler) Collections(c *fiber.Ctx) error {
	list, err := h.statusSvc.Collections(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// RefreshStatus POST /api/status/refresh (admin)
func (h *DashboardHandler) RefreshStatus(c *fiber.Ctx) error {
	out, err := h.statusSvc.RefreshAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
