package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Cobranza-api/internal/application/analytics"
	"github.com/jhoicas/Cobranza-api/internal/application/auth"
	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/application/catalog"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CustomerUC  *billing.CustomerUseCase
	AgreementUC *billing.AgreementUseCase
	PeriodUC    *billing.PeriodUseCase
	PaymentUC   *billing.PaymentUseCase
	InvoiceUC   *billing.InvoiceUseCase
	StatusSvc   *billing.StatusService
	PlanUC      *catalog.PlanUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
//
// Roles: admin todo; billing administra clientes, convenios, periodos, facturas y
// catálogo; collections consulta y registra pagos.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)
	api.Get("/health/db", authHandler.DBHealth)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleBilling, entity.RoleCollections)
	billingRole := RequireRole(entity.RoleAdmin, entity.RoleBilling)
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", anyRole, authHandler.Me)
	protected.Post("/users", adminOnly, authHandler.CreateUser)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.StatusSvc)
	protected.Get("/dashboard/stats", anyRole, dashboardHandler.GetStats)
	protected.Get("/collections", anyRole, dashboardHandler.Collections)
	protected.Post("/status/refresh", adminOnly, dashboardHandler.RefreshStatus)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", anyRole, customerHandler.List)
	customers.Post("/", billingRole, customerHandler.Create)
	customers.Get("/:id", anyRole, customerHandler.Get)
	customers.Patch("/:id", billingRole, customerHandler.Update)
	customers.Delete("/:id", adminOnly, customerHandler.Delete)
	customers.Get("/:id/status", anyRole, customerHandler.Status)

	agreements := protected.Group("/agreements")
	agreementHandler := NewAgreementHandler(deps.AgreementUC)
	agreements.Post("/", billingRole, agreementHandler.Create)
	agreements.Get("/", anyRole, agreementHandler.List)
	agreements.Patch("/:id/deactivate", billingRole, agreementHandler.Deactivate)

	periodHandler := NewPeriodHandler(deps.PeriodUC)
	protected.Get("/billing/pending", billingRole, periodHandler.PendingBilling)
	periods := protected.Group("/periods")
	periods.Post("/", billingRole, periodHandler.Create)
	periods.Patch("/:id", billingRole, periodHandler.Update)
	periods.Delete("/:id", billingRole, periodHandler.Delete)
	periods.Post("/:id/renew", billingRole, periodHandler.Renew)

	payments := protected.Group("/payments")
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	payments.Get("/", anyRole, paymentHandler.List)
	payments.Post("/", anyRole, paymentHandler.Create)

	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Get("/", anyRole, invoiceHandler.List)
	invoices.Post("/", billingRole, invoiceHandler.Create)
	invoices.Patch("/:id/mark-generated", billingRole, invoiceHandler.MarkGenerated)
	invoices.Patch("/:id/mark-paid", billingRole, invoiceHandler.MarkPaid)
	invoices.Get("/:id/pdf", anyRole, invoiceHandler.DownloadPDF)
	invoices.Get("/:id/xml", anyRole, invoiceHandler.DownloadXML)

	plans := protected.Group("/plans")
	planHandler := NewPlanHandler(deps.PlanUC)
	plans.Get("/", anyRole, planHandler.List)
	plans.Post("/", billingRole, planHandler.Create)
	plans.Get("/:id", anyRole, planHandler.Get)
	plans.Patch("/:id", billingRole, planHandler.Update)
	plans.Post("/:id/pricing", billingRole, planHandler.AddPricing)
	plans.Delete("/:id/pricing/:pricingId", billingRole, planHandler.DeletePricing)
	plans.Post("/:id/usage-limits", billingRole, planHandler.AddUsageLimit)
	plans.Delete("/:id/usage-limits/:limitId", billingRole, planHandler.DeleteUsageLimit)
}
