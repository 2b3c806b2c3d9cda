package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Cobranza-api/docs"
	appanalytics "github.com/jhoicas/Cobranza-api/internal/application/analytics"
	"github.com/jhoicas/Cobranza-api/internal/application/auth"
	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/application/catalog"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
	"github.com/jhoicas/Cobranza-api/internal/infrastructure/invoicexml"
	"github.com/jhoicas/Cobranza-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Cobranza-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cobranza-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Cobranza-api/internal/interfaces/http"
	"github.com/jhoicas/Cobranza-api/pkg/clock"
	"github.com/jhoicas/Cobranza-api/pkg/config"
	"github.com/jhoicas/Cobranza-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("timezone", cfg.App.Timezone).
		Str("policy", cfg.Billing.OperationalPolicy).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	loc := cfg.App.Location()

	settings := billing.Settings{
		TaxRate:            cfg.Billing.TaxRate,
		ExpiringWindowDays: cfg.Billing.ExpiringWindowDays,
		DefaultCurrency:    cfg.Billing.DefaultCurrency,
		Policy:             status.Policy(cfg.Billing.OperationalPolicy),
		Location:           loc,
		MaxCoveragePeriods: cfg.Billing.MaxCoveragePeriods,
	}

	clk := clock.Real{}
	billingMetrics := metrics.Billing(metrics.Config{ServiceName: cfg.App.Name, Environment: cfg.App.Env})

	statusSvc := billing.NewStatusService(txRunner, repos, clk, settings, log).WithMetrics(billingMetrics)
	customerUC := billing.NewCustomerUseCase(repos, txRunner, statusSvc)
	agreementUC := billing.NewAgreementUseCase(repos, txRunner, statusSvc)
	periodUC := billing.NewPeriodUseCase(repos, txRunner, statusSvc)
	paymentUC := billing.NewPaymentUseCase(repos, txRunner, statusSvc, log).WithMetrics(billingMetrics)

	// Documentos de la factura informativa: PDF (maroto) y XML canónico con digest.
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	xmlExporter := invoicexml.NewExporter(2)
	invoiceUC := billing.NewInvoiceUseCase(repos, txRunner, statusSvc, pdfGenerator, xmlExporter)

	planUC := catalog.NewPlanUseCase(postgres.NewPlanRepository(pool), txRunner, cfg.Billing.DefaultCurrency).WithClock(clk)
	dashboardUC := appanalytics.NewDashboardUseCase(statusSvc, postgres.NewAnalyticsRepository(pool), clk, loc, cfg.Billing.ExpiringWindowDays)

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log, billingMetrics))

	// Swagger UI: http://localhost:<port>/docs
	// DOCS_PATH permite servir un swagger.json externo; si no existe se usa el registrado en docs.
	swaggerCfg := swagger.Config{
		BasePath: "/",
		Path:     "docs",
		Title:    "Cobranza API",
	}
	if _, err := os.Stat(cfg.App.DocsPath); err == nil {
		swaggerCfg.FilePath = cfg.App.DocsPath
	} else {
		swaggerCfg.FileContent = []byte(docs.SwaggerInfo.ReadDoc())
	}
	app.Use(swagger.New(swaggerCfg))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.App.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CustomerUC:  customerUC,
		AgreementUC: agreementUC,
		PeriodUC:    periodUC,
		PaymentUC:   paymentUC,
		InvoiceUC:   invoiceUC,
		StatusSvc:   statusSvc,
		PlanUC:      planUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
