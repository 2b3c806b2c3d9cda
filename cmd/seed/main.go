// seed prepara una base nueva: crea el usuario administrador y, opcionalmente,
// importa clientes desde un CSV exportado del sistema anterior (Excel, Windows-1252).
//
// Uso: go run ./cmd/seed [clientes.csv]
// Variables: SEED_ADMIN_USERNAME (admin), SEED_ADMIN_PASSWORD (obligatoria).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/Cobranza-api/internal/application/auth"
	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
	"github.com/jhoicas/Cobranza-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cobranza-api/pkg/clock"
	"github.com/jhoicas/Cobranza-api/pkg/config"
	"github.com/jhoicas/Cobranza-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "cobranza-seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	username := os.Getenv("SEED_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	_, err = authUC.CreateUser(ctx, dto.CreateUserRequest{
		Username: username,
		Password: os.Getenv("SEED_ADMIN_PASSWORD"),
		Role:     entity.RoleAdmin,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		log.Info().Str("username", username).Msg("administrador ya existe")
	case err != nil:
		log.Fatal().Err(err).Msg("crear administrador")
	default:
		log.Info().Str("username", username).Msg("administrador creado")
	}

	if len(os.Args) < 2 {
		return
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := readCustomers(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	settings := billing.DefaultSettings()
	settings.Policy = status.Policy(cfg.Billing.OperationalPolicy)
	settings.Location = cfg.App.Location()
	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)
	statusSvc := billing.NewStatusService(txRunner, repos, clock.Real{}, settings, log)
	customerUC := billing.NewCustomerUseCase(repos, txRunner, statusSvc)

	var created, skipped int
	for i, in := range rows {
		if _, err := customerUC.Create(ctx, in); err != nil {
			skipped++
			log.Warn().Err(err).Int("fila", i+2).Str("cliente", in.CommercialName).Msg("cliente omitido")
			continue
		}
		created++
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Msg("importación de clientes terminada")
}
