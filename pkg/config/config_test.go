package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "America/Mexico_City", cfg.App.Timezone)
	assert.Equal(t, 7, cfg.Billing.ExpiringWindowDays)
	assert.Equal(t, "MXN", cfg.Billing.DefaultCurrency)
	assert.Equal(t, "0.16", cfg.Billing.TaxRate.String())
	assert.Equal(t, config.PolicyPaymentLinkage, cfg.Billing.OperationalPolicy)
	assert.Equal(t, 120, cfg.Billing.MaxCoveragePeriods)
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("BILLING_EXPIRING_WINDOW_DAYS", "10")
	t.Setenv("BILLING_TAX_RATE", "0.08")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Billing.ExpiringWindowDays)
	assert.Equal(t, "0.08", cfg.Billing.TaxRate.String())
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_PoliticaDesconocida(t *testing.T) {
	t.Setenv("BILLING_OPERATIONAL_POLICY", "magic")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_TopeDeCoberturaInvalido(t *testing.T) {
	t.Setenv("BILLING_MAX_COVERAGE_PERIODS", "0")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("BILLING_MAX_COVERAGE_PERIODS", "24")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Billing.MaxCoveragePeriods)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "cobranza", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/cobranza?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}

func TestAppConfig_LocationInvalidaUsaUTC(t *testing.T) {
	assert.Equal(t, "UTC", config.AppConfig{Timezone: "No/Existe"}.Location().String())
}

func TestLoad_PoolInvalido(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "5")
	_, err := config.Load()
	assert.Error(t, err)
}
