package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// ──────────────────────────────────────────────────────────────────────────────
// Modo cobertura: el monto genera periodos
// ──────────────────────────────────────────────────────────────────────────────

func TestPaymentCreate_CoberturaGeneraPeriodos(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 15)

	out, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{
		CustomerID: "c1",
		Amount:     decimal.NewFromInt(2500),
		Method:     "Transfer",
	})
	require.NoError(t, err)

	require.Len(t, out.CreatedPeriods, 2, "2500 / 1000 cubre dos periodos completos")
	assert.Equal(t, "2026-03-15", out.CreatedPeriods[0].StartDate)
	assert.Equal(t, "2026-04-15", out.CreatedPeriods[0].EndDate)
	assert.Equal(t, "2026-04-16", out.CreatedPeriods[1].StartDate)
	assert.Equal(t, "2026-05-15", out.CreatedPeriods[1].EndDate)
	for _, p := range out.CreatedPeriods {
		assert.True(t, p.Paid)
		assert.Equal(t, string(entity.OriginPayment), p.Origin)
		assert.Equal(t, string(entity.PeriodActive), p.Status)
		require.NotNil(t, p.SuggestedInvoiceDate)
		assert.Equal(t, p.StartDate, *p.SuggestedInvoiceDate)
	}

	assert.Equal(t, "transfer", out.Payment.Method)
	assert.Equal(t, "MXN", out.Payment.Currency)
	assert.Equal(t, "2026-03-15", out.Payment.PaymentDate, "sin fecha se usa hoy")
	assert.Len(t, out.Payment.PeriodIDs, 2)

	assert.Equal(t, string(status.FinancialPaid), out.Status.FinancialStatus)
	assert.Equal(t, string(entity.OperationalActive), out.Status.OperationalStatus)
	assert.Equal(t, entity.OperationalActive, h.storedCustomer(t, "c1").OperationalStatus)
	assert.Equal(t, []string{billing.PaymentModeCoverage}, h.metrics.payments)
}

func TestPaymentCreate_CoberturaContinuaTrasUltimoPeriodo(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 0)
	h.seedPeriod(t, "c1", "p0", "2026-02-01", "2026-02-28", entity.PeriodActive)

	out, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{
		CustomerID:  "c1",
		Amount:      decimal.NewFromInt(1000),
		PaymentDate: "2026-03-15",
	})
	require.NoError(t, err)

	require.Len(t, out.CreatedPeriods, 1)
	assert.Equal(t, "2026-03-01", out.CreatedPeriods[0].StartDate)
	assert.Equal(t, "2026-04-01", out.CreatedPeriods[0].EndDate)
	assert.Equal(t, "other", out.Payment.Method)

	// p0 (iniciado) no tiene pago: queda pendiente aunque el periodo vigente esté pagado.
	assert.Equal(t, string(entity.OperationalActiveWithPendingPayment), out.Status.OperationalStatus)
}

func TestPaymentCreate_MontoInsuficienteNoGeneraPeriodos(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 1)

	out, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{CustomerID: "c1", Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	assert.Empty(t, out.CreatedPeriods)
	assert.Empty(t, out.Payment.PeriodIDs)
	assert.Len(t, h.store.payments, 1, "el pago se registra aunque no cubra periodos")
	assert.Equal(t, string(status.FinancialOverdue), out.Status.FinancialStatus)
}

func TestPaymentCreate_ClienteConFacturaCreaFacturasPendientes(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", true, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 1)

	out, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{CustomerID: "c1", Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	require.Len(t, out.CreatedPeriods, 1)

	inv := h.invoiceForPeriod(t, out.CreatedPeriods[0].ID)
	require.NotNil(t, inv)
	assert.Equal(t, entity.InvoicePending, inv.Status)
	assert.Equal(t, "160", inv.TaxAmount.String())
	assert.Equal(t, "1160", inv.TotalAmount.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Modo explícito: vincula periodos existentes
// ──────────────────────────────────────────────────────────────────────────────

func TestPaymentCreate_ExplicitoDeduplicaPeriodos(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 1)
	h.seedPeriod(t, "c1", "p1", "2026-03-01", "2026-03-31", entity.PeriodActive)

	out, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{
		CustomerID:       "c1",
		Amount:           decimal.NewFromInt(1000),
		ServicePeriodIDs: []string{"p1", "p1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, out.Payment.PeriodIDs)
	assert.Empty(t, out.CreatedPeriods)
	assert.Equal(t, string(entity.OperationalActive), out.Status.OperationalStatus)
	assert.Equal(t, []string{billing.PaymentModeExplicit}, h.metrics.payments)
}

func TestPaymentCreate_ExplicitoPeriodoDeOtroCliente(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 1)
	h.seedCustomer(t, "c2", "Beta", false, entity.OperationalUnset)
	h.seedPeriod(t, "c2", "p2", "2026-03-01", "2026-03-31", entity.PeriodActive)

	_, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{
		CustomerID:       "c1",
		Amount:           decimal.NewFromInt(1000),
		ServicePeriodIDs: []string{"p2"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, h.store.payments)
}

func TestPaymentCreate_FacturaObligatoriaAntesDelPago(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", true, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 1)

	created, err := h.periods.Create(h.ctx, dto.CreatePeriodRequest{
		CustomerID: "c1",
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
	})
	require.NoError(t, err)
	periodID := created.Period.ID

	req := dto.CreatePaymentRequest{
		CustomerID:       "c1",
		Amount:           decimal.NewFromInt(1160),
		ServicePeriodIDs: []string{periodID},
	}
	_, err = h.payments.Create(h.ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvoiceRequired, "factura PENDING no basta")
	assert.Empty(t, h.store.payments)

	inv := h.invoiceForPeriod(t, periodID)
	require.NotNil(t, inv)
	_, err = h.invoices.MarkGenerated(h.ctx, inv.ID, dto.MarkGeneratedRequest{InvoiceNumber: "F-001"})
	require.NoError(t, err)

	out, err := h.payments.Create(h.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{periodID}, out.Payment.PeriodIDs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestPaymentCreate_Validaciones(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedCustomer(t, "c2", "Sin convenio", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 1)

	cases := []struct {
		name string
		req  dto.CreatePaymentRequest
		want error
	}{
		{"monto cero", dto.CreatePaymentRequest{CustomerID: "c1"}, domain.ErrInvalidInput},
		{"método desconocido", dto.CreatePaymentRequest{CustomerID: "c1", Amount: decimal.NewFromInt(1), Method: "crypto"}, domain.ErrInvalidInput},
		{"fecha inválida", dto.CreatePaymentRequest{CustomerID: "c1", Amount: decimal.NewFromInt(1), PaymentDate: "15/03/2026"}, domain.ErrInvalidInput},
		{"cliente inexistente", dto.CreatePaymentRequest{CustomerID: "zz", Amount: decimal.NewFromInt(1)}, domain.ErrNotFound},
		{"sin convenio activo", dto.CreatePaymentRequest{CustomerID: "c2", Amount: decimal.NewFromInt(1)}, domain.ErrNoActiveAgreement},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.payments.Create(h.ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, h.store.payments)
}

func TestPaymentCreate_CoberturaExcedeTope(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 1)

	_, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{
		CustomerID: "c1",
		Amount:     decimal.RequireFromString("99999999999999999999"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, h.store.payments)
	assert.Empty(t, h.store.periods)

	// Justo en el tope sí se acepta.
	limit := billing.DefaultSettings().MaxCoveragePeriods
	out, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{
		CustomerID: "c1",
		Amount:     decimal.NewFromInt(int64(limit) * 1000),
	})
	require.NoError(t, err)
	assert.Len(t, out.CreatedPeriods, limit)
}

func TestPaymentCreate_UsaRelojDelServicio(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)
	h.seedAgreement(t, "c1", 15)

	out, err := h.payments.Create(h.ctx, dto.CreatePaymentRequest{
		CustomerID: "c1",
		Amount:     decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	require.Len(t, out.CreatedPeriods, 1)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	p := h.store.payments[out.Payment.ID]
	assert.True(t, p.CreatedAt.Equal(testNow))
	assert.True(t, p.UpdatedAt.Equal(testNow))
	sp := h.store.periods[out.CreatedPeriods[0].ID]
	assert.True(t, sp.CreatedAt.Equal(testNow))
}
