package billing_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomerCreate_CalculaEstadoInicial(t *testing.T) {
	h := newHarness(t)

	out, err := h.customers.Create(h.ctx, dto.CreateCustomerRequest{
		CommercialName: "  Acme  ",
		RFC:            "aaa010101aaa",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", out.CommercialName)
	assert.Equal(t, "AAA010101AAA", out.RFC)
	require.NotNil(t, out.Status)
	assert.Equal(t, string(status.FinancialNoActiveAgreement), out.Status.FinancialStatus)
	assert.Equal(t, string(entity.OperationalActiveWithPendingPayment), out.OperationalStatus)
	assert.Equal(t, string(entity.RelationshipActive), out.RelationshipStatus)
	assert.Equal(t, entity.OperationalActiveWithPendingPayment, h.storedCustomer(t, out.ID).OperationalStatus)

	_, err = h.customers.Create(h.ctx, dto.CreateCustomerRequest{CommercialName: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCustomerGet_IncluyeRelaciones(t *testing.T) {
	h := newHarness(t)
	setupPaidPeriod(t, h, "c1", "p1")
	_, err := h.invoices.Create(h.ctx, dto.CreateInvoiceRequest{ServicePeriodID: "p1"})
	require.NoError(t, err)

	out, err := h.customers.Get(h.ctx, "c1")
	require.NoError(t, err)

	assert.Len(t, out.Agreements, 1)
	require.Len(t, out.Periods, 1)
	assert.True(t, out.Periods[0].Paid)
	require.NotNil(t, out.Periods[0].Invoice)
	assert.Len(t, out.Payments, 1)
	require.NotNil(t, out.Status)
	assert.Equal(t, string(entity.OperationalActive), out.Status.OperationalStatus)

	_, err = h.customers.Get(h.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerList_FiltraPorEstadoRecalculado(t *testing.T) {
	h := newHarness(t)
	// Guardado ACTIVE pero su único periodo ya venció.
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalActive)
	h.seedAgreement(t, "c1", 1)
	h.seedPeriod(t, "c1", "p1", "2026-01-01", "2026-01-31", entity.PeriodActive)
	setupPaidPeriod(t, h, "c2", "p2")

	active := string(entity.OperationalActive)
	list, err := h.customers.List(h.ctx, dto.CustomerListQuery{OperationalStatus: active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c2", list[0].ID)

	_, err = h.customers.List(h.ctx, dto.CustomerListQuery{OperationalStatus: "FROZEN"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCustomerList_EstadoGuardadoDesfasadoYPaginacion(t *testing.T) {
	h := newHarness(t)
	// Guardados UNSET pero con el periodo vigente pagado: al recalcular son ACTIVE.
	for i, name := range []string{"Alfa", "Beta", "Gamma"} {
		id := fmt.Sprintf("c%d", i+1)
		h.seedCustomer(t, id, name, false, entity.OperationalUnset)
		h.seedAgreement(t, id, 1)
		h.seedPeriod(t, id, "p-"+id, "2026-03-01", "2026-03-31", entity.PeriodActive)
		h.link("pay-"+id, "p-"+id)
	}
	h.seedCustomer(t, "c4", "Delta", false, entity.OperationalActive)
	h.seedAgreement(t, "c4", 1)
	h.seedPeriod(t, "c4", "p-c4", "2026-01-01", "2026-01-31", entity.PeriodActive)

	active := string(entity.OperationalActive)
	first, err := h.customers.List(h.ctx, dto.CustomerListQuery{OperationalStatus: active, PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Alfa", first[0].CommercialName)
	assert.Equal(t, "Beta", first[1].CommercialName)

	rest, err := h.customers.List(h.ctx, dto.CustomerListQuery{OperationalStatus: active, PageRequest: dto.PageRequest{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Gamma", rest[0].CommercialName)

	assert.Equal(t, entity.OperationalActive, h.storedCustomer(t, "c1").OperationalStatus)
	assert.NotEqual(t, entity.OperationalActive, h.storedCustomer(t, "c4").OperationalStatus)
}

func TestCustomerUpdate_BloqueoManualYLiberacion(t *testing.T) {
	h := newHarness(t)
	setupPaidPeriod(t, h, "c1", "p1")

	out, err := h.customers.Update(h.ctx, "c1", dto.UpdateCustomerRequest{OperationalStatus: strPtr(string(entity.OperationalSuspended))})
	require.NoError(t, err)
	assert.Equal(t, string(entity.OperationalSuspended), out.OperationalStatus)

	// Un pago posterior no levanta la suspensión.
	_, err = h.payments.Create(h.ctx, dto.CreatePaymentRequest{CustomerID: "c1", Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	assert.Equal(t, entity.OperationalSuspended, h.storedCustomer(t, "c1").OperationalStatus)

	out, err = h.customers.Update(h.ctx, "c1", dto.UpdateCustomerRequest{OperationalStatus: strPtr(string(entity.OperationalUnset))})
	require.NoError(t, err)
	assert.Equal(t, string(entity.OperationalActive), out.OperationalStatus)

	_, err = h.customers.Update(h.ctx, "c1", dto.UpdateCustomerRequest{CommercialName: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCustomerDelete_SoftDelete(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)

	require.NoError(t, h.customers.Delete(h.ctx, "c1"))
	assert.True(t, h.storedCustomer(t, "c1").IsDeleted)

	assert.ErrorIs(t, h.customers.Delete(h.ctx, "c1"), domain.ErrNotFound)
	_, err := h.customers.Status(h.ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Convenios
// ──────────────────────────────────────────────────────────────────────────────

func TestAgreementCreate_DesactivaElAnterior(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)

	req := dto.CreateAgreementRequest{
		CustomerID:     "c1",
		SubtotalAmount: decimal.NewFromInt(1000),
		BillingCycle:   string(entity.CycleMonthly),
		RenewalDay:     1,
	}
	first, err := h.agreements.Create(h.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "MXN", first.Currency)

	req.SubtotalAmount = decimal.NewFromInt(1200)
	second, err := h.agreements.Create(h.ctx, req)
	require.NoError(t, err)

	list, err := h.agreements.ListByCustomer(h.ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	active := 0
	for _, a := range list {
		if a.IsActive {
			active++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, active, "sólo un convenio activo por cliente")

	_, err = h.agreements.Deactivate(h.ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	out, err := h.agreements.Deactivate(h.ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	require.NotNil(t, out.EndDate)
	assert.Equal(t, "2026-03-15", *out.EndDate)
}

func TestAgreementCreate_Validaciones(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalUnset)

	base := dto.CreateAgreementRequest{CustomerID: "c1", SubtotalAmount: decimal.NewFromInt(1000), BillingCycle: "MONTHLY", RenewalDay: 1}

	bad := base
	bad.BillingCycle = "WEEKLY"
	_, err := h.agreements.Create(h.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad = base
	bad.RenewalDay = 32
	_, err = h.agreements.Create(h.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad = base
	bad.SubtotalAmount = decimal.Zero
	_, err = h.agreements.Create(h.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad = base
	bad.CustomerID = "zz"
	_, err = h.agreements.Create(h.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
