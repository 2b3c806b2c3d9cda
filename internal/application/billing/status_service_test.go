package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

func TestRefresh_PersisteDerivaYExpiraPeriodos(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalActive)
	h.seedAgreement(t, "c1", 1)
	h.seedPeriod(t, "c1", "p1", "2026-02-01", "2026-02-28", entity.PeriodActive)

	snap, err := h.status.Refresh(h.ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, status.FinancialOverdue, snap.Financial)
	assert.Equal(t, entity.OperationalPendingRenewal, snap.Operational)
	require.NotNil(t, snap.DaysOverdue)
	assert.Equal(t, 15, *snap.DaysOverdue)

	assert.Equal(t, entity.OperationalPendingRenewal, h.storedCustomer(t, "c1").OperationalStatus)
	assert.Equal(t, entity.PeriodExpired, h.store.periods["p1"].Status)
	assert.Equal(t, int64(1), h.metrics.transitions[entity.PeriodExpired])
	require.Len(t, h.metrics.drifts, 1)
	assert.Equal(t, [2]entity.OperationalStatus{entity.OperationalActive, entity.OperationalPendingRenewal}, h.metrics.drifts[0])
	assert.Equal(t, []string{"c1"}, h.store.locked, "Refresh debe tomar el lock del cliente")
}

func TestRefresh_SinDerivaNoEscribe(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalActive)
	h.seedAgreement(t, "c1", 1)
	h.seedPeriod(t, "c1", "p1", "2026-03-01", "2026-03-31", entity.PeriodActive)
	h.link("pay-1", "p1")

	snap, err := h.status.Refresh(h.ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, entity.OperationalActive, snap.Operational)
	assert.Equal(t, status.FinancialPaid, snap.Financial)
	assert.Empty(t, h.metrics.drifts)
}

func TestRefresh_EstadoManualBloqueado(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalSuspended)
	h.seedAgreement(t, "c1", 1)
	h.seedPeriod(t, "c1", "p1", "2026-03-01", "2026-03-31", entity.PeriodActive)
	h.link("pay-1", "p1")

	snap, err := h.status.Refresh(h.ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, entity.OperationalSuspended, snap.Operational)
	assert.Equal(t, entity.OperationalSuspended, h.storedCustomer(t, "c1").OperationalStatus)
	assert.Empty(t, h.metrics.drifts)
}

func TestRefresh_ClienteInexistente(t *testing.T) {
	h := newHarness(t)
	_, err := h.status.Refresh(h.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCalculateOperational_NoPersiste(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalActive)
	h.seedAgreement(t, "c1", 1)
	h.seedPeriod(t, "c1", "p1", "2026-03-01", "2026-03-31", entity.PeriodActive)

	op, err := h.status.CalculateOperational(h.ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entity.OperationalActiveWithPendingPayment, op)
	assert.Equal(t, entity.OperationalActive, h.storedCustomer(t, "c1").OperationalStatus)
}

func TestRefreshAll_CuentaDerivas(t *testing.T) {
	h := newHarness(t)
	h.seedCustomer(t, "c1", "Acme", false, entity.OperationalActive)
	h.seedAgreement(t, "c1", 1)
	h.seedPeriod(t, "c1", "p1", "2026-02-01", "2026-02-28", entity.PeriodActive)
	h.seedCustomer(t, "c2", "Beta", false, entity.OperationalActive)
	h.seedAgreement(t, "c2", 1)
	h.seedPeriod(t, "c2", "p2", "2026-03-01", "2026-03-20", entity.PeriodActive)
	h.link("pay-2", "p2")

	res, err := h.status.RefreshAll(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Expired)
	assert.Equal(t, int64(1), res.Expiring)
	assert.Equal(t, 2, res.Customers)
	assert.Equal(t, 1, res.Drifted)
	assert.Equal(t, entity.PeriodExpiring, h.store.periods["p2"].Status)
}

func TestCollections_OrdenPorDiasVencidos(t *testing.T) {
	h := newHarness(t)

	h.seedCustomer(t, "a", "Alfa", false, entity.OperationalUnset)
	h.seedAgreement(t, "a", 1)
	h.seedPeriod(t, "a", "pa", "2026-02-01", "2026-03-05", entity.PeriodActive) // 10 días

	h.seedCustomer(t, "b", "Beta", false, entity.OperationalUnset)
	h.seedAgreement(t, "b", 1)
	h.seedPeriod(t, "b", "pb", "2026-02-12", "2026-03-12", entity.PeriodActive) // 3 días

	h.seedCustomer(t, "g", "Gamma", false, entity.OperationalUnset)
	h.seedAgreement(t, "g", 1)
	h.seedPeriod(t, "g", "pg", "2026-03-01", "2026-04-30", entity.PeriodActive)
	h.link("pay-g", "pg")

	h.seedCustomer(t, "d", "Delta", false, entity.OperationalUnset)

	items, err := h.status.Collections(h.ctx)
	require.NoError(t, err)

	require.Len(t, items, 3, "Gamma está al corriente y no debe aparecer")
	assert.Equal(t, "Alfa", items[0].CommercialName)
	require.NotNil(t, items[0].Status.DaysOverdue)
	assert.Equal(t, 10, *items[0].Status.DaysOverdue)
	assert.Equal(t, "Beta", items[1].CommercialName)
	assert.Equal(t, "Delta", items[2].CommercialName)
	assert.Nil(t, items[2].Status.DaysOverdue)
	assert.Equal(t, string(status.FinancialNoActiveAgreement), items[2].Status.FinancialStatus)
}
