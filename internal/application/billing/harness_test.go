package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/pkg/clock"
	"github.com/jhoicas/Cobranza-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// Todas las pruebas corren con "hoy" = 2026-03-15 (10:00 UTC).
var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// recMetrics registra lo observado por el motor.
type recMetrics struct {
	mu          sync.Mutex
	transitions map[entity.PeriodStatus]int64
	drifts      [][2]entity.OperationalStatus
	payments    []string
}

func newRecMetrics() *recMetrics {
	return &recMetrics{transitions: map[entity.PeriodStatus]int64{}}
}

func (m *recMetrics) LifecycleTransitions(to entity.PeriodStatus, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[to] += n
}

func (m *recMetrics) StatusDrift(from, to entity.OperationalStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drifts = append(m.drifts, [2]entity.OperationalStatus{from, to})
}

func (m *recMetrics) PaymentRecorded(mode string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, mode)
}

type harness struct {
	ctx        context.Context
	store      *memStore
	clock      *clock.Fake
	metrics    *recMetrics
	status     *billing.StatusService
	customers  *billing.CustomerUseCase
	agreements *billing.AgreementUseCase
	periods    *billing.PeriodUseCase
	payments   *billing.PaymentUseCase
	invoices   *billing.InvoiceUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newMemStore()
	clk := clock.NewFake(testNow)
	metrics := newRecMetrics()
	repos := store.repos()
	svc := billing.NewStatusService(store, repos, clk, billing.DefaultSettings(), logger.Nop()).WithMetrics(metrics)
	return &harness{
		ctx:        context.Background(),
		store:      store,
		clock:      clk,
		metrics:    metrics,
		status:     svc,
		customers:  billing.NewCustomerUseCase(repos, store, svc),
		agreements: billing.NewAgreementUseCase(repos, store, svc),
		periods:    billing.NewPeriodUseCase(repos, store, svc),
		payments:   billing.NewPaymentUseCase(repos, store, svc, logger.Nop()).WithMetrics(metrics),
		invoices:   billing.NewInvoiceUseCase(repos, store, svc, nil, nil),
	}
}

func (h *harness) seedCustomer(t *testing.T, id, name string, invoiceRequired bool, op entity.OperationalStatus) {
	t.Helper()
	require.NoError(t, h.store.repos().Customers.Create(h.ctx, &entity.Customer{
		ID:                 id,
		CommercialName:     name,
		InvoiceRequired:    invoiceRequired,
		OperationalStatus:  op,
		RelationshipStatus: entity.RelationshipActive,
	}))
}

// seedAgreement convenio mensual de 1000 MXN con renovación el día renewalDay.
func (h *harness) seedAgreement(t *testing.T, customerID string, renewalDay int) {
	t.Helper()
	require.NoError(t, h.store.repos().Agreements.Create(h.ctx, &entity.CommercialAgreement{
		ID:              "ag-" + customerID,
		CustomerID:      customerID,
		SubtotalAmount:  decimal.NewFromInt(1000),
		Currency:        "MXN",
		BillingCycle:    entity.CycleMonthly,
		RenewalDay:      renewalDay,
		GracePeriodDays: 5,
		IsActive:        true,
		StartDate:       day("2026-01-01"),
	}))
}

func (h *harness) seedPeriod(t *testing.T, customerID, id, start, end string, st entity.PeriodStatus) {
	t.Helper()
	require.NoError(t, h.store.repos().Periods.Create(h.ctx, &entity.ServicePeriod{
		ID:             id,
		CustomerID:     customerID,
		StartDate:      day(start),
		EndDate:        day(end),
		SubtotalAmount: decimal.NewFromInt(1000),
		Currency:       "MXN",
		Origin:         entity.OriginManualExtension,
		Status:         st,
		BillingStatus:  entity.BillingPending,
	}))
}

func (h *harness) link(paymentID, periodID string) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.links = append(h.store.links, entity.PaymentPeriod{PaymentID: paymentID, PeriodID: periodID})
}

func (h *harness) storedCustomer(t *testing.T, id string) entity.Customer {
	t.Helper()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	c, ok := h.store.customers[id]
	require.True(t, ok)
	return c
}

func (h *harness) invoiceForPeriod(t *testing.T, periodID string) *entity.Invoice {
	t.Helper()
	inv, err := h.store.repos().Invoices.GetByPeriod(h.ctx, periodID)
	require.NoError(t, err)
	return inv
}
