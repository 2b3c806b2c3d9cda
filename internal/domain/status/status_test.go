package status_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func period(id, start, end string, st entity.PeriodStatus) entity.ServicePeriod {
	return entity.ServicePeriod{ID: id, StartDate: date(start), EndDate: date(end), Status: st}
}

func activeAgreement() *entity.CommercialAgreement {
	return &entity.CommercialAgreement{
		ID:              "ag-1",
		SubtotalAmount:  decimal.NewFromInt(1000),
		Currency:        "MXN",
		BillingCycle:    entity.CycleMonthly,
		RenewalDay:      1,
		GracePeriodDays: 5,
		IsActive:        true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Día calendario
// ──────────────────────────────────────────────────────────────────────────────

func TestToday_UsaZonaDelNegocio(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	// 03:00 UTC del 16 sigue siendo el 15 en Ciudad de México.
	now := time.Date(2024, 1, 16, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, date("2024-01-15"), status.Today(now, loc))
	assert.Equal(t, date("2024-01-16"), status.Today(now, nil))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 16, status.DaysBetween(date("2024-01-15"), date("2024-01-31")))
	assert.Equal(t, -1, status.DaysBetween(date("2024-01-15"), date("2024-01-14")))
	assert.Equal(t, 0, status.DaysBetween(date("2024-01-15"), date("2024-01-15").Add(23*time.Hour)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado financiero
// ──────────────────────────────────────────────────────────────────────────────

func TestFinancial_SinConvenioDomina(t *testing.T) {
	today := date("2024-01-15")
	periods := []entity.ServicePeriod{period("p1", "2024-01-01", "2024-03-31", entity.PeriodActive)}

	assert.Equal(t, status.FinancialNoActiveAgreement, status.Financial(periods, nil, today))

	inactive := activeAgreement()
	inactive.IsActive = false
	assert.Equal(t, status.FinancialNoActiveAgreement, status.Financial(periods, inactive, today))
	assert.Equal(t, status.FinancialNoActiveAgreement, status.Financial(nil, inactive, today))
}

func TestFinancial_FronteraDeSieteDias(t *testing.T) {
	today := date("2024-01-15")
	ag := activeAgreement()

	cases := []struct {
		name string
		end  string
		want status.FinancialStatus
	}{
		{"vence en 7 días", "2024-01-22", status.FinancialPending},
		{"vence en 8 días", "2024-01-23", status.FinancialPaid},
		{"vence hoy", "2024-01-15", status.FinancialPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			periods := []entity.ServicePeriod{period("p1", "2024-01-01", tc.end, entity.PeriodActive)}
			assert.Equal(t, tc.want, status.Financial(periods, ag, today))
		})
	}
}

func TestFinancial_VencidoAyerEsOverdue(t *testing.T) {
	periods := []entity.ServicePeriod{period("p1", "2023-12-15", "2024-01-14", entity.PeriodExpiring)}
	assert.Equal(t, status.FinancialOverdue, status.Financial(periods, activeAgreement(), date("2024-01-15")))
}

func TestFinancial_SinPeriodoVigenteEsOverdue(t *testing.T) {
	today := date("2024-01-15")
	// Un periodo EXPIRED que contiene hoy no cuenta como vigente.
	periods := []entity.ServicePeriod{period("p1", "2024-01-01", "2024-01-31", entity.PeriodExpired)}
	assert.Equal(t, status.FinancialOverdue, status.Financial(periods, activeAgreement(), today))
	assert.Equal(t, status.FinancialOverdue, status.Financial(nil, activeAgreement(), today))
}

func TestFinancial_PeriodoFuturoAdelantaAlCliente(t *testing.T) {
	periods := []entity.ServicePeriod{
		period("p1", "2024-01-01", "2024-01-17", entity.PeriodExpiring),
		period("p2", "2024-01-18", "2024-02-17", entity.PeriodActive),
	}
	assert.Equal(t, status.FinancialPaid, status.Financial(periods, activeAgreement(), date("2024-01-15")))

	// Un futuro EXPIRED no adelanta.
	periods[1].Status = entity.PeriodExpired
	assert.Equal(t, status.FinancialPending, status.Financial(periods, activeAgreement(), date("2024-01-15")))
}

func TestCurrentPeriod_DesempateInicioMasReciente(t *testing.T) {
	periods := []entity.ServicePeriod{
		period("viejo", "2024-01-01", "2024-01-20", entity.PeriodActive),
		period("nuevo", "2024-01-10", "2024-02-09", entity.PeriodActive),
	}
	cur := status.CurrentPeriod(periods, date("2024-01-15"))
	require.NotNil(t, cur)
	assert.Equal(t, "nuevo", cur.ID)
	// El vigente "nuevo" vence en 25 días.
	assert.Equal(t, status.FinancialPaid, status.Financial(periods, activeAgreement(), date("2024-01-15")))
}

func TestCurrentPeriod_ExtremosInclusivos(t *testing.T) {
	periods := []entity.ServicePeriod{period("p1", "2024-01-01", "2024-01-31", entity.PeriodActive)}
	assert.NotNil(t, status.CurrentPeriod(periods, date("2024-01-01")))
	assert.NotNil(t, status.CurrentPeriod(periods, date("2024-01-31").Add(23*time.Hour+59*time.Minute)))
	assert.Nil(t, status.CurrentPeriod(periods, date("2024-02-01")))
	assert.Nil(t, status.CurrentPeriod(periods, date("2023-12-31")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado operativo
// ──────────────────────────────────────────────────────────────────────────────

func TestOperational_BloqueoManual(t *testing.T) {
	today := date("2024-01-15")
	inputs := [][]entity.ServicePeriod{
		nil,
		{period("p1", "2024-01-01", "2024-01-31", entity.PeriodActive)},
		{period("p1", "2023-11-01", "2023-11-30", entity.PeriodExpired)},
	}
	for _, locked := range []entity.OperationalStatus{entity.OperationalSuspended, entity.OperationalLost} {
		for _, periods := range inputs {
			assert.Equal(t, locked, status.Operational(locked, periods, status.NewPaidSet("p1"), today))
			assert.Equal(t, locked, status.OperationalByGrace(locked, periods, activeAgreement(), today))
		}
	}
}

func TestLink_IgnoraPeriodosFuturos(t *testing.T) {
	today := date("2024-01-15")
	periods := []entity.ServicePeriod{
		period("p0", "2023-12-01", "2023-12-31", entity.PeriodExpired),
		period("p1", "2024-01-15", "2024-02-14", entity.PeriodActive), // inicia hoy: cuenta
		period("p2", "2024-02-15", "2024-03-14", entity.PeriodActive),
	}

	l := status.Link(periods, status.NewPaidSet("p0"), today)
	require.Len(t, l.Started, 2)
	require.Len(t, l.Unpaid, 1)
	assert.Equal(t, "p1", l.Unpaid[0].ID)
	assert.False(t, l.FullyPaid())

	assert.True(t, status.Link(periods, status.NewPaidSet("p0", "p1"), today).FullyPaid())
	assert.False(t, status.Link(nil, status.NewPaidSet(), today).FullyPaid())
}

func TestOperational_CoberturaTotalEsActive(t *testing.T) {
	today := date("2024-01-15")
	periods := []entity.ServicePeriod{
		period("p0", "2023-12-01", "2023-12-31", entity.PeriodExpired),
		period("p1", "2024-01-01", "2024-01-31", entity.PeriodActive),
		period("p2", "2024-02-01", "2024-02-29", entity.PeriodActive), // futuro, no exigido
	}
	got := status.Operational(entity.OperationalUnset, periods, status.NewPaidSet("p0", "p1"), today)
	assert.Equal(t, entity.OperationalActive, got)
}

func TestOperational_CoberturaParcialQuedaPendiente(t *testing.T) {
	today := date("2024-01-15")
	periods := []entity.ServicePeriod{
		period("p0", "2023-12-01", "2023-12-31", entity.PeriodExpired),
		period("p1", "2024-01-01", "2024-01-31", entity.PeriodActive),
	}
	got := status.Operational(entity.OperationalActive, periods, status.NewPaidSet("p1"), today)
	assert.Equal(t, entity.OperationalActiveWithPendingPayment, got)
}

func TestOperational_SinPeriodos(t *testing.T) {
	got := status.Operational(entity.OperationalUnset, nil, status.NewPaidSet(), date("2024-01-15"))
	assert.Equal(t, entity.OperationalActiveWithPendingPayment, got)
}

func TestOperational_SinVigenteYVencidoEsPendingRenewal(t *testing.T) {
	periods := []entity.ServicePeriod{period("p1", "2023-12-01", "2023-12-31", entity.PeriodExpired)}
	got := status.Operational(entity.OperationalActive, periods, status.NewPaidSet("p1"), date("2024-01-15"))
	assert.Equal(t, entity.OperationalPendingRenewal, got)
}

func TestOperational_SoloFuturos(t *testing.T) {
	periods := []entity.ServicePeriod{period("p1", "2024-02-01", "2024-02-29", entity.PeriodActive)}
	got := status.Operational(entity.OperationalUnset, periods, status.NewPaidSet("p1"), date("2024-01-15"))
	assert.Equal(t, entity.OperationalActiveWithPendingPayment, got)
}

func TestOperationalByGrace(t *testing.T) {
	ag := activeAgreement() // 5 días de gracia
	periods := []entity.ServicePeriod{period("p1", "2023-12-01", "2023-12-31", entity.PeriodExpired)}

	assert.Equal(t, entity.OperationalActiveWithPendingPayment,
		status.OperationalByGrace(entity.OperationalUnset, periods, ag, date("2024-01-05")))
	assert.Equal(t, entity.OperationalPendingRenewal,
		status.OperationalByGrace(entity.OperationalUnset, periods, ag, date("2024-01-06")))

	current := []entity.ServicePeriod{period("p2", "2024-01-01", "2024-01-31", entity.PeriodActive)}
	assert.Equal(t, entity.OperationalActive,
		status.OperationalByGrace(entity.OperationalUnset, current, ag, date("2024-01-15")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Días vencidos y próximo pago
// ──────────────────────────────────────────────────────────────────────────────

func TestDaysOverdue(t *testing.T) {
	today := date("2024-01-15")
	ag := activeAgreement()
	periods := []entity.ServicePeriod{
		period("p0", "2023-11-01", "2023-11-30", entity.PeriodExpired),
		period("p1", "2023-12-01", "2023-12-31", entity.PeriodExpired),
	}

	got := status.DaysOverdue(periods, ag, today)
	require.NotNil(t, got)
	assert.Equal(t, 15, *got)

	assert.Nil(t, status.DaysOverdue(periods, nil, today))
	assert.Nil(t, status.DaysOverdue(nil, ag, today))

	withCurrent := append(periods, period("p2", "2024-01-10", "2024-02-09", entity.PeriodActive))
	assert.Nil(t, status.DaysOverdue(withCurrent, ag, today))
}

func TestNextPaymentDue(t *testing.T) {
	today := date("2024-01-15")
	ag := activeAgreement()

	current := []entity.ServicePeriod{
		period("p1", "2024-01-01", "2024-01-31", entity.PeriodActive),
		period("p2", "2024-02-01", "2024-02-29", entity.PeriodActive),
	}
	got := status.NextPaymentDue(current, ag, today)
	require.NotNil(t, got)
	assert.Equal(t, date("2024-01-31"), *got)

	past := []entity.ServicePeriod{
		period("p0", "2023-11-01", "2023-11-30", entity.PeriodExpired),
		period("p1", "2023-12-01", "2023-12-31", entity.PeriodExpired),
	}
	got = status.NextPaymentDue(past, ag, today)
	require.NotNil(t, got)
	assert.Equal(t, date("2023-12-31"), *got)

	assert.Nil(t, status.NextPaymentDue(nil, ag, today))
	assert.Nil(t, status.NextPaymentDue(current, nil, today))
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo: los ejes financiero y operativo divergen a propósito
// ──────────────────────────────────────────────────────────────────────────────

func TestCompute_PeriodoSinPagoDivergeEntreEjes(t *testing.T) {
	snap := status.Compute(status.Input{
		Customer:  entity.Customer{ID: "c", OperationalStatus: entity.OperationalUnset},
		Periods:   []entity.ServicePeriod{period("p1", "2024-01-01", "2024-01-31", entity.PeriodActive)},
		Agreement: activeAgreement(),
		Paid:      status.NewPaidSet(),
		Today:     date("2024-01-15"),
	})

	assert.Equal(t, status.FinancialPaid, snap.Financial)
	assert.Equal(t, entity.OperationalActiveWithPendingPayment, snap.Operational)
	assert.Equal(t, entity.RelationshipActive, snap.Relationship)
	assert.Nil(t, snap.DaysOverdue)
	require.NotNil(t, snap.NextPaymentDue)
	assert.Equal(t, date("2024-01-31"), *snap.NextPaymentDue)
	assert.True(t, snap.Drift(entity.OperationalUnset))
}

func TestCompute_PoliticaGracia(t *testing.T) {
	snap := status.Compute(status.Input{
		Customer:  entity.Customer{ID: "c", OperationalStatus: entity.OperationalUnset},
		Periods:   []entity.ServicePeriod{period("p1", "2024-01-01", "2024-01-31", entity.PeriodActive)},
		Agreement: activeAgreement(),
		Paid:      status.NewPaidSet(),
		Today:     date("2024-01-15"),
		Policy:    status.PolicyGrace,
	})
	assert.Equal(t, entity.OperationalActive, snap.Operational)
}

func TestActiveAgreement(t *testing.T) {
	ags := []entity.CommercialAgreement{
		{ID: "old", IsActive: false, StartDate: date("2023-01-01")},
		{ID: "a", IsActive: true, StartDate: date("2023-06-01")},
		{ID: "b", IsActive: true, StartDate: date("2024-01-01")},
	}
	got := status.ActiveAgreement(ags)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
	assert.Nil(t, status.ActiveAgreement(ags[:1]))
}
