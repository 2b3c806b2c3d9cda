package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

func TestNextLifecycle_Transiciones(t *testing.T) {
	today := date("2024-01-15")
	w := status.DefaultExpiringWindowDays

	cases := []struct {
		name string
		p    entity.ServicePeriod
		want entity.PeriodStatus
	}{
		{"active vence en 3 días", period("a", "2023-12-20", "2024-01-18", entity.PeriodActive), entity.PeriodExpiring},
		{"expiring venció ayer", period("b", "2023-12-15", "2024-01-14", entity.PeriodExpiring), entity.PeriodExpired},
		{"active venció ayer", period("c", "2023-12-15", "2024-01-14", entity.PeriodActive), entity.PeriodExpired},
		{"active vence en 7 días", period("d", "2024-01-01", "2024-01-22", entity.PeriodActive), entity.PeriodExpiring},
		{"active vence en 8 días", period("e", "2024-01-01", "2024-01-23", entity.PeriodActive), entity.PeriodActive},
		{"active vence hoy", period("f", "2024-01-01", "2024-01-15", entity.PeriodActive), entity.PeriodExpiring},
		{"expired nunca se revierte", period("g", "2024-01-01", "2024-03-01", entity.PeriodExpired), entity.PeriodExpired},
		{"expiring sigue vigente", period("h", "2024-01-01", "2024-01-20", entity.PeriodExpiring), entity.PeriodExpiring},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, status.NextLifecycle(tc.p, today, w))
		})
	}
}

func TestApplyLifecycle_Idempotente(t *testing.T) {
	today := date("2024-01-15")
	w := status.DefaultExpiringWindowDays
	periods := []entity.ServicePeriod{
		period("a", "2023-12-20", "2024-01-18", entity.PeriodActive),
		period("b", "2023-12-15", "2024-01-14", entity.PeriodExpiring),
		period("c", "2024-01-16", "2024-02-15", entity.PeriodActive),
	}

	first := status.ApplyLifecycle(periods, today, w)
	assert.Len(t, first, 2)
	snapshot := append([]entity.ServicePeriod(nil), periods...)

	second := status.ApplyLifecycle(periods, today, w)
	assert.Empty(t, second)
	assert.Equal(t, snapshot, periods)
}

func TestInitialLifecycle(t *testing.T) {
	today := date("2024-01-15")
	w := status.DefaultExpiringWindowDays
	assert.Equal(t, entity.PeriodExpired, status.InitialLifecycle(date("2023-12-01"), date("2023-12-31"), today, w))
	assert.Equal(t, entity.PeriodExpiring, status.InitialLifecycle(date("2024-01-01"), date("2024-01-20"), today, w))
	assert.Equal(t, entity.PeriodActive, status.InitialLifecycle(date("2024-01-01"), date("2024-01-31"), today, w))
}
