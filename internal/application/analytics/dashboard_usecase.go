// Package analytics contiene los casos de uso del tablero de cobranza.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
	"github.com/jhoicas/Cobranza-api/pkg/clock"
)

// LifecycleUpdater ejecuta el actualizador de ciclo de vida de periodos (customerID vacío = todos).
type LifecycleUpdater interface {
	UpdatePeriodStatuses(ctx context.Context, customerID string) (repository.LifecycleResult, error)
}

// DashboardUseCase genera los contadores del tablero.
//
// Fuente de datos: AnalyticsRepository (consultas read-only). Antes de contar
// ejecuta el actualizador global para que los estados de periodo estén al día.
type DashboardUseCase struct {
	lifecycle     LifecycleUpdater
	analyticsRepo repository.AnalyticsRepository
	clock         clock.Clock
	loc           *time.Location
	window        int
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(lifecycle LifecycleUpdater, analyticsRepo repository.AnalyticsRepository, clk clock.Clock, loc *time.Location, window int) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{lifecycle: lifecycle, analyticsRepo: analyticsRepo, clock: clk, loc: loc, window: window}
}

// GetStats construye el DashboardStatsDTO.
//
// Seis conteos en paralelo tras el actualizador:
//  1. CountExpired / CountExpiring (ventana de vencimiento)
//  2. CountSuspended / CountPendingInvoices
//  3. CountRenewalsBetween(hoy) y CountRenewalsBetween(semana domingo-sábado)
func (uc *DashboardUseCase) GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	if _, err := uc.lifecycle.UpdatePeriodStatuses(ctx, ""); err != nil {
		return nil, fmt.Errorf("dashboard: actualizar periodos: %w", err)
	}

	today := status.Today(uc.clock.Now(), uc.loc)
	weekStart := status.AddDays(today, -int(today.Weekday()))
	weekEnd := status.AddDays(weekStart, 6)
	todayFrom, todayTo := renewalDays(today, today)
	weekFrom, weekTo := renewalDays(weekStart, weekEnd)

	// ── Goroutines para paralelizar las consultas DB ──────────────────────────
	type countResult struct {
		n   int
		err error
	}
	run := func(fn func() (int, error)) <-chan countResult {
		ch := make(chan countResult, 1)
		go func() {
			n, err := fn()
			ch <- countResult{n, err}
		}()
		return ch
	}

	expiredCh := run(func() (int, error) { return uc.analyticsRepo.CountExpired(ctx, today) })
	expiringCh := run(func() (int, error) { return uc.analyticsRepo.CountExpiring(ctx, today, uc.window) })
	suspendedCh := run(func() (int, error) { return uc.analyticsRepo.CountSuspended(ctx) })
	pendingCh := run(func() (int, error) { return uc.analyticsRepo.CountPendingInvoices(ctx) })
	todayCh := run(func() (int, error) { return uc.analyticsRepo.CountRenewalsBetween(ctx, todayFrom, todayTo) })
	weekCh := run(func() (int, error) { return uc.analyticsRepo.CountRenewalsBetween(ctx, weekFrom, weekTo) })

	expired := <-expiredCh
	expiring := <-expiringCh
	suspended := <-suspendedCh
	pending := <-pendingCh
	renewToday := <-todayCh
	renewWeek := <-weekCh

	for _, r := range []struct {
		label string
		res   countResult
	}{
		{"vencidos", expired},
		{"por vencer", expiring},
		{"suspendidos", suspended},
		{"facturas pendientes", pending},
		{"renovaciones de hoy", renewToday},
		{"renovaciones de la semana", renewWeek},
	} {
		if r.res.err != nil {
			return nil, fmt.Errorf("dashboard: %s: %w", r.label, r.res.err)
		}
	}

	return &dto.DashboardStatsDTO{
		ExpiredCount:             expired.n,
		ExpiringCount:            expiring.n,
		SuspendedCount:           suspended.n,
		PendingInvoicesCount:     pending.n,
		PaymentsExpectedToday:    renewToday.n,
		PaymentsExpectedThisWeek: renewWeek.n,
		DateLabel:                monthLabel(today),
	}, nil
}

// renewalDays rango de días de renovación [from, to] entre dos fechas. Si to es el
// último día de su mes, el rango llega a 31 para incluir días que ese mes no tiene.
// from > to indica que el rango cruza fin de mes.
func renewalDays(from, to time.Time) (int, int) {
	toDay := to.Day()
	if status.AddDays(to, 1).Day() == 1 {
		toDay = 31
	}
	return from.Day(), toDay
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
