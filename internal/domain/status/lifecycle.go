package status

import (
	"time"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// DefaultExpiringWindowDays días antes del fin en que un periodo ACTIVE pasa a EXPIRING.
const DefaultExpiringWindowDays = 7

// NextLifecycle devuelve el estado que el actualizador asigna a p hoy.
// ACTIVE|EXPIRING con fin anterior a hoy pasa a EXPIRED; ACTIVE con fin dentro de
// [hoy, hoy+window] pasa a EXPIRING. EXPIRED nunca se revierte aquí.
func NextLifecycle(p entity.ServicePeriod, today time.Time, window int) entity.PeriodStatus {
	today = Day(today)
	end := Day(p.EndDate)
	switch p.Status {
	case entity.PeriodActive:
		if end.Before(today) {
			return entity.PeriodExpired
		}
		if !end.After(AddDays(today, window)) {
			return entity.PeriodExpiring
		}
	case entity.PeriodExpiring:
		if end.Before(today) {
			return entity.PeriodExpired
		}
	}
	return p.Status
}

// InitialLifecycle estado de un periodo recién creado o extendido. Coincide con lo
// que el actualizador produciría partiendo de ACTIVE, así que crear y actualizar
// inmediatamente es un no-op.
func InitialLifecycle(start, end, today time.Time, window int) entity.PeriodStatus {
	return NextLifecycle(entity.ServicePeriod{StartDate: start, EndDate: end, Status: entity.PeriodActive}, today, window)
}

// Transition cambio de estado aplicado a un periodo.
type Transition struct {
	PeriodID string
	From     entity.PeriodStatus
	To       entity.PeriodStatus
}

// ApplyLifecycle aplica NextLifecycle a cada periodo en sitio y devuelve los cambios.
func ApplyLifecycle(periods []entity.ServicePeriod, today time.Time, window int) []Transition {
	var out []Transition
	for i := range periods {
		next := NextLifecycle(periods[i], today, window)
		if next != periods[i].Status {
			out = append(out, Transition{PeriodID: periods[i].ID, From: periods[i].Status, To: next})
			periods[i].Status = next
		}
	}
	return out
}
