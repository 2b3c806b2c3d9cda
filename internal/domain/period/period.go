// Package period reúne el cálculo de fechas de periodos de servicio: duración por
// ciclo, ajuste al día de renovación del convenio, renovaciones y el calendario de
// periodos que cubre un pago.
package period

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// Span intervalo [Start, End] a nivel día.
type Span struct {
	Start time.Time
	End   time.Time
}

// CycleMonths meses por ciclo. CUSTOM usa un mes; el operador ajusta las fechas a mano.
func CycleMonths(c entity.BillingCycle) int {
	switch c {
	case entity.CycleQuarterly:
		return 3
	case entity.CycleSemiAnnual:
		return 6
	default:
		return 1
	}
}

// AddMonths suma n meses a t recortando al último día del mes destino (31 ene + 1 = 29 feb).
func AddMonths(t time.Time, n int) time.Time {
	t = status.Day(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return time.Date(first.Year(), first.Month(), clampDay(first, t.Day()), 0, 0, 0, 0, time.UTC)
}

// EndFromFrequency fin de un periodo que inicia en start con la frecuencia dada.
func EndFromFrequency(start time.Time, c entity.BillingCycle) time.Time {
	return AddMonths(start, CycleMonths(c))
}

// AdjustToRenewalDay mueve end al día de renovación dentro de su mes. Si eso no deja
// al periodo después de start, se pasa al mes siguiente. renewalDay fuera de 1..31 no ajusta.
func AdjustToRenewalDay(start, end time.Time, renewalDay int) time.Time {
	if renewalDay < 1 || renewalDay > 31 {
		return status.Day(end)
	}
	end = status.Day(end)
	adjusted := time.Date(end.Year(), end.Month(), clampDay(end, renewalDay), 0, 0, 0, 0, time.UTC)
	if !adjusted.After(status.Day(start)) {
		next := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		adjusted = time.Date(next.Year(), next.Month(), clampDay(next, renewalDay), 0, 0, 0, 0, time.UTC)
	}
	return adjusted
}

// RenewalDates periodo siguiente: inicia el día después de end con la misma duración.
func RenewalDates(start, end time.Time) Span {
	days := status.DaysBetween(start, end)
	newStart := status.AddDays(end, 1)
	return Span{Start: newStart, End: status.AddDays(newStart, days)}
}

// maxCount satura CoverageCount antes de convertir a int.
var maxCount = decimal.NewFromInt(math.MaxInt32)

// CoverageCount cuántos periodos completos paga amount a razón de subtotal cada uno.
// Satura en math.MaxInt32; quien genere el calendario debe aplicar su propio tope.
func CoverageCount(amount, subtotal decimal.Decimal) int {
	if !subtotal.IsPositive() || !amount.IsPositive() {
		return 0
	}
	q := amount.Div(subtotal).Floor()
	if q.GreaterThan(maxCount) {
		return math.MaxInt32
	}
	return int(q.IntPart())
}

// NextStart inicio del siguiente periodo: el día después del último fin o, sin periodos, fallback.
func NextStart(periods []entity.ServicePeriod, fallback time.Time) time.Time {
	var last *time.Time
	for i := range periods {
		end := status.Day(periods[i].EndDate)
		if last == nil || end.After(*last) {
			last = &end
		}
	}
	if last == nil {
		return status.Day(fallback)
	}
	return status.AddDays(*last, 1)
}

// CoverageSchedule genera count periodos consecutivos desde from según el ciclo y el
// día de renovación del convenio.
func CoverageSchedule(from time.Time, count int, agreement entity.CommercialAgreement) []Span {
	if count <= 0 {
		return nil
	}
	spans := make([]Span, 0, min(count, 64))
	start := status.Day(from)
	for i := 0; i < count; i++ {
		end := EndFromFrequency(start, agreement.BillingCycle)
		if agreement.RenewalDay > 0 {
			end = AdjustToRenewalDay(start, end, agreement.RenewalDay)
		}
		spans = append(spans, Span{Start: start, End: end})
		start = status.AddDays(end, 1)
	}
	return spans
}

// ValidRange indica que end no es anterior a start.
func ValidRange(start, end time.Time) bool {
	return !status.Day(end).Before(status.Day(start))
}

func clampDay(monthRef time.Time, day int) int {
	last := time.Date(monthRef.Year(), monthRef.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
