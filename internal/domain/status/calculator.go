package status

import (
	"time"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// FinancialStatus estado financiero derivado. No se persiste.
type FinancialStatus string

const (
	FinancialPaid              FinancialStatus = "PAID"
	FinancialPending           FinancialStatus = "PENDING"
	FinancialOverdue           FinancialStatus = "OVERDUE"
	FinancialNoActiveAgreement FinancialStatus = "NO_ACTIVE_AGREEMENT"
)

// PendingWindowDays umbral (inclusivo) de días para vencimiento en que el cliente queda PENDING.
const PendingWindowDays = 7

// PaidSet IDs de periodos con al menos una fila en payment_periods.
type PaidSet map[string]struct{}

// Has indica si el periodo tiene pago vinculado.
func (s PaidSet) Has(periodID string) bool {
	_, ok := s[periodID]
	return ok
}

// NewPaidSet construye un PaidSet a partir de IDs.
func NewPaidSet(ids ...string) PaidSet {
	s := make(PaidSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// ActiveAgreement devuelve el convenio activo (el de inicio más reciente si hubiera varios).
func ActiveAgreement(agreements []entity.CommercialAgreement) *entity.CommercialAgreement {
	var best *entity.CommercialAgreement
	for i := range agreements {
		a := &agreements[i]
		if !a.IsActive {
			continue
		}
		if best == nil || a.StartDate.After(best.StartDate) {
			best = a
		}
	}
	return best
}

func hasActiveAgreement(a *entity.CommercialAgreement) bool {
	return a != nil && a.IsActive
}

// CurrentPeriod periodo ACTIVE o EXPIRING cuyo intervalo contiene hoy.
// Con varios candidatos gana el de inicio más reciente.
func CurrentPeriod(periods []entity.ServicePeriod, today time.Time) *entity.ServicePeriod {
	today = Day(today)
	var cur *entity.ServicePeriod
	for i := range periods {
		p := &periods[i]
		if !p.Status.Live() || !contains(p.StartDate, p.EndDate, today) {
			continue
		}
		if cur == nil || Day(p.StartDate).After(Day(cur.StartDate)) {
			cur = p
		}
	}
	return cur
}

// Financial deriva PAID, PENDING, OVERDUE o NO_ACTIVE_AGREEMENT. Ignora los pagos.
func Financial(periods []entity.ServicePeriod, agreement *entity.CommercialAgreement, today time.Time) FinancialStatus {
	if !hasActiveAgreement(agreement) {
		return FinancialNoActiveAgreement
	}
	today = Day(today)
	cur := CurrentPeriod(periods, today)
	if cur == nil {
		return FinancialOverdue
	}

	curEnd := Day(cur.EndDate)
	for i := range periods {
		p := &periods[i]
		if p.Status.Live() && Day(p.StartDate).After(curEnd) {
			return FinancialPaid
		}
	}

	days := DaysBetween(today, curEnd)
	switch {
	case days < 0:
		return FinancialOverdue
	case days <= PendingWindowDays:
		return FinancialPending
	default:
		return FinancialPaid
	}
}

// StartedPeriods periodos con inicio <= hoy, sin importar su estado. Los futuros no se exigen pagados.
func StartedPeriods(periods []entity.ServicePeriod, today time.Time) []entity.ServicePeriod {
	today = Day(today)
	var out []entity.ServicePeriod
	for _, p := range periods {
		if !Day(p.StartDate).After(today) {
			out = append(out, p)
		}
	}
	return out
}

// Linkage resumen de pagos de los periodos iniciados.
type Linkage struct {
	Started []entity.ServicePeriod
	Unpaid  []entity.ServicePeriod
}

// FullyPaid indica que hay periodos iniciados y todos tienen pago.
func (l Linkage) FullyPaid() bool {
	return len(l.Started) > 0 && len(l.Unpaid) == 0
}

// Link cruza los periodos iniciados con el conjunto de pagados.
func Link(periods []entity.ServicePeriod, paid PaidSet, today time.Time) Linkage {
	l := Linkage{Started: StartedPeriods(periods, today)}
	for _, p := range l.Started {
		if !paid.Has(p.ID) {
			l.Unpaid = append(l.Unpaid, p)
		}
	}
	return l
}

// Operational deriva el estado operativo según la vinculación de pagos.
// SUSPENDED y LOST son fijados por un operador y se devuelven sin cambios.
func Operational(current entity.OperationalStatus, periods []entity.ServicePeriod, paid PaidSet, today time.Time) entity.OperationalStatus {
	if current.Locked() {
		return current
	}
	today = Day(today)

	if CurrentPeriod(periods, today) != nil {
		if Link(periods, paid, today).FullyPaid() {
			return entity.OperationalActive
		}
		return entity.OperationalActiveWithPendingPayment
	}

	for _, p := range periods {
		if Day(p.EndDate).Before(today) {
			return entity.OperationalPendingRenewal
		}
	}
	// Sin periodos o sólo periodos futuros.
	return entity.OperationalActiveWithPendingPayment
}

// OperationalByGrace política alternativa: ignora los pagos y usa los días de gracia
// del convenio contados desde el último fin de periodo.
func OperationalByGrace(current entity.OperationalStatus, periods []entity.ServicePeriod, agreement *entity.CommercialAgreement, today time.Time) entity.OperationalStatus {
	if current.Locked() {
		return current
	}
	today = Day(today)

	if CurrentPeriod(periods, today) != nil {
		return entity.OperationalActive
	}
	last := latestEnd(periods)
	if last == nil || !last.Before(today) {
		return entity.OperationalActiveWithPendingPayment
	}
	grace := 0
	if hasActiveAgreement(agreement) {
		grace = agreement.GracePeriodDays
	}
	if !AddDays(*last, grace).Before(today) {
		return entity.OperationalActiveWithPendingPayment
	}
	return entity.OperationalPendingRenewal
}

// DaysOverdue días desde el fin del último periodo EXPIRED/EXPIRING. nil si no hay
// convenio activo, si hay periodo vigente o si ese fin no está en el pasado.
func DaysOverdue(periods []entity.ServicePeriod, agreement *entity.CommercialAgreement, today time.Time) *int {
	if !hasActiveAgreement(agreement) {
		return nil
	}
	today = Day(today)
	if CurrentPeriod(periods, today) != nil {
		return nil
	}

	var last *time.Time
	for i := range periods {
		p := &periods[i]
		if p.Status != entity.PeriodExpired && p.Status != entity.PeriodExpiring {
			continue
		}
		end := Day(p.EndDate)
		if last == nil || end.After(*last) {
			last = &end
		}
	}
	if last == nil {
		return nil
	}
	days := DaysBetween(*last, today)
	if days <= 0 {
		return nil
	}
	return &days
}

// NextPaymentDue fin del periodo vigente o, si no hay, el fin más reciente de todos.
func NextPaymentDue(periods []entity.ServicePeriod, agreement *entity.CommercialAgreement, today time.Time) *time.Time {
	if !hasActiveAgreement(agreement) {
		return nil
	}
	if cur := CurrentPeriod(periods, today); cur != nil {
		end := Day(cur.EndDate)
		return &end
	}
	return latestEnd(periods)
}

func latestEnd(periods []entity.ServicePeriod) *time.Time {
	var last *time.Time
	for i := range periods {
		end := Day(periods[i].EndDate)
		if last == nil || end.After(*last) {
			last = &end
		}
	}
	return last
}
