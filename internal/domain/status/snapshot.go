package status

import (
	"time"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// Policy regla usada para el estado operativo.
type Policy string

const (
	PolicyPaymentLinkage Policy = "payment_linkage"
	PolicyGrace          Policy = "grace"
)

// Snapshot vista consistente de los estados de un cliente.
type Snapshot struct {
	Financial      FinancialStatus
	Operational    entity.OperationalStatus
	Relationship   entity.RelationshipStatus
	DaysOverdue    *int
	NextPaymentDue *time.Time
}

// Input datos leídos de una sola vez para calcular el snapshot.
type Input struct {
	Customer  entity.Customer
	Periods   []entity.ServicePeriod
	Agreement *entity.CommercialAgreement
	Paid      PaidSet
	Today     time.Time
	Policy    Policy
}

// Compute calcula todos los estados a partir de in.
func Compute(in Input) Snapshot {
	today := Day(in.Today)
	var op entity.OperationalStatus
	if in.Policy == PolicyGrace {
		op = OperationalByGrace(in.Customer.OperationalStatus, in.Periods, in.Agreement, today)
	} else {
		op = Operational(in.Customer.OperationalStatus, in.Periods, in.Paid, today)
	}
	rel := in.Customer.RelationshipStatus
	if rel == "" {
		rel = entity.RelationshipActive
	}
	return Snapshot{
		Financial:      Financial(in.Periods, in.Agreement, today),
		Operational:    op,
		Relationship:   rel,
		DaysOverdue:    DaysOverdue(in.Periods, in.Agreement, today),
		NextPaymentDue: NextPaymentDue(in.Periods, in.Agreement, today),
	}
}

// Drift indica si el estado operativo persistido difiere del calculado.
func (s Snapshot) Drift(stored entity.OperationalStatus) bool {
	return s.Operational != stored
}
