package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus ciclo de vida temporal de un periodo.
type PeriodStatus string

const (
	PeriodActive   PeriodStatus = "ACTIVE"
	PeriodExpiring PeriodStatus = "EXPIRING"
	PeriodExpired  PeriodStatus = "EXPIRED"
)

// Valid indica si s es un estado de periodo conocido.
func (s PeriodStatus) Valid() bool {
	return s == PeriodActive || s == PeriodExpiring || s == PeriodExpired
}

// Live indica ACTIVE o EXPIRING (candidato a periodo vigente).
func (s PeriodStatus) Live() bool {
	return s == PeriodActive || s == PeriodExpiring
}

// BillingStatus avance de facturación del periodo, independiente de PeriodStatus.
type BillingStatus string

const (
	BillingPending       BillingStatus = "PENDING"
	BillingInvoiced      BillingStatus = "INVOICED"
	BillingNotApplicable BillingStatus = "NOT_APPLICABLE"
)

// Valid indica si s es un estado de facturación conocido.
func (s BillingStatus) Valid() bool {
	return s == BillingPending || s == BillingInvoiced || s == BillingNotApplicable
}

// PeriodOrigin cómo se creó el periodo.
type PeriodOrigin string

const (
	OriginPayment         PeriodOrigin = "PAYMENT"
	OriginManualExtension PeriodOrigin = "MANUAL_EXTENSION"
	OriginRenewal         PeriodOrigin = "RENEWAL"
)

// Valid indica si o es un origen conocido.
func (o PeriodOrigin) Valid() bool {
	return o == OriginPayment || o == OriginManualExtension || o == OriginRenewal
}

// PlanSnapshot copia inmutable del plan al momento de crear el periodo.
type PlanSnapshot struct {
	PlanID      string           `json:"plan_id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Type        PlanType         `json:"type"`
	Frequency   BillingCycle     `json:"frequency"`
	Price       decimal.Decimal  `json:"price"`
	Currency    string           `json:"currency"`
	Conditions  string           `json:"conditions,omitempty"`
	UsageLimits []PlanUsageLimit `json:"usage_limits,omitempty"`
}

// ServicePeriod unidad de servicio prestado. Fechas a nivel día, ambos extremos inclusivos.
type ServicePeriod struct {
	ID                   string
	CustomerID           string
	StartDate            time.Time
	EndDate              time.Time
	SubtotalAmount       decimal.Decimal
	Currency             string
	Origin               PeriodOrigin
	Status               PeriodStatus
	BillingStatus        BillingStatus
	SuggestedInvoiceDate *time.Time
	Notes                string
	PlanID               *string
	PlanSnapshot         *PlanSnapshot
	Quantity             *int
	Frequency            *BillingCycle
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
