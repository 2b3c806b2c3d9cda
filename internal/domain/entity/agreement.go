package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle frecuencia de cobro de un convenio (también usada por PlanPricing).
type BillingCycle string

const (
	CycleMonthly    BillingCycle = "MONTHLY"
	CycleQuarterly  BillingCycle = "QUARTERLY"
	CycleSemiAnnual BillingCycle = "SEMI_ANNUAL"
	CycleCustom     BillingCycle = "CUSTOM"
)

// Valid indica si c es un ciclo conocido.
func (c BillingCycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleSemiAnnual, CycleCustom:
		return true
	}
	return false
}

// CommercialAgreement convenio de precio de un cliente. A lo sumo uno activo por cliente.
type CommercialAgreement struct {
	ID              string
	CustomerID      string
	SubtotalAmount  decimal.Decimal
	Currency        string
	Description     string
	BillingCycle    BillingCycle
	RenewalDay      int // día del mes (1-31)
	GracePeriodDays int
	CustomerType    string
	SpecialRules    string
	IsActive        bool
	StartDate       time.Time
	EndDate         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
