package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanType modalidad de cobro del plan.
type PlanType string

const (
	PlanPerUser    PlanType = "PER_USER"
	PlanUsageBased PlanType = "USAGE_BASED"
)

// Valid indica si t es un tipo de plan conocido.
func (t PlanType) Valid() bool {
	return t == PlanPerUser || t == PlanUsageBased
}

// Plan plantilla de precios del catálogo.
type Plan struct {
	ID          string
	Code        string
	Name        string
	Description string
	Type        PlanType
	IsActive    bool
	Conditions  string
	Pricing     []PlanPricing
	UsageLimits []PlanUsageLimit
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PricingFor devuelve el precio para la frecuencia indicada.
func (p *Plan) PricingFor(f BillingCycle) (PlanPricing, bool) {
	for _, pr := range p.Pricing {
		if pr.Frequency == f {
			return pr, true
		}
	}
	return PlanPricing{}, false
}

// PlanPricing precio por frecuencia; único por (plan, frecuencia).
type PlanPricing struct {
	ID        string          `json:"id"`
	PlanID    string          `json:"plan_id"`
	Frequency BillingCycle    `json:"frequency"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
}

// PlanUsageLimit límite de consumo; LimitValue nil significa ilimitado.
type PlanUsageLimit struct {
	ID         string           `json:"id"`
	PlanID     string           `json:"plan_id"`
	Concept    string           `json:"concept"`
	LimitValue *decimal.Decimal `json:"limit_value"`
	Unit       string           `json:"unit"`
}
