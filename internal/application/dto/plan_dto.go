package dto

import "github.com/shopspring/decimal"

// PricingRequest precio por frecuencia.
type PricingRequest struct {
	Frequency string          `json:"frequency"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency,omitempty"`
}

// UsageLimitRequest límite de consumo; LimitValue nil = ilimitado.
type UsageLimitRequest struct {
	Concept    string           `json:"concept"`
	LimitValue *decimal.Decimal `json:"limit_value,omitempty"`
	Unit       string           `json:"unit"`
}

// CreatePlanRequest body para POST /api/plans.
type CreatePlanRequest struct {
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Type        string              `json:"type"`
	IsActive    *bool               `json:"is_active,omitempty"`
	Conditions  string              `json:"conditions,omitempty"`
	Pricing     []PricingRequest    `json:"pricing"`
	UsageLimits []UsageLimitRequest `json:"usage_limits,omitempty"`
}

// UpdatePlanRequest body para PATCH /api/plans/:id.
type UpdatePlanRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Conditions  *string `json:"conditions,omitempty"`
}

// PlanListQuery filtros de GET /api/plans.
type PlanListQuery struct {
	IsActive string `query:"is_active"`
	Type     string `query:"type"`
}

// PricingResponse precio en respuestas.
type PricingResponse struct {
	ID        string          `json:"id"`
	Frequency string          `json:"frequency"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
}

// UsageLimitResponse límite en respuestas.
type UsageLimitResponse struct {
	ID         string           `json:"id"`
	Concept    string           `json:"concept"`
	LimitValue *decimal.Decimal `json:"limit_value"`
	Unit       string           `json:"unit"`
}

// PlanResponse plan del catálogo.
type PlanResponse struct {
	ID          string               `json:"id"`
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Type        string               `json:"type"`
	IsActive    bool                 `json:"is_active"`
	Conditions  string               `json:"conditions,omitempty"`
	Pricing     []PricingResponse    `json:"pricing"`
	UsageLimits []UsageLimitResponse `json:"usage_limits"`
}
