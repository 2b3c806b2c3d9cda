package repository

import (
	"context"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// PlanFilter filtros del catálogo.
type PlanFilter struct {
	IsActive *bool
	Type     *entity.PlanType
}

// PlanRepository define el puerto de persistencia para el catálogo de planes.
// GetByID y GetByCode cargan precios y límites.
type PlanRepository interface {
	Create(ctx context.Context, plan *entity.Plan) error
	GetByID(ctx context.Context, id string) (*entity.Plan, error)
	GetByCode(ctx context.Context, code string) (*entity.Plan, error)
	List(ctx context.Context, filter PlanFilter) ([]*entity.Plan, error)
	Update(ctx context.Context, plan *entity.Plan) error
	AddPricing(ctx context.Context, pricing *entity.PlanPricing) error
	DeletePricing(ctx context.Context, planID, pricingID string) error
	AddUsageLimit(ctx context.Context, limit *entity.PlanUsageLimit) error
	DeleteUsageLimit(ctx context.Context, planID, limitID string) error
}
