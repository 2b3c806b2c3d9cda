// Package catalog administra el catálogo de planes: precios por frecuencia y
// límites de consumo. Los periodos copian el plan al crearse, así que editar el
// catálogo nunca altera periodos existentes.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
	"github.com/jhoicas/Cobranza-api/pkg/clock"
)

// PlanUseCase casos de uso del catálogo de planes.
type PlanUseCase struct {
	plans           repository.PlanRepository
	tx              billing.TxRunner
	defaultCurrency string
	clock           clock.Clock
}

// NewPlanUseCase construye el caso de uso con el reloj del sistema.
func NewPlanUseCase(plans repository.PlanRepository, tx billing.TxRunner, defaultCurrency string) *PlanUseCase {
	return &PlanUseCase{plans: plans, tx: tx, defaultCurrency: defaultCurrency, clock: clock.Real{}}
}

// WithClock reemplaza el reloj usado para las marcas de tiempo.
func (uc *PlanUseCase) WithClock(clk clock.Clock) *PlanUseCase {
	if clk != nil {
		uc.clock = clk
	}
	return uc
}

// Create crea un plan con al menos un precio (uno por frecuencia). Los planes
// USAGE_BASED requieren al menos un límite de consumo.
func (uc *PlanUseCase) Create(ctx context.Context, in dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code y name son obligatorios", domain.ErrInvalidInput)
	}
	planType := entity.PlanType(in.Type)
	if !planType.Valid() {
		return nil, fmt.Errorf("%w: type %q", domain.ErrInvalidInput, in.Type)
	}
	if len(in.Pricing) == 0 {
		return nil, fmt.Errorf("%w: el plan requiere al menos un precio", domain.ErrInvalidInput)
	}
	if planType == entity.PlanUsageBased && len(in.UsageLimits) == 0 {
		return nil, fmt.Errorf("%w: un plan USAGE_BASED requiere límites de consumo", domain.ErrInvalidInput)
	}

	now := uc.clock.Now()
	plan := &entity.Plan{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        name,
		Description: in.Description,
		Type:        planType,
		IsActive:    true,
		Conditions:  in.Conditions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	seen := make(map[entity.BillingCycle]struct{}, len(in.Pricing))
	for _, pr := range in.Pricing {
		pricing, err := uc.newPricing(plan.ID, pr)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[pricing.Frequency]; dup {
			return nil, fmt.Errorf("%w: precio %s repetido", domain.ErrDuplicate, pricing.Frequency)
		}
		seen[pricing.Frequency] = struct{}{}
		plan.Pricing = append(plan.Pricing, *pricing)
	}
	for _, ul := range in.UsageLimits {
		limit, err := newUsageLimit(plan.ID, ul)
		if err != nil {
			return nil, err
		}
		plan.UsageLimits = append(plan.UsageLimits, *limit)
	}

	err := uc.tx.Run(ctx, "", func(r billing.Repos) error {
		existing, err := r.Plans.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: code %s", domain.ErrDuplicate, code)
		}
		return r.Plans.Create(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// List lista planes; is_active acepta "true"/"false".
func (uc *PlanUseCase) List(ctx context.Context, q dto.PlanListQuery) ([]dto.PlanResponse, error) {
	var filter repository.PlanFilter
	if q.IsActive != "" {
		b, err := strconv.ParseBool(q.IsActive)
		if err != nil {
			return nil, fmt.Errorf("%w: is_active %q", domain.ErrInvalidInput, q.IsActive)
		}
		filter.IsActive = &b
	}
	if q.Type != "" {
		t := entity.PlanType(q.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: type %q", domain.ErrInvalidInput, q.Type)
		}
		filter.Type = &t
	}
	list, err := uc.plans.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toPlanResponse(p))
	}
	return out, nil
}

// Get devuelve un plan con precios y límites.
func (uc *PlanUseCase) Get(ctx context.Context, id string) (*dto.PlanResponse, error) {
	plan, err := uc.getPlan(ctx, uc.plans, id)
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// Update modifica los datos descriptivos del plan.
func (uc *PlanUseCase) Update(ctx context.Context, id string, in dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	plan, err := uc.getPlan(ctx, uc.plans, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
		}
		plan.Name = name
	}
	if in.Description != nil {
		plan.Description = *in.Description
	}
	if in.Conditions != nil {
		plan.Conditions = *in.Conditions
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	plan.UpdatedAt = uc.clock.Now()
	if err := uc.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// AddPricing agrega un precio para una frecuencia que el plan aún no tenga.
func (uc *PlanUseCase) AddPricing(ctx context.Context, planID string, in dto.PricingRequest) (*dto.PlanResponse, error) {
	var plan *entity.Plan
	err := uc.tx.Run(ctx, "", func(r billing.Repos) error {
		var err error
		plan, err = uc.getPlan(ctx, r.Plans, planID)
		if err != nil {
			return err
		}
		pricing, err := uc.newPricing(plan.ID, in)
		if err != nil {
			return err
		}
		if _, exists := plan.PricingFor(pricing.Frequency); exists {
			return fmt.Errorf("%w: precio %s repetido", domain.ErrDuplicate, pricing.Frequency)
		}
		if err := r.Plans.AddPricing(ctx, pricing); err != nil {
			return err
		}
		plan.Pricing = append(plan.Pricing, *pricing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// DeletePricing elimina un precio; el último no puede eliminarse.
func (uc *PlanUseCase) DeletePricing(ctx context.Context, planID, pricingID string) (*dto.PlanResponse, error) {
	var plan *entity.Plan
	err := uc.tx.Run(ctx, "", func(r billing.Repos) error {
		var err error
		plan, err = uc.getPlan(ctx, r.Plans, planID)
		if err != nil {
			return err
		}
		idx := -1
		for i, pr := range plan.Pricing {
			if pr.ID == pricingID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: precio %s", domain.ErrNotFound, pricingID)
		}
		if len(plan.Pricing) == 1 {
			return fmt.Errorf("%w: el plan debe conservar al menos un precio", domain.ErrConflict)
		}
		if err := r.Plans.DeletePricing(ctx, planID, pricingID); err != nil {
			return err
		}
		plan.Pricing = append(plan.Pricing[:idx], plan.Pricing[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// AddUsageLimit agrega un límite de consumo.
func (uc *PlanUseCase) AddUsageLimit(ctx context.Context, planID string, in dto.UsageLimitRequest) (*dto.PlanResponse, error) {
	var plan *entity.Plan
	err := uc.tx.Run(ctx, "", func(r billing.Repos) error {
		var err error
		plan, err = uc.getPlan(ctx, r.Plans, planID)
		if err != nil {
			return err
		}
		limit, err := newUsageLimit(plan.ID, in)
		if err != nil {
			return err
		}
		if err := r.Plans.AddUsageLimit(ctx, limit); err != nil {
			return err
		}
		plan.UsageLimits = append(plan.UsageLimits, *limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// DeleteUsageLimit elimina un límite; un plan USAGE_BASED conserva al menos uno.
func (uc *PlanUseCase) DeleteUsageLimit(ctx context.Context, planID, limitID string) (*dto.PlanResponse, error) {
	var plan *entity.Plan
	err := uc.tx.Run(ctx, "", func(r billing.Repos) error {
		var err error
		plan, err = uc.getPlan(ctx, r.Plans, planID)
		if err != nil {
			return err
		}
		idx := -1
		for i, l := range plan.UsageLimits {
			if l.ID == limitID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: límite %s", domain.ErrNotFound, limitID)
		}
		if plan.Type == entity.PlanUsageBased && len(plan.UsageLimits) == 1 {
			return fmt.Errorf("%w: un plan USAGE_BASED debe conservar al menos un límite", domain.ErrConflict)
		}
		if err := r.Plans.DeleteUsageLimit(ctx, planID, limitID); err != nil {
			return err
		}
		plan.UsageLimits = append(plan.UsageLimits[:idx], plan.UsageLimits[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

func (uc *PlanUseCase) getPlan(ctx context.Context, plans repository.PlanRepository, id string) (*entity.Plan, error) {
	plan, err := plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	return plan, nil
}

func (uc *PlanUseCase) newPricing(planID string, in dto.PricingRequest) (*entity.PlanPricing, error) {
	freq := entity.BillingCycle(in.Frequency)
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: frequency %q", domain.ErrInvalidInput, in.Frequency)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price no puede ser negativo", domain.ErrInvalidInput)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = uc.defaultCurrency
	}
	return &entity.PlanPricing{
		ID:        uuid.New().String(),
		PlanID:    planID,
		Frequency: freq,
		Price:     in.Price,
		Currency:  currency,
	}, nil
}

func newUsageLimit(planID string, in dto.UsageLimitRequest) (*entity.PlanUsageLimit, error) {
	concept := strings.TrimSpace(in.Concept)
	if concept == "" {
		return nil, fmt.Errorf("%w: concept es obligatorio", domain.ErrInvalidInput)
	}
	if in.LimitValue != nil && in.LimitValue.IsNegative() {
		return nil, fmt.Errorf("%w: limit_value no puede ser negativo", domain.ErrInvalidInput)
	}
	return &entity.PlanUsageLimit{
		ID:         uuid.New().String(),
		PlanID:     planID,
		Concept:    concept,
		LimitValue: in.LimitValue,
		Unit:       strings.TrimSpace(in.Unit),
	}, nil
}

func toPlanResponse(p *entity.Plan) *dto.PlanResponse {
	out := &dto.PlanResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Type:        string(p.Type),
		IsActive:    p.IsActive,
		Conditions:  p.Conditions,
		Pricing:     make([]dto.PricingResponse, 0, len(p.Pricing)),
		UsageLimits: make([]dto.UsageLimitResponse, 0, len(p.UsageLimits)),
	}
	for _, pr := range p.Pricing {
		out.Pricing = append(out.Pricing, dto.PricingResponse{
			ID:        pr.ID,
			Frequency: string(pr.Frequency),
			Price:     pr.Price,
			Currency:  pr.Currency,
		})
	}
	for _, l := range p.UsageLimits {
		out.UsageLimits = append(out.UsageLimits, dto.UsageLimitResponse{
			ID:         l.ID,
			Concept:    l.Concept,
			LimitValue: l.LimitValue,
			Unit:       l.Unit,
		})
	}
	return out
}
