package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
)

var _ repository.PlanRepository = (*PlanRepo)(nil)

// PlanRepo implementación de PlanRepository (plans, plan_pricing, plan_usage_limits).
type PlanRepo struct {
	q Querier
}

// NewPlanRepository construye el adaptador.
func NewPlanRepository(q Querier) *PlanRepo {
	return &PlanRepo{q: q}
}

const planColumns = `id, code, name, description, type, is_active, conditions, created_at, updated_at`

func scanPlan(row pgx.Row) (*entity.Plan, error) {
	var p entity.Plan
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Type, &p.IsActive, &p.Conditions, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta el plan con sus precios y límites.
func (r *PlanRepo) Create(ctx context.Context, p *entity.Plan) error {
	_, err := r.q.Exec(ctx, `INSERT INTO plans (`+planColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Code, p.Name, p.Description, p.Type, p.IsActive, p.Conditions, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert plan: %w", err)
	}
	for i := range p.Pricing {
		if err := r.AddPricing(ctx, &p.Pricing[i]); err != nil {
			return err
		}
	}
	for i := range p.UsageLimits {
		if err := r.AddUsageLimit(ctx, &p.UsageLimits[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID plan con precios y límites, o (nil, nil).
func (r *PlanRepo) GetByID(ctx context.Context, id string) (*entity.Plan, error) {
	return r.getOne(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
}

// GetByCode plan con precios y límites, o (nil, nil).
func (r *PlanRepo) GetByCode(ctx context.Context, code string) (*entity.Plan, error) {
	return r.getOne(ctx, `SELECT `+planColumns+` FROM plans WHERE code = $1`, code)
}

func (r *PlanRepo) getOne(ctx context.Context, query string, arg string) (*entity.Plan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if err := r.loadChildren(ctx, []*entity.Plan{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// List planes del catálogo ordenados por código.
func (r *PlanRepo) List(ctx context.Context, f repository.PlanFilter) ([]*entity.Plan, error) {
	var planType *string
	if f.Type != nil {
		t := string(*f.Type)
		planType = &t
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE ($1::boolean IS NULL OR is_active = $1)
		  AND ($2::text IS NULL OR type = $2)
		ORDER BY code`, f.IsActive, planType)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	var list []*entity.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	if err := r.loadChildren(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadChildren carga precios y límites de todos los planes con dos consultas.
func (r *PlanRepo) loadChildren(ctx context.Context, plans []*entity.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	ids := make([]string, len(plans))
	byID := make(map[string]*entity.Plan, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, plan_id, frequency, price, currency FROM plan_pricing
		WHERE plan_id = ANY($1::uuid[]) ORDER BY frequency`, ids)
	if err != nil {
		return fmt.Errorf("load plan pricing: %w", err)
	}
	for rows.Next() {
		var pr entity.PlanPricing
		if err := rows.Scan(&pr.ID, &pr.PlanID, &pr.Frequency, &pr.Price, &pr.Currency); err != nil {
			rows.Close()
			return fmt.Errorf("scan plan pricing: %w", err)
		}
		byID[pr.PlanID].Pricing = append(byID[pr.PlanID].Pricing, pr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load plan pricing: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, plan_id, concept, limit_value, unit FROM plan_usage_limits
		WHERE plan_id = ANY($1::uuid[]) ORDER BY concept`, ids)
	if err != nil {
		return fmt.Errorf("load plan usage limits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PlanUsageLimit
		if err := rows.Scan(&l.ID, &l.PlanID, &l.Concept, &l.LimitValue, &l.Unit); err != nil {
			return fmt.Errorf("scan plan usage limit: %w", err)
		}
		byID[l.PlanID].UsageLimits = append(byID[l.PlanID].UsageLimits, l)
	}
	return rows.Err()
}

// Update reescribe los datos generales del plan (no toca precios ni límites).
func (r *PlanRepo) Update(ctx context.Context, p *entity.Plan) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE plans SET name = $2, description = $3, is_active = $4, conditions = $5, updated_at = $6
		WHERE id = $1`, p.ID, p.Name, p.Description, p.IsActive, p.Conditions, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddPricing agrega un precio; la frecuencia repetida es ErrDuplicate.
func (r *PlanRepo) AddPricing(ctx context.Context, pr *entity.PlanPricing) error {
	_, err := r.q.Exec(ctx, `INSERT INTO plan_pricing (id, plan_id, frequency, price, currency) VALUES ($1, $2, $3, $4, $5)`,
		pr.ID, pr.PlanID, pr.Frequency, pr.Price, pr.Currency)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert plan pricing: %w", err)
	}
	return nil
}

// DeletePricing elimina un precio del plan.
func (r *PlanRepo) DeletePricing(ctx context.Context, planID, pricingID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM plan_pricing WHERE id = $1 AND plan_id = $2`, pricingID, planID)
	if err != nil {
		return fmt.Errorf("delete plan pricing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddUsageLimit agrega un límite de consumo.
func (r *PlanRepo) AddUsageLimit(ctx context.Context, l *entity.PlanUsageLimit) error {
	_, err := r.q.Exec(ctx, `INSERT INTO plan_usage_limits (id, plan_id, concept, limit_value, unit) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.PlanID, l.Concept, l.LimitValue, l.Unit)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert plan usage limit: %w", err)
	}
	return nil
}

// DeleteUsageLimit elimina un límite del plan.
func (r *PlanRepo) DeleteUsageLimit(ctx context.Context, planID, limitID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM plan_usage_limits WHERE id = $1 AND plan_id = $2`, limitID, planID)
	if err != nil {
		return fmt.Errorf("delete plan usage limit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
