package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
)

var _ repository.AgreementRepository = (*AgreementRepo)(nil)

// AgreementRepo implementación de AgreementRepository.
type AgreementRepo struct {
	q Querier
}

// NewAgreementRepository construye el adaptador.
func NewAgreementRepository(q Querier) *AgreementRepo {
	return &AgreementRepo{q: q}
}

const agreementColumns = `
	id, customer_id, subtotal_amount, currency, description, billing_cycle, renewal_day,
	grace_period_days, customer_type, special_rules, is_active, start_date, end_date, created_at, updated_at`

func scanAgreement(row pgx.Row) (*entity.CommercialAgreement, error) {
	var a entity.CommercialAgreement
	err := row.Scan(
		&a.ID, &a.CustomerID, &a.SubtotalAmount, &a.Currency, &a.Description, &a.BillingCycle, &a.RenewalDay,
		&a.GracePeriodDays, &a.CustomerType, &a.SpecialRules, &a.IsActive, &a.StartDate, &a.EndDate, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserta el convenio. Un segundo activo para el mismo cliente viola uq_agreements_active.
func (r *AgreementRepo) Create(ctx context.Context, a *entity.CommercialAgreement) error {
	query := `INSERT INTO commercial_agreements (` + agreementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CustomerID, a.SubtotalAmount, a.Currency, a.Description, a.BillingCycle, a.RenewalDay,
		a.GracePeriodDays, a.CustomerType, a.SpecialRules, a.IsActive, a.StartDate, a.EndDate, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert agreement: %w", err)
	}
	return nil
}

// GetByID devuelve el convenio o (nil, nil).
func (r *AgreementRepo) GetByID(ctx context.Context, id string) (*entity.CommercialAgreement, error) {
	a, err := scanAgreement(r.q.QueryRow(ctx, `SELECT `+agreementColumns+` FROM commercial_agreements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get agreement: %w", err)
	}
	return a, nil
}

// GetActive devuelve el convenio activo más reciente del cliente.
func (r *AgreementRepo) GetActive(ctx context.Context, customerID string) (*entity.CommercialAgreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM commercial_agreements
		WHERE customer_id = $1 AND is_active ORDER BY created_at DESC LIMIT 1`
	a, err := scanAgreement(r.q.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active agreement: %w", err)
	}
	return a, nil
}

// ListByCustomer historial de convenios, más reciente primero.
func (r *AgreementRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.CommercialAgreement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+agreementColumns+` FROM commercial_agreements
		WHERE customer_id = $1 ORDER BY start_date DESC, created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list agreements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CommercialAgreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agreement: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// DeactivateActive cierra los convenios activos del cliente.
func (r *AgreementRepo) DeactivateActive(ctx context.Context, customerID string, endDate time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE commercial_agreements SET is_active = FALSE, end_date = COALESCE(end_date, $2), updated_at = now()
		WHERE customer_id = $1 AND is_active`, customerID, endDate)
	if err != nil {
		return 0, fmt.Errorf("deactivate agreements: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Deactivate cierra un convenio concreto.
func (r *AgreementRepo) Deactivate(ctx context.Context, id string, endDate time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE commercial_agreements SET is_active = FALSE, end_date = COALESCE(end_date, $2), updated_at = now()
		WHERE id = $1`, id, endDate)
	if err != nil {
		return fmt.Errorf("deactivate agreement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
