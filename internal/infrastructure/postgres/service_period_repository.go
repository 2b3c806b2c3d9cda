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

var _ repository.ServicePeriodRepository = (*ServicePeriodRepo)(nil)

// ServicePeriodRepo implementación de ServicePeriodRepository.
// plan_snapshot se guarda como JSONB; pgx serializa *entity.PlanSnapshot con encoding/json.
type ServicePeriodRepo struct {
	q Querier
}

// NewServicePeriodRepository construye el adaptador.
func NewServicePeriodRepository(q Querier) *ServicePeriodRepo {
	return &ServicePeriodRepo{q: q}
}

const periodColumns = `
	id, customer_id, start_date, end_date, subtotal_amount, currency, origin, status, billing_status,
	suggested_invoice_date, notes, plan_id, plan_snapshot, quantity, frequency, created_at, updated_at`

func scanPeriod(row pgx.Row) (entity.ServicePeriod, error) {
	var p entity.ServicePeriod
	err := row.Scan(
		&p.ID, &p.CustomerID, &p.StartDate, &p.EndDate, &p.SubtotalAmount, &p.Currency, &p.Origin, &p.Status, &p.BillingStatus,
		&p.SuggestedInvoiceDate, &p.Notes, &p.PlanID, &p.PlanSnapshot, &p.Quantity, &p.Frequency, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func collectPeriods(rows pgx.Rows) ([]entity.ServicePeriod, error) {
	defer rows.Close()
	var list []entity.ServicePeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Create inserta el periodo.
func (r *ServicePeriodRepo) Create(ctx context.Context, p *entity.ServicePeriod) error {
	query := `INSERT INTO service_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CustomerID, p.StartDate, p.EndDate, p.SubtotalAmount, p.Currency, p.Origin, p.Status, p.BillingStatus,
		p.SuggestedInvoiceDate, p.Notes, p.PlanID, p.PlanSnapshot, p.Quantity, p.Frequency, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert service period: %w", err)
	}
	return nil
}

// GetByID devuelve el periodo o (nil, nil).
func (r *ServicePeriodRepo) GetByID(ctx context.Context, id string) (*entity.ServicePeriod, error) {
	p, err := scanPeriod(r.q.QueryRow(ctx, `SELECT `+periodColumns+` FROM service_periods WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service period: %w", err)
	}
	return &p, nil
}

// ListByCustomer periodos del cliente en orden cronológico.
func (r *ServicePeriodRepo) ListByCustomer(ctx context.Context, customerID string) ([]entity.ServicePeriod, error) {
	rows, err := r.q.Query(ctx, `SELECT `+periodColumns+` FROM service_periods
		WHERE customer_id = $1 ORDER BY start_date, end_date`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list service periods: %w", err)
	}
	return collectPeriods(rows)
}

// ListByBillingStatus periodos de clientes no borrados con el estado de facturación indicado.
func (r *ServicePeriodRepo) ListByBillingStatus(ctx context.Context, billingStatus entity.BillingStatus) ([]entity.ServicePeriod, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+periodColumns+` FROM service_periods
		WHERE billing_status = $1
		  AND customer_id IN (SELECT id FROM customers WHERE NOT is_deleted)
		ORDER BY COALESCE(suggested_invoice_date, start_date), start_date`, billingStatus)
	if err != nil {
		return nil, fmt.Errorf("list periods by billing status: %w", err)
	}
	return collectPeriods(rows)
}

// Update reescribe los campos mutables del periodo.
func (r *ServicePeriodRepo) Update(ctx context.Context, p *entity.ServicePeriod) error {
	query := `
		UPDATE service_periods SET start_date = $2, end_date = $3, subtotal_amount = $4, currency = $5,
			status = $6, billing_status = $7, suggested_invoice_date = $8, notes = $9, plan_id = $10,
			plan_snapshot = $11, quantity = $12, frequency = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.StartDate, p.EndDate, p.SubtotalAmount, p.Currency,
		p.Status, p.BillingStatus, p.SuggestedInvoiceDate, p.Notes, p.PlanID,
		p.PlanSnapshot, p.Quantity, p.Frequency, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el periodo. El caso de uso verifica antes pagos y facturas.
func (r *ServicePeriodRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM service_periods WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrPeriodHasPayments
		}
		return fmt.Errorf("delete service period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLifecycle aplica en dos sentencias las transiciones temporales:
// primero EXPIRED (fin < hoy) y después EXPIRING (fin dentro de la ventana).
// Un periodo EXPIRED no vuelve a ACTIVE aquí; eso sólo ocurre al editar sus fechas.
func (r *ServicePeriodRepo) UpdateLifecycle(ctx context.Context, customerID string, today time.Time, window int) (repository.LifecycleResult, error) {
	var res repository.LifecycleResult
	limit := today.AddDate(0, 0, window)

	tag, err := r.q.Exec(ctx, `
		UPDATE service_periods SET status = 'EXPIRED', updated_at = now()
		WHERE status IN ('ACTIVE', 'EXPIRING') AND end_date < $1
		  AND ($2 = '' OR customer_id::text = $2)`, today, customerID)
	if err != nil {
		return res, fmt.Errorf("expire periods: %w", err)
	}
	res.Expired = tag.RowsAffected()

	tag, err = r.q.Exec(ctx, `
		UPDATE service_periods SET status = 'EXPIRING', updated_at = now()
		WHERE status = 'ACTIVE' AND end_date >= $1 AND end_date <= $2
		  AND ($3 = '' OR customer_id::text = $3)`, today, limit, customerID)
	if err != nil {
		return res, fmt.Errorf("mark expiring periods: %w", err)
	}
	res.Expiring = tag.RowsAffected()
	return res, nil
}
