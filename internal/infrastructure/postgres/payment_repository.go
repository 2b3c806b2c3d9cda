package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (payments + payment_periods).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// PeriodIDs se agrega con array_agg para evitar N+1.
const paymentSelect = `
	SELECT p.id, p.customer_id, p.amount, p.currency, p.payment_date, p.method, p.reference, p.notes,
		p.status, p.invoice_id, p.created_at, p.updated_at,
		COALESCE(array_agg(pp.period_id::text ORDER BY pp.period_id) FILTER (WHERE pp.period_id IS NOT NULL), '{}')
	FROM payments p
	LEFT JOIN payment_periods pp ON pp.payment_id = p.id`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.CustomerID, &p.Amount, &p.Currency, &p.PaymentDate, &p.Method, &p.Reference, &p.Notes,
		&p.Status, &p.InvoiceID, &p.CreatedAt, &p.UpdatedAt, &p.PeriodIDs,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]*entity.Payment, error) {
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Create inserta el pago (sin vínculos; ver LinkPeriods).
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, customer_id, amount, currency, payment_date, method, reference, notes,
			status, invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.CustomerID, p.Amount, p.Currency, p.PaymentDate, p.Method, p.Reference, p.Notes,
		p.Status, p.InvoiceID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// LinkPeriods crea las aristas pago-periodo; las repetidas se ignoran.
func (r *PaymentRepo) LinkPeriods(ctx context.Context, paymentID string, periodIDs []string) error {
	if len(periodIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_periods (payment_id, period_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`, paymentID, periodIDs)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("link payment periods: %w", err)
	}
	return nil
}

// GetByID devuelve el pago con sus PeriodIDs o (nil, nil).
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, paymentSelect+` WHERE p.id = $1 GROUP BY p.id`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// List pagos más recientes primero; customerID vacío = todos.
func (r *PaymentRepo) List(ctx context.Context, customerID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, paymentSelect+`
		WHERE ($1 = '' OR p.customer_id::text = $1)
		GROUP BY p.id
		ORDER BY p.payment_date DESC, p.created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return collectPayments(rows)
}

// ListByPeriod pagos vinculados al periodo.
func (r *PaymentRepo) ListByPeriod(ctx context.Context, periodID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, paymentSelect+`
		WHERE p.id IN (SELECT payment_id FROM payment_periods WHERE period_id = $1)
		GROUP BY p.id
		ORDER BY p.payment_date, p.created_at`, periodID)
	if err != nil {
		return nil, fmt.Errorf("list payments by period: %w", err)
	}
	return collectPayments(rows)
}

// PaidPeriodIDs periodos del cliente con al menos un vínculo, en una sola consulta.
func (r *PaymentRepo) PaidPeriodIDs(ctx context.Context, customerID string) (status.PaidSet, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT pp.period_id::text
		FROM payment_periods pp
		JOIN service_periods sp ON sp.id = pp.period_id
		WHERE sp.customer_id = $1`, customerID)
	if err != nil {
		return nil, fmt.Errorf("paid period ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan paid period ids: %w", err)
	}
	return status.NewPaidSet(ids...), nil
}

// SetInvoice asigna la factura que cubre el pago.
func (r *PaymentRepo) SetInvoice(ctx context.Context, paymentID, invoiceID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE payments SET invoice_id = $2, updated_at = now() WHERE id = $1`, paymentID, invoiceID)
	if err != nil {
		return fmt.Errorf("set payment invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
