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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, customer_id, service_period_id, status, subtotal_amount, tax_amount, total_amount, currency,
	invoice_number, invoice_url, generated_date, paid_date, paid_by_payment_id, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CustomerID, &inv.ServicePeriodID, &inv.Status, &inv.SubtotalAmount, &inv.TaxAmount, &inv.TotalAmount, &inv.Currency,
		&inv.InvoiceNumber, &inv.InvoiceURL, &inv.GeneratedDate, &inv.PaidDate, &inv.PaidByPaymentID, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserta la factura; un segundo documento para el mismo periodo es ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CustomerID, inv.ServicePeriodID, inv.Status, inv.SubtotalAmount, inv.TaxAmount, inv.TotalAmount, inv.Currency,
		inv.InvoiceNumber, inv.InvoiceURL, inv.GeneratedDate, inv.PaidDate, inv.PaidByPaymentID, inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID devuelve la factura o (nil, nil).
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByPeriod devuelve la factura del periodo o (nil, nil).
func (r *InvoiceRepo) GetByPeriod(ctx context.Context, periodID string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE service_period_id = $1`, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by period: %w", err)
	}
	return inv, nil
}

// List facturas más recientes primero, filtradas por cliente y estado.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE ($1 = '' OR customer_id::text = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC`, f.CustomerID, status)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Update reescribe estado, montos y datos de emisión/pago.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET status = $2, subtotal_amount = $3, tax_amount = $4, total_amount = $5, currency = $6,
			invoice_number = $7, invoice_url = $8, generated_date = $9, paid_date = $10,
			paid_by_payment_id = $11, notes = $12, updated_at = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.Status, inv.SubtotalAmount, inv.TaxAmount, inv.TotalAmount, inv.Currency,
		inv.InvoiceNumber, inv.InvoiceURL, inv.GeneratedDate, inv.PaidDate,
		inv.PaidByPaymentID, inv.Notes, inv.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la factura (sólo PENDING, lo decide el caso de uso).
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `UPDATE payments SET invoice_id = NULL WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("unlink invoice payments: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
