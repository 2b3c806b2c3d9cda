package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `
	id, commercial_name, alias, admin_contact, billing_contact, notes, legal_name, rfc,
	fiscal_regime, cfdi_usage, billing_email, operational_status, relationship_status,
	invoice_required, is_deleted, created_at, updated_at`

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.CommercialName, &c.Alias, &c.AdminContact, &c.BillingContact, &c.Notes, &c.LegalName, &c.RFC,
		&c.FiscalRegime, &c.CFDIUsage, &c.BillingEmail, &c.OperationalStatus, &c.RelationshipStatus,
		&c.InvoiceRequired, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CommercialName, c.Alias, c.AdminContact, c.BillingContact, c.Notes, c.LegalName, c.RFC,
		c.FiscalRegime, c.CFDIUsage, c.BillingEmail, c.OperationalStatus, c.RelationshipStatus,
		c.InvoiceRequired, c.IsDeleted, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID (incluye borrados; el caller decide).
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// List lista clientes no borrados aplicando filtros; ordenados por nombre comercial.
func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]*entity.Customer, error) {
	var (
		where = []string{"NOT c.is_deleted"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.OperationalStatus != nil {
		where = append(where, "c.operational_status = "+arg(*f.OperationalStatus))
	}
	if f.RelationshipStatus != nil {
		where = append(where, "c.relationship_status = "+arg(*f.RelationshipStatus))
	}
	if f.BillingStatus != nil {
		where = append(where, "EXISTS (SELECT 1 FROM service_periods sp WHERE sp.customer_id = c.id AND sp.billing_status = "+arg(*f.BillingStatus)+")")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		where = append(where, "(c.commercial_name ILIKE "+p+" OR c.alias ILIKE "+p+" OR c.legal_name ILIKE "+p+" OR c.rfc ILIKE "+p+")")
	}

	query := `SELECT ` + customerColumns + `
		FROM customers c WHERE ` + strings.Join(where, " AND ") + ` ORDER BY c.commercial_name`
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza los datos editables del cliente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET commercial_name = $2, alias = $3, admin_contact = $4, billing_contact = $5,
			notes = $6, legal_name = $7, rfc = $8, fiscal_regime = $9, cfdi_usage = $10, billing_email = $11,
			operational_status = $12, relationship_status = $13, invoice_required = $14, updated_at = $15
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.CommercialName, c.Alias, c.AdminContact, c.BillingContact,
		c.Notes, c.LegalName, c.RFC, c.FiscalRegime, c.CFDIUsage, c.BillingEmail,
		c.OperationalStatus, c.RelationshipStatus, c.InvoiceRequired, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateOperationalStatus persiste sólo el estado operativo.
func (r *CustomerRepo) UpdateOperationalStatus(ctx context.Context, id string, status entity.OperationalStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE customers SET operational_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update operational status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el cliente como borrado.
func (r *CustomerRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE customers SET is_deleted = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
