package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
)

var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Con customerID no vacío toma pg_advisory_xact_lock sobre el cliente; se libera al terminar la tx.
func (r *TxRunner) Run(ctx context.Context, customerID string, fn func(repos billing.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if customerID != "" {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, customerID); err != nil {
			return fmt.Errorf("lock cliente: %w", err)
		}
	}

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos construye todos los repositorios de billing sobre q (pool o tx).
func NewRepos(q Querier) billing.Repos {
	return billing.Repos{
		Customers:  NewCustomerRepository(q),
		Agreements: NewAgreementRepository(q),
		Periods:    NewServicePeriodRepository(q),
		Payments:   NewPaymentRepository(q),
		Invoices:   NewInvoiceRepository(q),
		Plans:      NewPlanRepository(q),
	}
}
