package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de cobranza.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

func (r *AnalyticsRepo) count(ctx context.Context, name, query string, args ...any) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// CountExpired clientes con algún periodo EXPIRED y ninguno vivo que cubra hoy o después.
func (r *AnalyticsRepo) CountExpired(ctx context.Context, today time.Time) (int, error) {
	const query = `
	SELECT COUNT(DISTINCT c.id)
	FROM customers c
	JOIN service_periods sp ON sp.customer_id = c.id AND sp.status = 'EXPIRED'
	WHERE NOT c.is_deleted
	  AND NOT EXISTS (
	      SELECT 1 FROM service_periods cur
	      WHERE cur.customer_id = c.id
	        AND cur.status IN ('ACTIVE', 'EXPIRING')
	        AND cur.end_date >= $1
	  )`
	return r.count(ctx, "count expired", query, today)
}

// CountExpiring clientes con periodos vivos que terminan en [today, today+window].
func (r *AnalyticsRepo) CountExpiring(ctx context.Context, today time.Time, window int) (int, error) {
	const query = `
	SELECT COUNT(DISTINCT sp.customer_id)
	FROM service_periods sp
	JOIN customers c ON c.id = sp.customer_id AND NOT c.is_deleted
	WHERE sp.status IN ('ACTIVE', 'EXPIRING')
	  AND sp.end_date BETWEEN $1 AND $2`
	return r.count(ctx, "count expiring", query, today, today.AddDate(0, 0, window))
}

// CountSuspended clientes con estado operativo SUSPENDED.
func (r *AnalyticsRepo) CountSuspended(ctx context.Context) (int, error) {
	return r.count(ctx, "count suspended",
		`SELECT COUNT(*) FROM customers WHERE NOT is_deleted AND operational_status = 'SUSPENDED'`)
}

// CountPendingInvoices periodos con billing_status PENDING.
func (r *AnalyticsRepo) CountPendingInvoices(ctx context.Context) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM service_periods sp
	JOIN customers c ON c.id = sp.customer_id AND NOT c.is_deleted
	WHERE sp.billing_status = 'PENDING'`
	return r.count(ctx, "count pending invoices", query)
}

// CountRenewalsBetween convenios activos cuyo día de renovación cae en el rango.
// Con fromDay > toDay el rango cruza fin de mes: [fromDay, 31] ∪ [1, toDay].
func (r *AnalyticsRepo) CountRenewalsBetween(ctx context.Context, fromDay, toDay int) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM commercial_agreements a
	JOIN customers c ON c.id = a.customer_id AND NOT c.is_deleted
	WHERE a.is_active
	  AND CASE WHEN $1::int <= $2::int
	           THEN a.renewal_day BETWEEN $1 AND $2
	           ELSE a.renewal_day >= $1 OR a.renewal_day <= $2
	      END`
	return r.count(ctx, "count renewals", query, fromDay, toDay)
}
