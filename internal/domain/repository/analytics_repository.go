package repository

import (
	"context"
	"time"
)

// AnalyticsRepository define las consultas de lectura del dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// CountExpired clientes con algún periodo EXPIRED y sin periodo ACTIVE que termine hoy o después.
	CountExpired(ctx context.Context, today time.Time) (int, error)
	// CountExpiring clientes distintos con periodos ACTIVE/EXPIRING que terminan en [today, today+window].
	CountExpiring(ctx context.Context, today time.Time, window int) (int, error)
	CountSuspended(ctx context.Context) (int, error)
	CountPendingInvoices(ctx context.Context) (int, error)
	// CountRenewalsBetween convenios activos cuyo día de renovación cae en [fromDay, toDay].
	// Si fromDay > toDay el rango cruza fin de mes.
	CountRenewalsBetween(ctx context.Context, fromDay, toDay int) (int, error)
}
