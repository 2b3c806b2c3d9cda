package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// LifecycleResult filas movidas por UpdateLifecycle.
type LifecycleResult struct {
	Expired  int64
	Expiring int64
}

// ServicePeriodRepository define el puerto de persistencia para ServicePeriod.
type ServicePeriodRepository interface {
	Create(ctx context.Context, period *entity.ServicePeriod) error
	GetByID(ctx context.Context, id string) (*entity.ServicePeriod, error)
	ListByCustomer(ctx context.Context, customerID string) ([]entity.ServicePeriod, error)
	ListByBillingStatus(ctx context.Context, billingStatus entity.BillingStatus) ([]entity.ServicePeriod, error)
	Update(ctx context.Context, period *entity.ServicePeriod) error
	Delete(ctx context.Context, id string) error
	// UpdateLifecycle expira y marca por vencer en bloque. customerID vacío = todos los clientes.
	// No toca billing_status.
	UpdateLifecycle(ctx context.Context, customerID string, today time.Time, window int) (LifecycleResult, error)
}
