package repository

import (
	"context"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// PaymentRepository define el puerto de persistencia para Payment y payment_periods.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	LinkPeriods(ctx context.Context, paymentID string, periodIDs []string) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	// List devuelve los pagos (con sus PeriodIDs); customerID vacío = todos.
	List(ctx context.Context, customerID string) ([]*entity.Payment, error)
	ListByPeriod(ctx context.Context, periodID string) ([]*entity.Payment, error)
	// PaidPeriodIDs periodos del cliente con al menos un pago vinculado (una sola consulta).
	PaidPeriodIDs(ctx context.Context, customerID string) (status.PaidSet, error)
	SetInvoice(ctx context.Context, paymentID, invoiceID string) error
}
