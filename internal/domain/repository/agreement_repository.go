package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// AgreementRepository define el puerto de persistencia para CommercialAgreement.
type AgreementRepository interface {
	Create(ctx context.Context, agreement *entity.CommercialAgreement) error
	GetByID(ctx context.Context, id string) (*entity.CommercialAgreement, error)
	// GetActive devuelve el convenio activo del cliente o (nil, nil).
	GetActive(ctx context.Context, customerID string) (*entity.CommercialAgreement, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.CommercialAgreement, error)
	// DeactivateActive desactiva todos los convenios activos del cliente y devuelve cuántos.
	DeactivateActive(ctx context.Context, customerID string, endDate time.Time) (int64, error)
	Deactivate(ctx context.Context, id string, endDate time.Time) error
}
