package repository

import (
	"context"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// CustomerFilter filtros del listado de clientes. Los punteros nil no filtran.
type CustomerFilter struct {
	OperationalStatus  *entity.OperationalStatus
	RelationshipStatus *entity.RelationshipStatus
	BillingStatus      *entity.BillingStatus // clientes con al menos un periodo en ese estado
	Search             string                // nombre comercial, alias o razón social
	Limit              int
	Offset             int
}

// CustomerRepository define el puerto de persistencia para Customer.
// GetByID devuelve (nil, nil) si no existe; los clientes borrados se excluyen de List.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	// UpdateOperationalStatus persiste sólo el estado operativo.
	UpdateOperationalStatus(ctx context.Context, id string, status entity.OperationalStatus) error
	SoftDelete(ctx context.Context, id string) error
}
