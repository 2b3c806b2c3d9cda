package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// AgreementUseCase casos de uso para convenios comerciales.
type AgreementUseCase struct {
	repos     Repos
	tx        TxRunner
	statusSvc *StatusService
}

// NewAgreementUseCase construye el caso de uso.
func NewAgreementUseCase(repos Repos, tx TxRunner, statusSvc *StatusService) *AgreementUseCase {
	return &AgreementUseCase{repos: repos, tx: tx, statusSvc: statusSvc}
}

// Create desactiva los convenios activos del cliente y crea el nuevo, en una sola transacción.
func (uc *AgreementUseCase) Create(ctx context.Context, in dto.CreateAgreementRequest) (*dto.AgreementResponse, error) {
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id es obligatorio", domain.ErrInvalidInput)
	}
	if !in.SubtotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: subtotal_amount debe ser mayor a cero", domain.ErrInvalidInput)
	}
	cycle := entity.BillingCycle(in.BillingCycle)
	if !cycle.Valid() {
		return nil, fmt.Errorf("%w: billing_cycle %q", domain.ErrInvalidInput, in.BillingCycle)
	}
	if in.RenewalDay < 1 || in.RenewalDay > 31 {
		return nil, fmt.Errorf("%w: renewal_day debe estar entre 1 y 31", domain.ErrInvalidInput)
	}
	if in.GracePeriodDays < 0 {
		return nil, fmt.Errorf("%w: grace_period_days no puede ser negativo", domain.ErrInvalidInput)
	}
	today := uc.statusSvc.Today()
	start := today
	if in.StartDate != "" {
		d, err := dto.ParseDate(in.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		start = d
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = uc.statusSvc.Settings().DefaultCurrency
	}

	now := uc.statusSvc.Now()
	agreement := &entity.CommercialAgreement{
		ID:              uuid.New().String(),
		CustomerID:      in.CustomerID,
		SubtotalAmount:  in.SubtotalAmount,
		Currency:        currency,
		Description:     in.Description,
		BillingCycle:    cycle,
		RenewalDay:      in.RenewalDay,
		GracePeriodDays: in.GracePeriodDays,
		CustomerType:    in.CustomerType,
		SpecialRules:    in.SpecialRules,
		IsActive:        true,
		StartDate:       start,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := uc.tx.Run(ctx, in.CustomerID, func(r Repos) error {
		customer, err := r.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil || customer.IsDeleted {
			return domain.ErrNotFound
		}
		if _, err := r.Agreements.DeactivateActive(ctx, in.CustomerID, today); err != nil {
			return err
		}
		if err := r.Agreements.Create(ctx, agreement); err != nil {
			return err
		}
		_, err = uc.statusSvc.RefreshInTx(ctx, r, in.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toAgreementResponse(agreement)
	return &out, nil
}

// ListByCustomer lista los convenios del cliente (más reciente primero).
func (uc *AgreementUseCase) ListByCustomer(ctx context.Context, customerID string) ([]dto.AgreementResponse, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer_id es obligatorio", domain.ErrInvalidInput)
	}
	list, err := uc.repos.Agreements.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AgreementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAgreementResponse(a))
	}
	return out, nil
}

// Deactivate desactiva un convenio activo y recalcula el estado del cliente.
func (uc *AgreementUseCase) Deactivate(ctx context.Context, id string) (*dto.AgreementResponse, error) {
	existing, err := uc.repos.Agreements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	var agreement *entity.CommercialAgreement
	err = uc.tx.Run(ctx, existing.CustomerID, func(r Repos) error {
		var err error
		agreement, err = r.Agreements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if agreement == nil {
			return domain.ErrNotFound
		}
		if !agreement.IsActive {
			return fmt.Errorf("%w: el convenio ya está inactivo", domain.ErrConflict)
		}
		today := uc.statusSvc.Today()
		if err := r.Agreements.Deactivate(ctx, id, today); err != nil {
			return err
		}
		agreement.IsActive = false
		agreement.EndDate = &today
		_, err = uc.statusSvc.RefreshInTx(ctx, r, agreement.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toAgreementResponse(agreement)
	return &out, nil
}
