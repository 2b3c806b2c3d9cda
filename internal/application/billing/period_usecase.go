package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/period"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// PeriodUseCase casos de uso para periodos de servicio. Cada escritura termina con
// RefreshInTx del cliente dueño.
type PeriodUseCase struct {
	repos     Repos
	tx        TxRunner
	statusSvc *StatusService
}

// NewPeriodUseCase construye el caso de uso.
func NewPeriodUseCase(repos Repos, tx TxRunner, statusSvc *StatusService) *PeriodUseCase {
	return &PeriodUseCase{repos: repos, tx: tx, statusSvc: statusSvc}
}

// Create crea un periodo manual. Si el cliente requiere factura se crea una PENDING.
func (uc *PeriodUseCase) Create(ctx context.Context, in dto.CreatePeriodRequest) (*dto.PeriodMutationResponse, error) {
	if in.CustomerID == "" || in.StartDate == "" {
		return nil, fmt.Errorf("%w: customer_id y start_date son obligatorios", domain.ErrInvalidInput)
	}
	start, err := dto.ParseDate(in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var freq *entity.BillingCycle
	if in.Frequency != "" {
		f := entity.BillingCycle(in.Frequency)
		if !f.Valid() {
			return nil, fmt.Errorf("%w: frequency %q", domain.ErrInvalidInput, in.Frequency)
		}
		freq = &f
	}

	var end time.Time
	switch {
	case in.EndDate != "":
		end, err = dto.ParseDate(in.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	case freq != nil:
		end = status.AddDays(period.EndFromFrequency(start, *freq), -1)
	default:
		return nil, fmt.Errorf("%w: end_date o frequency son obligatorios", domain.ErrInvalidInput)
	}
	if !period.ValidRange(start, end) {
		return nil, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}

	origin := entity.OriginManualExtension
	if in.Origin != "" {
		origin = entity.PeriodOrigin(in.Origin)
		if !origin.Valid() {
			return nil, fmt.Errorf("%w: origin %q", domain.ErrInvalidInput, in.Origin)
		}
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity debe ser mayor a cero", domain.ErrInvalidInput)
	}

	var suggested *time.Time
	if in.SuggestedInvoiceDate != "" {
		d, err := dto.ParseDate(in.SuggestedInvoiceDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		suggested = &d
	}

	settings := uc.statusSvc.Settings()
	now := uc.statusSvc.Now()
	p := &entity.ServicePeriod{
		ID:                   uuid.New().String(),
		CustomerID:           in.CustomerID,
		StartDate:            start,
		EndDate:              end,
		Currency:             strings.ToUpper(strings.TrimSpace(in.Currency)),
		Origin:               origin,
		Status:               status.InitialLifecycle(start, end, uc.statusSvc.Today(), settings.ExpiringWindowDays),
		BillingStatus:        entity.BillingPending,
		SuggestedInvoiceDate: suggested,
		Notes:                in.Notes,
		Quantity:             in.Quantity,
		Frequency:            freq,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	var snap status.Snapshot
	err = uc.tx.Run(ctx, in.CustomerID, func(r Repos) error {
		customer, err := r.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil || customer.IsDeleted {
			return domain.ErrNotFound
		}

		if in.PlanID != "" {
			if err := uc.attachPlan(ctx, r, p, in.PlanID); err != nil {
				return err
			}
		}
		if err := uc.resolveAmount(ctx, r, p, in.SubtotalAmount); err != nil {
			return err
		}
		if p.Currency == "" {
			p.Currency = settings.DefaultCurrency
		}

		if err := r.Periods.Create(ctx, p); err != nil {
			return err
		}
		if customer.InvoiceRequired {
			if err := r.Invoices.Create(ctx, newPendingInvoice(p, settings.TaxRate, now)); err != nil {
				return err
			}
		}
		snap, err = uc.statusSvc.RefreshInTx(ctx, r, in.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.mutationResponse(ctx, p.ID, snap)
}

// attachPlan captura la copia inmutable del plan para la frecuencia del periodo.
func (uc *PeriodUseCase) attachPlan(ctx context.Context, r Repos, p *entity.ServicePeriod, planID string) error {
	plan, err := r.Plans.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("%w: plan %s", domain.ErrNotFound, planID)
	}
	if !plan.IsActive {
		return fmt.Errorf("%w: el plan %s está inactivo", domain.ErrInvalidInput, plan.Code)
	}
	if p.Frequency == nil {
		return fmt.Errorf("%w: frequency es obligatoria con plan_id", domain.ErrInvalidInput)
	}
	pricing, ok := plan.PricingFor(*p.Frequency)
	if !ok {
		return fmt.Errorf("%w: el plan %s no tiene precio %s", domain.ErrInvalidInput, plan.Code, *p.Frequency)
	}
	p.PlanID = &plan.ID
	p.PlanSnapshot = &entity.PlanSnapshot{
		PlanID:      plan.ID,
		Code:        plan.Code,
		Name:        plan.Name,
		Type:        plan.Type,
		Frequency:   pricing.Frequency,
		Price:       pricing.Price,
		Currency:    pricing.Currency,
		Conditions:  plan.Conditions,
		UsageLimits: append([]entity.PlanUsageLimit(nil), plan.UsageLimits...),
	}
	if p.Currency == "" {
		p.Currency = pricing.Currency
	}
	return nil
}

// resolveAmount subtotal explícito, o precio del plan por cantidad, o subtotal del convenio activo.
func (uc *PeriodUseCase) resolveAmount(ctx context.Context, r Repos, p *entity.ServicePeriod, explicit *decimal.Decimal) error {
	if explicit != nil {
		if explicit.IsNegative() {
			return fmt.Errorf("%w: subtotal_amount no puede ser negativo", domain.ErrInvalidInput)
		}
		p.SubtotalAmount = *explicit
		return nil
	}
	if p.PlanSnapshot != nil {
		qty := 1
		if p.Quantity != nil {
			qty = *p.Quantity
		}
		p.SubtotalAmount = p.PlanSnapshot.Price.Mul(decimal.NewFromInt(int64(qty)))
		return nil
	}
	agreement, err := r.Agreements.GetActive(ctx, p.CustomerID)
	if err != nil {
		return err
	}
	if agreement == nil {
		return fmt.Errorf("%w: subtotal_amount es obligatorio sin convenio activo", domain.ErrInvalidInput)
	}
	p.SubtotalAmount = agreement.SubtotalAmount
	if p.Currency == "" {
		p.Currency = agreement.Currency
	}
	return nil
}

// Update modifica fechas, estados o notas. Si cambia el fin y no se fija estado
// explícito, el estado se recalcula (un periodo EXPIRED extendido vuelve a ACTIVE/EXPIRING).
func (uc *PeriodUseCase) Update(ctx context.Context, id string, in dto.UpdatePeriodRequest) (*dto.PeriodMutationResponse, error) {
	existing, err := uc.getPeriod(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}

	var snap status.Snapshot
	err = uc.tx.Run(ctx, existing.CustomerID, func(r Repos) error {
		p, err := uc.getPeriod(ctx, r, id)
		if err != nil {
			return err
		}
		datesChanged := false
		if in.StartDate != nil {
			d, err := dto.ParseDate(*in.StartDate)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			p.StartDate = d
		}
		if in.EndDate != nil {
			d, err := dto.ParseDate(*in.EndDate)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			datesChanged = !status.Day(d).Equal(status.Day(p.EndDate))
			p.EndDate = d
		}
		if !period.ValidRange(p.StartDate, p.EndDate) {
			return fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
		}

		switch {
		case in.Status != nil:
			s := entity.PeriodStatus(*in.Status)
			if !s.Valid() {
				return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, *in.Status)
			}
			p.Status = s
		case datesChanged:
			p.Status = status.InitialLifecycle(p.StartDate, p.EndDate, uc.statusSvc.Today(), uc.statusSvc.Settings().ExpiringWindowDays)
		}
		if in.BillingStatus != nil {
			s := entity.BillingStatus(*in.BillingStatus)
			if !s.Valid() {
				return fmt.Errorf("%w: billing_status %q", domain.ErrInvalidInput, *in.BillingStatus)
			}
			p.BillingStatus = s
		}
		if in.Notes != nil {
			p.Notes = *in.Notes
		}
		p.UpdatedAt = uc.statusSvc.Now()
		if err := r.Periods.Update(ctx, p); err != nil {
			return err
		}
		snap, err = uc.statusSvc.RefreshInTx(ctx, r, p.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.mutationResponse(ctx, id, snap)
}

// Renew crea el periodo siguiente con la misma duración, a partir del día posterior al fin.
func (uc *PeriodUseCase) Renew(ctx context.Context, id string) (*dto.PeriodMutationResponse, error) {
	existing, err := uc.getPeriod(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}
	settings := uc.statusSvc.Settings()

	var (
		renewed *entity.ServicePeriod
		snap    status.Snapshot
	)
	err = uc.tx.Run(ctx, existing.CustomerID, func(r Repos) error {
		p, err := uc.getPeriod(ctx, r, id)
		if err != nil {
			return err
		}
		customer, err := r.Customers.GetByID(ctx, p.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil || customer.IsDeleted {
			return domain.ErrNotFound
		}

		span := period.RenewalDates(p.StartDate, p.EndDate)
		now := uc.statusSvc.Now()
		start := span.Start
		renewed = &entity.ServicePeriod{
			ID:                   uuid.New().String(),
			CustomerID:           p.CustomerID,
			StartDate:            span.Start,
			EndDate:              span.End,
			SubtotalAmount:       p.SubtotalAmount,
			Currency:             p.Currency,
			Origin:               entity.OriginRenewal,
			Status:               status.InitialLifecycle(span.Start, span.End, uc.statusSvc.Today(), settings.ExpiringWindowDays),
			BillingStatus:        entity.BillingPending,
			SuggestedInvoiceDate: &start,
			PlanID:               p.PlanID,
			PlanSnapshot:         p.PlanSnapshot,
			Quantity:             p.Quantity,
			Frequency:            p.Frequency,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := r.Periods.Create(ctx, renewed); err != nil {
			return err
		}
		if customer.InvoiceRequired {
			if err := r.Invoices.Create(ctx, newPendingInvoice(renewed, settings.TaxRate, now)); err != nil {
				return err
			}
		}
		snap, err = uc.statusSvc.RefreshInTx(ctx, r, p.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.mutationResponse(ctx, renewed.ID, snap)
}

// Delete elimina un periodo sin pagos vinculados. Una factura PENDING se elimina con él;
// una GENERATED/PAID lo impide.
func (uc *PeriodUseCase) Delete(ctx context.Context, id string) (*dto.StatusResponse, error) {
	existing, err := uc.getPeriod(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}

	var snap status.Snapshot
	err = uc.tx.Run(ctx, existing.CustomerID, func(r Repos) error {
		p, err := uc.getPeriod(ctx, r, id)
		if err != nil {
			return err
		}
		payments, err := r.Payments.ListByPeriod(ctx, id)
		if err != nil {
			return err
		}
		if len(payments) > 0 {
			return domain.ErrPeriodHasPayments
		}
		inv, err := r.Invoices.GetByPeriod(ctx, id)
		if err != nil {
			return err
		}
		if inv != nil {
			if inv.Status.Issued() {
				return fmt.Errorf("%w: la factura del periodo ya fue emitida", domain.ErrConflict)
			}
			if err := r.Invoices.Delete(ctx, inv.ID); err != nil {
				return err
			}
		}
		if err := r.Periods.Delete(ctx, id); err != nil {
			return err
		}
		snap, err = uc.statusSvc.RefreshInTx(ctx, r, p.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := ToStatusResponse(snap)
	return &out, nil
}

// ListPendingBilling periodos con billing_status PENDING y el estado de su factura.
func (uc *PeriodUseCase) ListPendingBilling(ctx context.Context) ([]dto.PendingBillingItem, error) {
	periods, err := uc.repos.Periods.ListByBillingStatus(ctx, entity.BillingPending)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	paidByCustomer := make(map[string]status.PaidSet)
	out := make([]dto.PendingBillingItem, 0, len(periods))
	for i := range periods {
		p := &periods[i]
		name, ok := names[p.CustomerID]
		if !ok {
			c, err := uc.repos.Customers.GetByID(ctx, p.CustomerID)
			if err != nil {
				return nil, err
			}
			if c != nil {
				name = c.CommercialName
			}
			names[p.CustomerID] = name
		}
		paid, ok := paidByCustomer[p.CustomerID]
		if !ok {
			paid, err = uc.repos.Payments.PaidPeriodIDs(ctx, p.CustomerID)
			if err != nil {
				return nil, err
			}
			paidByCustomer[p.CustomerID] = paid
		}
		item := dto.PendingBillingItem{Period: toPeriodResponse(p, paid), CommercialName: name}
		inv, err := uc.repos.Invoices.GetByPeriod(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			s := string(inv.Status)
			item.InvoiceStatus = &s
			ir := toInvoiceResponse(inv)
			item.Period.Invoice = &ir
		}
		out = append(out, item)
	}
	return out, nil
}

func (uc *PeriodUseCase) getPeriod(ctx context.Context, r Repos, id string) (*entity.ServicePeriod, error) {
	p, err := r.Periods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// mutationResponse relee el periodo tras el commit (el actualizador pudo cambiar su estado).
func (uc *PeriodUseCase) mutationResponse(ctx context.Context, periodID string, snap status.Snapshot) (*dto.PeriodMutationResponse, error) {
	p, err := uc.getPeriod(ctx, uc.repos, periodID)
	if err != nil {
		return nil, err
	}
	paid, err := uc.repos.Payments.PaidPeriodIDs(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}
	out := &dto.PeriodMutationResponse{Period: toPeriodResponse(p, paid), Status: ToStatusResponse(snap)}
	inv, err := uc.repos.Invoices.GetByPeriod(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		ir := toInvoiceResponse(inv)
		out.Period.Invoice = &ir
	}
	return out, nil
}

// newPendingInvoice factura informativa PENDING para un periodo.
func newPendingInvoice(p *entity.ServicePeriod, taxRate decimal.Decimal, now time.Time) *entity.Invoice {
	tax, total := entity.ComputeTotals(p.SubtotalAmount, taxRate)
	periodID := p.ID
	return &entity.Invoice{
		ID:              uuid.New().String(),
		CustomerID:      p.CustomerID,
		ServicePeriodID: &periodID,
		Status:          entity.InvoicePending,
		SubtotalAmount:  p.SubtotalAmount,
		TaxAmount:       tax,
		TotalAmount:     total,
		Currency:        p.Currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
