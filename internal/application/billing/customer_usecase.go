package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// CustomerUseCase casos de uso para clientes. Toda lectura recalcula el estado y persiste la deriva.
type CustomerUseCase struct {
	repos     Repos
	tx        TxRunner
	statusSvc *StatusService
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repos Repos, tx TxRunner, statusSvc *StatusService) *CustomerUseCase {
	return &CustomerUseCase{repos: repos, tx: tx, statusSvc: statusSvc}
}

// Create crea un nuevo cliente y calcula su estado inicial.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.CommercialName)
	if name == "" {
		return nil, fmt.Errorf("%w: commercial_name es obligatorio", domain.ErrInvalidInput)
	}
	now := uc.statusSvc.Now()
	customer := &entity.Customer{
		ID:                 uuid.New().String(),
		CommercialName:     name,
		Alias:              in.Alias,
		AdminContact:       in.AdminContact,
		BillingContact:     in.BillingContact,
		Notes:              in.Notes,
		LegalName:          in.LegalName,
		RFC:                strings.ToUpper(strings.TrimSpace(in.RFC)),
		FiscalRegime:       in.FiscalRegime,
		CFDIUsage:          in.CFDIUsage,
		BillingEmail:       in.BillingEmail,
		InvoiceRequired:    in.InvoiceRequired,
		OperationalStatus:  entity.OperationalUnset,
		RelationshipStatus: entity.RelationshipActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	var snap status.Snapshot
	err := uc.tx.Run(ctx, customer.ID, func(r Repos) error {
		if err := r.Customers.Create(ctx, customer); err != nil {
			return err
		}
		var err error
		snap, err = uc.statusSvc.RefreshInTx(ctx, r, customer.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	customer.OperationalStatus = snap.Operational
	out := toCustomerResponse(customer)
	st := ToStatusResponse(snap)
	out.Status = &st
	return &out, nil
}

// Get devuelve el cliente con convenios, periodos (con factura), pagos y su estado recalculado.
func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*dto.CustomerDetailResponse, error) {
	snap, err := uc.statusSvc.Refresh(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := uc.repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.IsDeleted {
		return nil, domain.ErrNotFound
	}

	agreements, err := uc.repos.Agreements.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listar convenios: %w", err)
	}
	periods, err := uc.repos.Periods.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listar periodos: %w", err)
	}
	paid, err := uc.repos.Payments.PaidPeriodIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("periodos pagados: %w", err)
	}
	payments, err := uc.repos.Payments.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listar pagos: %w", err)
	}
	invoices, err := uc.repos.Invoices.List(ctx, repository.InvoiceFilter{CustomerID: id})
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	byPeriod := make(map[string]*entity.Invoice, len(invoices))
	for _, inv := range invoices {
		if inv.ServicePeriodID != nil {
			byPeriod[*inv.ServicePeriodID] = inv
		}
	}

	out := &dto.CustomerDetailResponse{
		CustomerResponse: toCustomerResponse(customer),
		Agreements:       make([]dto.AgreementResponse, 0, len(agreements)),
		Periods:          make([]dto.PeriodResponse, 0, len(periods)),
		Payments:         make([]dto.PaymentResponse, 0, len(payments)),
	}
	st := ToStatusResponse(snap)
	out.Status = &st
	for _, a := range agreements {
		out.Agreements = append(out.Agreements, toAgreementResponse(a))
	}
	for i := range periods {
		pr := toPeriodResponse(&periods[i], paid)
		if inv, ok := byPeriod[periods[i].ID]; ok {
			ir := toInvoiceResponse(inv)
			pr.Invoice = &ir
		}
		out.Periods = append(out.Periods, pr)
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, toPaymentResponse(p))
	}
	return out, nil
}

// List lista clientes no borrados aplicando filtros; recalcula el estado de cada uno.
func (uc *CustomerUseCase) List(ctx context.Context, q dto.CustomerListQuery) ([]dto.CustomerResponse, error) {
	filter := repository.CustomerFilter{Search: strings.TrimSpace(q.Search), Limit: q.Limit, Offset: q.Offset}
	if q.OperationalStatus != "" {
		s := entity.OperationalStatus(q.OperationalStatus)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: operational_status %q", domain.ErrInvalidInput, q.OperationalStatus)
		}
		filter.OperationalStatus = &s
	}
	if q.RelationshipStatus != "" {
		s := entity.RelationshipStatus(q.RelationshipStatus)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: relationship_status %q", domain.ErrInvalidInput, q.RelationshipStatus)
		}
		filter.RelationshipStatus = &s
	}
	if q.BillingStatus != "" {
		s := entity.BillingStatus(q.BillingStatus)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: billing_status %q", domain.ErrInvalidInput, q.BillingStatus)
		}
		filter.BillingStatus = &s
	}

	// El estado guardado puede estar desfasado: con filtro operativo se recalculan todos
	// los candidatos y la paginación se aplica sobre el resultado.
	wantOp := filter.OperationalStatus
	if wantOp != nil {
		filter.OperationalStatus = nil
		filter.Limit, filter.Offset = 0, 0
	}

	list, err := uc.repos.Customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		snap, err := uc.statusSvc.Refresh(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if wantOp != nil && snap.Operational != *wantOp {
			continue
		}
		c.OperationalStatus = snap.Operational
		r := toCustomerResponse(c)
		st := ToStatusResponse(snap)
		r.Status = &st
		out = append(out, r)
	}
	if wantOp != nil {
		out = paginate(out, q.Offset, q.Limit)
	}
	return out, nil
}

// paginate recorta items a la ventana [offset, offset+limit). limit <= 0 no limita.
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Update aplica un PATCH parcial. Un operador puede fijar SUSPENDED/LOST (bloqueo) o UNSET para liberarlo.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	var (
		customer *entity.Customer
		snap     status.Snapshot
	)
	err := uc.tx.Run(ctx, id, func(r Repos) error {
		var err error
		customer, err = r.Customers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if customer == nil || customer.IsDeleted {
			return domain.ErrNotFound
		}
		if err := applyCustomerPatch(customer, in); err != nil {
			return err
		}
		customer.UpdatedAt = uc.statusSvc.Now()
		if err := r.Customers.Update(ctx, customer); err != nil {
			return err
		}
		snap, err = uc.statusSvc.RefreshInTx(ctx, r, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	customer.OperationalStatus = snap.Operational
	out := toCustomerResponse(customer)
	st := ToStatusResponse(snap)
	out.Status = &st
	return &out, nil
}

func applyCustomerPatch(c *entity.Customer, in dto.UpdateCustomerRequest) error {
	if in.CommercialName != nil {
		name := strings.TrimSpace(*in.CommercialName)
		if name == "" {
			return fmt.Errorf("%w: commercial_name no puede quedar vacío", domain.ErrInvalidInput)
		}
		c.CommercialName = name
	}
	setString(&c.Alias, in.Alias)
	setString(&c.AdminContact, in.AdminContact)
	setString(&c.BillingContact, in.BillingContact)
	setString(&c.Notes, in.Notes)
	setString(&c.LegalName, in.LegalName)
	setString(&c.FiscalRegime, in.FiscalRegime)
	setString(&c.CFDIUsage, in.CFDIUsage)
	setString(&c.BillingEmail, in.BillingEmail)
	if in.RFC != nil {
		c.RFC = strings.ToUpper(strings.TrimSpace(*in.RFC))
	}
	if in.InvoiceRequired != nil {
		c.InvoiceRequired = *in.InvoiceRequired
	}
	if in.OperationalStatus != nil {
		s := entity.OperationalStatus(*in.OperationalStatus)
		if !s.Valid() {
			return fmt.Errorf("%w: operational_status %q", domain.ErrInvalidInput, *in.OperationalStatus)
		}
		c.OperationalStatus = s
	}
	if in.RelationshipStatus != nil {
		s := entity.RelationshipStatus(*in.RelationshipStatus)
		if !s.Valid() {
			return fmt.Errorf("%w: relationship_status %q", domain.ErrInvalidInput, *in.RelationshipStatus)
		}
		c.RelationshipStatus = s
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Delete marca el cliente como borrado (soft delete).
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, id, func(r Repos) error {
		c, err := r.Customers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil || c.IsDeleted {
			return domain.ErrNotFound
		}
		return r.Customers.SoftDelete(ctx, id)
	})
}

// Status recalcula y devuelve el snapshot de estados del cliente.
func (uc *CustomerUseCase) Status(ctx context.Context, id string) (*dto.StatusResponse, error) {
	snap, err := uc.statusSvc.Refresh(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToStatusResponse(snap)
	return &out, nil
}
