package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/period"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
	"github.com/jhoicas/Cobranza-api/pkg/logger"
)

// Modos de registro de un pago (etiqueta de métricas).
const (
	PaymentModeExplicit = "explicit"
	PaymentModeCoverage = "coverage"
)

// PaymentUseCase registra pagos y los vincula a periodos.
type PaymentUseCase struct {
	repos     Repos
	tx        TxRunner
	statusSvc *StatusService
	metrics   Metrics
	log       *logger.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(repos Repos, tx TxRunner, statusSvc *StatusService, log *logger.Logger) *PaymentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PaymentUseCase{repos: repos, tx: tx, statusSvc: statusSvc, metrics: nopMetrics{}, log: log.Component("payments")}
}

// WithMetrics asigna el registrador de métricas.
func (uc *PaymentUseCase) WithMetrics(m Metrics) *PaymentUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// Create registra un pago CONFIRMED en la moneda del convenio activo.
//
// Con ServicePeriodIDs vincula periodos existentes del cliente (si el cliente requiere
// factura, cada periodo debe tenerla GENERATED o PAID). Sin ellos genera
// floor(monto / subtotal del convenio) periodos a continuación del último.
func (uc *PaymentUseCase) Create(ctx context.Context, in dto.CreatePaymentRequest) (*dto.PaymentMutationResponse, error) {
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id es obligatorio", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount debe ser mayor a cero", domain.ErrInvalidInput)
	}
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method == "" {
		method = entity.MethodOther
	}
	if !entity.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: method %q", domain.ErrInvalidInput, in.Method)
	}
	paymentDate := uc.statusSvc.Today()
	if in.PaymentDate != "" {
		d, err := dto.ParseDate(in.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		paymentDate = d
	}

	now := uc.statusSvc.Now()
	payment := &entity.Payment{
		ID:          uuid.New().String(),
		CustomerID:  in.CustomerID,
		Amount:      in.Amount,
		PaymentDate: paymentDate,
		Method:      method,
		Reference:   in.Reference,
		Notes:       in.Notes,
		Status:      entity.PaymentConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var (
		created []entity.ServicePeriod
		snap    status.Snapshot
		mode    = PaymentModeCoverage
	)
	if len(in.ServicePeriodIDs) > 0 {
		mode = PaymentModeExplicit
	}

	err := uc.tx.Run(ctx, in.CustomerID, func(r Repos) error {
		customer, err := r.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil || customer.IsDeleted {
			return domain.ErrNotFound
		}
		agreement, err := r.Agreements.GetActive(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if agreement == nil {
			return domain.ErrNoActiveAgreement
		}
		payment.Currency = agreement.Currency

		var periodIDs []string
		if mode == PaymentModeExplicit {
			periodIDs, err = uc.checkExplicitPeriods(ctx, r, customer, in.ServicePeriodIDs)
			if err != nil {
				return err
			}
			if err := r.Payments.Create(ctx, payment); err != nil {
				return err
			}
		} else {
			count := period.CoverageCount(payment.Amount, agreement.SubtotalAmount)
			if limit := uc.statusSvc.Settings().MaxCoveragePeriods; count > limit {
				return fmt.Errorf("%w: el pago cubre %d periodos; máximo %d", domain.ErrInvalidInput, count, limit)
			}
			if err := r.Payments.Create(ctx, payment); err != nil {
				return err
			}
			created, err = uc.generateCoverage(ctx, r, customer, agreement, payment, count)
			if err != nil {
				return err
			}
			for _, p := range created {
				periodIDs = append(periodIDs, p.ID)
			}
		}

		if len(periodIDs) > 0 {
			if err := r.Payments.LinkPeriods(ctx, payment.ID, periodIDs); err != nil {
				return err
			}
		}
		payment.PeriodIDs = periodIDs
		snap, err = uc.statusSvc.RefreshInTx(ctx, r, in.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.PaymentRecorded(mode, len(payment.PeriodIDs))
	if len(payment.PeriodIDs) == 0 {
		uc.log.Warn().
			Str("customer_id", in.CustomerID).
			Str("payment_id", payment.ID).
			Str("amount", in.Amount.String()).
			Msg("pago menor al subtotal del convenio: no cubre ningún periodo")
	}

	out := &dto.PaymentMutationResponse{
		Payment:        toPaymentResponse(payment),
		CreatedPeriods: make([]dto.PeriodResponse, 0, len(created)),
		Status:         ToStatusResponse(snap),
	}
	paid := status.NewPaidSet(payment.PeriodIDs...)
	for i := range created {
		out.CreatedPeriods = append(out.CreatedPeriods, toPeriodResponse(&created[i], paid))
	}
	return out, nil
}

// checkExplicitPeriods valida que los periodos existan, sean del cliente y, si aplica,
// tengan factura emitida. Devuelve los IDs sin duplicados.
func (uc *PaymentUseCase) checkExplicitPeriods(ctx context.Context, r Repos, customer *entity.Customer, ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, err := r.Periods.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: periodo %s", domain.ErrNotFound, id)
		}
		if p.CustomerID != customer.ID {
			return nil, fmt.Errorf("%w: el periodo %s es de otro cliente", domain.ErrInvalidInput, id)
		}
		if customer.InvoiceRequired {
			inv, err := r.Invoices.GetByPeriod(ctx, id)
			if err != nil {
				return nil, err
			}
			if inv == nil || !inv.Status.Issued() {
				return nil, fmt.Errorf("%w: periodo %s", domain.ErrInvoiceRequired, id)
			}
		}
		out = append(out, id)
	}
	return out, nil
}

// generateCoverage crea los periodos que cubre el pago a partir del día siguiente al último fin.
func (uc *PaymentUseCase) generateCoverage(ctx context.Context, r Repos, customer *entity.Customer, agreement *entity.CommercialAgreement, payment *entity.Payment, count int) ([]entity.ServicePeriod, error) {
	if count <= 0 {
		return nil, nil
	}
	existing, err := r.Periods.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	settings := uc.statusSvc.Settings()
	today := uc.statusSvc.Today()
	from := period.NextStart(existing, payment.PaymentDate)

	spans := period.CoverageSchedule(from, count, *agreement)
	out := make([]entity.ServicePeriod, 0, len(spans))
	for _, span := range spans {
		start := span.Start
		now := uc.statusSvc.Now()
		cycle := agreement.BillingCycle
		p := entity.ServicePeriod{
			ID:                   uuid.New().String(),
			CustomerID:           customer.ID,
			StartDate:            span.Start,
			EndDate:              span.End,
			SubtotalAmount:       agreement.SubtotalAmount,
			Currency:             agreement.Currency,
			Origin:               entity.OriginPayment,
			Status:               status.InitialLifecycle(span.Start, span.End, today, settings.ExpiringWindowDays),
			BillingStatus:        entity.BillingPending,
			SuggestedInvoiceDate: &start,
			Frequency:            &cycle,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := r.Periods.Create(ctx, &p); err != nil {
			return nil, err
		}
		if customer.InvoiceRequired {
			if err := r.Invoices.Create(ctx, newPendingInvoice(&p, settings.TaxRate, now)); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// List lista pagos (con periodos vinculados); customerID vacío = todos.
func (uc *PaymentUseCase) List(ctx context.Context, customerID string) ([]dto.PaymentResponse, error) {
	list, err := uc.repos.Payments.List(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}
