package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
	"github.com/jhoicas/Cobranza-api/pkg/clock"
	"github.com/jhoicas/Cobranza-api/pkg/logger"
)

// StatusService orquesta el actualizador de ciclo de vida y los calculadores de estado.
//
// Flujo de Refresh (una transacción con lock por cliente):
//  1. UpdateLifecycle del cliente (ACTIVE -> EXPIRING -> EXPIRED).
//  2. Carga cliente, periodos, convenio activo y periodos pagados.
//  3. status.Compute.
//  4. Persiste operational_status sólo si difiere del guardado.
type StatusService struct {
	tx       TxRunner
	repos    Repos
	clock    clock.Clock
	settings Settings
	metrics  Metrics
	log      *logger.Logger
}

// NewStatusService construye el servicio. repos se usa para lecturas fuera de transacción.
func NewStatusService(tx TxRunner, repos Repos, clk clock.Clock, settings Settings, log *logger.Logger) *StatusService {
	if log == nil {
		log = logger.Nop()
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.MaxCoveragePeriods <= 0 {
		settings.MaxCoveragePeriods = DefaultMaxCoveragePeriods
	}
	return &StatusService{tx: tx, repos: repos, clock: clk, settings: settings, metrics: nopMetrics{}, log: log.Component("status")}
}

// WithMetrics asigna el registrador de métricas.
func (s *StatusService) WithMetrics(m Metrics) *StatusService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// Today día calendario actual en la zona del negocio.
func (s *StatusService) Today() time.Time {
	return status.Today(s.clock.Now(), s.settings.Location)
}

// Now instante actual según el reloj del servicio.
func (s *StatusService) Now() time.Time {
	return s.clock.Now()
}

// Settings parámetros con que se construyó el servicio.
func (s *StatusService) Settings() Settings {
	return s.settings
}

// UpdatePeriodStatuses ejecuta el actualizador de ciclo de vida. customerID vacío = todos.
func (s *StatusService) UpdatePeriodStatuses(ctx context.Context, customerID string) (repository.LifecycleResult, error) {
	return s.updateLifecycle(ctx, s.repos.Periods, customerID)
}

func (s *StatusService) updateLifecycle(ctx context.Context, periods repository.ServicePeriodRepository, customerID string) (repository.LifecycleResult, error) {
	res, err := periods.UpdateLifecycle(ctx, customerID, s.Today(), s.settings.ExpiringWindowDays)
	if err != nil {
		return res, fmt.Errorf("actualizar ciclo de vida: %w", err)
	}
	s.metrics.LifecycleTransitions(entity.PeriodExpired, res.Expired)
	s.metrics.LifecycleTransitions(entity.PeriodExpiring, res.Expiring)
	if res.Expired > 0 || res.Expiring > 0 {
		s.log.Debug().
			Str("customer_id", customerID).
			Int64("expired", res.Expired).
			Int64("expiring", res.Expiring).
			Msg("periodos actualizados")
	}
	return res, nil
}

// CalculateOperational calcula (sin persistir) el estado operativo del cliente.
// Devuelve domain.ErrNotFound si el cliente no existe.
func (s *StatusService) CalculateOperational(ctx context.Context, customerID string) (entity.OperationalStatus, error) {
	in, err := s.loadInput(ctx, s.repos, customerID)
	if err != nil {
		return "", err
	}
	return status.Compute(*in).Operational, nil
}

// Refresh actualiza periodos, recalcula y persiste el estado del cliente en una transacción.
func (s *StatusService) Refresh(ctx context.Context, customerID string) (status.Snapshot, error) {
	var snap status.Snapshot
	err := s.tx.Run(ctx, customerID, func(r Repos) error {
		var err error
		snap, err = s.RefreshInTx(ctx, r, customerID)
		return err
	})
	return snap, err
}

// RefreshInTx igual que Refresh pero con los repos de una transacción ya abierta
// (el caller debe haber tomado el lock del cliente).
func (s *StatusService) RefreshInTx(ctx context.Context, r Repos, customerID string) (status.Snapshot, error) {
	if _, err := s.updateLifecycle(ctx, r.Periods, customerID); err != nil {
		return status.Snapshot{}, err
	}
	in, err := s.loadInput(ctx, r, customerID)
	if err != nil {
		return status.Snapshot{}, err
	}
	snap := status.Compute(*in)
	stored := in.Customer.OperationalStatus
	if snap.Drift(stored) {
		if err := r.Customers.UpdateOperationalStatus(ctx, customerID, snap.Operational); err != nil {
			return status.Snapshot{}, fmt.Errorf("persistir estado operativo: %w", err)
		}
		s.metrics.StatusDrift(stored, snap.Operational)
		s.log.Info().
			Str("customer_id", customerID).
			Str("from", string(stored)).
			Str("to", string(snap.Operational)).
			Msg("estado operativo actualizado")
	}
	return snap, nil
}

func (s *StatusService) loadInput(ctx context.Context, r Repos, customerID string) (*status.Input, error) {
	customer, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if customer == nil || customer.IsDeleted {
		return nil, domain.ErrNotFound
	}
	periods, err := r.Periods.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("listar periodos: %w", err)
	}
	agreement, err := r.Agreements.GetActive(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("obtener convenio activo: %w", err)
	}
	paid, err := r.Payments.PaidPeriodIDs(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("periodos pagados: %w", err)
	}
	return &status.Input{
		Customer:  *customer,
		Periods:   periods,
		Agreement: agreement,
		Paid:      paid,
		Today:     s.Today(),
		Policy:    s.settings.Policy,
	}, nil
}

// RefreshAll ejecuta el actualizador global y recalcula cada cliente no borrado.
func (s *StatusService) RefreshAll(ctx context.Context) (*dto.RefreshResult, error) {
	res, err := s.UpdatePeriodStatuses(ctx, "")
	if err != nil {
		return nil, err
	}
	customers, err := s.repos.Customers.List(ctx, repository.CustomerFilter{})
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	out := &dto.RefreshResult{Expired: res.Expired, Expiring: res.Expiring}
	for _, c := range customers {
		snap, err := s.Refresh(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("recalcular cliente %s: %w", c.ID, err)
		}
		out.Customers++
		if snap.Operational != c.OperationalStatus {
			out.Drifted++
		}
	}
	return out, nil
}

// Collections clientes que requieren gestión de cobranza: estado financiero distinto
// de PAID u operativo distinto de ACTIVE. Ordenados por días vencidos (desc).
func (s *StatusService) Collections(ctx context.Context) ([]dto.CollectionItem, error) {
	customers, err := s.repos.Customers.List(ctx, repository.CustomerFilter{})
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}

	type row struct {
		item    dto.CollectionItem
		overdue int
	}
	rows := make([]row, 0, len(customers))
	for _, c := range customers {
		snap, err := s.Refresh(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("recalcular cliente %s: %w", c.ID, err)
		}
		if snap.Financial == status.FinancialPaid && snap.Operational == entity.OperationalActive {
			continue
		}
		overdue := -1
		if snap.DaysOverdue != nil {
			overdue = *snap.DaysOverdue
		}
		rows = append(rows, row{
			item: dto.CollectionItem{
				CustomerID:     c.ID,
				CommercialName: c.CommercialName,
				Status:         ToStatusResponse(snap),
			},
			overdue: overdue,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].overdue != rows[j].overdue {
			return rows[i].overdue > rows[j].overdue
		}
		return strings.ToLower(rows[i].item.CommercialName) < strings.ToLower(rows[j].item.CommercialName)
	})

	out := make([]dto.CollectionItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.item)
	}
	return out, nil
}
