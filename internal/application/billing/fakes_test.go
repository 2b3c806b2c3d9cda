package billing_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria que implementa todos los puertos de persistencia de billing.
// Run no revierte: las validaciones de los casos de uso ocurren antes de mutar.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu         sync.Mutex
	customers  map[string]entity.Customer
	agreements map[string]entity.CommercialAgreement
	periods    map[string]entity.ServicePeriod
	payments   map[string]entity.Payment
	links      []entity.PaymentPeriod
	invoices   map[string]entity.Invoice
	plans      map[string]entity.Plan
	locked     []string // clientes para los que se pidió lock, en orden
}

func newMemStore() *memStore {
	return &memStore{
		customers:  map[string]entity.Customer{},
		agreements: map[string]entity.CommercialAgreement{},
		periods:    map[string]entity.ServicePeriod{},
		payments:   map[string]entity.Payment{},
		invoices:   map[string]entity.Invoice{},
		plans:      map[string]entity.Plan{},
	}
}

func (s *memStore) repos() billing.Repos {
	return billing.Repos{
		Customers:  memCustomers{s},
		Agreements: memAgreements{s},
		Periods:    memPeriods{s},
		Payments:   memPayments{s},
		Invoices:   memInvoices{s},
		Plans:      memPlans{s},
	}
}

func (s *memStore) Run(_ context.Context, customerID string, fn func(r billing.Repos) error) error {
	if customerID != "" {
		s.mu.Lock()
		s.locked = append(s.locked, customerID)
		s.mu.Unlock()
	}
	return fn(s.repos())
}

// ── Customers ─────────────────────────────────────────────────────────────────

type memCustomers struct{ s *memStore }

func (m memCustomers) Create(_ context.Context, c *entity.Customer) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.customers[c.ID] = *c
	return nil
}

func (m memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m memCustomers) List(_ context.Context, f repository.CustomerFilter) ([]*entity.Customer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Customer
	for _, c := range m.s.customers {
		c := c
		if c.IsDeleted {
			continue
		}
		if f.OperationalStatus != nil && c.OperationalStatus != *f.OperationalStatus {
			continue
		}
		if f.RelationshipStatus != nil && c.RelationshipStatus != *f.RelationshipStatus {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.CommercialName), q) &&
				!strings.Contains(strings.ToLower(c.Alias), q) &&
				!strings.Contains(strings.ToLower(c.LegalName), q) {
				continue
			}
		}
		if f.BillingStatus != nil {
			found := false
			for _, p := range m.s.periods {
				if p.CustomerID == c.ID && p.BillingStatus == *f.BillingStatus {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommercialName < out[j].CommercialName })
	return out, nil
}

func (m memCustomers) Update(_ context.Context, c *entity.Customer) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	m.s.customers[c.ID] = *c
	return nil
}

func (m memCustomers) UpdateOperationalStatus(_ context.Context, id string, st entity.OperationalStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.OperationalStatus = st
	m.s.customers[id] = c
	return nil
}

func (m memCustomers) SoftDelete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := m.s.customers[id]
	c.IsDeleted = true
	m.s.customers[id] = c
	return nil
}

// ── Agreements ────────────────────────────────────────────────────────────────

type memAgreements struct{ s *memStore }

func (m memAgreements) Create(_ context.Context, a *entity.CommercialAgreement) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.agreements[a.ID] = *a
	return nil
}

func (m memAgreements) GetByID(_ context.Context, id string) (*entity.CommercialAgreement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.agreements[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m memAgreements) GetActive(_ context.Context, customerID string) (*entity.CommercialAgreement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []entity.CommercialAgreement
	for _, a := range m.s.agreements {
		if a.CustomerID == customerID {
			list = append(list, a)
		}
	}
	return status.ActiveAgreement(list), nil
}

func (m memAgreements) ListByCustomer(_ context.Context, customerID string) ([]*entity.CommercialAgreement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.CommercialAgreement
	for _, a := range m.s.agreements {
		a := a
		if a.CustomerID == customerID {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memAgreements) DeactivateActive(_ context.Context, customerID string, end time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, a := range m.s.agreements {
		if a.CustomerID == customerID && a.IsActive {
			a.IsActive = false
			e := end
			a.EndDate = &e
			m.s.agreements[id] = a
			n++
		}
	}
	return n, nil
}

func (m memAgreements) Deactivate(_ context.Context, id string, end time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a := m.s.agreements[id]
	a.IsActive = false
	a.EndDate = &end
	m.s.agreements[id] = a
	return nil
}

// ── Periods ───────────────────────────────────────────────────────────────────

type memPeriods struct{ s *memStore }

func (m memPeriods) Create(_ context.Context, p *entity.ServicePeriod) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.periods[p.ID] = *p
	return nil
}

func (m memPeriods) GetByID(_ context.Context, id string) (*entity.ServicePeriod, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.periods[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m memPeriods) ListByCustomer(_ context.Context, customerID string) ([]entity.ServicePeriod, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []entity.ServicePeriod
	for _, p := range m.s.periods {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m memPeriods) ListByBillingStatus(_ context.Context, bs entity.BillingStatus) ([]entity.ServicePeriod, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []entity.ServicePeriod
	for _, p := range m.s.periods {
		if p.BillingStatus == bs {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m memPeriods) Update(_ context.Context, p *entity.ServicePeriod) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.periods[p.ID] = *p
	return nil
}

func (m memPeriods) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.periods, id)
	return nil
}

func (m memPeriods) UpdateLifecycle(_ context.Context, customerID string, today time.Time, window int) (repository.LifecycleResult, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var res repository.LifecycleResult
	for id, p := range m.s.periods {
		if customerID != "" && p.CustomerID != customerID {
			continue
		}
		next := status.NextLifecycle(p, today, window)
		if next == p.Status {
			continue
		}
		switch next {
		case entity.PeriodExpired:
			res.Expired++
		case entity.PeriodExpiring:
			res.Expiring++
		}
		p.Status = next
		m.s.periods[id] = p
	}
	return res, nil
}

// ── Payments ──────────────────────────────────────────────────────────────────

type memPayments struct{ s *memStore }

func (m memPayments) Create(_ context.Context, p *entity.Payment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *p
	cp.PeriodIDs = nil
	m.s.payments[p.ID] = cp
	return nil
}

func (m memPayments) LinkPeriods(_ context.Context, paymentID string, periodIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, id := range periodIDs {
		m.s.links = append(m.s.links, entity.PaymentPeriod{PaymentID: paymentID, PeriodID: id})
	}
	return nil
}

func (m memPayments) withPeriods(p entity.Payment) *entity.Payment {
	for _, l := range m.s.links {
		if l.PaymentID == p.ID {
			p.PeriodIDs = append(p.PeriodIDs, l.PeriodID)
		}
	}
	return &p
}

func (m memPayments) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.payments[id]
	if !ok {
		return nil, nil
	}
	return m.withPeriods(p), nil
}

func (m memPayments) List(_ context.Context, customerID string) ([]*entity.Payment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range m.s.payments {
		if customerID == "" || p.CustomerID == customerID {
			out = append(out, m.withPeriods(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

func (m memPayments) ListByPeriod(_ context.Context, periodID string) ([]*entity.Payment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Payment
	for _, l := range m.s.links {
		if l.PeriodID == periodID {
			out = append(out, m.withPeriods(m.s.payments[l.PaymentID]))
		}
	}
	return out, nil
}

func (m memPayments) PaidPeriodIDs(_ context.Context, customerID string) (status.PaidSet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	paid := status.NewPaidSet()
	for _, l := range m.s.links {
		if p, ok := m.s.periods[l.PeriodID]; ok && p.CustomerID == customerID {
			paid[l.PeriodID] = struct{}{}
		}
	}
	return paid, nil
}

func (m memPayments) SetInvoice(_ context.Context, paymentID, invoiceID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p := m.s.payments[paymentID]
	id := invoiceID
	p.InvoiceID = &id
	m.s.payments[paymentID] = p
	return nil
}

// ── Invoices ──────────────────────────────────────────────────────────────────

type memInvoices struct{ s *memStore }

func (m memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if inv.ServicePeriodID != nil {
		for _, other := range m.s.invoices {
			if other.ServicePeriodID != nil && *other.ServicePeriodID == *inv.ServicePeriodID {
				return domain.ErrDuplicate
			}
		}
	}
	m.s.invoices[inv.ID] = *inv
	return nil
}

func (m memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	inv, ok := m.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (m memInvoices) GetByPeriod(_ context.Context, periodID string) (*entity.Invoice, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, inv := range m.s.invoices {
		if inv.ServicePeriodID != nil && *inv.ServicePeriodID == periodID {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (m memInvoices) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range m.s.invoices {
		inv := inv
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		out = append(out, &inv)
	}
	return out, nil
}

func (m memInvoices) Update(_ context.Context, inv *entity.Invoice) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.invoices[inv.ID] = *inv
	return nil
}

func (m memInvoices) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.invoices, id)
	return nil
}

// ── Plans ─────────────────────────────────────────────────────────────────────

type memPlans struct{ s *memStore }

func (m memPlans) Create(_ context.Context, p *entity.Plan) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.plans[p.ID] = *p
	return nil
}

func (m memPlans) GetByID(_ context.Context, id string) (*entity.Plan, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.plans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m memPlans) GetByCode(_ context.Context, code string) (*entity.Plan, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.plans {
		if p.Code == code {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (m memPlans) List(_ context.Context, _ repository.PlanFilter) ([]*entity.Plan, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Plan
	for _, p := range m.s.plans {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

func (m memPlans) Update(_ context.Context, p *entity.Plan) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.plans[p.ID] = *p
	return nil
}

func (m memPlans) AddPricing(context.Context, *entity.PlanPricing) error       { return nil }
func (m memPlans) DeletePricing(context.Context, string, string) error         { return nil }
func (m memPlans) AddUsageLimit(context.Context, *entity.PlanUsageLimit) error { return nil }
func (m memPlans) DeleteUsageLimit(context.Context, string, string) error      { return nil }
