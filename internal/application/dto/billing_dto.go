package dto

import (
	"github.com/shopspring/decimal"
)

// ── Clientes ──────────────────────────────────────────────────────────────────

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	CommercialName  string `json:"commercial_name"`
	Alias           string `json:"alias,omitempty"`
	AdminContact    string `json:"admin_contact,omitempty"`
	BillingContact  string `json:"billing_contact,omitempty"`
	Notes           string `json:"notes,omitempty"`
	LegalName       string `json:"legal_name,omitempty"`
	RFC             string `json:"rfc,omitempty"`
	FiscalRegime    string `json:"fiscal_regime,omitempty"`
	CFDIUsage       string `json:"cfdi_usage,omitempty"`
	BillingEmail    string `json:"billing_email,omitempty"`
	InvoiceRequired bool   `json:"invoice_required"`
}

// UpdateCustomerRequest body para PATCH /api/customers/:id. Los campos nil no se modifican.
type UpdateCustomerRequest struct {
	CommercialName     *string `json:"commercial_name,omitempty"`
	Alias              *string `json:"alias,omitempty"`
	AdminContact       *string `json:"admin_contact,omitempty"`
	BillingContact     *string `json:"billing_contact,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	LegalName          *string `json:"legal_name,omitempty"`
	RFC                *string `json:"rfc,omitempty"`
	FiscalRegime       *string `json:"fiscal_regime,omitempty"`
	CFDIUsage          *string `json:"cfdi_usage,omitempty"`
	BillingEmail       *string `json:"billing_email,omitempty"`
	InvoiceRequired    *bool   `json:"invoice_required,omitempty"`
	OperationalStatus  *string `json:"operational_status,omitempty"` // SUSPENDED/LOST bloquean; UNSET libera
	RelationshipStatus *string `json:"relationship_status,omitempty"`
}

// CustomerListQuery filtros de GET /api/customers.
type CustomerListQuery struct {
	OperationalStatus  string `query:"operational_status"`
	RelationshipStatus string `query:"relationship_status"`
	BillingStatus      string `query:"billing_status"`
	Search             string `query:"search"`
	PageRequest
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID                 string          `json:"id"`
	CommercialName     string          `json:"commercial_name"`
	Alias              string          `json:"alias,omitempty"`
	AdminContact       string          `json:"admin_contact,omitempty"`
	BillingContact     string          `json:"billing_contact,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	LegalName          string          `json:"legal_name,omitempty"`
	RFC                string          `json:"rfc,omitempty"`
	FiscalRegime       string          `json:"fiscal_regime,omitempty"`
	CFDIUsage          string          `json:"cfdi_usage,omitempty"`
	BillingEmail       string          `json:"billing_email,omitempty"`
	InvoiceRequired    bool            `json:"invoice_required"`
	OperationalStatus  string          `json:"operational_status"`
	RelationshipStatus string          `json:"relationship_status"`
	Status             *StatusResponse `json:"status,omitempty"`
}

// CustomerDetailResponse GET /api/customers/:id con relaciones.
type CustomerDetailResponse struct {
	CustomerResponse
	Agreements []AgreementResponse `json:"agreements"`
	Periods    []PeriodResponse    `json:"periods"`
	Payments   []PaymentResponse   `json:"payments"`
}

// StatusResponse snapshot de estados del cliente.
type StatusResponse struct {
	FinancialStatus    string  `json:"financial_status"`
	OperationalStatus  string  `json:"operational_status"`
	RelationshipStatus string  `json:"relationship_status"`
	DaysOverdue        *int    `json:"days_overdue"`
	NextPaymentDue     *string `json:"next_payment_due"`
}

// CollectionItem fila de la lista de cobranza.
type CollectionItem struct {
	CustomerID     string         `json:"customer_id"`
	CommercialName string         `json:"commercial_name"`
	Status         StatusResponse `json:"status"`
}

// RefreshResult resultado de POST /api/status/refresh.
type RefreshResult struct {
	Expired   int64 `json:"expired"`
	Expiring  int64 `json:"expiring"`
	Customers int   `json:"customers"`
	Drifted   int   `json:"drifted"`
}

// ── Convenios ─────────────────────────────────────────────────────────────────

// CreateAgreementRequest body para POST /api/agreements.
type CreateAgreementRequest struct {
	CustomerID      string          `json:"customer_id"`
	SubtotalAmount  decimal.Decimal `json:"subtotal_amount"`
	Currency        string          `json:"currency,omitempty"`
	Description     string          `json:"description,omitempty"`
	BillingCycle    string          `json:"billing_cycle"`
	RenewalDay      int             `json:"renewal_day"`
	GracePeriodDays int             `json:"grace_period_days"`
	CustomerType    string          `json:"customer_type,omitempty"`
	SpecialRules    string          `json:"special_rules,omitempty"`
	StartDate       string          `json:"start_date,omitempty"` // YYYY-MM-DD; hoy si va vacío
}

// AgreementResponse convenio en respuestas.
type AgreementResponse struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	SubtotalAmount  decimal.Decimal `json:"subtotal_amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description,omitempty"`
	BillingCycle    string          `json:"billing_cycle"`
	RenewalDay      int             `json:"renewal_day"`
	GracePeriodDays int             `json:"grace_period_days"`
	CustomerType    string          `json:"customer_type,omitempty"`
	SpecialRules    string          `json:"special_rules,omitempty"`
	IsActive        bool            `json:"is_active"`
	StartDate       string          `json:"start_date"`
	EndDate         *string         `json:"end_date,omitempty"`
}

// ── Periodos ──────────────────────────────────────────────────────────────────

// CreatePeriodRequest body para POST /api/periods.
type CreatePeriodRequest struct {
	CustomerID           string           `json:"customer_id"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date,omitempty"` // si falta y hay frequency, se calcula
	SubtotalAmount       *decimal.Decimal `json:"subtotal_amount,omitempty"`
	Currency             string           `json:"currency,omitempty"`
	Origin               string           `json:"origin,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	SuggestedInvoiceDate string           `json:"suggested_invoice_date,omitempty"`
	PlanID               string           `json:"plan_id,omitempty"`
	Quantity             *int             `json:"quantity,omitempty"`
	Frequency            string           `json:"frequency,omitempty"`
}

// UpdatePeriodRequest body para PATCH /api/periods/:id.
type UpdatePeriodRequest struct {
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Status        *string `json:"status,omitempty"`
	BillingStatus *string `json:"billing_status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// PeriodResponse periodo en respuestas.
type PeriodResponse struct {
	ID                   string           `json:"id"`
	CustomerID           string           `json:"customer_id"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	SubtotalAmount       decimal.Decimal  `json:"subtotal_amount"`
	Currency             string           `json:"currency"`
	Origin               string           `json:"origin"`
	Status               string           `json:"status"`
	BillingStatus        string           `json:"billing_status"`
	SuggestedInvoiceDate *string          `json:"suggested_invoice_date,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	PlanID               *string          `json:"plan_id,omitempty"`
	PlanName             string           `json:"plan_name,omitempty"`
	Quantity             *int             `json:"quantity,omitempty"`
	Frequency            *string          `json:"frequency,omitempty"`
	Paid                 bool             `json:"paid"`
	Invoice              *InvoiceResponse `json:"invoice,omitempty"`
}

// PeriodMutationResponse periodo afectado más el snapshot recalculado del cliente.
type PeriodMutationResponse struct {
	Period PeriodResponse `json:"period"`
	Status StatusResponse `json:"status"`
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

// CreatePaymentRequest body para POST /api/payments.
// Con ServicePeriodIDs vincula periodos existentes; sin ellos genera los periodos que cubre el monto.
type CreatePaymentRequest struct {
	CustomerID       string          `json:"customer_id"`
	PaymentDate      string          `json:"payment_date"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	Reference        string          `json:"reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	ServicePeriodIDs []string        `json:"service_period_ids,omitempty"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentDate string          `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      string          `json:"status"`
	InvoiceID   *string         `json:"invoice_id,omitempty"`
	PeriodIDs   []string        `json:"period_ids"`
}

// PaymentMutationResponse pago creado, periodos generados y snapshot del cliente.
type PaymentMutationResponse struct {
	Payment        PaymentResponse  `json:"payment"`
	CreatedPeriods []PeriodResponse `json:"created_periods"`
	Status         StatusResponse   `json:"status"`
}

// ── Facturas ──────────────────────────────────────────────────────────────────

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	ServicePeriodID string `json:"service_period_id"`
	Notes           string `json:"notes,omitempty"`
}

// MarkGeneratedRequest body para PATCH /api/invoices/:id/mark-generated.
type MarkGeneratedRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	InvoiceURL    string `json:"invoice_url,omitempty"`
	PaymentID     string `json:"payment_id,omitempty"`
}

// MarkPaidRequest body para PATCH /api/invoices/:id/mark-paid.
type MarkPaidRequest struct {
	PaymentID string `json:"payment_id"`
}

// InvoiceListQuery filtros de GET /api/invoices.
type InvoiceListQuery struct {
	CustomerID string `query:"customer_id"`
	Status     string `query:"status"`
}

// InvoiceResponse factura informativa en respuestas.
type InvoiceResponse struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	ServicePeriodID *string         `json:"service_period_id,omitempty"`
	Status          string          `json:"status"`
	SubtotalAmount  decimal.Decimal `json:"subtotal_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
	InvoiceURL      string          `json:"invoice_url,omitempty"`
	GeneratedDate   *string         `json:"generated_date,omitempty"`
	PaidDate        *string         `json:"paid_date,omitempty"`
	PaidByPaymentID *string         `json:"paid_by_payment_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// PendingBillingItem fila de GET /api/billing/pending.
type PendingBillingItem struct {
	Period         PeriodResponse `json:"period"`
	CommercialName string         `json:"commercial_name"`
	InvoiceStatus  *string        `json:"invoice_status"`
}
