package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

// Repos repositorios atados a una misma transacción (o al pool fuera de ella).
type Repos struct {
	Customers  repository.CustomerRepository
	Agreements repository.AgreementRepository
	Periods    repository.ServicePeriodRepository
	Payments   repository.PaymentRepository
	Invoices   repository.InvoiceRepository
	Plans      repository.PlanRepository
}

// TxRunner ejecuta una función dentro de una transacción con repos atados a ella.
// Con customerID no vacío toma además un lock exclusivo por cliente hasta el commit,
// de modo que el recálculo y la escritura del estado no se intercalan con otra
// escritura del mismo cliente.
type TxRunner interface {
	Run(ctx context.Context, customerID string, fn func(r Repos) error) error
}

// Metrics observaciones del motor de estados. La implementación Prometheus vive en infraestructura.
type Metrics interface {
	LifecycleTransitions(to entity.PeriodStatus, n int64)
	StatusDrift(from, to entity.OperationalStatus)
	PaymentRecorded(mode string, periods int)
}

type nopMetrics struct{}

func (nopMetrics) LifecycleTransitions(entity.PeriodStatus, int64)                {}
func (nopMetrics) StatusDrift(entity.OperationalStatus, entity.OperationalStatus) {}
func (nopMetrics) PaymentRecorded(string, int)                                    {}

// InvoiceDocument datos necesarios para representar una factura informativa.
type InvoiceDocument struct {
	Invoice  *entity.Invoice
	Customer *entity.Customer
	Period   *entity.ServicePeriod // puede ser nil
	TaxRate  decimal.Decimal
}

// InvoicePDFGenerator puerto para generar la representación PDF.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// InvoiceXMLExporter puerto para exportar la factura como XML canónico.
// Devuelve el documento y el digest SHA-256 (hex) de su forma canónica.
type InvoiceXMLExporter interface {
	ExportInvoiceXML(doc InvoiceDocument) ([]byte, string, error)
}

// Settings parámetros del motor de cobranza.
type Settings struct {
	TaxRate            decimal.Decimal
	ExpiringWindowDays int
	DefaultCurrency    string
	Policy             status.Policy
	Location           *time.Location
	// MaxCoveragePeriods tope de periodos que un pago en modo cobertura puede generar.
	MaxCoveragePeriods int
}

// DefaultMaxCoveragePeriods diez años de periodos mensuales.
const DefaultMaxCoveragePeriods = 120

// DefaultSettings valores por defecto (IVA 16 %, ventana de 7 días, MXN, vinculación de pagos).
func DefaultSettings() Settings {
	return Settings{
		TaxRate:            decimal.NewFromFloat(0.16),
		ExpiringWindowDays: status.DefaultExpiringWindowDays,
		DefaultCurrency:    "MXN",
		Policy:             status.PolicyPaymentLinkage,
		Location:           time.UTC,
		MaxCoveragePeriods: DefaultMaxCoveragePeriods,
	}
}
