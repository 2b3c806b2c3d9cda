package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus PENDING -> GENERATED -> PAID.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceGenerated InvoiceStatus = "GENERATED"
	InvoicePaid      InvoiceStatus = "PAID"
)

// Valid indica si s es un estado de factura conocido.
func (s InvoiceStatus) Valid() bool {
	return s == InvoicePending || s == InvoiceGenerated || s == InvoicePaid
}

// Issued indica que la factura ya fue emitida (GENERATED o PAID).
func (s InvoiceStatus) Issued() bool {
	return s == InvoiceGenerated || s == InvoicePaid
}

// Invoice factura informativa; no se timbra ni se envía al SAT.
type Invoice struct {
	ID              string
	CustomerID      string
	ServicePeriodID *string // a lo sumo una factura por periodo
	Status          InvoiceStatus
	SubtotalAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	Currency        string
	InvoiceNumber   string
	InvoiceURL      string
	GeneratedDate   *time.Time
	PaidDate        *time.Time
	PaidByPaymentID *string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeTotals calcula IVA y total a partir del subtotal (redondeo a centavos).
func ComputeTotals(subtotal, taxRate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(taxRate).Round(2)
	total = subtotal.Add(tax)
	return tax, total
}
