package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de un pago.
type PaymentStatus string

const (
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentReverted  PaymentStatus = "REVERTED"
)

// Métodos de pago aceptados.
const (
	MethodTransfer = "transfer"
	MethodCash     = "cash"
	MethodCheck    = "check"
	MethodOther    = "other"
)

// ValidPaymentMethod indica si m es un método conocido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodTransfer, MethodCash, MethodCheck, MethodOther:
		return true
	}
	return false
}

// Payment pago recibido. El monto es inmutable; sólo InvoiceID puede asignarse después.
type Payment struct {
	ID          string
	CustomerID  string
	Amount      decimal.Decimal
	Currency    string
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
	Status      PaymentStatus
	InvoiceID   *string
	PeriodIDs   []string // vía payment_periods
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentPeriod arista pago <-> periodo. Su existencia define "periodo pagado".
type PaymentPeriod struct {
	PaymentID string
	PeriodID  string
}
