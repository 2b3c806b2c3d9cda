package entity

import "time"

// OperationalStatus estado operativo del cliente (derivado, salvo SUSPENDED/LOST que fija un operador).
type OperationalStatus string

// Estados operativos. OperationalUnset significa "aún no calculado".
const (
	OperationalUnset                    OperationalStatus = "UNSET"
	OperationalActive                   OperationalStatus = "ACTIVE"
	OperationalActiveWithPendingPayment OperationalStatus = "ACTIVE_WITH_PENDING_PAYMENT"
	OperationalPendingRenewal           OperationalStatus = "PENDING_RENEWAL"
	OperationalSuspended                OperationalStatus = "SUSPENDED"
	OperationalLost                     OperationalStatus = "LOST"
)

// Valid indica si s es un estado operativo conocido.
func (s OperationalStatus) Valid() bool {
	switch s {
	case OperationalUnset, OperationalActive, OperationalActiveWithPendingPayment,
		OperationalPendingRenewal, OperationalSuspended, OperationalLost:
		return true
	}
	return false
}

// Locked indica un estado fijado manualmente que el recálculo nunca sobrescribe.
func (s OperationalStatus) Locked() bool {
	return s == OperationalSuspended || s == OperationalLost
}

// RelationshipStatus eje comercial, independiente del operativo.
type RelationshipStatus string

const (
	RelationshipActive               RelationshipStatus = "ACTIVE"
	RelationshipUnderFollowUp        RelationshipStatus = "UNDER_FOLLOW_UP"
	RelationshipSuspendedNonPayment  RelationshipStatus = "SUSPENDED_NON_PAYMENT"
	RelationshipSuspendedNegotiation RelationshipStatus = "SUSPENDED_NEGOTIATION"
	RelationshipCancelledVoluntarily RelationshipStatus = "CANCELLED_VOLUNTARILY"
	RelationshipLostNoResponse       RelationshipStatus = "LOST_NO_RESPONSE"
	RelationshipEligibleForDeletion  RelationshipStatus = "ELIGIBLE_FOR_DELETION"
)

// Valid indica si s es un estado de relación conocido.
func (s RelationshipStatus) Valid() bool {
	switch s {
	case RelationshipActive, RelationshipUnderFollowUp, RelationshipSuspendedNonPayment,
		RelationshipSuspendedNegotiation, RelationshipCancelledVoluntarily,
		RelationshipLostNoResponse, RelationshipEligibleForDeletion:
		return true
	}
	return false
}

// Customer representa un cliente con suscripción (datos fiscales para CFDI incluidos).
type Customer struct {
	ID                 string
	CommercialName     string
	Alias              string
	AdminContact       string
	BillingContact     string
	Notes              string
	LegalName          string
	RFC                string
	FiscalRegime       string
	CFDIUsage          string
	BillingEmail       string
	OperationalStatus  OperationalStatus
	RelationshipStatus RelationshipStatus
	InvoiceRequired    bool // los pagos sólo se aplican a periodos con factura generada
	IsDeleted          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
