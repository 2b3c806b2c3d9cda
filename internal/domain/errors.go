package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrPeriodHasPayments      = errors.New("el periodo tiene pagos vinculados")
	ErrPaymentAlreadyInvoiced = errors.New("el pago ya está vinculado a otra factura")
	ErrNoActiveAgreement      = errors.New("el cliente no tiene convenio activo")
	ErrInvoiceExists          = errors.New("el periodo ya tiene factura")
	ErrPeriodWithoutPayment   = errors.New("el periodo no tiene pagos vinculados")
	ErrInvoiceRequired        = errors.New("el cliente requiere factura generada antes del pago")
)
