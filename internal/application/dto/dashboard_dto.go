package dto

// DashboardStatsDTO respuesta de GET /api/dashboard/stats.
type DashboardStatsDTO struct {
	ExpiredCount             int    `json:"expired_count"`  // clientes con periodos vencidos y sin periodo vigente
	ExpiringCount            int    `json:"expiring_count"` // clientes con periodos que vencen en la ventana
	SuspendedCount           int    `json:"suspended_count"`
	PendingInvoicesCount     int    `json:"pending_invoices_count"`  // periodos con billing_status PENDING
	PaymentsExpectedToday    int    `json:"payments_expected_today"` // convenios cuyo día de renovación es hoy
	PaymentsExpectedThisWeek int    `json:"payments_expected_this_week"`
	DateLabel                string `json:"date_label"` // ej: "Enero 2024"
}
