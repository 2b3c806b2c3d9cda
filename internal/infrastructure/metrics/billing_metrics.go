// Package metrics expone contadores Prometheus del motor de cobranza y de la API HTTP.
package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// Config etiquetas constantes de todas las series.
type Config struct {
	ServiceName string
	Environment string
}

var _ billing.Metrics = (*BillingMetrics)(nil)

// BillingMetrics implementa billing.Metrics y las métricas HTTP.
type BillingMetrics struct {
	lifecycle    *prometheus.CounterVec
	drift        *prometheus.CounterVec
	payments     *prometheus.CounterVec
	paidPeriods  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

// Billing devuelve el singleton registrado en el registry por defecto.
func Billing(cfg Config) *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return billingMetrics
}

// NewWithRegistry registra las métricas en registerer (pruebas, registries propios).
func NewWithRegistry(registerer prometheus.Registerer, cfg Config) *BillingMetrics {
	return newBillingMetrics(registerer, cfg)
}

func newBillingMetrics(registerer prometheus.Registerer, cfg Config) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "cobranza-api"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{"service": serviceName, "env": environment}

	m := &BillingMetrics{
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cobranza_period_lifecycle_transitions_total",
			Help:        "Periodos movidos por el actualizador de ciclo de vida, por estado destino.",
			ConstLabels: constLabels,
		}, []string{"to"}),
		drift: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cobranza_operational_status_drift_total",
			Help:        "Estados operativos corregidos al recalcular.",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cobranza_payments_recorded_total",
			Help:        "Pagos registrados por modo de aplicación.",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		paidPeriods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cobranza_payment_periods_linked_total",
			Help:        "Periodos vinculados a pagos por modo de aplicación.",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cobranza_http_requests_total",
			Help:        "Peticiones HTTP por ruta y código.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "cobranza_http_request_duration_seconds",
			Help:        "Latencia de peticiones HTTP por ruta.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
	}
	registerer.MustRegister(m.lifecycle, m.drift, m.payments, m.paidPeriods, m.httpRequests, m.httpDuration)
	return m
}

// LifecycleTransitions suma n periodos movidos al estado to.
func (m *BillingMetrics) LifecycleTransitions(to entity.PeriodStatus, n int64) {
	if n <= 0 {
		return
	}
	m.lifecycle.WithLabelValues(string(to)).Add(float64(n))
}

// StatusDrift cuenta una corrección de estado operativo.
func (m *BillingMetrics) StatusDrift(from, to entity.OperationalStatus) {
	m.drift.WithLabelValues(string(from), string(to)).Inc()
}

// PaymentRecorded cuenta un pago y los periodos que cubrió.
func (m *BillingMetrics) PaymentRecorded(mode string, periods int) {
	m.payments.WithLabelValues(mode).Inc()
	if periods > 0 {
		m.paidPeriods.WithLabelValues(mode).Add(float64(periods))
	}
}

// ObserveHTTP registra una petición ya respondida. route debe ser la plantilla, no la URL.
func (m *BillingMetrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
