package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the domain collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	PriceResolutions    *prometheus.CounterVec
	CreditDecisions     *prometheus.CounterVec
	OrdersCreated       prometheus.Counter
	OrderTransitions    *prometheus.CounterVec
	PaymentsRecorded    *prometheus.CounterVec
	InventoryMovements  *prometheus.CounterVec
	ProductStockGauge   *prometheus.GaugeVec
	DbOperationDuration *prometheus.HistogramVec
	AuthErrorsCounter   *prometheus.CounterVec
}

// NewMetrics creates the domain collectors with the configured prefix and registers them on reg
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PriceResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_price_resolutions_total",
				Help: "Total number of unit price resolutions by price source",
			},
			[]string{"source"},
		),
		CreditDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_credit_decisions_total",
				Help: "Total number of credit gate decisions by outcome",
			},
			[]string{"outcome"},
		),
		OrdersCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_orders_created_total",
				Help: "Total number of admitted orders",
			},
		),
		OrderTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_order_transitions_total",
				Help: "Total number of order status transitions",
			},
			[]string{"from", "to"},
		),
		PaymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_payments_recorded_total",
				Help: "Total number of recorded payments by method",
			},
			[]string{"method"},
		),
		InventoryMovements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_inventory_movements_total",
				Help: "Total number of inventory movements by direction",
			},
			[]string{"direction"},
		),
		ProductStockGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_product_stock",
				Help: "Current stock level for products",
			},
			[]string{"product_id"},
		),
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		AuthErrorsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of rejected requests by reason",
			},
			[]string{"reason"},
		),
	}
}

// RecordPriceResolution counts a resolved unit price by source
func (m *Metrics) RecordPriceResolution(source string) {
	if m == nil {
		return
	}
	m.PriceResolutions.WithLabelValues(source).Inc()
}

// RecordCreditDecision counts a gate outcome ("admitted" or a decline reason)
func (m *Metrics) RecordCreditDecision(outcome string) {
	if m == nil {
		return
	}
	m.CreditDecisions.WithLabelValues(outcome).Inc()
}

// RecordOrderCreated counts an admitted order
func (m *Metrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

// RecordOrderTransition counts a status change
func (m *Metrics) RecordOrderTransition(from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(from, to).Inc()
}

// RecordPayment counts a recorded payment
func (m *Metrics) RecordPayment(method string) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(method).Inc()
}

// RecordInventoryMovement counts a ledger entry and publishes the resulting stock level
func (m *Metrics) RecordInventoryMovement(direction, productID string, stock int) {
	if m == nil {
		return
	}
	m.InventoryMovements.WithLabelValues(direction).Inc()
	m.ProductStockGauge.WithLabelValues(productID).Set(float64(stock))
}

// RecordAuthError counts a rejected request
func (m *Metrics) RecordAuthError(reason string) {
	if m == nil {
		return
	}
	m.AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		m.DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}
