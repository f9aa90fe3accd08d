package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Movement kinds recorded by the inventory engine.
const (
	MovementReservation = "reservation"
	MovementReversal    = "reversal"
	MovementReceipt     = "receipt"
	MovementAdjustment  = "adjustment"
)

// Metrics owns the service's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	stockMovements    *prometheus.CounterVec
	stockUnits        *prometheus.CounterVec
	insufficientStock prometheus.Counter
	orderTransitions  *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_stock_movements_total",
			Help: "Inventory movements applied, by kind.",
		}, []string{"kind"}),
		stockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_stock_units_total",
			Help: "Units moved by inventory movements, by kind.",
		}, []string{"kind"}),
		insufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "erp_insufficient_stock_total",
			Help: "Sales reservations rejected for insufficient stock.",
		}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_order_transitions_total",
			Help: "Order status transitions, by order type and target status.",
		}, []string{"order_type", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erp_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.stockMovements,
		m.stockUnits,
		m.insufficientStock,
		m.orderTransitions,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) StockMoved(kind string, units int) {
	if m == nil {
		return
	}
	m.stockMovements.WithLabelValues(kind).Inc()
	m.stockUnits.WithLabelValues(kind).Add(float64(units))
}

func (m *Metrics) StockRejected() {
	if m == nil {
		return
	}
	m.insufficientStock.Inc()
}

func (m *Metrics) OrderTransition(orderType, status string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(orderType, status).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
