// Package metrics holds the Prometheus collectors of the inventory service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inventory"

// Metrics groups the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	GRPCRequestsTotal   *prometheus.CounterVec

	AdjustmentsTotal *prometheus.CounterVec
	ConflictRetries  prometheus.Counter
	InventoryValue   prometheus.Gauge
	InventoryUnits   prometheus.Gauge
	ExportsTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests",
		}, []string{"method", "code"}),

		AdjustmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Stock adjustments by direction and outcome",
		}, []string{"direction", "outcome"}),
		ConflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustment_retries_total",
			Help:      "Adjustment attempts repeated after a concurrent change or store failure",
		}),
		InventoryValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_value",
			Help:      "Total stock value at the last summary",
		}),
		InventoryUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_units",
			Help:      "Total stock units at the last summary",
		}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "CSV exports by target",
		}, []string{"target"}),
	}

	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.AdjustmentsTotal,
		m.ConflictRetries,
		m.InventoryValue,
		m.InventoryUnits,
		m.ExportsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveGRPCRequest(method, code string) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
}

// AdjustmentDone counts a finished adjustment. outcome is "applied" or an error kind.
func (m *Metrics) AdjustmentDone(direction, outcome string) {
	if m == nil {
		return
	}
	m.AdjustmentsTotal.WithLabelValues(direction, outcome).Inc()
}

func (m *Metrics) AdjustmentRetried() {
	if m == nil {
		return
	}
	m.ConflictRetries.Inc()
}

func (m *Metrics) SetInventory(units int, value float64) {
	if m == nil {
		return
	}
	m.InventoryUnits.Set(float64(units))
	m.InventoryValue.Set(value)
}

func (m *Metrics) ExportDone(target string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(target).Inc()
}
