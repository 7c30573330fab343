package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	GateDecisionsTotal *prometheus.CounterVec
	GateDuration       *prometheus.HistogramVec
	HTTPRequestsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GateDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubcore_gate_decisions_total",
				Help: "Authorization gate decisions by gate and outcome",
			},
			[]string{"gate", "outcome"},
		),
		GateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clubcore_gate_duration_seconds",
				Help:    "Time spent evaluating an authorization gate",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"gate"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubcore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
	}
	m.registry.MustRegister(m.GateDecisionsTotal, m.GateDuration, m.HTTPRequestsTotal)
	return m
}

// ObserveGate records one gate decision. Safe on a nil receiver.
func (m *Metrics) ObserveGate(gate, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GateDecisionsTotal.WithLabelValues(gate, outcome).Inc()
	m.GateDuration.WithLabelValues(gate).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
