package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the insights pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec   // labels: operation, outcome
	RequestDuration     *prometheus.HistogramVec // labels: operation
	FallbacksTotal      *prometheus.CounterVec   // labels: subsystem
	ProviderErrors      *prometheus.CounterVec   // labels: provider
	IndicatorComputeDur prometheus.Histogram
	BarsProcessed       prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_requests_total",
			Help: "Pipeline runs by operation and outcome",
		}, []string{"operation", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insights_request_duration_seconds",
			Help:    "End-to-end pipeline latency including provider fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_fallbacks_total",
			Help: "Degraded subsystems replaced by a fallback",
		}, []string{"subsystem"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_provider_errors_total",
			Help: "Upstream provider failures",
		}, []string{"provider"}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "insights_indicator_compute_duration_seconds",
			Help:    "Indicator, signal, simulation and forecast compute latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		BarsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insights_bars_processed_total",
			Help: "Price bars fed through the indicator engine",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.FallbacksTotal,
		m.ProviderErrors,
		m.IndicatorComputeDur,
		m.BarsProcessed,
	)
	return m
}

// ObserveRequest records one pipeline run
func (m *Metrics) ObserveRequest(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Fallback records a degraded subsystem
func (m *Metrics) Fallback(subsystem string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(subsystem).Inc()
}

// ProviderError records an upstream failure
func (m *Metrics) ProviderError(provider string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(provider).Inc()
}

// ObserveCompute records the compute stage latency and bar count
func (m *Metrics) ObserveCompute(bars int, d time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorComputeDur.Observe(d.Seconds())
	m.BarsProcessed.Add(float64(bars))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
