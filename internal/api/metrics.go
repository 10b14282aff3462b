package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "bcp_parser_"

const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultAccepted = "accepted"
)

// Metrics holds the adapter's Prometheus collectors on a private registry so
// several servers can coexist in one process.
type Metrics struct {
	registry       *prometheus.Registry
	parseResults   *prometheus.CounterVec
	gateDecisions  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		parseResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_results_total",
				Help: "Parsed emails by strategy, template and result",
			},
			[]string{"strategy", "template", "result"},
		),
		gateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "gate_decisions_total",
				Help: "Acceptance gate decisions by reason",
			},
			[]string{"reason"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
	m.registry.MustRegister(m.parseResults, m.gateDecisions, m.requestLatency)
	return m
}

// ObserveParse records one parse outcome.
func (m *Metrics) ObserveParse(strategy, template string, success bool) {
	if template == "" {
		template = "none"
	}
	result := resultFailure
	if success {
		result = resultSuccess
	}
	m.parseResults.WithLabelValues(strategy, template, result).Inc()
}

// ObserveGate records one acceptance decision; an empty reason is accepted.
func (m *Metrics) ObserveGate(reason string) {
	if reason == "" {
		reason = resultAccepted
	}
	m.gateDecisions.WithLabelValues(reason).Inc()
}

// ObserveLatency records request latency for a route.
func (m *Metrics) ObserveLatency(route string, seconds float64) {
	m.requestLatency.WithLabelValues(route).Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
