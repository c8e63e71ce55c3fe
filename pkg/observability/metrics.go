// Package observability provides Prometheus metrics for the swap session.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Swap metrics
	SwapsSubmitted prometheus.Counter
	SwapOutcomes   *prometheus.CounterVec
	SwapsInFlight  prometheus.Gauge
	SwapDuration   prometheus.Histogram

	// Session metrics
	WalletConnections *prometheus.CounterVec
	QuotesComputed    prometheus.Counter
	Transitions       *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on reg. A nil reg uses a
// fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "mock_swap"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		SwapsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "submitted_total",
			Help:      "Total number of swaps submitted",
		}),
		SwapOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "outcomes_total",
			Help:      "Swaps by final outcome",
		}, []string{"outcome"}),
		SwapsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "in_flight",
			Help:      "Swaps currently running",
		}),
		SwapDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "duration_seconds",
			Help:      "Time from submission to outcome",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 10, 30},
		}),

		WalletConnections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "connections_total",
			Help:      "Wallet connection attempts by result",
		}, []string{"result"}),
		QuotesComputed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "computed_total",
			Help:      "Derived amounts computed",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions by action",
		}, []string{"action"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveTransition counts one store action. Safe on a nil receiver.
func (m *Metrics) ObserveTransition(action string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action).Inc()
}

// ObserveQuote counts one derived amount. Safe on a nil receiver.
func (m *Metrics) ObserveQuote() {
	if m == nil {
		return
	}
	m.QuotesComputed.Inc()
}

// ObserveWallet counts a connection attempt. Safe on a nil receiver.
func (m *Metrics) ObserveWallet(ok bool) {
	if m == nil {
		return
	}
	result := "connected"
	if !ok {
		result = "failed"
	}
	m.WalletConnections.WithLabelValues(result).Inc()
}

// SwapStarted marks a submission. Safe on a nil receiver.
func (m *Metrics) SwapStarted() {
	if m == nil {
		return
	}
	m.SwapsSubmitted.Inc()
	m.SwapsInFlight.Inc()
}

// SwapFinished records an outcome and its duration. Safe on a nil receiver.
func (m *Metrics) SwapFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SwapsInFlight.Dec()
	m.SwapOutcomes.WithLabelValues(outcome).Inc()
	m.SwapDuration.Observe(elapsed.Seconds())
}
