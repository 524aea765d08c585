// Package metrics holds the Prometheus instrumentation for the API client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the client transport.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Retries         *prometheus.CounterVec
	StepUps         prometheus.Counter
	BreakerOpens    prometheus.Counter
}

// New creates and registers all metrics against reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moviesnow_client_requests_total",
			Help: "API requests by operation and result code",
		}, []string{"op", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "moviesnow_client_request_duration_seconds",
			Help:    "API request latency by operation, including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moviesnow_client_retries_total",
			Help: "Automatic retries by operation",
		}, []string{"op"}),
		StepUps: factory.NewCounter(prometheus.CounterOpts{
			Name: "moviesnow_client_stepups_total",
			Help: "Step-up reauthentication signals received",
		}),
		BreakerOpens: factory.NewCounter(prometheus.CounterOpts{
			Name: "moviesnow_client_breaker_opens_total",
			Help: "Times the transport circuit breaker opened",
		}),
	}
}

// ObserveRequest records one completed logical request.
func (m *Metrics) ObserveRequest(op, code string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(op, code).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(seconds)
}

// ObserveRetry records one automatic retry.
func (m *Metrics) ObserveRetry(op string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(op).Inc()
}

// ObserveStepUp records one step-up signal.
func (m *Metrics) ObserveStepUp() {
	if m == nil {
		return
	}
	m.StepUps.Inc()
}

// ObserveBreakerOpen records one breaker opening.
func (m *Metrics) ObserveBreakerOpen() {
	if m == nil {
		return
	}
	m.BreakerOpens.Inc()
}
