package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver records backend call counts and latencies in a private
// registry. A CLI process is too short-lived to scrape, so the registry is
// exported as a node-exporter textfile on exit.
type MetricsObserver struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetricsObserver creates an observer with its own registry.
func NewMetricsObserver() *MetricsObserver {
	reg := prometheus.NewRegistry()
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elasticnow",
		Name:      "backend_calls_total",
		Help:      "Backend HTTP calls by service, operation and status code.",
	}, []string{"service", "op", "code"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "elasticnow",
		Name:      "backend_call_duration_seconds",
		Help:      "Backend HTTP call latency.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"service", "op"})
	reg.MustRegister(calls, latency)

	return &MetricsObserver{registry: reg, calls: calls, latency: latency}
}

func (m *MetricsObserver) OnCallComplete(event CallEvent) {
	code := strconv.Itoa(event.Status)
	if event.Status == 0 {
		code = "error"
	}
	m.calls.WithLabelValues(event.Service, event.Op, code).Inc()
	m.latency.WithLabelValues(event.Service, event.Op).Observe(event.Latency.Seconds())
}

// Gatherer exposes the registry for inspection.
func (m *MetricsObserver) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in the Prometheus text format to path.
func (m *MetricsObserver) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
