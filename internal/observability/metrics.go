package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API server. Each server
// owns its registry so tests never collide on duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal  *prometheus.CounterVec
	ExportsTotal   *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec
}

// NewMetrics creates the server metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedback360",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedback360",
			Name:      "exports_total",
			Help:      "Export documents requested, by format and outcome.",
		}, []string{"format", "outcome"}),
		ExportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "feedback360",
			Name:      "export_duration_seconds",
			Help:      "Wall time spent fetching and rendering an export.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
