package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all hub metrics on a dedicated Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// HTTP view metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RejectionsTotal *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec
}

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /metrics handler of the process-wide registry.
func Handler() http.Handler {
	return Global().Handler()
}

// NewRegistry creates a registry with the hub metrics and the Go and
// process collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served by views, by view, method and status code.",
		}, []string{"view", "method", "code"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving view requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view", "method"}),

		RejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hub",
			Subsystem: "http",
			Name:      "rejections_total",
			Help:      "Requests rejected before reaching a view handler, by reason.",
		}, []string{"view", "reason"}),

		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hub",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Bearer credentials that failed verification, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RejectionsTotal,
		r.AuthFailures,
	)

	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for scraping in tests and tools.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler exposing the registry in Prometheus format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordRequest counts a request served by a view.
func (r *Registry) RecordRequest(view, method, code string) {
	r.RequestsTotal.WithLabelValues(view, method, code).Inc()
}

// ObserveRequestDuration records how long a view took, in seconds.
func (r *Registry) ObserveRequestDuration(view, method string, seconds float64) {
	r.RequestDuration.WithLabelValues(view, method).Observe(seconds)
}

// RecordRejection counts a request refused before its handler ran.
func (r *Registry) RecordRejection(view, reason string) {
	r.RejectionsTotal.WithLabelValues(view, reason).Inc()
}

// RecordAuthFailure counts a failed credential verification.
func (r *Registry) RecordAuthFailure(reason string) {
	r.AuthFailures.WithLabelValues(reason).Inc()
}
