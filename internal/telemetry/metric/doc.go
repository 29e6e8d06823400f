// Package metric provides Prometheus metrics for the hub.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, view and auth metrics, HTTP handler
//   - collector.go: scrape-time collector for hub state
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
