// Package handler provides the views the hub server ships with.
//
//   - api.go: API status, configuration and service views
//   - health.go: health checks
//   - metrics.go: Prometheus exposition
//
// Every view embeds view.Base and is registered through a view.Registrar,
// so authentication, readiness and error translation are handled by the
// view adapter rather than here.
package handler
