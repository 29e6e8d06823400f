package handler

import (
	"net/http"

	"github.com/omriasta/core/internal/server/httpserver/router"
	"github.com/omriasta/core/internal/server/httpserver/view"
	"github.com/omriasta/core/internal/telemetry/metric"
)

// MetricsView serves the Prometheus exposition format.
type MetricsView struct {
	view.Base
	handler http.Handler
}

// NewMetricsView creates the /metrics view for m. A nil m serves the
// process-wide registry.
func NewMetricsView(m *metric.Registry, authRequired bool) *MetricsView {
	h := metric.Handler()
	if m != nil {
		h = m.Handler()
	}
	return &MetricsView{
		Base:    view.Base{ViewName: "metrics", Path: "/metrics", Public: !authRequired},
		handler: h,
	}
}

// Get handles GET /metrics.
func (v *MetricsView) Get(_ *http.Request, _ router.Params) (view.Result, error) {
	return view.Stream(v.handler.ServeHTTP), nil
}
