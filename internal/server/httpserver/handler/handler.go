package handler

import (
	"github.com/omriasta/core/internal/core/lifecycle"
	"github.com/omriasta/core/internal/core/service"
	"github.com/omriasta/core/internal/server/httpserver/view"
	"github.com/omriasta/core/internal/telemetry/metric"
)

// Config holds what the shipped views depend on.
type Config struct {
	State    *lifecycle.State
	Services *service.Registry
	Metrics  *metric.Registry

	// MetricsAuthRequired protects /metrics with the same authentication
	// as the API views.
	MetricsAuthRequired bool
}

// Views returns the views served by the hub, in registration order.
func Views(cfg Config) []view.View {
	return []view.View{
		&APIStatusView{
			Base: view.Base{ViewName: "api:status", Path: "/api/", AllowCORS: true},
		},
		&ConfigView{
			Base:  view.Base{ViewName: "api:config", Path: "/api/config", AllowCORS: true},
			state: cfg.State,
		},
		&ServicesView{
			Base:     view.Base{ViewName: "api:services", Path: "/api/services", AllowCORS: true},
			services: cfg.Services,
		},
		&ServiceCallView{
			Base:     view.Base{ViewName: "api:services:call", Path: "/api/services/{domain}/{service}", AllowCORS: true},
			services: cfg.Services,
		},
		&HealthView{
			Base: view.Base{ViewName: "health", Path: "/health", ExtraPaths: []string{"/healthz"}, Public: true, AllowCORS: true},
		},
		NewMetricsView(cfg.Metrics, cfg.MetricsAuthRequired),
	}
}
