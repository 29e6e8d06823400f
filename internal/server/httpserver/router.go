package httpserver

import (
	"fmt"
	"net"
	"net/http"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/core/lifecycle"
	"github.com/omriasta/core/internal/core/service"
	"github.com/omriasta/core/internal/server/httpserver/handler"
	"github.com/omriasta/core/internal/server/httpserver/router"
	"github.com/omriasta/core/internal/server/httpserver/view"
	"github.com/omriasta/core/internal/telemetry/logger"
	"github.com/omriasta/core/internal/telemetry/metric"
)

// Router implementations selectable with RouterConfig.Kind.
const (
	RouterMux     = "mux"
	RouterGorilla = "gorilla"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Kind selects the router implementation: "mux" (default) or "gorilla".
	Kind string

	State    *lifecycle.State
	Auth     *service.AuthService
	Services *service.Registry
	Metrics  *metric.Registry
	Logger   logger.Logger

	// Views are registered after the built-in views.
	Views []view.View

	// CORSAllowedOrigins lists the origins allowed on CORS-enabled views
	// ("*" for any; empty for none).
	CORSAllowedOrigins []string

	// UseXForwardedFor honours X-Forwarded-For from TrustedProxies.
	UseXForwardedFor bool
	TrustedProxies   []*net.IPNet

	// MetricsAuthRequired protects /metrics.
	MetricsAuthRequired bool

	// RateLimit is the per-client rate (requests/second); 0 disables it.
	RateLimit float64
	RateBurst int

	// RateLimiters holds the client buckets. When nil and RateLimit is set,
	// a registry is created from RateLimit and RateBurst.
	RateLimiters *service.RateLimiterRegistry

	// EnableAudit enables the access log.
	EnableAudit bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Kind:                RouterMux,
		MetricsAuthRequired: true,
		RateLimit:           1000,
		EnableAudit:         true,
	}
}

// NewRouter builds the router, registers the views on it and wraps it in
// the middleware chain Recover, RequestID, Identify, RateLimit, Audit.
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	if cfg == nil {
		return nil, domain.ErrConfiguration.WithDetails("router config is required")
	}
	if cfg.State == nil {
		return nil, domain.ErrConfiguration.WithDetails("router needs a lifecycle state")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	services := cfg.Services
	if services == nil {
		services = service.NewRegistry()
	}

	rt, err := newRouter(cfg.Kind)
	if err != nil {
		return nil, err
	}

	adapterOpts := []view.AdapterOption{view.WithLogger(log)}
	if cfg.Metrics != nil {
		adapterOpts = append(adapterOpts, view.WithMetrics(cfg.Metrics))
	}
	adapter := view.NewAdapter(cfg.State, adapterOpts...)
	registrar := view.NewRegistrar(rt, adapter, AllowCORS(rt, cfg.CORSAllowedOrigins))

	views := handler.Views(handler.Config{
		State:               cfg.State,
		Services:            services,
		Metrics:             cfg.Metrics,
		MetricsAuthRequired: cfg.MetricsAuthRequired,
	})
	views = append(views, cfg.Views...)
	if err := registrar.RegisterAll(views...); err != nil {
		return nil, fmt.Errorf("register views: %w", err)
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
		Identify(IdentifyConfig{
			Auth:             cfg.Auth,
			UseXForwardedFor: cfg.UseXForwardedFor,
			TrustedProxies:   cfg.TrustedProxies,
			Metrics:          cfg.Metrics,
			Logger:           log,
		}),
	}
	limiters := cfg.RateLimiters
	if limiters == nil && cfg.RateLimit > 0 {
		limiters = service.NewRateLimiterRegistry(cfg.RateLimit, cfg.RateBurst)
	}
	if limiters != nil {
		middlewares = append(middlewares, RateLimit(limiters))
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}

	return Chain(rt, middlewares...), nil
}

func newRouter(kind string) (router.Router, error) {
	switch kind {
	case "", RouterMux:
		return router.NewMux(), nil
	case RouterGorilla:
		return router.NewGorilla(), nil
	default:
		return nil, domain.ErrConfiguration.WithDetails(fmt.Sprintf("unknown router %q", kind))
	}
}
