package view

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/server/httpserver/router"
)

// CORSFunc enables cross-origin requests on a route.
type CORSFunc func(route *router.Route)

// Registrar registers views on a router.
type Registrar struct {
	router    router.Router
	adapter   *Adapter
	allowCORS CORSFunc

	mu   sync.Mutex
	urls map[string]string // primary URL -> view name
}

// NewRegistrar creates a Registrar. allowCORS may be nil when no view
// allows cross-origin requests.
func NewRegistrar(rt router.Router, adapter *Adapter, allowCORS CORSFunc) *Registrar {
	return &Registrar{
		router:    rt,
		adapter:   adapter,
		allowCORS: allowCORS,
		urls:      make(map[string]string),
	}
}

// Register adds a route for every method v supports on each of its URL
// patterns and enables CORS on them when v allows it.
//
// A view without a URL, or with patterns the router cannot hold next to
// the existing routes, is a configuration error. A view whose primary URL
// or any of whose routes is already registered is rejected with
// domain.ErrViewRegistered. Nothing is added when an error is returned.
func (g *Registrar) Register(v View) error {
	url := v.URL()
	if url == "" {
		return domain.ErrConfiguration.WithDetails(fmt.Sprintf("no url set for view %q", v.Name()))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if other, exists := g.urls[url]; exists {
		return domain.ErrViewRegistered.WithDetails(fmt.Sprintf("%s already registered by view %q", url, other))
	}

	patterns := append([]string{url}, v.ExtraURLs()...)
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if p == "" || seen[p] {
			return domain.ErrConfiguration.WithDetails(fmt.Sprintf("view %q lists url %q twice or empty", v.Name(), p))
		}
		seen[p] = true
	}

	methods := Methods(v)
	for _, m := range methods {
		for _, p := range patterns {
			if g.router.HasRoute(m.Name, p) {
				return domain.ErrViewRegistered.WithDetails(fmt.Sprintf("route %s %s already registered", m.Name, p))
			}
		}
	}

	if err := g.router.Validate(g.routeKeys(v, methods, patterns)); err != nil {
		return domain.ErrConfiguration.WithDetails(fmt.Sprintf("view %q: %v", v.Name(), err))
	}

	routes := make([]*router.Route, 0, len(methods)*len(patterns))
	for _, m := range methods {
		h := g.adapter.Wrap(v, m.Handler)
		for _, p := range patterns {
			routes = append(routes, g.router.AddRoute(m.Name, p, h))
		}
	}
	g.urls[url] = v.Name()

	if !v.CORSAllowed() || g.allowCORS == nil {
		return nil
	}
	for _, route := range routes {
		g.allowCORS(route)
	}
	return nil
}

// routeKeys lists the routes registering v would add, including the
// preflight routes added for CORS.
func (g *Registrar) routeKeys(v View, methods []Method, patterns []string) []router.RouteKey {
	keys := make([]router.RouteKey, 0, len(methods)*len(patterns))
	hasOptions := false
	for _, m := range methods {
		hasOptions = hasOptions || strings.EqualFold(m.Name, http.MethodOptions)
		for _, p := range patterns {
			keys = append(keys, router.RouteKey{Method: m.Name, Pattern: p})
		}
	}
	if !v.CORSAllowed() || g.allowCORS == nil || hasOptions || len(methods) == 0 {
		return keys
	}
	for _, p := range patterns {
		if !g.router.HasRoute(http.MethodOptions, p) {
			keys = append(keys, router.RouteKey{Method: http.MethodOptions, Pattern: p})
		}
	}
	return keys
}

// RegisterAll registers views in order, stopping at the first error.
func (g *Registrar) RegisterAll(views ...View) error {
	for _, v := range views {
		if err := g.Register(v); err != nil {
			return err
		}
	}
	return nil
}
