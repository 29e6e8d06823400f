// Package router defines the routing contract views are registered on and
// provides two implementations: one on net/http's ServeMux and one on
// gorilla/mux.
//
// Patterns use the ServeMux wildcard syntax: "{name}" matches one segment,
// "{name...}" the remainder of the path. A trailing slash matches only the
// exact path. Extracted wildcards are injected into the request context as
// Params before the route handler runs.
package router

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// Router dispatches requests to routes added with AddRoute.
//
// Routes are added during setup. Adding a route whose method and pattern
// are already registered panics.
type Router interface {
	http.Handler

	// AddRoute registers h for method and pattern and returns the route.
	AddRoute(method, pattern string, h http.Handler) *Route

	// HasRoute reports whether a route for method and pattern exists.
	HasRoute(method, pattern string) bool

	// Routes returns the routes in the order they were added.
	Routes() []*Route

	// Validate reports an error if any of keys could not be added next to
	// the existing routes, either because it is taken or because the
	// implementation rejects the pattern.
	Validate(keys []RouteKey) error
}

// RouteKey identifies a route.
type RouteKey struct {
	Method  string
	Pattern string
}

func (k RouteKey) String() string {
	return routeKey(k.Method, k.Pattern)
}

// Params holds the path wildcards extracted for a request.
type Params map[string]string

type paramsKey struct{}

// WithParams returns a context carrying p.
func WithParams(ctx context.Context, p Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, p)
}

// ParamsFromContext returns the params the router extracted. It never
// returns nil.
func ParamsFromContext(ctx context.Context) Params {
	if p, ok := ctx.Value(paramsKey{}).(Params); ok && p != nil {
		return p
	}
	return Params{}
}

// Route is a registered (method, pattern) pair. Its handler can be wrapped
// with Use until the server starts serving.
type Route struct {
	Method  string
	Pattern string

	handler http.Handler
}

func newRoute(method, pattern string, h http.Handler) *Route {
	return &Route{Method: method, Pattern: pattern, handler: h}
}

// Use wraps the route handler with mw. The last middleware added runs first.
func (r *Route) Use(mw func(http.Handler) http.Handler) {
	r.handler = mw(r.handler)
}

// ServeHTTP implements http.Handler.
func (r *Route) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// routeTable keeps the bookkeeping shared by both implementations.
type routeTable struct {
	routes []*Route
	index  map[string]*Route
}

func newRouteTable() routeTable {
	return routeTable{index: make(map[string]*Route)}
}

func routeKey(method, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}

func (t *routeTable) add(method, pattern string, h http.Handler) *Route {
	key := routeKey(method, pattern)
	if _, exists := t.index[key]; exists {
		panic("router: duplicate route " + key)
	}
	route := newRoute(strings.ToUpper(method), pattern, h)
	t.routes = append(t.routes, route)
	t.index[key] = route
	return route
}

func (t *routeTable) has(method, pattern string) bool {
	_, ok := t.index[routeKey(method, pattern)]
	return ok
}

// methods returns the methods registered for pattern, sorted.
func (t *routeTable) methods(pattern string) []string {
	var out []string
	for _, r := range t.routes {
		if r.Pattern == pattern {
			out = append(out, r.Method)
		}
	}
	sort.Strings(out)
	return out
}

// checkTaken reports the first key that is already registered or repeated
// within keys.
func (t *routeTable) checkTaken(keys []RouteKey) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		key := k.String()
		if _, exists := t.index[key]; exists || seen[key] {
			return fmt.Errorf("route %s already registered", key)
		}
		seen[key] = true
	}
	return nil
}

func (t *routeTable) list() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

var wildcardRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(\.\.\.)?\}`)

// wildcardNames returns the wildcard names in pattern in order.
func wildcardNames(pattern string) []string {
	var names []string
	for _, m := range wildcardRe.FindAllStringSubmatch(pattern, -1) {
		names = append(names, m[1])
	}
	return names
}
