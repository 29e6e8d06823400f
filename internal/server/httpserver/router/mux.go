package router

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is a Router on net/http's ServeMux.
type Mux struct {
	mux *http.ServeMux
	routeTable
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{mux: http.NewServeMux(), routeTable: newRouteTable()}
}

// AddRoute implements Router.
func (m *Mux) AddRoute(method, pattern string, h http.Handler) *Route {
	route := m.add(method, pattern, h)
	names := wildcardNames(pattern)

	m.mux.Handle(route.Method+" "+muxPattern(pattern), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ServeMux lets HEAD through to GET patterns.
		if r.Method != route.Method {
			w.Header().Set("Allow", strings.Join(m.methods(pattern), ", "))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		params := make(Params, len(names))
		for _, name := range names {
			params[name] = r.PathValue(name)
		}
		route.ServeHTTP(w, r.WithContext(WithParams(r.Context(), params)))
	}))
	return route
}

// HasRoute implements Router.
func (m *Mux) HasRoute(method, pattern string) bool {
	return m.has(method, pattern)
}

// Routes implements Router.
func (m *Mux) Routes() []*Route {
	return m.list()
}

// Validate implements Router. Keys are tried on a scratch ServeMux holding
// the current routes, so patterns ServeMux considers conflicting are
// reported instead of panicking in AddRoute.
func (m *Mux) Validate(keys []RouteKey) (err error) {
	if err := m.checkTaken(keys); err != nil {
		return err
	}

	scratch := http.NewServeMux()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	for _, r := range m.list() {
		scratch.Handle(r.Method+" "+muxPattern(r.Pattern), http.NotFoundHandler())
	}
	for _, k := range keys {
		scratch.Handle(strings.ToUpper(k.Method)+" "+muxPattern(k.Pattern), http.NotFoundHandler())
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

// muxPattern anchors trailing-slash patterns so they match only the exact
// path instead of the whole subtree.
func muxPattern(pattern string) string {
	if strings.HasSuffix(pattern, "/") {
		return pattern + "{$}"
	}
	return pattern
}
