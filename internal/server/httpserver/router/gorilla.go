package router

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Gorilla is a Router on gorilla/mux.
type Gorilla struct {
	r *mux.Router
	routeTable
}

// NewGorilla creates an empty Gorilla router.
func NewGorilla() *Gorilla {
	return &Gorilla{r: mux.NewRouter(), routeTable: newRouteTable()}
}

// AddRoute implements Router.
func (g *Gorilla) AddRoute(method, pattern string, h http.Handler) *Route {
	route := g.add(method, pattern, h)

	g.r.Handle(gorillaPattern(pattern), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := make(Params)
		for k, v := range mux.Vars(r) {
			params[k] = v
		}
		route.ServeHTTP(w, r.WithContext(WithParams(r.Context(), params)))
	})).Methods(route.Method)
	return route
}

// HasRoute implements Router.
func (g *Gorilla) HasRoute(method, pattern string) bool {
	return g.has(method, pattern)
}

// Routes implements Router.
func (g *Gorilla) Routes() []*Route {
	return g.list()
}

// Validate implements Router. gorilla/mux accepts overlapping patterns, so
// only taken keys and unparsable patterns are errors.
func (g *Gorilla) Validate(keys []RouteKey) error {
	if err := g.checkTaken(keys); err != nil {
		return err
	}
	for _, k := range keys {
		if err := mux.NewRouter().Path(gorillaPattern(k.Pattern)).GetError(); err != nil {
			return fmt.Errorf("route %s: %w", k, err)
		}
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (g *Gorilla) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.r.ServeHTTP(w, r)
}

// gorillaPattern rewrites "{name...}" wildcards into gorilla's regexp form.
func gorillaPattern(pattern string) string {
	return wildcardRe.ReplaceAllStringFunc(pattern, func(m string) string {
		sub := wildcardRe.FindStringSubmatch(m)
		if sub[2] != "" {
			return "{" + sub[1] + ":.*}"
		}
		return m
	})
}
