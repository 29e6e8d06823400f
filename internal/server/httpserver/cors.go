package httpserver

import (
	"net/http"
	"sort"
	"strings"

	"github.com/omriasta/core/internal/server/httpserver/router"
	"github.com/omriasta/core/internal/server/httpserver/view"
)

// corsAllowedHeaders are the request headers a preflight may ask for.
var corsAllowedHeaders = strings.Join([]string{
	"Origin",
	"Accept",
	"X-Requested-With",
	"Content-Type",
	"Authorization",
}, ", ")

// AllowCORS returns the callback the view registrar uses to enable
// cross-origin requests on a route. Only the listed origins are allowed;
// "*" allows any origin and an empty list allows none.
//
// Each route is wrapped so that responses to allowed origins carry the CORS
// headers, and a preflight OPTIONS route is added for its pattern unless
// one already exists.
func AllowCORS(rt router.Router, origins []string) view.CORSFunc {
	policy := newCORSPolicy(origins)

	return func(route *router.Route) {
		route.Use(policy.wrap)

		if route.Method == http.MethodOptions || rt.HasRoute(http.MethodOptions, route.Pattern) {
			return
		}
		rt.AddRoute(http.MethodOptions, route.Pattern, policy.preflight(rt, route.Pattern))
	}
}

type corsPolicy struct {
	any     bool
	origins map[string]bool
}

func newCORSPolicy(origins []string) *corsPolicy {
	p := &corsPolicy{origins: make(map[string]bool, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			p.any = true
			continue
		}
		if o != "" {
			p.origins[o] = true
		}
	}
	return p
}

func (p *corsPolicy) allowed(origin string) bool {
	return origin != "" && (p.any || p.origins[origin])
}

func (p *corsPolicy) setHeaders(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Add("Vary", "Origin")
}

func (p *corsPolicy) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); p.allowed(origin) {
			p.setHeaders(w.Header(), origin)
		}
		next.ServeHTTP(w, r)
	})
}

// preflight answers OPTIONS requests for pattern. The allowed methods are
// read from the router when the request arrives so that routes added
// later on the same pattern are included.
func (p *corsPolicy) preflight(rt router.Router, pattern string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !p.allowed(origin) {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		requested := r.Header.Get("Access-Control-Request-Method")
		methods := routeMethods(rt, pattern)
		if requested != "" && !contains(methods, requested) {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		h := w.Header()
		p.setHeaders(h, origin)
		h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		w.WriteHeader(http.StatusNoContent)
	})
}

func routeMethods(rt router.Router, pattern string) []string {
	var methods []string
	for _, route := range rt.Routes() {
		if route.Pattern == pattern && route.Method != http.MethodOptions {
			methods = append(methods, route.Method)
		}
	}
	sort.Strings(methods)
	return methods
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
