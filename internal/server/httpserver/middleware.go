package httpserver

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/core/service"
	"github.com/omriasta/core/internal/server/httpserver/reqctx"
	"github.com/omriasta/core/internal/server/httpserver/view"
	"github.com/omriasta/core/internal/telemetry/logger"
	"github.com/omriasta/core/internal/telemetry/metric"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLength bounds incoming request IDs that are reused.
const maxRequestIDLength = 128

// localClientIP stands in for the client address of local socket requests.
const localClientIP = "local"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID tags each request with an ID. A well-formed incoming
// X-Request-ID is kept, otherwise a ULID is generated.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if !validRequestID(requestID) {
				requestID = ulid.Make().String()
			}

			w.Header().Set(HeaderRequestID, requestID)
			ctx := logger.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// IdentifyConfig configures the Identify middleware.
type IdentifyConfig struct {
	// Auth validates bearer credentials and trusted networks. When nil no
	// request is ever authenticated.
	Auth *service.AuthService

	// UseXForwardedFor honours X-Forwarded-For from TrustedProxies.
	UseXForwardedFor bool
	TrustedProxies   []*net.IPNet

	Metrics *metric.Registry
	Logger  logger.Logger
}

// Identify resolves the client address and the caller's identity and
// stores them in the request context. It never rejects a request; views
// decide whether authentication is required.
//
// A valid "Authorization: Bearer <id>:<secret>" header authenticates as the
// token's user. Without a credential, a request from a trusted network or
// the local socket is authenticated as domain.SystemUser.
func Identify(cfg IdentifyConfig) Middleware {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := localClientIP
			if !reqctx.Local(ctx) {
				ip = realIP(r, cfg.UseXForwardedFor, cfg.TrustedProxies)
			}
			ctx = reqctx.WithRealIP(ctx, ip)

			var user *domain.User
			credential, hasCredential := bearerCredential(r)
			switch {
			case hasCredential && cfg.Auth != nil:
				u, err := cfg.Auth.Authenticate(ctx, credential)
				if err != nil {
					reason := authFailureReason(err)
					log.WithContext(ctx).Warn("authentication failed",
						"client_ip", ip,
						"reason", reason,
						"path", r.URL.Path,
					)
					if cfg.Metrics != nil {
						cfg.Metrics.RecordAuthFailure(reason)
					}
				} else {
					user = u
				}
			case hasCredential:
			case reqctx.Local(ctx):
				user = domain.SystemUser
			case cfg.Auth != nil && cfg.Auth.IsTrustedNetwork(ip):
				user = domain.SystemUser
			}

			ctx = reqctx.WithAuthenticated(ctx, user != nil)
			if user != nil {
				ctx = reqctx.WithUser(ctx, user)
				ctx = logger.WithUserID(ctx, user.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerCredential(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, credential, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	credential = strings.TrimSpace(credential)
	return credential, credential != ""
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	default:
		return "error"
	}
}

// realIP returns the client address. X-Forwarded-For is only consulted when
// the peer is a trusted proxy; it is walked right to left and the first hop
// that is not itself a trusted proxy wins.
func realIP(r *http.Request, useXFF bool, trusted []*net.IPNet) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !useXFF || !inNetworks(peer, trusted) {
		return peer
	}

	forwarded := r.Header.Values("X-Forwarded-For")
	if len(forwarded) == 0 {
		return peer
	}
	hops := strings.Split(strings.Join(forwarded, ","), ",")

	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			return peer
		}
		client = hop
		if !inNetworks(hop, trusted) {
			break
		}
	}
	return client
}

func inNetworks(ip string, networks []*net.IPNet) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range networks {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// RateLimit applies per-client rate limiting keyed on the address resolved
// by Identify.
func RateLimit(limiters *service.RateLimiterRegistry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := reqctx.RealIP(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}
			if err := limiters.Allow(key); err != nil {
				w.Header().Set("Retry-After", "1")
				writeMiddlewareError(w, r, http.StatusTooManyRequests, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs every completed request, leveled by status class.
func Audit(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			ctx := r.Context()
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", reqctx.RealIP(ctx),
			}

			// The request and user IDs come from ctx.
			l := log.WithContext(ctx)
			switch {
			case wrapped.statusCode >= 500:
				l.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				l.Warn("request completed with client error", attrs...)
			default:
				l.Info("request completed", attrs...)
			}
		})
	}
}

// Recover turns a panic in a handler into a 500 JSON response. When the
// handler already started the response, the panic is logged and the
// connection aborted with http.ErrAbortHandler.
func Recover(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.WithContext(r.Context()).Error("panic recovered",
						"error", rec,
						"path", r.URL.Path,
						"response_started", ww.wroteHeader,
					)
					// Part of the response is out; abort the connection
					// rather than append an error body to it.
					if ww.wroteHeader {
						panic(http.ErrAbortHandler)
					}
					writeMiddlewareError(w, r, http.StatusInternalServerError, domain.ErrInternal)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func writeMiddlewareError(w http.ResponseWriter, r *http.Request, status int, de *domain.DomainError) {
	w.Header().Set("X-Error-Code", de.Code)
	resp, err := view.JSONMessage(de.Message, status, de.Code, nil)
	if err != nil {
		w.WriteHeader(status)
		return
	}
	resp.Write(w, r)
}

// responseWriter captures the status code for Audit.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
