package view

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/server/httpserver/reqctx"
	"github.com/omriasta/core/internal/server/httpserver/router"
	"github.com/omriasta/core/internal/telemetry/logger"
	"github.com/omriasta/core/internal/telemetry/metric"
)

// StateChecker reports whether the hub is serving requests.
type StateChecker interface {
	IsRunning() bool
}

// ErrorHandler writes the response for an error the adapter does not
// translate itself.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Adapter turns view handlers into http.Handlers.
type Adapter struct {
	state   StateChecker
	logger  logger.Logger
	metrics *metric.Registry
	onError ErrorHandler
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger used for request and error logging.
func WithLogger(l logger.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// WithMetrics records request and rejection metrics in m.
func WithMetrics(m *metric.Registry) AdapterOption {
	return func(a *Adapter) { a.metrics = m }
}

// WithErrorHandler replaces the handler for untranslated errors.
func WithErrorHandler(h ErrorHandler) AdapterOption {
	return func(a *Adapter) { a.onError = h }
}

// NewAdapter creates an Adapter gated on state.
func NewAdapter(state StateChecker, opts ...AdapterOption) *Adapter {
	a := &Adapter{state: state}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Default()
	}
	if a.onError == nil {
		a.onError = a.internalError
	}
	return a
}

// Wrap returns the handler serving h for v.
func (a *Adapter) Wrap(v View, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.metrics == nil {
			a.serve(w, r, v, h)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		a.serve(rec, r, v, h)

		a.metrics.RecordRequest(v.Name(), r.Method, strconv.Itoa(rec.status))
		a.metrics.ObserveRequestDuration(v.Name(), r.Method, time.Since(start).Seconds())
	})
}

func (a *Adapter) serve(w http.ResponseWriter, r *http.Request, v View, h HandlerFunc) {
	ctx := r.Context()

	if !a.state.IsRunning() {
		a.reject(v, "not_running")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	authenticated := reqctx.Authenticated(ctx)
	if v.RequiresAuth() && !authenticated {
		a.reject(v, "unauthorized")
		writeError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized)
		return
	}

	a.logger.WithContext(ctx).Debug("serving request",
		"path", r.URL.Path,
		"remote", reqctx.RealIP(ctx),
		"auth", authenticated,
	)

	res, err := await(h(r, router.ParamsFromContext(ctx)))
	if err != nil {
		status, known := translate(err)
		if !known {
			a.onError(w, r, err)
			return
		}
		if errors.Is(err, domain.ErrSerialization) {
			a.logSerialization(r, err)
		}
		writeError(w, r, status, err)
		return
	}

	switch res := res.(type) {
	case *Response:
		if res == nil {
			writePayload(w, http.StatusOK, nil, "")
			return
		}
		res.Write(w, r)
	case Stream:
		res(w, r)
	case WithStatus:
		body, contentType := payload(res.Payload)
		writePayload(w, res.Status, body, contentType)
	default:
		body, contentType := payload(res)
		writePayload(w, http.StatusOK, body, contentType)
	}
}

func (a *Adapter) reject(v View, reason string) {
	if a.metrics != nil {
		a.metrics.RecordRejection(v.Name(), reason)
	}
}

func (a *Adapter) internalError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.WithContext(r.Context()).Error("unhandled error in view",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err,
	)
	writeError(w, r, http.StatusInternalServerError, domain.ErrInternal)
}

func (a *Adapter) logSerialization(r *http.Request, err error) {
	attrs := []any{"path", r.URL.Path, "error", err}
	var de *domain.DomainError
	if errors.As(err, &de) {
		if de.Cause != nil {
			attrs[3] = de.Cause
		}
		if de.Details != "" {
			attrs = append(attrs, "result", de.Details)
		}
	}
	a.logger.WithContext(r.Context()).Error("unable to serialize to JSON", attrs...)
}

// translate maps the errors handlers are allowed to raise to a status.
func translate(err error) (int, bool) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrServiceNotFound):
		return http.StatusInternalServerError, true
	case errors.Is(err, domain.ErrSerialization):
		return http.StatusInternalServerError, true
	case errors.Is(err, domain.ErrUnauthorized),
		domain.IsDomainError(err, "") && domain.HTTPStatus(err) == http.StatusUnauthorized:
		return http.StatusUnauthorized, true
	default:
		return 0, false
	}
}

func isValidationError(err error) bool {
	if errors.Is(err, domain.ErrInvalid) {
		return true
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return true
	}
	var verr validation.Error
	return errors.As(err, &verr)
}

// writeError writes a JSON error body for err. Domain errors keep their
// code; validation errors are reported as domain.ErrInvalid.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	var de *domain.DomainError
	switch {
	case errors.As(err, &de):
	case isValidationError(err):
		de = domain.ErrInvalid.WithDetails(err.Error())
	default:
		de = domain.ErrInternal
	}

	message := de.Message
	if de.Details != "" && status < http.StatusInternalServerError {
		message += ": " + de.Details
	}

	resp, jerr := JSONMessage(message, status, de.Code, nil)
	if jerr != nil {
		w.WriteHeader(status)
		return
	}
	resp.Write(w, r)
}

func writePayload(w http.ResponseWriter, status int, body []byte, contentType string) {
	if status == 0 {
		status = http.StatusOK
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if len(body) > 0 {
		w.Write(body)
	}
}

// statusRecorder captures the status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap supports http.ResponseController.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
