package view

import (
	"net/http"

	"github.com/omriasta/core/internal/server/httpserver/router"
)

// View is a named bundle of URL patterns and method handlers.
type View interface {
	// Name identifies the view in logs and metrics.
	Name() string
	// URL is the primary pattern. It must not be empty.
	URL() string
	// ExtraURLs are additional patterns served by the same handlers.
	ExtraURLs() []string
	// RequiresAuth reports whether unauthenticated requests are refused.
	RequiresAuth() bool
	// CORSAllowed reports whether cross-origin requests are allowed.
	CORSAllowed() bool
}

// Base implements View for embedding in concrete views.
type Base struct {
	ViewName   string
	Path       string
	ExtraPaths []string
	// Public disables authentication; views require it by default.
	Public    bool
	AllowCORS bool
}

// Name implements View. It falls back to the primary URL.
func (b Base) Name() string {
	if b.ViewName == "" {
		return b.Path
	}
	return b.ViewName
}

// URL implements View.
func (b Base) URL() string { return b.Path }

// ExtraURLs implements View.
func (b Base) ExtraURLs() []string { return b.ExtraPaths }

// RequiresAuth implements View.
func (b Base) RequiresAuth() bool { return !b.Public }

// CORSAllowed implements View.
func (b Base) CORSAllowed() bool { return b.AllowCORS }

// HandlerFunc is the calling convention of every method handler.
type HandlerFunc func(r *http.Request, p router.Params) (Result, error)

// GetHandler is implemented by views serving GET.
type GetHandler interface {
	Get(r *http.Request, p router.Params) (Result, error)
}

// PostHandler is implemented by views serving POST.
type PostHandler interface {
	Post(r *http.Request, p router.Params) (Result, error)
}

// DeleteHandler is implemented by views serving DELETE.
type DeleteHandler interface {
	Delete(r *http.Request, p router.Params) (Result, error)
}

// PutHandler is implemented by views serving PUT.
type PutHandler interface {
	Put(r *http.Request, p router.Params) (Result, error)
}

// PatchHandler is implemented by views serving PATCH.
type PatchHandler interface {
	Patch(r *http.Request, p router.Params) (Result, error)
}

// HeadHandler is implemented by views serving HEAD.
type HeadHandler interface {
	Head(r *http.Request, p router.Params) (Result, error)
}

// OptionsHandler is implemented by views serving OPTIONS.
type OptionsHandler interface {
	Options(r *http.Request, p router.Params) (Result, error)
}

// Method pairs an HTTP method with the view handler serving it.
type Method struct {
	Name    string
	Handler HandlerFunc
}

// Methods returns the methods v supports in the order GET, POST, DELETE,
// PUT, PATCH, HEAD, OPTIONS.
func Methods(v View) []Method {
	var ms []Method
	if h, ok := v.(GetHandler); ok {
		ms = append(ms, Method{http.MethodGet, h.Get})
	}
	if h, ok := v.(PostHandler); ok {
		ms = append(ms, Method{http.MethodPost, h.Post})
	}
	if h, ok := v.(DeleteHandler); ok {
		ms = append(ms, Method{http.MethodDelete, h.Delete})
	}
	if h, ok := v.(PutHandler); ok {
		ms = append(ms, Method{http.MethodPut, h.Put})
	}
	if h, ok := v.(PatchHandler); ok {
		ms = append(ms, Method{http.MethodPatch, h.Patch})
	}
	if h, ok := v.(HeadHandler); ok {
		ms = append(ms, Method{http.MethodHead, h.Head})
	}
	if h, ok := v.(OptionsHandler); ok {
		ms = append(ms, Method{http.MethodOptions, h.Options})
	}
	return ms
}
