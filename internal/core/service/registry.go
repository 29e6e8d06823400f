package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/telemetry/logger"
)

// ServiceCall is a single invocation of a registered service.
type ServiceCall struct {
	Domain  string
	Service string
	Data    map[string]any
	Context domain.Context
}

// ServiceHandler executes a service call and returns its JSON-serialisable
// result (nil for none).
type ServiceHandler func(ctx context.Context, call *ServiceCall) (any, error)

// Service is a registered service. Schema, when set, validates the call
// data before the handler runs.
type Service struct {
	Handler ServiceHandler
	Schema  validation.Rule
}

// ServiceInfo describes a registered service.
type ServiceInfo struct {
	Domain   string   `json:"domain"`
	Services []string `json:"services"`
}

// Registry holds services addressed by domain and name.
type Registry struct {
	mu       sync.RWMutex
	services map[string]map[string]Service
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]map[string]Service)}
}

// Register adds a service, replacing any service already registered under
// the same domain and name.
func (r *Registry) Register(dom, name string, svc Service) error {
	dom = strings.ToLower(strings.TrimSpace(dom))
	name = strings.ToLower(strings.TrimSpace(name))
	if dom == "" || name == "" {
		return domain.ErrConfiguration.WithDetails("service domain and name are required")
	}
	if svc.Handler == nil {
		return domain.ErrConfiguration.WithDetails(fmt.Sprintf("service %s.%s has no handler", dom, name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.services[dom] == nil {
		r.services[dom] = make(map[string]Service)
	}
	r.services[dom][name] = svc
	return nil
}

// Has reports whether a service is registered.
func (r *Registry) Has(dom, name string) bool {
	_, ok := r.lookup(dom, name)
	return ok
}

// Call validates data against the service schema and runs the handler.
//
// Unknown services yield domain.ErrServiceNotFound. Schema violations yield
// an error matching domain.ErrInvalid that also wraps the validation.Errors.
func (r *Registry) Call(ctx context.Context, dom, name string, data map[string]any, hubCtx domain.Context) (any, error) {
	svc, ok := r.lookup(dom, name)
	if !ok {
		return nil, domain.ErrServiceNotFound.WithDetails(fmt.Sprintf("%s.%s", dom, name))
	}

	if data == nil {
		data = map[string]any{}
	}

	if svc.Schema != nil {
		if err := validation.Validate(data, svc.Schema); err != nil {
			var internal validation.InternalError
			if errors.As(err, &internal) {
				return nil, domain.ErrInternal.WithCause(err)
			}
			return nil, domain.ErrInvalid.WithDetails(err.Error()).WithCause(err)
		}
	}

	return svc.Handler(ctx, &ServiceCall{
		Domain:  strings.ToLower(dom),
		Service: strings.ToLower(name),
		Data:    data,
		Context: hubCtx,
	})
}

// Services lists registered services, domains and names sorted.
func (r *Registry) Services() []ServiceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ServiceInfo, 0, len(r.services))
	for dom, svcs := range r.services {
		names := make([]string, 0, len(svcs))
		for name := range svcs {
			names = append(names, name)
		}
		sort.Strings(names)
		infos = append(infos, ServiceInfo{Domain: dom, Services: names})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Domain < infos[j].Domain })
	return infos
}

func (r *Registry) lookup(dom, name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[strings.ToLower(dom)][strings.ToLower(name)]
	return svc, ok
}

func logLevels() []any {
	names := logger.Levels()
	levels := make([]any, len(names))
	for i, n := range names {
		levels[i] = n
	}
	return levels
}

// RegisterBuiltins registers the services every hub provides:
//
//   - system.ping answers {"pong": true} together with the caller context
//   - logger.set_level changes the process log level
func RegisterBuiltins(r *Registry, setLevel func(level string)) error {
	if err := r.Register("system", "ping", Service{
		Handler: func(_ context.Context, call *ServiceCall) (any, error) {
			return map[string]any{
				"pong":    true,
				"context": call.Context,
			}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register("logger", "set_level", Service{
		Schema: validation.Map(
			validation.Key("level", validation.Required, validation.In(logLevels()...)),
		),
		Handler: func(ctx context.Context, call *ServiceCall) (any, error) {
			level := call.Data["level"].(string)
			setLevel(level)
			logger.L(ctx).Info("log level changed", "level", level, "context_id", call.Context.ID)
			return map[string]any{"level": level}, nil
		},
	})
}
