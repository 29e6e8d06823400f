package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/core/lifecycle"
	"github.com/omriasta/core/internal/core/service"
	"github.com/omriasta/core/internal/infra/buildinfo"
	"github.com/omriasta/core/internal/server/httpserver/router"
	"github.com/omriasta/core/internal/server/httpserver/view"
	"github.com/omriasta/core/internal/telemetry/logger"
)

// maxCallBodySize bounds the JSON body of a service call.
const maxCallBodySize = 1 << 20

// APIStatusView answers GET /api/ so clients can check the API is up.
type APIStatusView struct {
	view.Base
}

// Get handles GET /api/.
func (*APIStatusView) Get(_ *http.Request, _ router.Params) (view.Result, error) {
	return view.JSON(StatusResponse{Message: "API running."}, http.StatusOK, nil)
}

// ConfigView reports build information and the run state.
type ConfigView struct {
	view.Base
	state *lifecycle.State
}

// Get handles GET /api/config.
func (v *ConfigView) Get(_ *http.Request, _ router.Params) (view.Result, error) {
	resp := ConfigResponse{
		Info:     buildinfo.Get(),
		State:    v.state.Get().String(),
		LogLevel: logger.GetLevel(),
	}
	return view.JSON(resp, http.StatusOK, nil)
}

// ServicesView lists the registered services.
type ServicesView struct {
	view.Base
	services *service.Registry
}

// Get handles GET /api/services.
func (v *ServicesView) Get(_ *http.Request, _ router.Params) (view.Result, error) {
	return view.JSON(v.services.Services(), http.StatusOK, nil)
}

// ServiceCallView calls a registered service with the JSON object in the
// request body.
type ServiceCallView struct {
	view.Base
	services *service.Registry
}

// Post handles POST /api/services/{domain}/{service}. The call runs as a
// future so the adapter awaits it like any other asynchronous handler.
func (v *ServiceCallView) Post(r *http.Request, p router.Params) (view.Result, error) {
	data, err := decodeObject(r.Body)
	if err != nil {
		return nil, err
	}

	hubCtx := view.Context(r)
	ctx := r.Context()
	return view.Go(func() (view.Result, error) {
		result, err := v.services.Call(ctx, p["domain"], p["service"], data, hubCtx)
		if err != nil {
			return nil, err
		}
		return view.JSON(result, http.StatusOK, nil)
	}), nil
}

// decodeObject reads a JSON object. An empty body is an empty object.
func decodeObject(body io.Reader) (map[string]any, error) {
	data := map[string]any{}
	dec := json.NewDecoder(io.LimitReader(body, maxCallBodySize))
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		return nil, domain.ErrInvalid.WithDetails("body must be a JSON object").WithCause(err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
