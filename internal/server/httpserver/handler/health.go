package handler

import (
	"net/http"
	"time"

	"github.com/omriasta/core/internal/server/httpserver/router"
	"github.com/omriasta/core/internal/server/httpserver/view"
)

// HealthView answers liveness probes. It does not require authentication.
type HealthView struct {
	view.Base
}

// Get handles GET /health.
func (*HealthView) Get(_ *http.Request, _ router.Params) (view.Result, error) {
	return view.JSON(HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK, nil)
}

// Head handles HEAD /health.
func (*HealthView) Head(_ *http.Request, _ router.Params) (view.Result, error) {
	return view.Empty{}, nil
}
