package handler

import "github.com/omriasta/core/internal/infra/buildinfo"

// StatusResponse is the body of GET /api/.
type StatusResponse struct {
	Message string `json:"message"`
}

// ConfigResponse is the body of GET /api/config.
type ConfigResponse struct {
	buildinfo.Info
	State    string `json:"state"`
	LogLevel string `json:"log_level"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
