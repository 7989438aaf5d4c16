package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/scanbar/internal/pipeline"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	opts        pipeline.Options
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	MaxUploadMB int64
	TimeoutSec  int
	Pipeline    pipeline.Options
}

// HealthResponse is the body of a /health reply.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the body of any failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewServer creates a new extraction server instance. The pipeline options
// act as per-request defaults; strict and pages can be overridden per call.
func NewServer(config Config) (*Server, error) {
	// Validate the base options once so per-request builds cannot fail on them
	if _, err := pipeline.NewBuilder().WithOptions(config.Pipeline).Build(); err != nil {
		return nil, err
	}
	return &Server{
		opts:        config.Pipeline,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.metricsMiddleware(s.healthHandler))
	mux.HandleFunc("/extract", s.metricsMiddleware(s.extractHandler))
	mux.Handle("/metrics", promhttp.Handler())
}
