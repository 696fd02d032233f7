package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// detector is the part of *qrcode.Detector the server depends on.
type detector interface {
	DetectContext(ctx context.Context, in qrcode.Input) (qrcode.Result, error)
	DetectPath(path string) qrcode.Result
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	detector    detector
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	version     string
	rateLimiter *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Version     string
	RateLimit   RateLimitConfig
}

// RateLimitConfig holds per-client limits. Zero values disable a limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64 // bytes
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// DetectResponse is returned by POST /v1/detect. The result is always
// present; its code tells success from failure.
type DetectResponse struct {
	Filename   string        `json:"filename,omitempty"`
	Size       int           `json:"size"`
	Result     qrcode.Report `json:"result"`
	DurationMs float64       `json:"duration_ms"`
}

// ErrorResponse is returned when a request cannot be processed at all.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a server with its own detector. Options are passed to
// qrcode.New.
func NewServer(config Config, opts ...qrcode.Option) (*Server, error) {
	det, err := qrcode.New(opts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		detector:    det,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		version:     config.Version,
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 50
	}
	if rl := config.RateLimit; rl.Enabled {
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.MaxRequestsPerDay, rl.MaxDataPerDay)
	}
	return s, nil
}

// Close releases the server's detector.
func (s *Server) Close() error {
	if s.detector != nil {
		return s.detector.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware("/health", s.healthHandler))
	mux.HandleFunc("/v1/detect", s.corsMiddleware("/v1/detect", s.rateLimitMiddleware(s.detectHandler)))
	mux.HandleFunc("/v1/detect/pdf", s.corsMiddleware("/v1/detect/pdf", s.rateLimitMiddleware(s.detectPDFHandler)))
	mux.HandleFunc("/v1/ws", s.rateLimitMiddleware(s.detectWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with all routes installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

func (s *Server) maxUploadBytes() int64 {
	return s.maxUploadMB * 1024 * 1024
}
