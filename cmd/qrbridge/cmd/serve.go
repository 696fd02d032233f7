package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
	"github.com/MeKo-Tech/qrbridge/internal/native"
	"github.com/MeKo-Tech/qrbridge/internal/server"
	"github.com/MeKo-Tech/qrbridge/internal/version"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

func newServeCommand(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for QR detection",
		Long: `Start an HTTP server that decodes QR codes from uploaded images and PDFs.

The server provides the following endpoints:
  POST /v1/detect      - Decode an uploaded image (multipart "image" or raw body)
  POST /v1/detect/pdf  - Decode images embedded in an uploaded PDF
  GET  /v1/ws          - WebSocket streaming detection
  GET  /health         - Health check endpoint
  GET  /metrics        - Prometheus metrics

Examples:
  qrbridge serve
  qrbridge serve --port 8080
  qrbridge serve --host 0.0.0.0 --rate-limit-enabled --requests-per-minute 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}

	f := serveCmd.Flags()
	f.StringP("host", "H", "localhost", "server host")
	f.IntP("port", "p", 8080, "server port")
	f.String("cors-origin", "*", "CORS allowed origins")
	f.Int("max-upload-size", 50, "maximum upload size in MB")
	f.Int("timeout", 30, "request timeout in seconds")
	f.Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	f.Int("workers", 0, "number of detection workers (0 = number of CPUs)")
	// Rate limiting flags
	f.Bool("rate-limit-enabled", false, "enable rate limiting")
	f.Int("requests-per-minute", 60, "maximum requests per minute per client")
	f.Int("requests-per-hour", 1000, "maximum requests per hour per client")
	f.Int("max-requests-per-day", 5000, "maximum requests per day per client")
	f.Int("max-data-per-day", 1024, "maximum data processed per day per client (MB)")
	return serveCmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	cfg := a.config()

	host := stringFlag(cmd, "host", cfg.Server.Host)
	port := intFlag(cmd, "port", cfg.Server.Port)
	timeout := intFlag(cmd, "timeout", cfg.Server.TimeoutSec)
	shutdownTimeout := intFlag(cmd, "shutdown-timeout", cfg.Server.ShutdownTimeout)

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
	}
	if timeout <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", timeout)
	}

	maxDataMB := int64(intFlag(cmd, "max-data-per-day", int(cfg.Server.RateLimit.MaxDataPerDayMB)))
	serverConfig := server.Config{
		Host:        host,
		Port:        port,
		CORSOrigin:  stringFlag(cmd, "cors-origin", cfg.Server.CORSOrigin),
		MaxUploadMB: int64(intFlag(cmd, "max-upload-size", cfg.Server.MaxUploadMB)),
		TimeoutSec:  timeout,
		Version:     version.Version,
		RateLimit: server.RateLimitConfig{
			Enabled:           boolFlag(cmd, "rate-limit-enabled", cfg.Server.RateLimit.Enabled),
			RequestsPerMinute: intFlag(cmd, "requests-per-minute", cfg.Server.RateLimit.RequestsPerMinute),
			RequestsPerHour:   intFlag(cmd, "requests-per-hour", cfg.Server.RateLimit.RequestsPerHour),
			MaxRequestsPerDay: intFlag(cmd, "max-requests-per-day", cfg.Server.RateLimit.MaxRequestsPerDay),
			MaxDataPerDay:     maxDataMB * 1024 * 1024,
		},
	}

	poolConfig := cfg.ToDispatchConfig()
	poolConfig.Workers = intFlag(cmd, "workers", poolConfig.Workers)
	if err := poolConfig.Validate(); err != nil {
		return err
	}
	pool := dispatch.New(poolConfig)
	defer pool.Close()

	gw, err := native.Open(cfg.Native.Backend, cfg.ToEngineConfig())
	if err != nil {
		return err
	}
	srv, err := server.NewServer(serverConfig, qrcode.WithGateway(gw), qrcode.WithPool(pool))
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(timeout) * time.Second,
		WriteTimeout:      time.Duration(timeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting QR detection server", "host", host, "port", port, "backend", cfg.Native.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Close(); err != nil {
		slog.Error("Server cleanup error", "error", err)
	}
	slog.Info("Graceful shutdown completed")
	return runErr
}
