package config

import (
	"strings"
	"testing"

	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
	"github.com/MeKo-Tech/qrbridge/internal/native"
)

const (
	infoLevel  = "info"
	debugLevel = "debug"
)

// TestDefaultConfig tests the default configuration values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Native.Backend != native.BackendEngine {
		t.Errorf("Expected backend %s, got %s", native.BackendEngine, cfg.Native.Backend)
	}
	if !cfg.Native.TryHarder || !cfg.Native.Multi {
		t.Error("Expected try_harder and multi enabled by default")
	}
	if cfg.Dispatch.Workers != 0 || cfg.Dispatch.QueueSize != 0 {
		t.Errorf("Expected auto workers and unbounded queue, got %+v", cfg.Dispatch)
	}
	if cfg.Dispatch.Policy != string(dispatch.PolicyBlock) {
		t.Errorf("Expected block policy, got %s", cfg.Dispatch.Policy)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected text output, got %s", cfg.Output.Format)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

// TestValidate tests rejection of invalid settings.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"debug level", func(c *Config) { c.LogLevel = debugLevel }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"yaml format", func(c *Config) { c.Output.Format = "yaml" }, ""},
		{"empty format", func(c *Config) { c.Output.Format = "" }, ""},
		{"bad format", func(c *Config) { c.Output.Format = "csv" }, "invalid output format"},
		{"cgo backend", func(c *Config) { c.Native.Backend = native.BackendCGO }, ""},
		{"bad backend", func(c *Config) { c.Native.Backend = "jni" }, "invalid native backend"},
		{"negative max image size", func(c *Config) { c.Native.MaxImageSize = -1 }, "invalid max image size"},
		{"negative workers", func(c *Config) { c.Dispatch.Workers = -1 }, "invalid dispatch workers"},
		{"negative queue", func(c *Config) { c.Dispatch.QueueSize = -5 }, "invalid dispatch queue size"},
		{"bad policy", func(c *Config) { c.Dispatch.Policy = "drop" }, "invalid dispatch policy"},
		{"reject policy", func(c *Config) { c.Dispatch.Policy = "reject" }, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"upload zero", func(c *Config) { c.Server.MaxUploadMB = 0 }, "invalid max upload size"},
		{"timeout zero", func(c *Config) { c.Server.TimeoutSec = 0 }, "invalid timeout"},
		{"rate limit zero", func(c *Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.RequestsPerMinute = 0
		}, "invalid rate limit"},
		{"rate limit disabled ignores zero", func(c *Config) { c.Server.RateLimit.RequestsPerMinute = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// TestToEngineConfig tests conversion to engine settings.
func TestToEngineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Native.MaxImageSize = 1600
	cfg.Native.TryHarder = false
	cfg.Native.Multi = false

	got := cfg.ToEngineConfig()
	if got.MaxImageSize != 1600 || got.TryHarder || got.Multi {
		t.Errorf("ToEngineConfig() = %+v", got)
	}
}

// TestToDispatchConfig tests conversion to pool settings.
func TestToDispatchConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dispatch = DispatchConfig{Workers: 3, QueueSize: 16, Policy: "reject"}

	got := cfg.ToDispatchConfig()
	want := dispatch.Config{Workers: 3, QueueSize: 16, Policy: dispatch.PolicyReject}
	if got != want {
		t.Errorf("ToDispatchConfig() = %+v, want %+v", got, want)
	}
}
