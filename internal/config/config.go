package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
	"github.com/MeKo-Tech/qrbridge/internal/native"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	engine := native.DefaultEngineConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Native: NativeConfig{
			Backend:      native.BackendEngine,
			MaxImageSize: engine.MaxImageSize,
			TryHarder:    engine.TryHarder,
			Multi:        engine.Multi,
		},
		Dispatch: DispatchConfig{
			Workers:   0,
			QueueSize: 0,
			Policy:    string(dispatch.PolicyBlock),
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				RequestsPerHour:   1000,
				MaxRequestsPerDay: 5000,
				MaxDataPerDayMB:   1024,
			},
		},
		Batch: BatchConfig{
			Recursive:       false,
			Include:         []string{},
			Exclude:         []string{},
			ContinueOnError: false,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "yaml"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	validBackends := []string{native.BackendEngine, native.BackendCGO}
	if !slices.Contains(validBackends, c.Native.Backend) {
		return fmt.Errorf("invalid native backend: %s (must be one of: %s)", c.Native.Backend, strings.Join(validBackends, ", "))
	}
	if c.Native.MaxImageSize < 0 {
		return fmt.Errorf("invalid max image size: %d (must be >= 0)", c.Native.MaxImageSize)
	}

	if err := c.ToDispatchConfig().Validate(); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.RequestsPerMinute <= 0 || rl.RequestsPerHour <= 0 {
			return fmt.Errorf("invalid rate limit: %d/min, %d/h (must be positive)", rl.RequestsPerMinute, rl.RequestsPerHour)
		}
	}

	return nil
}

// ToEngineConfig converts the config to the in-process engine settings.
func (c *Config) ToEngineConfig() native.EngineConfig {
	return native.EngineConfig{
		MaxImageSize: c.Native.MaxImageSize,
		TryHarder:    c.Native.TryHarder,
		Multi:        c.Native.Multi,
	}
}

// ToDispatchConfig converts the config to the worker pool settings.
func (c *Config) ToDispatchConfig() dispatch.Config {
	return dispatch.Config{
		Workers:   c.Dispatch.Workers,
		QueueSize: c.Dispatch.QueueSize,
		Policy:    dispatch.Policy(c.Dispatch.Policy),
	}
}
