//nolint:lll
package config

// Config represents the complete configuration for the qrbridge tool.
// It covers every command (detect, pdf, serve) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Native gateway selection and engine tuning
	Native NativeConfig `mapstructure:"native" yaml:"native" json:"native"`

	// Worker pool for asynchronous detection
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch" json:"dispatch"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch discovery configuration (for detect on directories)
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// NativeConfig selects the gateway implementation.
type NativeConfig struct {
	Backend      string `mapstructure:"backend" yaml:"backend" json:"backend"`
	MaxImageSize int    `mapstructure:"max_image_size" yaml:"max_image_size" json:"max_image_size"`
	TryHarder    bool   `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	Multi        bool   `mapstructure:"multi" yaml:"multi" json:"multi"`
}

// DispatchConfig sizes the shared worker pool.
type DispatchConfig struct {
	Workers   int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	QueueSize int    `mapstructure:"queue_size" yaml:"queue_size" json:"queue_size"`
	Policy    string `mapstructure:"policy" yaml:"policy" json:"policy"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string          `mapstructure:"host" yaml:"host" json:"host"`
	Port            int             `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string          `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int             `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int             `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int             `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains per-client request limits.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDayMB   int64 `mapstructure:"max_data_per_day_mb" yaml:"max_data_per_day_mb" json:"max_data_per_day_mb"`
}

// BatchConfig contains file discovery settings.
type BatchConfig struct {
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
