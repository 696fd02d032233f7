package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "qrbridge"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "QRBRIDGE"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so that cobra
// flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader on an explicit viper instance.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Variables that are already set win.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from files, environment variables, and defaults,
// then validates it.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithoutValidation is Load without the validation step.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.LoadWithFileWithoutValidation("")
}

// LoadWithFile loads configuration from a specific file path. An empty path
// searches the standard locations.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	config, err := l.LoadWithFileWithoutValidation(configFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadWithFileWithoutValidation loads configuration from a specific file
// path without validation.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults and env vars only
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) any {
	return l.v.Get(key)
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// native.max_image_size -> QRBRIDGE_NATIVE_MAX_IMAGE_SIZE
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options. Every key
// needs a default for AutomaticEnv to reach it during Unmarshal.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("native.backend", defaults.Native.Backend)
	l.v.SetDefault("native.max_image_size", defaults.Native.MaxImageSize)
	l.v.SetDefault("native.try_harder", defaults.Native.TryHarder)
	l.v.SetDefault("native.multi", defaults.Native.Multi)

	l.v.SetDefault("dispatch.workers", defaults.Dispatch.Workers)
	l.v.SetDefault("dispatch.queue_size", defaults.Dispatch.QueueSize)
	l.v.SetDefault("dispatch.policy", defaults.Dispatch.Policy)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	l.v.SetDefault("server.rate_limit.enabled", defaults.Server.RateLimit.Enabled)
	l.v.SetDefault("server.rate_limit.requests_per_minute", defaults.Server.RateLimit.RequestsPerMinute)
	l.v.SetDefault("server.rate_limit.requests_per_hour", defaults.Server.RateLimit.RequestsPerHour)
	l.v.SetDefault("server.rate_limit.max_requests_per_day", defaults.Server.RateLimit.MaxRequestsPerDay)
	l.v.SetDefault("server.rate_limit.max_data_per_day_mb", defaults.Server.RateLimit.MaxDataPerDayMB)

	l.v.SetDefault("batch.recursive", defaults.Batch.Recursive)
	l.v.SetDefault("batch.include", defaults.Batch.Include)
	l.v.SetDefault("batch.exclude", defaults.Batch.Exclude)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
}

// GetResolvedConfig returns the current resolved configuration for debugging.
func (l *Loader) GetResolvedConfig() map[string]any {
	return l.v.AllSettings()
}

// GenerateDefaultConfigFile writes the default configuration as YAML.
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}
	return os.WriteFile(filename, data, 0o644)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	paths = append(paths, filepath.Join("/etc", ConfigFileName))

	return paths
}
