package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrbridge/internal/config"
)

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	out, _, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to qrbridge.yaml")

	data, err := os.ReadFile(filepath.Join(dir, "qrbridge.yaml"))
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, config.DefaultConfig().Server.Port, cfg.Server.Port)

	_, _, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigInitCustomPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")

	_, _, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestConfigShowMergesSources(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "qrbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o600))
	t.Setenv("QRBRIDGE_DISPATCH_WORKERS", "3")

	out, _, err := execute(t, "--log-level", "warn", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from")

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Dispatch.Workers)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigShowEnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("QRBRIDGE_OUTPUT_FORMAT=yaml\n"), 0o600))
	t.Setenv("QRBRIDGE_OUTPUT_FORMAT", "")
	require.NoError(t, os.Unsetenv("QRBRIDGE_OUTPUT_FORMAT"))

	out, _, err := execute(t, "--env-file", envFile, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "format: yaml")
}

func TestConfigPaths(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "config", "paths")
	require.NoError(t, err)
	assert.Contains(t, out, ".\n")
	assert.Contains(t, out, filepath.Join("/etc", "qrbridge"))
}
