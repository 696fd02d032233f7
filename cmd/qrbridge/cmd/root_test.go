package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps config files and .env from the host out of the run.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "qrbridge", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"detect", "pdf", "serve", "config", "bench", "version"} {
		assert.Contains(t, names, expected)
	}
}

func TestRootCommandHelp(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "qrbridge decodes QR codes from image files")
	assert.Contains(t, out, "Available Commands:")
}

func TestRootCommandVersion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "qrbridge dev")
}

func TestRootCommandInvalidFlag(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "--no-such-flag")
	assert.Error(t, err)
}

func TestRootCommandInvalidConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatch:\n  policy: drop\n"), 0o600))

	_, _, err := execute(t, "--config", path, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading configuration")
}

func TestRootCommandUnknownBackend(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "--backend", "jni", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid native backend")
}

func TestRootCommandVerboseLogsToStderr(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "qrbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0o600))

	out, errOut, err := execute(t, "--verbose", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "format: json")
	assert.Contains(t, errOut, `"msg":"Configuration loaded"`)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "qrbridge dev (commit: unknown")

	out, _, err = execute(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "dev"`)
}
