package support

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastStdout    string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	T       testing.TB
	TempDir string
	envKeys []string

	// Server under test
	HTTPTestServer *HTTPTestServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    http.Header
}

// NewTestContext creates a scenario context with its own temp directory.
// Fixtures are generated through t.
func NewTestContext(t testing.TB) (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "qrbridge-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{T: t, TempDir: tempDir}, nil
}

// Cleanup stops the server, restores the environment and removes the temp
// directory.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	if err := testCtx.StopServer(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
	}

	for _, key := range testCtx.envKeys {
		if err := os.Unsetenv(key); err != nil {
			errs = append(errs, fmt.Errorf("failed to unset %s: %w", key, err))
		}
	}
	testCtx.envKeys = nil

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// SetEnv sets a process environment variable until Cleanup.
func (testCtx *TestContext) SetEnv(name, value string) error {
	testCtx.envKeys = append(testCtx.envKeys, name)
	return os.Setenv(name, value)
}

// Path resolves a scenario-relative file name inside the temp directory.
func (testCtx *TestContext) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}
