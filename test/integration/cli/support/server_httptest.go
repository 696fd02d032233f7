package support

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/qrbridge/internal/native"
	"github.com/MeKo-Tech/qrbridge/internal/native/nativetest"
	"github.com/MeKo-Tech/qrbridge/internal/server"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// HTTPTestServerWrapper wraps httptest.Server for integration tests.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
	Fixture    *nativetest.Fixture
}

func defaultServerConfig() server.Config {
	return server.Config{
		CORSOrigin:  "*",
		MaxUploadMB: 1,
		TimeoutSec:  10,
		Version:     "integration",
	}
}

// startTestHTTPServer starts a server on gw. A nil gateway selects the
// in-process engine.
func (testCtx *TestContext) startTestHTTPServer(cfg server.Config, gw native.Gateway) error {
	if err := testCtx.StopServer(); err != nil {
		return err
	}

	var opts []qrcode.Option
	if gw != nil {
		opts = append(opts, qrcode.WithGateway(gw))
	}
	srv, err := server.NewServer(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	wrapper := &HTTPTestServerWrapper{
		Server:     httptest.NewServer(srv.Handler()),
		TestServer: srv,
	}
	if f, ok := gw.(*nativetest.Fixture); ok {
		wrapper.Fixture = f
	}
	testCtx.HTTPTestServer = wrapper
	return nil
}

// StopServer stops the test server if one is running.
func (testCtx *TestContext) StopServer() error {
	if testCtx.HTTPTestServer == nil {
		return nil
	}
	testCtx.HTTPTestServer.Server.Close()
	err := testCtx.HTTPTestServer.TestServer.Close()
	testCtx.HTTPTestServer = nil
	return err
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.HTTPTestServer == nil {
		return "", fmt.Errorf("server is not running")
	}
	return testCtx.HTTPTestServer.Server.URL + path, nil
}

// do sends req and records the response.
func (testCtx *TestContext) do(req *http.Request) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = resp.Header
	return nil
}

// uploadFile posts a file as a multipart form field.
func (testCtx *TestContext) uploadFile(path, field, name string, extra map[string]string) error {
	target, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(testCtx.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filepath.Base(name))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	for k, v := range extra {
		if err := writer.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, target, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return testCtx.do(req)
}
