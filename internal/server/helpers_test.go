package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbridge/internal/native"
	"github.com/MeKo-Tech/qrbridge/internal/native/nativetest"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

func testConfig() Config {
	return Config{CORSOrigin: "*", MaxUploadMB: 1, TimeoutSec: 5, Version: "test"}
}

// newFixtureServer returns a server whose detector reports the fixture's entries.
func newFixtureServer(t *testing.T, f *nativetest.Fixture, cfg Config) *Server {
	t.Helper()
	s, err := NewServer(cfg, qrcode.WithGateway(f))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newEngineServer returns a server backed by the in-process decoder.
func newEngineServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func helloFixture() *nativetest.Fixture {
	return nativetest.New(nativetest.Entry{Text: "hello", Points: []native.Point{{X: 1, Y: 2}}})
}

// createMultipartRequest builds a multipart POST with one file field.
func createMultipartRequest(
	t *testing.T,
	target, field, filename string,
	data []byte,
	extraFields map[string]string,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for key, value := range extraFields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
