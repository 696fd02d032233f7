package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbridge/internal/pdf"
	"github.com/MeKo-Tech/qrbridge/internal/testutil"
)

// qrDocument returns the bytes of a one page PDF holding a QR code.
func qrDocument(t *testing.T, text string) []byte {
	t.Helper()

	data, err := os.ReadFile(testutil.WriteQRPDF(t, t.TempDir(), "doc.pdf", text))
	require.NoError(t, err)
	return data
}

func TestServer_DetectPDFHandler(t *testing.T) {
	s := newEngineServer(t)
	data := qrDocument(t, "pdf payload")

	t.Run("multipart upload", func(t *testing.T) {
		req := createMultipartRequest(t, "/v1/detect/pdf", "pdf", "invoice.pdf", data, map[string]string{"pages": "1"})
		w := httptest.NewRecorder()
		s.detectPDFHandler(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var doc pdf.DocumentResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "invoice.pdf", doc.Filename)
		assert.Equal(t, 1, doc.TotalPages)
		assert.Equal(t, []string{"pdf payload"}, doc.Texts())
	})

	t.Run("raw body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/detect/pdf", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/pdf")
		w := httptest.NewRecorder()
		s.detectPDFHandler(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var doc pdf.DocumentResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Empty(t, doc.Filename)
		assert.Equal(t, []string{"pdf payload"}, doc.Texts())
	})

	t.Run("invalid page range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/detect/pdf?pages=5-1", bytes.NewReader(data))
		w := httptest.NewRecorder()
		s.detectPDFHandler(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "invalid page range")
	})
}

func TestServer_DetectPDFHandler_Errors(t *testing.T) {
	s := newFixtureServer(t, helloFixture(), testConfig())

	tests := []struct {
		name           string
		request        func(t *testing.T) *http.Request
		expectedStatus int
	}{
		{
			name: "method not allowed",
			request: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/v1/detect/pdf", nil)
			},
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name: "missing pdf field",
			request: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "/v1/detect/pdf", "image", "a.png", []byte("x"), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not a pdf",
			request: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/v1/detect/pdf", bytes.NewReader([]byte("plain text")))
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.detectPDFHandler(w, tt.request(t))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
