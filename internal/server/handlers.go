package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/MeKo-Tech/qrbridge/internal/common"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// detectHandler decodes QR codes from an uploaded image. The image is read
// from the multipart field "image" or, for any other content type, from the
// raw request body.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, filename, status, err := s.readUpload(w, r, "image")
	if err != nil {
		detectionsTotal.WithLabelValues("image", "rejected").Inc()
		s.writeErrorResponse(w, err.Error(), status)
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	ctx, cancel := s.requestContext(r)
	defer cancel()

	timer := common.NewNamedTimer("detect")
	res, err := s.detector.DetectContext(ctx, qrcode.BytesInput(data))
	timer.Stop()
	if err != nil {
		s.writeContextError(w, err)
		return
	}
	observeDetection("image", res.Code().String(), timer.Duration().Seconds(), res.Len())

	s.writeJSON(w, statusForResult(res), DetectResponse{
		Filename:   filename,
		Size:       len(data),
		Result:     res.Report(),
		DurationMs: timer.Milliseconds(),
	})
}

// readUpload returns the uploaded bytes, the client file name if any, and
// an HTTP status to use on error.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, int, error) {
	limit := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", uploadErrorStatus(err), fmt.Errorf("failed to read request body: %w", err)
		}
		if len(data) == 0 {
			return nil, "", http.StatusBadRequest, errors.New("empty request body")
		}
		return data, "", http.StatusOK, nil
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, "", uploadErrorStatus(err), errors.New("failed to parse form data")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", http.StatusBadRequest, fmt.Errorf("no %s file provided", field)
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		return nil, "", http.StatusRequestEntityTooLarge, errors.New("file too large")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", http.StatusInternalServerError, errors.New("failed to read uploaded file")
	}
	if len(data) == 0 {
		return nil, "", http.StatusBadRequest, fmt.Errorf("empty %s file", field)
	}
	return data, header.Filename, http.StatusOK, nil
}

func uploadErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// requestContext bounds a request by the configured timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeoutSec <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
}

// writeContextError reports a detection that did not finish in time or
// could not be scheduled.
func (s *Server) writeContextError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, "detection timed out", http.StatusGatewayTimeout)
	case errors.Is(err, context.Canceled):
		s.writeErrorResponse(w, "request cancelled", http.StatusRequestTimeout)
	default:
		slog.Error("Detection could not be scheduled", "error", err)
		s.writeErrorResponse(w, "detection unavailable: "+err.Error(), http.StatusServiceUnavailable)
	}
}

// statusForResult maps a detection result to an HTTP status.
func statusForResult(res qrcode.Result) int {
	switch res.Code() {
	case qrcode.CodeOK:
		return http.StatusOK
	case qrcode.CodeDecodeFailed, qrcode.CodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case qrcode.CodeInvalidHandle:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}
