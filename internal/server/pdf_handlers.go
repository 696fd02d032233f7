package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/MeKo-Tech/qrbridge/internal/common"
	"github.com/MeKo-Tech/qrbridge/internal/pdf"
)

// detectPDFHandler scans the images embedded in an uploaded PDF. The
// document comes from the multipart field "pdf" or the raw body; "pages"
// and "password" are read from the form or the query string.
func (s *Server) detectPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, filename, status, err := s.readUpload(w, r, "pdf")
	if err != nil {
		detectionsTotal.WithLabelValues("pdf", "rejected").Inc()
		s.writeErrorResponse(w, err.Error(), status)
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	path, cleanup, err := writeTempPDF(data)
	if err != nil {
		slog.Error("Failed to store uploaded PDF", "error", err)
		s.writeErrorResponse(w, "failed to store uploaded PDF", http.StatusInternalServerError)
		return
	}
	defer cleanup()

	ctx, cancel := s.requestContext(r)
	defer cancel()

	opts := pdf.Options{Pages: r.FormValue("pages"), Password: r.FormValue("password")}
	timer := common.NewNamedTimer("pdf")
	doc, err := pdf.Scan(ctx, s.detector, path, opts)
	timer.Stop()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.writeContextError(w, err)
			return
		}
		detectionsTotal.WithLabelValues("pdf", "failed").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	texts := doc.Texts()
	observeDetection("pdf", "OK", timer.Duration().Seconds(), len(texts))

	// the temp path means nothing to the client
	doc.Filename = filename
	s.writeJSON(w, http.StatusOK, doc)
}

func writeTempPDF(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "qrbridge-upload-*.pdf")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
