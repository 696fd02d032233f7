package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers and records request metrics under the
// given endpoint label.
func (s *Server) corsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next(rw, r)
		duration := time.Since(start)

		httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(duration.Seconds())
		if rw.statusCode >= http.StatusInternalServerError {
			slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", rw.statusCode)
		}
	}
}

// rateLimitMiddleware enforces rate limiting and quotas.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next(w, r)
			return
		}

		var dataSize int64
		if r.ContentLength > 0 {
			dataSize = r.ContentLength
		}

		if err := s.rateLimiter.CheckRateLimit(getClientIP(r), dataSize); err != nil {
			s.handleRateLimitError(w, err)
			return
		}

		next(w, r)
	}
}

// handleRateLimitError writes a 429 response describing the violated limit.
func (s *Server) handleRateLimitError(w http.ResponseWriter, err error) {
	var limitErr *RateLimitError
	var quotaErr *QuotaExceededError

	switch {
	case errors.As(err, &limitErr):
		rateLimitHits.WithLabelValues(limitErr.Type).Inc()
		w.Header().Set("X-RateLimit-Type", limitErr.Type)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitErr.Limit))
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", limitErr.RetryAfter.Seconds()))
		s.writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":       "rate_limit_exceeded",
			"type":        limitErr.Type,
			"limit":       limitErr.Limit,
			"retry_after": limitErr.RetryAfter.Seconds(),
			"message":     limitErr.Error(),
		})
	case errors.As(err, &quotaErr):
		rateLimitHits.WithLabelValues(quotaErr.Type).Inc()
		w.Header().Set("X-Quota-Type", quotaErr.Type)
		w.Header().Set("X-Quota-Limit", strconv.FormatInt(quotaErr.Limit, 10))
		w.Header().Set("X-Quota-Used", strconv.FormatInt(quotaErr.Used, 10))
		w.Header().Set("X-Quota-Resets", quotaErr.Resets.UTC().Format(http.TimeFormat))
		s.writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":   "quota_exceeded",
			"type":    quotaErr.Type,
			"limit":   quotaErr.Limit,
			"used":    quotaErr.Used,
			"resets":  quotaErr.Resets.Format(time.RFC3339),
			"message": quotaErr.Error(),
		})
	default:
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "internal_error",
			"message": "rate limiting check failed",
		})
	}
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
