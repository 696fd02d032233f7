package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbridge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrbridge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbridge_detections_total",
			Help: "Total number of detection requests by result code",
		},
		[]string{"source", "code"}, // source: image, pdf, websocket
	)

	detectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrbridge_detection_duration_seconds",
			Help:    "Detection duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	payloadsDecoded = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrbridge_payloads_decoded",
			Help:    "Number of symbols decoded per request",
			Buckets: []float64{0, 1, 2, 5, 10, 25},
		},
		[]string{"source"},
	)

	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbridge_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // minute, hour, requests, data
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrbridge_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrbridge_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbridge_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // sent, received
	)
)

// observeDetection records the outcome of one detection.
func observeDetection(source, code string, seconds float64, payloads int) {
	detectionsTotal.WithLabelValues(source, code).Inc()
	detectionDuration.WithLabelValues(source).Observe(seconds)
	payloadsDecoded.WithLabelValues(source).Observe(float64(payloads))
}
