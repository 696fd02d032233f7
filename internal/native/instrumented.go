package native

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nativeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbridge_native_calls_total",
			Help: "Total number of native gateway calls",
		},
		[]string{"op", "status"},
	)

	nativeDetectDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrbridge_native_detect_duration_seconds",
			Help:    "Duration of native detect calls in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"op"},
	)

	nativeOpenResults = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrbridge_native_open_results",
			Help: "Number of result handles not yet released",
		},
	)

	nativeOpenDetectors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrbridge_native_open_detectors",
			Help: "Number of detector handles not yet released",
		},
	)
)

// Instrumented records call counts, detect latency and open handles for a
// wrapped Gateway.
type Instrumented struct {
	next Gateway
}

// Instrument wraps g with Prometheus metrics.
func Instrument(g Gateway) *Instrumented {
	return &Instrumented{next: g}
}

func record(op string, s Status) {
	nativeCallsTotal.WithLabelValues(op, s.String()).Inc()
}

func (i *Instrumented) CreateDetector() (DetectorHandle, Status) {
	h, s := i.next.CreateDetector()
	record("create_detector", s)
	if s == StatusOK && h != 0 {
		nativeOpenDetectors.Inc()
	}
	return h, s
}

func (i *Instrumented) ReleaseDetector(h DetectorHandle) Status {
	s := i.next.ReleaseDetector(h)
	record("release_detector", s)
	if s == StatusOK {
		nativeOpenDetectors.Dec()
	}
	return s
}

func (i *Instrumented) detect(op string, call func() (ResultHandle, Status)) (ResultHandle, Status) {
	start := time.Now()
	r, s := call()
	nativeDetectDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	record(op, s)
	if r != 0 {
		nativeOpenResults.Inc()
	}
	return r, s
}

func (i *Instrumented) DetectPath(h DetectorHandle, path string) (ResultHandle, Status) {
	return i.detect("detect_path", func() (ResultHandle, Status) { return i.next.DetectPath(h, path) })
}

func (i *Instrumented) DetectBytes(h DetectorHandle, data []byte) (ResultHandle, Status) {
	return i.detect("detect_bytes", func() (ResultHandle, Status) { return i.next.DetectBytes(h, data) })
}

func (i *Instrumented) DetectPixels(h DetectorHandle, pix []byte, format, width, height, stride int32) (ResultHandle, Status) {
	return i.detect("detect_pixels", func() (ResultHandle, Status) {
		return i.next.DetectPixels(h, pix, format, width, height, stride)
	})
}

func (i *Instrumented) ReleaseResult(r ResultHandle) Status {
	s := i.next.ReleaseResult(r)
	record("release_result", s)
	if s == StatusOK {
		nativeOpenResults.Dec()
	}
	return s
}

func (i *Instrumented) ResultSize(r ResultHandle) (int, Status) {
	n, s := i.next.ResultSize(r)
	record("result_size", s)
	return n, s
}

func (i *Instrumented) ResultText(r ResultHandle, index int) (string, Status) {
	t, s := i.next.ResultText(r, index)
	record("result_text", s)
	return t, s
}

func (i *Instrumented) ResultPoints(r ResultHandle, index int) ([]Point, Status) {
	p, s := i.next.ResultPoints(r, index)
	record("result_points", s)
	return p, s
}
