// Package native is the boundary to the QR detection engine.
//
// Every operation reports its status explicitly. Handles are opaque
// non-zero values owned by the engine; zero is never a live handle.
package native

import "fmt"

// Status is the raw per-call status reported by the engine.
type Status int32

const (
	StatusOK              Status = 0
	StatusInvalidHandle   Status = -1
	StatusInvalidIndex    Status = -2
	StatusBufferTooSmall  Status = -3
	StatusDecodeFailed    Status = -4
	StatusInvalidArgument Status = -5
	StatusOutOfMemory     Status = -6
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidHandle:
		return "invalid_handle"
	case StatusInvalidIndex:
		return "invalid_index"
	case StatusBufferTooSmall:
		return "buffer_too_small"
	case StatusDecodeFailed:
		return "decode_failed"
	case StatusInvalidArgument:
		return "invalid_argument"
	case StatusOutOfMemory:
		return "out_of_memory"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// DetectorHandle references one engine-side detector.
type DetectorHandle uintptr

// ResultHandle references the result list of one detection call.
type ResultHandle uintptr

// Point is one corner of a decoded symbol.
type Point struct {
	X float32
	Y float32
}

// Gateway is the set of raw engine operations.
//
// ReleaseDetector is not idempotent: releasing the same handle twice
// reports StatusInvalidHandle the second time. A failed detect returns a
// zero ResultHandle.
type Gateway interface {
	CreateDetector() (DetectorHandle, Status)
	ReleaseDetector(h DetectorHandle) Status

	DetectPath(h DetectorHandle, path string) (ResultHandle, Status)
	DetectBytes(h DetectorHandle, data []byte) (ResultHandle, Status)
	DetectPixels(h DetectorHandle, pix []byte, format, width, height, stride int32) (ResultHandle, Status)

	ReleaseResult(r ResultHandle) Status
	ResultSize(r ResultHandle) (int, Status)
	ResultText(r ResultHandle, index int) (string, Status)
	ResultPoints(r ResultHandle, index int) ([]Point, Status)
}
