//go:build cgo && zzt_native

package native

/*
#cgo LDFLAGS: -lzzt_qrcode -lstdc++
#cgo linux LDFLAGS: -lm

#include <stdint.h>
#include <stdlib.h>
#include "zzt_qrcode/qrcode.h"
*/
import "C"

import (
	"unsafe"
)

// CGO binds libzzt_qrcode. Build with -tags zzt_native and make the header
// and library visible through CGO_CFLAGS and CGO_LDFLAGS.
type CGO struct {
	// WidePath routes DetectPath through the UTF-16 entry point.
	WidePath bool
}

// NewCGO returns the libzzt_qrcode gateway.
func NewCGO() *CGO { return &CGO{} }

// Available reports whether the native library is linked in.
func Available() bool { return true }

func detectorPtr(h DetectorHandle) C.zzt_qrcode_detector_h {
	return C.zzt_qrcode_detector_h(unsafe.Pointer(uintptr(h))) //nolint:govet
}

func resultPtr(r ResultHandle) C.zzt_qrcode_result_h {
	return C.zzt_qrcode_result_h(unsafe.Pointer(uintptr(r))) //nolint:govet
}

func (g *CGO) CreateDetector() (DetectorHandle, Status) {
	h := C.zzt_qrcode_create_detector()
	if h == nil {
		return 0, StatusOutOfMemory
	}
	return DetectorHandle(uintptr(unsafe.Pointer(h))), StatusOK
}

func (g *CGO) ReleaseDetector(h DetectorHandle) Status {
	return Status(C.zzt_qrcode_release_detector(detectorPtr(h)))
}

func (g *CGO) DetectPath(h DetectorHandle, path string) (ResultHandle, Status) {
	if path == "" {
		return 0, StatusInvalidArgument
	}
	var out C.zzt_qrcode_result_h
	var st C.zzt_qrcode_error_t
	if g.WidePath {
		wide, err := utf16Path(path)
		if err != nil {
			return 0, StatusInvalidArgument
		}
		st = C.zzt_qrcode_detect_and_decode_path_u16(detectorPtr(h), (*C.char16_t)(unsafe.Pointer(&wide[0])), &out)
	} else {
		cPath := C.CString(path)
		defer C.free(unsafe.Pointer(cPath))
		st = C.zzt_qrcode_detect_and_decode_path_u8(detectorPtr(h), (*C.char8_t)(unsafe.Pointer(cPath)), &out)
	}
	return ResultHandle(uintptr(unsafe.Pointer(out))), Status(st)
}

func (g *CGO) DetectBytes(h DetectorHandle, data []byte) (ResultHandle, Status) {
	if len(data) == 0 {
		return 0, StatusInvalidArgument
	}
	var out C.zzt_qrcode_result_h
	st := C.zzt_qrcode_detect_and_decode_data(detectorPtr(h),
		(*C.uchar)(unsafe.Pointer(&data[0])), C.int(len(data)), &out)
	return ResultHandle(uintptr(unsafe.Pointer(out))), Status(st)
}

func (g *CGO) DetectPixels(h DetectorHandle, pix []byte, format, width, height, stride int32) (ResultHandle, Status) {
	if len(pix) == 0 {
		return 0, StatusInvalidArgument
	}
	var out C.zzt_qrcode_result_h
	st := C.zzt_qrcode_detect_and_decode_pixels(detectorPtr(h),
		(*C.uchar)(unsafe.Pointer(&pix[0])), C.zzt_qrcode_pixel_format_t(format),
		C.int(width), C.int(height), C.int(stride), &out)
	return ResultHandle(uintptr(unsafe.Pointer(out))), Status(st)
}

func (g *CGO) ReleaseResult(r ResultHandle) Status {
	return Status(C.zzt_qrcode_release_result(resultPtr(r)))
}

func (g *CGO) ResultSize(r ResultHandle) (int, Status) {
	var size C.int
	st := C.zzt_qrcode_get_result_size(resultPtr(r), &size)
	return int(size), Status(st)
}

// ResultText asks for the required size first, then fills a buffer of
// exactly that size.
func (g *CGO) ResultText(r ResultHandle, index int) (string, Status) {
	var need C.int
	st := Status(C.zzt_qrcode_get_result_text(resultPtr(r), C.int(index), nil, &need))
	if st != StatusOK {
		return "", st
	}
	if need <= 1 {
		return "", StatusOK
	}
	buf := make([]byte, int(need))
	size := need
	st = Status(C.zzt_qrcode_get_result_text(resultPtr(r), C.int(index), (*C.char)(unsafe.Pointer(&buf[0])), &size))
	if st != StatusOK {
		return "", st
	}
	return sanitizeText(buf[:int(size)-1]), StatusOK
}

func (g *CGO) ResultPoints(r ResultHandle, index int) ([]Point, Status) {
	var need C.int
	st := Status(C.zzt_qrcode_get_result_points(resultPtr(r), C.int(index), nil, &need))
	if st != StatusOK {
		return nil, st
	}
	if need <= 0 {
		return []Point{}, StatusOK
	}
	coords := make([]float32, int(need))
	size := need
	st = Status(C.zzt_qrcode_get_result_points(resultPtr(r), C.int(index), (*C.float)(unsafe.Pointer(&coords[0])), &size))
	if st != StatusOK {
		return nil, st
	}
	points := make([]Point, int(size)/2)
	for i := range points {
		points[i] = Point{X: coords[2*i], Y: coords[2*i+1]}
	}
	return points, StatusOK
}

func openCGO() (Gateway, error) { return Instrument(NewCGO()), nil }
