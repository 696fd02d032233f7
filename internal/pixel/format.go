// Package pixel defines the raw pixel buffer contract shared by the
// detector façade and the native engine: format tags, channel layout and
// the minimum buffer size a caller must provide.
package pixel

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidArgument is returned when a pixel buffer does not satisfy the
// layout implied by its format, width, height and stride.
var ErrInvalidArgument = errors.New("invalid pixel buffer")

// Format is the wire tag of a pixel layout.
type Format int32

const (
	FormatGray Format = 0
	FormatRGB  Format = 1
	FormatBGR  Format = 2
	FormatRGBA Format = 3
	FormatBGRA Format = 4
	FormatARGB Format = 5
	FormatABGR Format = 6
)

type layout struct {
	name  string
	order string
}

var layouts = map[Format]layout{
	FormatGray: {name: "gray", order: "Y"},
	FormatRGB:  {name: "rgb", order: "RGB"},
	FormatBGR:  {name: "bgr", order: "BGR"},
	FormatRGBA: {name: "rgba", order: "RGBA"},
	FormatBGRA: {name: "bgra", order: "BGRA"},
	FormatARGB: {name: "argb", order: "ARGB"},
	FormatABGR: {name: "abgr", order: "ABGR"},
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	_, ok := layouts[f]
	return ok
}

// Channels returns the number of bytes per pixel, or 0 for an unknown format.
func (f Format) Channels() int {
	if l, ok := layouts[f]; ok {
		return len(l.order)
	}
	return 0
}

// Order returns the per-pixel byte order, e.g. "BGRA". Gray is "Y".
func (f Format) Order() string {
	return layouts[f].order
}

func (f Format) String() string {
	if l, ok := layouts[f]; ok {
		return l.name
	}
	return fmt.Sprintf("format(%d)", int32(f))
}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "grey" {
		name = "gray"
	}
	for f, l := range layouts {
		if l.name == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

// RowBytes returns the effective row stride. A stride of 0 means packed rows.
func (f Format) RowBytes(width, stride int) int {
	if stride == 0 {
		return width * f.Channels()
	}
	return stride
}

// MinBufferLen returns the smallest buffer that can hold height rows.
func (f Format) MinBufferLen(width, height, stride int) int {
	return f.RowBytes(width, stride) * height
}

// Validate checks a raw buffer against the layout contract without
// touching its contents.
func Validate(f Format, width, height, stride, bufLen int) error {
	if !f.Valid() {
		return fmt.Errorf("%w: unknown format %d", ErrInvalidArgument, int32(f))
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	if stride < 0 {
		return fmt.Errorf("%w: negative stride %d", ErrInvalidArgument, stride)
	}
	// Geometry crosses the native boundary as int32.
	ch := f.Channels()
	if width > math.MaxInt32/ch || height > math.MaxInt32 || stride > math.MaxInt32 {
		return fmt.Errorf("%w: geometry %dx%d stride %d out of range", ErrInvalidArgument, width, height, stride)
	}
	if stride > 0 && stride < width*ch {
		return fmt.Errorf("%w: stride %d shorter than row of %d bytes", ErrInvalidArgument, stride, width*ch)
	}
	if row := f.RowBytes(width, stride); bufLen/row < height {
		return fmt.Errorf("%w: buffer has %d bytes, need %d rows of %d", ErrInvalidArgument, bufLen, height, row)
	}
	return nil
}
