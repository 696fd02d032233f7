package qrcode

import (
	"image"
	"math"

	"github.com/MeKo-Tech/qrbridge/internal/pixel"
)

// PixelFormat tags the channel layout of a raw pixel buffer.
type PixelFormat = pixel.Format

const (
	FormatGray = pixel.FormatGray
	FormatRGB  = pixel.FormatRGB
	FormatBGR  = pixel.FormatBGR
	FormatRGBA = pixel.FormatRGBA
	FormatBGRA = pixel.FormatBGRA
	FormatARGB = pixel.FormatARGB
	FormatABGR = pixel.FormatABGR
)

// Input is one of PathInput, BytesInput, PixelsInput, ColorsInput or
// ImageInput.
type Input interface {
	isInput()
}

// PathInput is an image file on disk.
type PathInput string

// BytesInput is an encoded image file (PNG, JPEG, BMP, TIFF, WebP).
type BytesInput []byte

// PixelsInput is a raw pixel buffer. Stride is in bytes; 0 means packed rows.
type PixelsInput struct {
	Data   []byte
	Format PixelFormat
	Width  int
	Height int
	Stride int
}

// ColorsInput is one 0xAARRGGBB value per pixel. Stride is in pixels; 0
// means packed rows.
type ColorsInput struct {
	Data   []uint32
	Width  int
	Height int
	Stride int
}

// ImageInput is any decoded image.
type ImageInput struct {
	Image image.Image
}

func (PathInput) isInput()   {}
func (BytesInput) isInput()  {}
func (PixelsInput) isInput() {}
func (ColorsInput) isInput() {}
func (ImageInput) isInput()  {}

// validate checks a raw buffer against the pixel contract.
func (in PixelsInput) validate() bool {
	return in.Data != nil && pixel.Validate(in.Format, in.Width, in.Height, in.Stride, len(in.Data)) == nil
}

func (in ColorsInput) validate() bool {
	if in.Data == nil || in.Stride > math.MaxInt32/4 || len(in.Data) > math.MaxInt/4 {
		return false
	}
	return pixel.Validate(pixel.FormatARGB, in.Width, in.Height, in.Stride*4, len(in.Data)*4) == nil
}

// argbBytes serialises the colours needed for the declared geometry as
// A,R,G,B bytes into dst, which must hold rowPixels*height*4 bytes.
func (in ColorsInput) argbBytes(dst []byte) {
	n := len(dst) / 4
	for i, c := range in.Data[:n] {
		dst[4*i] = byte(c >> 24)
		dst[4*i+1] = byte(c >> 16)
		dst[4*i+2] = byte(c >> 8)
		dst[4*i+3] = byte(c)
	}
}

func (in ColorsInput) rowPixels() int {
	if in.Stride == 0 {
		return in.Width
	}
	return in.Stride
}
