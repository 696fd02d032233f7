package qrcode

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/qrbridge/internal/mempool"
)

// imageSource turns an image into a raw call. Gray, RGBA and NRGBA images
// are passed as views of their backing buffer; every other type is
// materialised as ARGB colour ints. The returned func returns scratch
// buffers to the pool and must be called after the native call.
func imageSource(img image.Image) (Input, func(), bool) {
	noop := func() {}
	if img == nil {
		return nil, noop, false
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, noop, false
	}
	w, h := b.Dx(), b.Dy()

	switch m := img.(type) {
	case *image.Gray:
		return viewOrPack(m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, 1, FormatGray)
	case *image.RGBA:
		return viewOrPack(m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, 4, FormatRGBA)
	case *image.NRGBA:
		return viewOrPack(m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, 4, FormatRGBA)
	}

	colors := mempool.GetUint32(w * h)
	for y := 0; y < h; y++ {
		row := colors[y*w : (y+1)*w]
		for x := range row {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x] = uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	in := ColorsInput{Data: colors, Width: w, Height: h}
	return in, func() { mempool.PutUint32(colors) }, true
}

// viewOrPack uses pix directly when the rows starting at off cover
// stride*h bytes. Sub-images whose last row is cut short are copied into a
// packed buffer.
func viewOrPack(pix []byte, off, stride, w, h, ch int, f PixelFormat) (Input, func(), bool) {
	if off+stride*h <= len(pix) {
		return PixelsInput{Data: pix[off : off+stride*h], Format: f, Width: w, Height: h, Stride: stride}, func() {}, true
	}
	row := w * ch
	packed := mempool.GetBytes(row * h)
	for y := 0; y < h; y++ {
		copy(packed[y*row:(y+1)*row], pix[off+y*stride:off+y*stride+row])
	}
	in := PixelsInput{Data: packed, Format: f, Width: w, Height: h}
	return in, func() { mempool.PutBytes(packed) }, true
}
