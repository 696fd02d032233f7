package pixel

import "image"

// Fixed-point luma weights, sum 256.
const (
	weightR = 77
	weightG = 150
	weightB = 29
)

// colorOffsets returns the byte offsets of R, G and B inside one pixel.
func (f Format) colorOffsets() (r, g, b int) {
	switch f {
	case FormatRGB, FormatRGBA:
		return 0, 1, 2
	case FormatBGR, FormatBGRA:
		return 2, 1, 0
	case FormatARGB:
		return 1, 2, 3
	case FormatABGR:
		return 3, 2, 1
	}
	return 0, 0, 0
}

// ToGray converts a validated buffer into dst, which must hold width*height
// bytes. Alpha is ignored.
func ToGray(dst, pix []byte, f Format, width, height, stride int) {
	ch := f.Channels()
	row := f.RowBytes(width, stride)
	if f == FormatGray {
		for y := 0; y < height; y++ {
			copy(dst[y*width:(y+1)*width], pix[y*row:y*row+width])
		}
		return
	}
	ro, gOff, bo := f.colorOffsets()
	for y := 0; y < height; y++ {
		src := pix[y*row : y*row+width*ch]
		out := dst[y*width : (y+1)*width]
		for x := range out {
			p := src[x*ch : x*ch+ch]
			out[x] = byte((int(p[ro])*weightR + int(p[gOff])*weightG + int(p[bo])*weightB) >> 8)
		}
	}
}

// GrayImage wraps a packed luma buffer as an image without copying.
func GrayImage(buf []byte, width, height int) *image.Gray {
	return &image.Gray{Pix: buf[:width*height], Stride: width, Rect: image.Rect(0, 0, width, height)}
}
