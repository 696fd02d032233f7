package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
)

// QRImage renders text as a size x size grayscale QR code with a quiet zone.
func QRImage(t testing.TB, text string, size int) *image.Gray {
	t.Helper()

	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	require.NoError(t, err, "encode QR fixture")

	w, h := matrix.GetWidth(), matrix.GetHeight()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// QRPNG returns a QR code encoded as PNG bytes.
func QRPNG(t testing.TB, text string, size int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, QRImage(t, text, size)))
	return buf.Bytes()
}

// WriteQRPNG writes a QR code PNG into dir and returns its path.
func WriteQRPNG(t testing.TB, dir, name, text string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, QRPNG(t, text, size), 0o600))
	return path
}

// WriteQRPDF writes a one page PDF holding a single QR code image into dir
// and returns its path.
func WriteQRPDF(t testing.TB, dir, name, text string) string {
	t.Helper()

	img := WriteQRPNG(t, t.TempDir(), "code.png", text, 320)
	path := filepath.Join(dir, name)
	require.NoError(t, api.ImportImagesFile([]string{img}, path, nil, nil))
	return path
}

// WriteBlankPNG writes a plain white image that contains no symbol.
func WriteBlankPNG(t testing.TB, dir, name string, size int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// ToRGBA copies img into a new RGBA image.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToARGBColors converts img into packed 0xAARRGGBB ints, one per pixel.
func ToARGBColors(img image.Image) []uint32 {
	b := img.Bounds()
	out := make([]uint32, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, uint32(c.A)<<24|uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B))
		}
	}
	return out
}

// ToBGR converts img into a packed BGR byte buffer.
func ToBGR(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, c.B, c.G, c.R)
		}
	}
	return out
}
