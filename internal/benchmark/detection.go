package benchmark

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// Detector is the part of *qrcode.Detector the detection suite drives.
type Detector interface {
	Detect(in qrcode.Input) qrcode.Result
	DetectAsync(in qrcode.Input, cb qrcode.Callback) error
}

// Shapes lists the input shapes a detection suite compares.
var Shapes = []string{"path", "bytes", "pixels_rgba", "colors_argb", "image"}

// NewDetectionSuite prepares one image in every input shape and registers
// a synchronous benchmark per shape plus an async round trip and a burst of
// parallel async calls.
func NewDetectionSuite(det Detector, path string, parallel int) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if parallel < 1 {
		parallel = 1
	}

	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	inputs := map[string]qrcode.Input{
		"path":  qrcode.PathInput(path),
		"bytes": qrcode.BytesInput(data),
		"pixels_rgba": qrcode.PixelsInput{
			Data: nrgba.Pix, Format: qrcode.FormatRGBA,
			Width: b.Dx(), Height: b.Dy(), Stride: nrgba.Stride,
		},
		"colors_argb": qrcode.ColorsInput{Data: argbColors(nrgba), Width: b.Dx(), Height: b.Dy()},
		"image":       qrcode.ImageInput{Image: img},
	}

	s := NewSuite()
	for _, shape := range Shapes {
		in := inputs[shape]
		s.Add("detect_"+shape, func() error {
			return det.Detect(in).Err()
		})
	}
	bytesInput := inputs["bytes"]
	s.Add("async_bytes", func() error {
		return detectAsyncBurst(det, bytesInput, 1)
	})
	s.Add(fmt.Sprintf("async_bytes_x%d", parallel), func() error {
		return detectAsyncBurst(det, bytesInput, parallel)
	})
	return s, nil
}

// detectAsyncBurst submits n calls and waits for all callbacks.
func detectAsyncBurst(det Detector, in qrcode.Input, n int) error {
	results := make(chan qrcode.Result, n)
	for range n {
		if err := det.DetectAsync(in, func(r qrcode.Result) { results <- r }); err != nil {
			return err
		}
	}
	var firstErr error
	for range n {
		if err := (<-results).Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func argbColors(img *image.NRGBA) []uint32 {
	b := img.Bounds()
	out := make([]uint32, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+4]
			out = append(out, uint32(p[3])<<24|uint32(p[0])<<16|uint32(p[1])<<8|uint32(p[2]))
		}
	}
	return out
}
