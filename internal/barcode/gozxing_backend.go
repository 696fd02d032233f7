package barcode

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	gozxing "github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
)

type gozxingBackend struct{}

// Decode returns every readable symbol. Reader errors (not found, checksum,
// format) mean nothing readable, so they yield an empty result.
func (b *gozxingBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var offset image.Point
	if !opts.ROI.Empty() {
		if roi, ok := cropToOrigin(img, opts.ROI); ok {
			img, offset = roi, opts.ROI.Intersect(img.Bounds()).Min
		}
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_POSSIBLE_FORMATS: []gozxing.BarcodeFormat{gozxing.BarcodeFormat_QR_CODE},
	}
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("barcode: prepare bitmap: %w", err)
	}

	var results []*gozxing.Result
	if opts.Multi {
		reader := multiqr.NewQRCodeMultiReader()
		results, err = reader.DecodeMultiple(bitmap, hints)
	} else {
		var r *gozxing.Result
		r, err = qrcode.NewQRCodeReader().Decode(bitmap, hints)
		if r != nil {
			results = []*gozxing.Result{r}
		}
	}
	if err != nil {
		return []Result{}, nil
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		pts := r.GetResultPoints()
		points := make([]Point, 0, len(pts))
		for _, p := range pts {
			if p == nil {
				continue
			}
			points = append(points, Point{
				X: float32(p.GetX()) + float32(offset.X),
				Y: float32(p.GetY()) + float32(offset.Y),
			})
		}
		out = append(out, Result{Text: r.GetText(), Points: points})
	}
	return out, nil
}

// cropToOrigin copies the ROI into a new image anchored at (0,0).
func cropToOrigin(img image.Image, r image.Rectangle) (image.Image, bool) {
	rb := r.Intersect(img.Bounds())
	if rb.Empty() {
		return nil, false
	}
	dst := image.NewGray(image.Rect(0, 0, rb.Dx(), rb.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rb.Min, draw.Src)
	return dst, true
}
