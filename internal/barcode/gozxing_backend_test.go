package barcode

import (
	"context"
	"image"
	"testing"

	"github.com/MeKo-Tech/qrbridge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleSymbol(t *testing.T) {
	img := testutil.QRImage(t, "https://example.com/a", 240)

	results, err := NewBackend().Decode(context.Background(), img, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/a", results[0].Text)
	assert.GreaterOrEqual(t, len(results[0].Points), 3)
	for _, p := range results[0].Points {
		assert.True(t, p.X > 0 && p.X < 240)
		assert.True(t, p.Y > 0 && p.Y < 240)
	}
}

func TestDecodeMultiModeFindsSingleSymbol(t *testing.T) {
	img := testutil.QRImage(t, "multi", 240)

	results, err := NewBackend().Decode(context.Background(), img, Options{Multi: true, TryHarder: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "multi", results[0].Text)
}

func TestDecodeMultiModeFindsTwoSymbols(t *testing.T) {
	left := testutil.QRImage(t, "left", 200)
	right := testutil.QRImage(t, "right", 200)
	canvas := image.NewGray(image.Rect(0, 0, 480, 240))
	for i := range canvas.Pix {
		canvas.Pix[i] = 255
	}
	for y := 0; y < 200; y++ {
		row := (y + 20) * 480
		copy(canvas.Pix[row+20:row+220], left.Pix[y*200:(y+1)*200])
		copy(canvas.Pix[row+260:row+460], right.Pix[y*200:(y+1)*200])
	}

	results, err := NewBackend().Decode(context.Background(), canvas, Options{Multi: true, TryHarder: true})
	require.NoError(t, err)
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	assert.ElementsMatch(t, []string{"left", "right"}, texts)
}

func TestDecodeBlankImageIsEmpty(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	results, err := NewBackend().Decode(context.Background(), img, Options{Multi: true})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestDecodeROIOffsetsPoints(t *testing.T) {
	code := testutil.QRImage(t, "roi", 200)
	canvas := image.NewGray(image.Rect(0, 0, 400, 400))
	for i := range canvas.Pix {
		canvas.Pix[i] = 255
	}
	for y := 0; y < 200; y++ {
		copy(canvas.Pix[(y+150)*400+150:(y+150)*400+350], code.Pix[y*200:(y+1)*200])
	}

	results, err := NewBackend().Decode(context.Background(), canvas, Options{ROI: image.Rect(100, 100, 400, 400)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	for _, p := range results[0].Points {
		assert.Greater(t, p.X, float32(150))
		assert.Greater(t, p.Y, float32(150))
	}
}

func TestDecodeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBackend().Decode(ctx, testutil.QRImage(t, "x", 100), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
