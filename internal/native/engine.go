package native

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/MeKo-Tech/qrbridge/internal/barcode"
	"github.com/MeKo-Tech/qrbridge/internal/common"
	"github.com/MeKo-Tech/qrbridge/internal/mempool"
	"github.com/MeKo-Tech/qrbridge/internal/pixel"
)

// EngineConfig tunes the in-process engine.
type EngineConfig struct {
	// MaxImageSize downsizes images whose longer side exceeds it before
	// decoding. Points are mapped back to source coordinates. 0 disables.
	MaxImageSize int

	// TryHarder enables the decoder's exhaustive search.
	TryHarder bool

	// Multi reports every symbol in the image instead of the first one.
	Multi bool
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxImageSize: 0,
		TryHarder:    true,
		Multi:        true,
	}
}

type engineDetector struct {
	backend barcode.Backend
	opts    barcode.Options
}

// Engine is an in-process Gateway. Images are decoded with imaging and
// symbols are read by the barcode backend.
type Engine struct {
	config    EngineConfig
	backend   barcode.Backend
	detectors *handleTable[*engineDetector]
	results   *handleTable[[]barcode.Result]
}

// NewEngine creates an engine using the default barcode backend.
func NewEngine(config EngineConfig) *Engine {
	return NewEngineWithBackend(config, barcode.NewBackend())
}

// NewEngineWithBackend creates an engine around a specific backend.
func NewEngineWithBackend(config EngineConfig, backend barcode.Backend) *Engine {
	return &Engine{
		config:    config,
		backend:   backend,
		detectors: newHandleTable[*engineDetector](),
		results:   newHandleTable[[]barcode.Result](),
	}
}

// Open returns the number of live detector and result handles.
func (e *Engine) Open() (detectors, results int) {
	return e.detectors.len(), e.results.len()
}

func (e *Engine) CreateDetector() (DetectorHandle, Status) {
	det := &engineDetector{
		backend: e.backend,
		opts:    barcode.Options{TryHarder: e.config.TryHarder, Multi: e.config.Multi},
	}
	return DetectorHandle(e.detectors.insert(det)), StatusOK
}

func (e *Engine) ReleaseDetector(h DetectorHandle) Status {
	if h == 0 || !e.detectors.remove(uintptr(h)) {
		return StatusInvalidHandle
	}
	return StatusOK
}

func (e *Engine) DetectPath(h DetectorHandle, path string) (ResultHandle, Status) {
	if path == "" {
		return 0, StatusInvalidArgument
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("Cannot read image file", "path", path, "error", err)
		return 0, StatusDecodeFailed
	}
	return e.detectEncoded(h, "path", data)
}

func (e *Engine) DetectBytes(h DetectorHandle, data []byte) (ResultHandle, Status) {
	if len(data) == 0 {
		return 0, StatusInvalidArgument
	}
	return e.detectEncoded(h, "bytes", data)
}

func (e *Engine) DetectPixels(h DetectorHandle, pix []byte, format, width, height, stride int32) (ResultHandle, Status) {
	f := pixel.Format(format)
	if err := pixel.Validate(f, int(width), int(height), int(stride), len(pix)); err != nil {
		return 0, StatusInvalidArgument
	}
	det, ok := e.detectors.get(uintptr(h))
	if !ok {
		return 0, StatusInvalidHandle
	}

	w, ht := int(width), int(height)
	buf := mempool.GetBytes(w * ht)
	defer mempool.PutBytes(buf)
	pixel.ToGray(buf, pix, f, w, ht, int(stride))

	return e.run(det, "pixels", pixel.GrayImage(buf, w, ht))
}

func (e *Engine) detectEncoded(h DetectorHandle, op string, data []byte) (ResultHandle, Status) {
	det, ok := e.detectors.get(uintptr(h))
	if !ok {
		return 0, StatusInvalidHandle
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		slog.Debug("Cannot decode image", "op", op, "bytes", len(data), "error", err)
		return 0, StatusDecodeFailed
	}
	return e.run(det, op, img)
}

func (e *Engine) run(det *engineDetector, op string, img image.Image) (ResultHandle, Status) {
	if img.Bounds().Empty() {
		return 0, StatusDecodeFailed
	}
	img, scale := e.fit(img)

	timer := common.NewNamedTimer("detect_" + op)
	found, err := det.backend.Decode(context.Background(), img, det.opts)
	timer.Stop()
	slog.Debug("Detect and decode finished",
		"op", op,
		"symbols", len(found),
		"scale", scale,
		"duration", timer.Duration())
	if err != nil {
		return 0, StatusDecodeFailed
	}

	if scale != 1 {
		for i := range found {
			for j := range found[i].Points {
				found[i].Points[j].X /= scale
				found[i].Points[j].Y /= scale
			}
		}
	}
	return ResultHandle(e.results.insert(found)), StatusOK
}

// fit shrinks img so its longer side is at most MaxImageSize and returns the
// applied scale factor.
func (e *Engine) fit(img image.Image) (image.Image, float32) {
	limit := e.config.MaxImageSize
	b := img.Bounds()
	longer := max(b.Dx(), b.Dy())
	if limit <= 0 || longer <= limit {
		return img, 1
	}
	resized := imaging.Fit(img, limit, limit, imaging.Lanczos)
	return resized, float32(resized.Bounds().Dx()) / float32(b.Dx())
}

func (e *Engine) ReleaseResult(r ResultHandle) Status {
	if r == 0 || !e.results.remove(uintptr(r)) {
		return StatusInvalidHandle
	}
	return StatusOK
}

func (e *Engine) ResultSize(r ResultHandle) (int, Status) {
	list, ok := e.results.get(uintptr(r))
	if !ok {
		return 0, StatusInvalidHandle
	}
	return len(list), StatusOK
}

func (e *Engine) ResultText(r ResultHandle, index int) (string, Status) {
	list, ok := e.results.get(uintptr(r))
	if !ok {
		return "", StatusInvalidHandle
	}
	if index < 0 || index >= len(list) {
		return "", StatusInvalidIndex
	}
	return sanitizeText([]byte(list[index].Text)), StatusOK
}

func (e *Engine) ResultPoints(r ResultHandle, index int) ([]Point, Status) {
	list, ok := e.results.get(uintptr(r))
	if !ok {
		return nil, StatusInvalidHandle
	}
	if index < 0 || index >= len(list) {
		return nil, StatusInvalidIndex
	}
	src := list[index].Points
	out := make([]Point, len(src))
	for i, p := range src {
		out[i] = Point{X: p.X, Y: p.Y}
	}
	return out, StatusOK
}
