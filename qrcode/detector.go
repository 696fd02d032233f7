package qrcode

import (
	"image"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
	"github.com/MeKo-Tech/qrbridge/internal/mempool"
	"github.com/MeKo-Tech/qrbridge/internal/native"
	"github.com/MeKo-Tech/qrbridge/internal/pixel"
)

type options struct {
	gateway native.Gateway
	pool    *dispatch.Pool
}

// Option configures a Detector.
type Option func(*options)

// WithGateway selects the native gateway. The default is a process-wide
// in-process engine.
func WithGateway(g native.Gateway) Option {
	return func(o *options) { o.gateway = g }
}

// WithPool runs asynchronous calls on p instead of the shared pool.
func WithPool(p *dispatch.Pool) Option {
	return func(o *options) { o.pool = p }
}

var (
	defaultGatewayOnce sync.Once
	defaultGateway     native.Gateway
)

func sharedGateway() native.Gateway {
	defaultGatewayOnce.Do(func() {
		defaultGateway = native.Instrument(native.NewEngine(native.DefaultEngineConfig()))
	})
	return defaultGateway
}

// Detector owns one native detector handle. It is safe for concurrent use.
// Close waits for detections already running against the handle.
type Detector struct {
	mu      sync.RWMutex
	gateway native.Gateway
	handle  native.DetectorHandle
	pool    *dispatch.Pool
}

// New acquires a native detector handle. The caller must Close it.
func New(opts ...Option) (*Detector, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.gateway == nil {
		o.gateway = sharedGateway()
	}

	h, st := o.gateway.CreateDetector()
	if st != native.StatusOK {
		return nil, errorFor(codeOf(st), "create detector")
	}
	slog.Debug("Detector created")
	return &Detector{gateway: o.gateway, handle: h, pool: o.pool}, nil
}

// Close releases the native handle. Later calls are no-ops, and every
// detection afterwards fails with CodeInvalidHandle.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle == 0 {
		return nil
	}
	h := d.handle
	d.handle = 0
	if st := d.gateway.ReleaseDetector(h); st != native.StatusOK {
		return errorFor(codeOf(st), "release detector")
	}
	return nil
}

// Closed reports whether Close has been called.
func (d *Detector) Closed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handle == 0
}

// recoverResult turns a panic during marshaling or translation into
// CodeUnknown.
func recoverResult(res *Result) {
	if p := recover(); p != nil {
		slog.Error("Detection panicked", "panic", p)
		*res = failure(CodeUnknown)
	}
}

type nativeCall func(g native.Gateway, h native.DetectorHandle) (native.ResultHandle, native.Status)

// call runs one native detect and translates its result while holding the
// handle.
func (d *Detector) call(input string, fn nativeCall) Result {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.handle == 0 {
		return failure(CodeInvalidHandle)
	}
	r, st := fn(d.gateway, d.handle)
	res := translate(d.gateway, r, st)
	slog.Debug("Detection finished", "input", input, "code", res.Code().String(), "payloads", res.Len())
	return res
}

// Detect dispatches on the concrete input type.
func (d *Detector) Detect(in Input) (res Result) {
	defer recoverResult(&res)

	switch v := in.(type) {
	case PathInput:
		return d.DetectPath(string(v))
	case BytesInput:
		return d.DetectBytes(v)
	case PixelsInput:
		return d.DetectPixels(v.Data, v.Format, v.Width, v.Height, v.Stride)
	case ColorsInput:
		return d.DetectColors(v.Data, v.Width, v.Height, v.Stride)
	case ImageInput:
		return d.DetectImage(v.Image)
	}
	return failure(CodeInvalidArgument)
}

// DetectPath detects symbols in an image file.
func (d *Detector) DetectPath(path string) (res Result) {
	defer recoverResult(&res)

	if path == "" {
		return failure(CodeInvalidArgument)
	}
	return d.call("path", func(g native.Gateway, h native.DetectorHandle) (native.ResultHandle, native.Status) {
		return g.DetectPath(h, path)
	})
}

// DetectBytes detects symbols in an encoded image.
func (d *Detector) DetectBytes(data []byte) (res Result) {
	defer recoverResult(&res)

	if len(data) == 0 {
		return failure(CodeInvalidArgument)
	}
	return d.call("bytes", func(g native.Gateway, h native.DetectorHandle) (native.ResultHandle, native.Status) {
		return g.DetectBytes(h, data)
	})
}

// DetectPixels detects symbols in a raw buffer. The buffer must hold at
// least stride*height bytes (width*channels*height when stride is 0).
func (d *Detector) DetectPixels(data []byte, format PixelFormat, width, height, stride int) (res Result) {
	defer recoverResult(&res)

	in := PixelsInput{Data: data, Format: format, Width: width, Height: height, Stride: stride}
	if !in.validate() {
		return failure(CodeInvalidArgument)
	}
	return d.call("pixels", func(g native.Gateway, h native.DetectorHandle) (native.ResultHandle, native.Status) {
		return g.DetectPixels(h, data, int32(format), int32(width), int32(height), int32(stride))
	})
}

// DetectColors detects symbols in 0xAARRGGBB pixels. Stride is in pixels.
func (d *Detector) DetectColors(colors []uint32, width, height, stride int) (res Result) {
	defer recoverResult(&res)

	in := ColorsInput{Data: colors, Width: width, Height: height, Stride: stride}
	if !in.validate() {
		return failure(CodeInvalidArgument)
	}
	buf := mempool.GetBytes(in.rowPixels() * height * 4)
	defer mempool.PutBytes(buf)
	in.argbBytes(buf)

	return d.call("colors", func(g native.Gateway, h native.DetectorHandle) (native.ResultHandle, native.Status) {
		return g.DetectPixels(h, buf, int32(pixel.FormatARGB), int32(width), int32(height), int32(stride*4))
	})
}

// DetectImage detects symbols in a decoded image. Gray, RGBA and NRGBA
// images are read in place.
func (d *Detector) DetectImage(img image.Image) (res Result) {
	defer recoverResult(&res)

	in, done, ok := imageSource(img)
	if !ok {
		return failure(CodeInvalidArgument)
	}
	defer done()

	switch v := in.(type) {
	case PixelsInput:
		return d.DetectPixels(v.Data, v.Format, v.Width, v.Height, v.Stride)
	case ColorsInput:
		return d.DetectColors(v.Data, v.Width, v.Height, v.Stride)
	}
	return failure(CodeUnknown)
}
