package qrcode

import (
	"context"
	"image"

	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
)

// Callback receives the result of an asynchronous detection. It runs on
// the worker goroutine that performed the detection.
type Callback func(Result)

func (d *Detector) executor() *dispatch.Pool {
	if d.pool != nil {
		return d.pool
	}
	return dispatch.Shared()
}

// submit queues run. It returns an error only when the pool refuses the
// task, in which case cb is never called.
func (d *Detector) submit(run func() Result, cb Callback) error {
	return d.executor().Submit(func() {
		res := run()
		if cb != nil {
			cb(res)
		}
	})
}

// DetectAsync runs Detect on the worker pool. Buffers referenced by in must
// not be modified until cb runs.
func (d *Detector) DetectAsync(in Input, cb Callback) error {
	return d.submit(func() Result { return d.Detect(in) }, cb)
}

// DetectPathAsync runs DetectPath on the worker pool.
func (d *Detector) DetectPathAsync(path string, cb Callback) error {
	return d.submit(func() Result { return d.DetectPath(path) }, cb)
}

// DetectBytesAsync runs DetectBytes on the worker pool.
func (d *Detector) DetectBytesAsync(data []byte, cb Callback) error {
	return d.submit(func() Result { return d.DetectBytes(data) }, cb)
}

// DetectPixelsAsync runs DetectPixels on the worker pool.
func (d *Detector) DetectPixelsAsync(data []byte, format PixelFormat, width, height, stride int, cb Callback) error {
	return d.submit(func() Result { return d.DetectPixels(data, format, width, height, stride) }, cb)
}

// DetectColorsAsync runs DetectColors on the worker pool.
func (d *Detector) DetectColorsAsync(colors []uint32, width, height, stride int, cb Callback) error {
	return d.submit(func() Result { return d.DetectColors(colors, width, height, stride) }, cb)
}

// DetectImageAsync runs DetectImage on the worker pool.
func (d *Detector) DetectImageAsync(img image.Image, cb Callback) error {
	return d.submit(func() Result { return d.DetectImage(img) }, cb)
}

// DetectContext runs Detect on the worker pool and waits for it. When ctx
// ends first the detection still runs to completion but its result is
// dropped, and the returned Result is an UNKNOWN failure.
func (d *Detector) DetectContext(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return failure(CodeUnknown), err
	}
	done := make(chan Result, 1)
	if err := d.DetectAsync(in, func(r Result) { done <- r }); err != nil {
		return failure(CodeUnknown), err
	}
	select {
	case r := <-done:
		return r, nil
	case <-ctx.Done():
		return failure(CodeUnknown), ctx.Err()
	}
}
