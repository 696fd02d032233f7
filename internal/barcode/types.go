package barcode

import (
	"context"
	"image"
)

// Options controls backend decoding behavior.
type Options struct {
	// TryHarder enables a more exhaustive search (slower but more robust).
	TryHarder bool

	// Multi enables multi-symbol detection in a single image.
	Multi bool

	// ROI optionally restricts decoding to a sub-rectangle of the image.
	// Points are still reported in full-image coordinates.
	ROI image.Rectangle
}

// Point is a location in image coordinates.
type Point struct {
	X float32
	Y float32
}

// Result is one decoded symbol.
type Result struct {
	Text   string
	Points []Point
}

// Backend is a pluggable symbol decoder.
type Backend interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}

// NewBackend returns the default backend implementation.
func NewBackend() Backend { return &gozxingBackend{} }
