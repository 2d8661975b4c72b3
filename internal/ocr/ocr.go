// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr is the optical-recognition boundary. A Recognizer turns an
// image into text regions; the pipeline consumes only those regions.
package ocr

import (
	"context"
	"image"

	"github.com/pdiddy/safebites/pkg/types"
)

// Recognizer extracts text regions from the image at imagePath.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) ([]types.TextRegion, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, imagePath string) ([]types.TextRegion, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, imagePath string) ([]types.TextRegion, error) {
	return f(ctx, imagePath)
}

// RegionFromRect builds a clockwise region starting at the top-left corner.
func RegionFromRect(r image.Rectangle, text string) types.TextRegion {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	return types.TextRegion{
		BoundingBox: [4]types.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}},
		Text:        text,
	}
}
