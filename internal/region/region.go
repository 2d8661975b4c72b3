// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package region picks the main text out of a multi-region recognition result.
package region

import (
	"math"

	"github.com/pdiddy/safebites/pkg/types"
)

// Area returns the axis-aligned area spanned by corners 0 and 2 of the
// region's bounding box. The absolute value is taken so that a recognizer
// emitting corners in a different winding never yields a negative area.
func Area(r types.TextRegion) float64 {
	p0, p2 := r.BoundingBox[0], r.BoundingBox[2]
	return math.Abs((p2.X - p0.X) * (p2.Y - p0.Y))
}

// SelectMainText returns the text of the region with the largest bounding
// box area. Ties keep the first region seen, so the result depends on the
// recognizer's emission order. It returns "" when regions is empty or no
// region has a positive area.
func SelectMainText(regions []types.TextRegion) string {
	var (
		maxArea  float64
		mainText string
	)
	for _, r := range regions {
		if a := Area(r); a > maxArea {
			maxArea = a
			mainText = r.Text
		}
	}
	return mainText
}
