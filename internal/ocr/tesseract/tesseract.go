// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tesseract recognizes label text locally with Tesseract.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/pdiddy/safebites/internal/ocr"
	"github.com/pdiddy/safebites/pkg/types"
)

// Recognizer runs Tesseract once per call and reports one region per text
// line. Product names on packaging are usually the largest line.
type Recognizer struct {
	// Language is the Tesseract language code (default "eng").
	Language string
}

// Recognize implements ocr.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, imagePath string) ([]types.TextRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A gosseract client is not safe for concurrent use; one per call.
	client := gosseract.NewClient()
	defer client.Close()

	lang := r.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("setting OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("setting page segmentation: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}

	return regionsFromBoxes(boxes), nil
}

// regionsFromBoxes keeps the lines that carry text.
func regionsFromBoxes(boxes []gosseract.BoundingBox) []types.TextRegion {
	regions := make([]types.TextRegion, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		regions = append(regions, ocr.RegionFromRect(b.Box, text))
	}
	return regions
}
