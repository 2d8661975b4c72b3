// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/safebites/internal/ocr"
	"github.com/pdiddy/safebites/internal/region"
	"github.com/pdiddy/safebites/internal/textnorm"
	"github.com/pdiddy/safebites/pkg/types"
)

// ScanScreen runs the scan path:
// Idle -> ImageSelected -> TextDetected -> Checking -> Resolved.
type ScanScreen struct {
	*screen
	images ImageSource
	ocr    ocr.Recognizer
}

// NewScanScreen returns a scan screen in the Idle state.
func NewScanScreen(images ImageSource, rec ocr.Recognizer, deps Deps) *ScanScreen {
	return &ScanScreen{screen: newScreen(deps), images: images, ocr: rec}
}

// SelectImage asks the image source for a picture. A denied permission
// leaves the screen Idle with a notice; a canceled pick changes nothing.
// Selecting an image discards any earlier image, text, or verdict.
func (s *ScanScreen) SelectImage(ctx context.Context, origin Origin) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	token := s.seq
	s.mu.Unlock()

	uri, err := s.images.Pick(ctx, origin)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(token) {
		return ErrSuperseded
	}
	// A canceled pick leaves in-flight steps alone; every other outcome
	// replaces the state and voids them.
	if !errors.Is(err, ErrCanceled) {
		s.beginLocked()
	}
	switch {
	case err == nil:
		s.setLocked(ImageSelected{URI: uri})
		return nil
	case errors.Is(err, ErrCanceled):
		return err
	case errors.Is(err, ErrPermissionDenied):
		s.noticeLocked(NoticePermissionDenied)
		s.setLocked(Idle{})
		return err
	default:
		s.setLocked(Failed{Reason: err.Error()})
		return fmt.Errorf("selecting image: %w", err)
	}
}

// DetectText runs recognition on the selected image and keeps the text of
// the largest region. On failure or when nothing is found the screen
// returns to ImageSelected so the same image can be retried.
func (s *ScanScreen) DetectText(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	var uri string
	switch st := s.state.(type) {
	case ImageSelected:
		uri = st.URI
	case TextDetected:
		uri = st.URI
	default:
		s.mu.Unlock()
		return "", ErrNoImage
	}
	token := s.beginLocked()
	s.mu.Unlock()

	regions, err := s.ocr.Recognize(ctx, uri)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(token) {
		return "", ErrSuperseded
	}
	if err != nil {
		fmt.Fprintf(s.deps.Log, "warning: screen %s: recognizing %s: %v\n", s.id, uri, err)
		s.noticeLocked(NoticeProcessingError)
		s.setLocked(ImageSelected{URI: uri})
		return "", fmt.Errorf("recognizing text: %w", err)
	}

	text := textnorm.Clean(region.SelectMainText(regions))
	if text == "" {
		s.noticeLocked(NoticeNoText)
		s.setLocked(ImageSelected{URI: uri})
		return "", ErrNoText
	}
	s.setLocked(TextDetected{URI: uri, Text: text})
	return text, nil
}

// Check resolves the detected text against the current profile.
func (s *ScanScreen) Check(ctx context.Context) (types.Verdict, error) {
	return s.check(ctx)
}

// Retry discards the image, the text, and any verdict, and returns to Idle.
func (s *ScanScreen) Retry() { s.invalidate() }

// Close unmounts the screen. Results arriving afterwards are dropped.
func (s *ScanScreen) Close() { s.close() }
