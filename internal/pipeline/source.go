// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Origin is where an image comes from.
type Origin int

const (
	OriginGallery Origin = iota
	OriginCamera
)

func (o Origin) String() string {
	if o == OriginCamera {
		return "camera"
	}
	return "gallery"
}

// ParseOrigin accepts "camera" or "gallery".
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "camera":
		return OriginCamera, nil
	case "gallery", "":
		return OriginGallery, nil
	}
	return OriginGallery, fmt.Errorf("unknown image origin %q (want camera or gallery)", s)
}

// ImageSource obtains permission for origin and returns the picked image's
// URI. It returns ErrPermissionDenied when access is refused and
// ErrCanceled when the user backs out.
type ImageSource interface {
	Pick(ctx context.Context, origin Origin) (string, error)
}

// ImageSourceFunc adapts a function to ImageSource.
type ImageSourceFunc func(ctx context.Context, origin Origin) (string, error)

// Pick calls f.
func (f ImageSourceFunc) Pick(ctx context.Context, origin Origin) (string, error) {
	return f(ctx, origin)
}

// FileSource picks an image file from disk. An unreadable file counts as a
// denied permission; an empty path counts as a canceled pick.
type FileSource struct {
	Path string
}

// Pick checks that Path is a readable regular file and returns its
// absolute path.
func (f FileSource) Pick(ctx context.Context, origin Origin) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Path == "" {
		return "", ErrCanceled
	}
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", f.Path, err)
	}

	fh, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%w: %s", ErrPermissionDenied, abs)
		}
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", abs)
	}
	return abs, nil
}
