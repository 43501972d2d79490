// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"
)

// Format is a raster output format.
type Format int

// Raster formats.
const (
	PNG Format = iota
	JPEG
)

// DefaultJPEGQuality is used when a JPEG quality is not in (0, 1].
const DefaultJPEGQuality = 0.92

// ParseFormat parses "png", "jpeg" or "jpg", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img in format f. quality in (0, 1] applies to JPEG and maps
// to the encoder quality round(quality*100); other values use
// DefaultJPEGQuality.
func Encode(w io.Writer, img image.Image, f Format, quality float64) error {
	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("render: encode png: %w", err)
		}
		return nil
	case JPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
			return fmt.Errorf("render: encode jpeg: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
}

// JPEGQuality converts a quality in (0, 1] to the 1..100 encoder scale.
func JPEGQuality(q float64) int {
	if !(q > 0 && q <= 1) {
		q = DefaultJPEGQuality
	}
	return max(1, min(100, int(math.Round(q*100))))
}
