// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
)

// Sentinel errors for render package.
var (
	// ErrUnsupportedFormat is returned for unknown output formats.
	ErrUnsupportedFormat = errors.New("render: unsupported format")

	// ErrInvalidSize is returned for non-positive output sizes.
	ErrInvalidSize = errors.New("render: invalid output size")

	// ErrInvalidProfile is returned by ExportProfile.Validate.
	ErrInvalidProfile = errors.New("render: invalid export profile")
)

// LayerError reports a layer that could not be drawn. A LayerError aborts
// the whole render or export.
type LayerError struct {
	LayerID string
	Err     error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("render: layer %s: %v", e.LayerID, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }
