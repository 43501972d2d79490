package artboard

import (
	"errors"
	"fmt"
)

// Sentinel errors for the artboard package.
var (
	// ErrInvalidProject is returned when a project violates a model invariant.
	ErrInvalidProject = errors.New("artboard: invalid project")

	// ErrLayerNotFound is returned when an operation names an unknown layer.
	ErrLayerNotFound = errors.New("artboard: layer not found")

	// ErrLayerLocked is returned when a locked layer is moved or transformed.
	ErrLayerLocked = errors.New("artboard: layer is locked")

	// ErrDuplicateLayer is returned when a layer id is already in use.
	ErrDuplicateLayer = errors.New("artboard: duplicate layer id")

	// ErrWrongLayerType is returned when a text operation targets an image
	// layer or the other way around.
	ErrWrongLayerType = errors.New("artboard: wrong layer type")
)

// ValidationError describes which field of a project failed validation.
// It wraps ErrInvalidProject.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("artboard: invalid project: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidProject }
