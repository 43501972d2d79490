package editor

import "errors"

// Sentinel errors for the editor package.
var (
	// ErrLoad wraps every failure to open a session: the project or the
	// base image could not be fetched or decoded.
	ErrLoad = errors.New("editor: load failed")

	// ErrSave wraps persistence failures. Local edits are kept.
	ErrSave = errors.New("editor: save failed")

	// ErrBusy is returned when a mutation is attempted while a save or an
	// export is in flight.
	ErrBusy = errors.New("editor: session is busy")

	// ErrNoDrag is returned when a drag token does not name the active drag.
	ErrNoDrag = errors.New("editor: no such drag")

	// ErrMaskEditing is returned when an operation is not allowed while a
	// mask is being edited.
	ErrMaskEditing = errors.New("editor: mask editing in progress")

	// ErrNotEditingMask is returned by mask brush operations outside a
	// mask edit.
	ErrNotEditingMask = errors.New("editor: no mask edit in progress")
)
