// Package store persists artboard projects.
//
// A Store is the persistence collaborator of the editor: it fetches a
// project, creates the initial project of a generation exactly once, and
// applies partial updates. The memory, postgres and redis sub-packages
// provide implementations.
//
// Get accepts either a project id or the generation id the project was
// created for, so a client that only knows the generation can find its
// project without a separate lookup.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/artboard"
)

// Sentinel errors for the store package.
var (
	// ErrNotFound is returned when no project matches the requested id.
	ErrNotFound = errors.New("store: project not found")

	// ErrNoGeneration is returned by Create when the generation id is empty.
	ErrNoGeneration = errors.New("store: generation id is required")
)

// Store is the project persistence interface.
type Store interface {
	// Get returns the project with the given project or generation id,
	// or ErrNotFound.
	Get(ctx context.Context, id string) (*artboard.Project, error)

	// Create stores initial as the project of generationID. If the
	// generation already has a project, that project is returned and
	// initial is discarded.
	Create(ctx context.Context, generationID string, initial *artboard.Project) (*artboard.Project, error)

	// Update applies patch to the project with the given id and returns
	// the stored result.
	Update(ctx context.Context, id string, patch artboard.Patch) (*artboard.Project, error)
}

// Prepare returns the copy of initial that Create implementations store:
// bound to generationID, with a fresh id when initial has none, and
// validated.
func Prepare(generationID string, initial *artboard.Project) (*artboard.Project, error) {
	if generationID == "" {
		return nil, ErrNoGeneration
	}
	if initial == nil {
		return nil, fmt.Errorf("store: create %s: %w", generationID, artboard.ErrInvalidProject)
	}
	p := initial.Clone()
	p.GenerationID = generationID
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Layers == nil {
		p.Layers = artboard.Layers{}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", generationID, err)
	}
	return p, nil
}

// NotFound wraps ErrNotFound with the requested id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}
