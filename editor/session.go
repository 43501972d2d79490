// Package editor drives one interactive editing session of a project.
//
// A Session owns the in-memory project and is its only mutator: every
// change goes through Apply or one of the gesture helpers built on it.
// Pointer drags are tracked by DragToken, mask painting is modal, and
// Save and Export hand the project to the store and the renderer.
//
// A Session is not safe for concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/assets"
	"github.com/gogpu/artboard/render"
	"github.com/gogpu/artboard/store"
)

// Deps are the collaborators of a session.
type Deps struct {
	// Store persists the project. Required.
	Store store.Store
	// Assets loads the base image and image layers. Defaults to
	// assets.NewLoader().
	Assets assets.Source
	// Render holds extra renderer options such as fonts or the export
	// profile. The asset source and the decoded base image are always
	// supplied by the session.
	Render []render.Option
}

// Session is an open editor session.
type Session struct {
	deps     Deps
	project  *artboard.Project
	base     image.Image
	renderer *render.Renderer

	state    State
	selected string
	dirty    bool

	drag     *drag
	dragSeq  DragToken
	maskEdit *maskEdit
}

// Open loads the project of generationID, creating it from the base image
// at baseURL when the generation has none yet. Load failures wrap ErrLoad;
// errors creating the project are returned as the store reported them.
func Open(ctx context.Context, deps Deps, generationID, baseURL string) (*Session, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("%w: no store", ErrLoad)
	}
	if deps.Assets == nil {
		deps.Assets = assets.NewLoader()
	}
	s := &Session{deps: deps, state: Loading}
	log := artboard.Logger()

	p, err := deps.Store.Get(ctx, generationID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		img, err := deps.Assets.Load(ctx, baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: base image: %w", ErrLoad, err)
		}
		b := img.Bounds()
		p, err = deps.Store.Create(ctx, generationID, artboard.NewProject(generationID, baseURL, b.Dx(), b.Dy()))
		if err != nil {
			return nil, err
		}
		s.base = img
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if s.base == nil || p.BaseAssetURL != baseURL {
		img, err := deps.Assets.Load(ctx, p.BaseAssetURL)
		if err != nil {
			return nil, fmt.Errorf("%w: base image: %w", ErrLoad, err)
		}
		s.base = img
	}

	s.project = p
	s.renderer = s.newRenderer()
	s.state = Ready
	log.Info("editor: session opened", "project", p.ID, "generation", generationID, "layers", len(p.Layers))
	return s, nil
}

func (s *Session) newRenderer() *render.Renderer {
	opts := make([]render.Option, 0, len(s.deps.Render)+2)
	opts = append(opts, render.WithAssets(s.deps.Assets))
	opts = append(opts, s.deps.Render...)
	opts = append(opts, render.WithBaseImage(s.base))
	return render.New(opts...)
}

// Project returns the current project. The value must not be modified;
// Apply replaces it with an updated copy.
func (s *Session) Project() *artboard.Project { return s.project }

// Base returns the decoded base image.
func (s *Session) Base() image.Image { return s.base }

// State returns the session state.
func (s *Session) State() State { return s.state }

// Selected returns the id of the selected layer, or "".
func (s *Session) Selected() string { return s.selected }

// Dirty reports whether the project changed since it was opened or last
// saved.
func (s *Session) Dirty() bool { return s.dirty }

// Apply applies ops to the project. It is the single mutation entry point;
// on error the project is left unchanged.
func (s *Session) Apply(ops ...artboard.Op) error {
	if err := s.state.mutable(); err != nil {
		return err
	}
	return s.apply(ops...)
}

func (s *Session) apply(ops ...artboard.Op) error {
	p, err := artboard.Apply(s.project, ops...)
	if err != nil {
		return err
	}
	s.project = p
	s.dirty = true
	if s.selected != "" {
		if l, _ := p.Layer(s.selected); l == nil {
			s.deselect()
		}
	}
	return nil
}

// AddText adds a default text layer at the canvas center, selects it and
// returns its id.
func (s *Session) AddText(text string) (string, error) {
	if text == "" {
		text = artboard.DefaultText
	}
	l := artboard.NewTextLayer(text, float64(s.project.BaseWidth)/2, float64(s.project.BaseHeight)/2)
	return s.add(l)
}

// AddImage adds an image layer at the canvas center, selects it and
// returns its id. The source is loaded first so an unreachable image is
// reported here rather than at export time.
func (s *Session) AddImage(ctx context.Context, src string) (string, error) {
	if err := s.state.mutable(); err != nil {
		return "", err
	}
	if _, err := s.deps.Assets.Load(ctx, src); err != nil {
		return "", err
	}
	l := artboard.NewImageLayer(src, float64(s.project.BaseWidth)/2, float64(s.project.BaseHeight)/2)
	return s.add(l)
}

func (s *Session) add(l artboard.Layer) (string, error) {
	if err := s.Apply(artboard.AddLayer{Layer: l}); err != nil {
		return "", err
	}
	id := l.Base().ID
	s.selectLayer(id)
	return id, nil
}

// Delete removes a layer.
func (s *Session) Delete(id string) error {
	return s.Apply(artboard.DeleteLayer{ID: id})
}

// Select selects the layer with the given id. An empty id clears the
// selection.
func (s *Session) Select(id string) error {
	if err := s.state.mutable(); err != nil {
		return err
	}
	if id == "" {
		s.deselect()
		return nil
	}
	if l, _ := s.project.Layer(id); l == nil {
		return fmt.Errorf("%w: %q", artboard.ErrLayerNotFound, id)
	}
	s.selectLayer(id)
	return nil
}

func (s *Session) selectLayer(id string) {
	if s.drag != nil && s.drag.layerID != id {
		s.drag = nil
	}
	s.selected = id
	s.state = EditingLayer
}

func (s *Session) deselect() {
	s.drag = nil
	s.selected = ""
	if s.state == EditingLayer {
		s.state = Ready
	}
}

// Save persists the whole project. On failure the error wraps ErrSave and
// the local edits are kept so the caller can retry. An open mask edit is
// not saved and stays open.
func (s *Session) Save(ctx context.Context) error {
	if err := s.state.persistable(); err != nil {
		return err
	}
	prev := s.state
	s.state = Saving
	defer func() { s.state = prev }()

	p, err := s.deps.Store.Update(ctx, s.project.ID, artboard.FullPatch(s.project))
	if err != nil {
		artboard.Logger().Warn("editor: save failed", "project", s.project.ID, "err", err)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	s.project = p
	s.dirty = false
	artboard.Logger().Info("editor: saved", "project", p.ID)
	return nil
}

// Export writes the export archive of the current project to w, without
// any uncommitted mask edit. Nothing is written when any target fails to
// render.
func (s *Session) Export(ctx context.Context, w io.Writer) error {
	if err := s.state.persistable(); err != nil {
		return err
	}
	prev := s.state
	s.state = Exporting
	defer func() { s.state = prev }()
	return s.renderer.Export(ctx, s.project, w)
}

// Preview returns the project as it currently renders, including an
// uncommitted mask edit.
func (s *Session) Preview() *artboard.Project {
	if s.maskEdit == nil {
		return s.project
	}
	p, err := artboard.Apply(s.project, artboard.SetMask{ID: s.maskEdit.layerID, Mask: s.maskEdit.working})
	if err != nil {
		return s.project
	}
	return p
}

// Render renders the preview project to a size×size image.
func (s *Session) Render(ctx context.Context, size int, format render.Format, quality float64) ([]byte, error) {
	return s.renderer.Render(ctx, s.Preview(), size, format, quality)
}
