package editor

import (
	"fmt"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/mask"
)

// maskEdit is a modal mask edit. The layer keeps its mask untouched until
// CommitMask, so the stored mask is the snapshot DiscardMask returns to.
type maskEdit struct {
	layerID string
	working *mask.Mask
}

// BeginMaskEdit enters mask editing for a layer. The layer's mask, or a
// new canonical-size mask when it has none, is copied into a working mask
// that the brush operations paint. Any drag is ended.
func (s *Session) BeginMaskEdit(layerID string) error {
	if err := s.state.mutable(); err != nil {
		return err
	}
	l, _ := s.project.Layer(layerID)
	if l == nil {
		return fmt.Errorf("%w: %q", artboard.ErrLayerNotFound, layerID)
	}
	s.selectLayer(layerID)
	s.drag = nil

	working := l.Base().Mask.Clone()
	if working == nil {
		working = mask.New(s.project.BaseWidth, s.project.BaseHeight)
	}
	s.maskEdit = &maskEdit{layerID: layerID, working: working}
	s.state = EditingMask
	return nil
}

// Mask returns the working mask during a mask edit, or nil.
func (s *Session) Mask() *mask.Mask {
	if s.maskEdit == nil {
		return nil
	}
	return s.maskEdit.working
}

func (s *Session) working() (*mask.Mask, error) {
	if s.state != EditingMask || s.maskEdit == nil {
		return nil, ErrNotEditingMask
	}
	return s.maskEdit.working, nil
}

// PaintMask paints one brush dab at canonical (x, y).
func (s *Session) PaintMask(x, y, radius float64, mode mask.Mode) error {
	m, err := s.working()
	if err != nil {
		return err
	}
	m.Paint(x, y, radius, mode)
	return nil
}

// StrokeMask paints dabs along the segment between two pointer samples.
func (s *Session) StrokeMask(x0, y0, x1, y1, radius float64, mode mask.Mode) error {
	m, err := s.working()
	if err != nil {
		return err
	}
	m.Stroke(x0, y0, x1, y1, radius, mode)
	return nil
}

// InvertMask flips the working mask.
func (s *Session) InvertMask() error {
	m, err := s.working()
	if err != nil {
		return err
	}
	m.Invert()
	return nil
}

// ResetMask clears the working mask so the whole layer is revealed.
func (s *Session) ResetMask() error {
	m, err := s.working()
	if err != nil {
		return err
	}
	m.Reset()
	return nil
}

// CommitMask writes the working mask to the layer and leaves mask editing.
// A mask with nothing painted is removed from the layer.
func (s *Session) CommitMask() error {
	m, err := s.working()
	if err != nil {
		return err
	}
	if m.IsEmpty() {
		m = nil
	}
	if err := s.apply(artboard.SetMask{ID: s.maskEdit.layerID, Mask: m}); err != nil {
		return err
	}
	s.endMaskEdit()
	return nil
}

// DiscardMask leaves mask editing and keeps the mask the layer had when
// editing began.
func (s *Session) DiscardMask() error {
	if _, err := s.working(); err != nil {
		return err
	}
	s.endMaskEdit()
	return nil
}

func (s *Session) endMaskEdit() {
	s.maskEdit = nil
	s.state = EditingLayer
}
