package editor

import (
	"fmt"

	"github.com/gogpu/artboard"
)

// DragToken identifies one drag gesture from pointer-down to pointer-up.
type DragToken uint64

type drag struct {
	token   DragToken
	layerID string
	// offset is the grab point relative to the layer anchor, in canonical
	// pixels. It stays fixed for the whole gesture.
	offset  artboard.Point
	mapping artboard.Mapping
}

// BeginDrag starts dragging a layer. pointer is in preview pixels and m
// maps the project onto the preview. Starting a drag ends any previous
// one. Locked layers cannot be dragged.
func (s *Session) BeginDrag(layerID string, pointer artboard.Point, m artboard.Mapping) (DragToken, error) {
	if err := s.state.mutable(); err != nil {
		return 0, err
	}
	l, _ := s.project.Layer(layerID)
	if l == nil {
		return 0, fmt.Errorf("%w: %q", artboard.ErrLayerNotFound, layerID)
	}
	b := l.Base()
	if b.Locked {
		return 0, fmt.Errorf("%w: %q", artboard.ErrLayerLocked, layerID)
	}

	s.drag = nil
	s.selectLayer(layerID)
	s.dragSeq++
	grab := m.ToCanonical(pointer)
	s.drag = &drag{
		token:   s.dragSeq,
		layerID: layerID,
		offset:  grab.Sub(artboard.Pt(b.X, b.Y)),
		mapping: m,
	}
	return s.dragSeq, nil
}

// DragTo moves the dragged layer so the grab point follows pointer.
func (s *Session) DragTo(tok DragToken, pointer artboard.Point) error {
	d, err := s.activeDrag(tok)
	if err != nil {
		return err
	}
	anchor := d.mapping.ToCanonical(pointer).Sub(d.offset)
	return s.Apply(artboard.MoveLayer{ID: d.layerID, X: anchor.X, Y: anchor.Y})
}

// EndDrag ends the gesture on pointer-up. The layer stays selected.
func (s *Session) EndDrag(tok DragToken) error {
	if _, err := s.activeDrag(tok); err != nil {
		return err
	}
	s.drag = nil
	return nil
}

// ReleaseCapture ends the active drag, if any. It is called when the
// pointer capture is lost without a pointer-up.
func (s *Session) ReleaseCapture() {
	s.drag = nil
}

// Dragging reports whether a drag is active.
func (s *Session) Dragging() bool { return s.drag != nil }

func (s *Session) activeDrag(tok DragToken) (*drag, error) {
	if s.drag == nil || s.drag.token != tok {
		return nil, fmt.Errorf("%w: %d", ErrNoDrag, tok)
	}
	return s.drag, nil
}
