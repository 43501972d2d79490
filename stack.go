package artboard

import (
	"fmt"

	"github.com/gogpu/artboard/mask"
)

// Op is one project mutation. Ops are applied through Apply.
type Op interface {
	apply(p *Project) error
	name() string
}

// Apply returns a copy of p with ops applied in order. The result is
// validated; on any error the input is returned unchanged together with
// the error.
func Apply(p *Project, ops ...Op) (*Project, error) {
	next := p.Clone()
	for _, op := range ops {
		if err := op.apply(next); err != nil {
			return p, fmt.Errorf("%s: %w", op.name(), err)
		}
	}
	if err := next.Validate(); err != nil {
		return p, err
	}
	return next, nil
}

func find(p *Project, id string) (Layer, error) {
	l, _ := p.Layer(id)
	if l == nil {
		return nil, fmt.Errorf("%w: %q", ErrLayerNotFound, id)
	}
	return l, nil
}

func findUnlocked(p *Project, id string) (*LayerBase, error) {
	l, err := find(p, id)
	if err != nil {
		return nil, err
	}
	b := l.Base()
	if b.Locked {
		return nil, fmt.Errorf("%w: %q", ErrLayerLocked, id)
	}
	return b, nil
}

// AddLayer appends a layer on top of the stack. The layer is cloned and its
// ZIndex set above every existing layer.
type AddLayer struct {
	Layer Layer
}

func (AddLayer) name() string { return "add layer" }

func (op AddLayer) apply(p *Project) error {
	if op.Layer == nil {
		return &ValidationError{Field: "layer", Reason: "is nil"}
	}
	l := op.Layer.Clone()
	id := l.Base().ID
	if existing, _ := p.Layer(id); existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateLayer, id)
	}
	l.Base().ZIndex = p.topZ() + 1
	p.Layers = append(p.Layers, l)
	return nil
}

// DeleteLayer removes a layer together with its mask.
type DeleteLayer struct {
	ID string
}

func (DeleteLayer) name() string { return "delete layer" }

func (op DeleteLayer) apply(p *Project) error {
	_, i := p.Layer(op.ID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrLayerNotFound, op.ID)
	}
	p.Layers = append(p.Layers[:i], p.Layers[i+1:]...)
	return nil
}

// MoveLayer sets the layer anchor to canonical (X, Y).
type MoveLayer struct {
	ID   string
	X, Y float64
}

func (MoveLayer) name() string { return "move layer" }

func (op MoveLayer) apply(p *Project) error {
	b, err := findUnlocked(p, op.ID)
	if err != nil {
		return err
	}
	b.X, b.Y = op.X, op.Y
	return nil
}

// ResizeLayer sets the layer scale factor.
type ResizeLayer struct {
	ID    string
	Scale float64
}

func (ResizeLayer) name() string { return "resize layer" }

func (op ResizeLayer) apply(p *Project) error {
	b, err := findUnlocked(p, op.ID)
	if err != nil {
		return err
	}
	b.Scale = op.Scale
	return nil
}

// RotateLayer sets the layer rotation in degrees.
type RotateLayer struct {
	ID       string
	Rotation float64
}

func (RotateLayer) name() string { return "rotate layer" }

func (op RotateLayer) apply(p *Project) error {
	b, err := findUnlocked(p, op.ID)
	if err != nil {
		return err
	}
	b.Rotation = op.Rotation
	return nil
}

// SetOpacity sets the layer opacity, clamped to [0,1].
type SetOpacity struct {
	ID      string
	Opacity float64
}

func (SetOpacity) name() string { return "set opacity" }

func (op SetOpacity) apply(p *Project) error {
	l, err := find(p, op.ID)
	if err != nil {
		return err
	}
	l.Base().Opacity = clamp(op.Opacity, 0, 1)
	return nil
}

// ReorderLayer moves a layer to position Index in z-order (0 is the
// bottom) and renumbers every layer's ZIndex to 0..n-1.
type ReorderLayer struct {
	ID    string
	Index int
}

func (ReorderLayer) name() string { return "reorder layer" }

func (op ReorderLayer) apply(p *Project) error {
	if _, err := find(p, op.ID); err != nil {
		return err
	}
	ordered := p.Ordered()
	var moving Layer
	rest := make([]Layer, 0, len(ordered))
	for _, l := range ordered {
		if l.Base().ID == op.ID {
			moving = l
			continue
		}
		rest = append(rest, l)
	}
	idx := min(max(op.Index, 0), len(rest))
	rest = append(rest[:idx], append([]Layer{moving}, rest[idx:]...)...)
	for z, l := range rest {
		l.Base().ZIndex = z
	}
	return nil
}

// SetVisible shows or hides a layer. Hidden layers are never rendered or
// exported.
type SetVisible struct {
	ID      string
	Visible bool
}

func (SetVisible) name() string { return "set visible" }

func (op SetVisible) apply(p *Project) error {
	l, err := find(p, op.ID)
	if err != nil {
		return err
	}
	l.Base().Visible = op.Visible
	return nil
}

// SetLocked locks or unlocks a layer. Locked layers reject move, resize and
// rotate.
type SetLocked struct {
	ID     string
	Locked bool
}

func (SetLocked) name() string { return "set locked" }

func (op SetLocked) apply(p *Project) error {
	l, err := find(p, op.ID)
	if err != nil {
		return err
	}
	l.Base().Locked = op.Locked
	return nil
}

// RenameLayer sets the display name of a layer.
type RenameLayer struct {
	ID   string
	Name string
}

func (RenameLayer) name() string { return "rename layer" }

func (op RenameLayer) apply(p *Project) error {
	l, err := find(p, op.ID)
	if err != nil {
		return err
	}
	l.Base().Name = op.Name
	return nil
}

// UpdateFilters replaces the global filters. Values are clamped to their
// bounds.
type UpdateFilters struct {
	Filters Filters
}

func (UpdateFilters) name() string { return "update filters" }

func (op UpdateFilters) apply(p *Project) error {
	p.Filters = op.Filters.Clamp()
	return nil
}

// SetCrop replaces the stored crop.
type SetCrop struct {
	Crop Crop
}

func (SetCrop) name() string { return "set crop" }

func (op SetCrop) apply(p *Project) error {
	p.Crop = op.Crop
	return nil
}

// UpdateText edits the text-specific fields of a text layer in place.
// Edit receives the project's copy of the layer; changes to the shared
// base fields are subject to the same validation as every other op.
type UpdateText struct {
	ID   string
	Edit func(*TextLayer)
}

func (UpdateText) name() string { return "update text" }

func (op UpdateText) apply(p *Project) error {
	l, err := find(p, op.ID)
	if err != nil {
		return err
	}
	t, ok := AsText(l)
	if !ok {
		return fmt.Errorf("%w: %q is %s", ErrWrongLayerType, op.ID, l.Kind())
	}
	if op.Edit != nil {
		op.Edit(t)
	}
	return nil
}

// UpdateImage replaces the source of an image layer.
type UpdateImage struct {
	ID  string
	Src string
}

func (UpdateImage) name() string { return "update image" }

func (op UpdateImage) apply(p *Project) error {
	l, err := find(p, op.ID)
	if err != nil {
		return err
	}
	img, ok := AsImage(l)
	if !ok {
		return fmt.Errorf("%w: %q is %s", ErrWrongLayerType, op.ID, l.Kind())
	}
	img.Src = op.Src
	return nil
}

// SetMask attaches a copy of Mask to a layer. A nil Mask removes it.
type SetMask struct {
	ID   string
	Mask *mask.Mask
}

func (SetMask) name() string { return "set mask" }

func (op SetMask) apply(p *Project) error {
	l, err := find(p, op.ID)
	if err != nil {
		return err
	}
	l.Base().Mask = op.Mask.Clone()
	return nil
}
