package editor

// State is the phase of an editor session.
//
//	Loading → Ready ⇄ EditingLayer ⇄ EditingMask
//	Ready, EditingLayer → Saving | Exporting → back
type State int

const (
	// Loading is the state while Open fetches the project.
	Loading State = iota
	// Ready means no layer is selected.
	Ready
	// EditingLayer means a layer is selected and can be dragged.
	EditingLayer
	// EditingMask means the selected layer's mask is being painted.
	// Dragging and other layer edits are suspended.
	EditingMask
	// Exporting is the state during Export.
	Exporting
	// Saving is the state during Save.
	Saving
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case EditingLayer:
		return "editing-layer"
	case EditingMask:
		return "editing-mask"
	case Exporting:
		return "exporting"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

// mutable reports the error, if any, that forbids layer edits in s.
func (s State) mutable() error {
	switch s {
	case Ready, EditingLayer:
		return nil
	case EditingMask:
		return ErrMaskEditing
	default:
		return ErrBusy
	}
}

// persistable reports the error, if any, that forbids Save and Export in s.
// An open mask edit does not: they use the committed project.
func (s State) persistable() error {
	switch s {
	case Ready, EditingLayer, EditingMask:
		return nil
	default:
		return ErrBusy
	}
}
