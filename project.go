package artboard

import (
	"encoding/json"
	"slices"

	"github.com/google/uuid"
)

// Project is one editable artwork: a base raster plus a stack of layers and
// global filters. BaseWidth × BaseHeight define canonical pixel space; all
// layer coordinates and masks are expressed in it.
//
// Project values are treated as immutable by the mutation API: Apply
// returns an updated copy and never modifies its input.
type Project struct {
	ID           string  `json:"id"`
	GenerationID string  `json:"generationId,omitempty"`
	BaseAssetURL string  `json:"baseAssetUrl"`
	BaseWidth    int     `json:"baseWidth"`
	BaseHeight   int     `json:"baseHeight"`
	Crop         Crop    `json:"crop"`
	Filters      Filters `json:"filters"`
	Layers       Layers  `json:"layers"`
}

// NewProject returns the initial project for a generated asset: no layers,
// neutral filters and the default crop.
func NewProject(generationID, baseAssetURL string, baseWidth, baseHeight int) *Project {
	return &Project{
		ID:           uuid.NewString(),
		GenerationID: generationID,
		BaseAssetURL: baseAssetURL,
		BaseWidth:    baseWidth,
		BaseHeight:   baseHeight,
		Crop:         DefaultCrop(),
		Filters:      NeutralFilters(),
		Layers:       Layers{},
	}
}

// UnmarshalJSON decodes a project, defaulting missing filters to neutral
// and a missing crop to DefaultCrop.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	v := plain{
		Crop:    DefaultCrop(),
		Filters: NeutralFilters(),
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Layers == nil {
		v.Layers = Layers{}
	}
	*p = Project(v)
	return nil
}

// Validate checks the project invariants: positive canonical size, finite
// layer geometry and unique layer ids.
func (p *Project) Validate() error {
	if p.BaseWidth <= 0 || p.BaseHeight <= 0 {
		return &ValidationError{Field: "baseWidth/baseHeight", Reason: "must be positive"}
	}
	seen := make(map[string]struct{}, len(p.Layers))
	for _, l := range p.Layers {
		if l == nil {
			return &ValidationError{Field: "layers", Reason: "contains a nil layer"}
		}
		if err := l.validate(); err != nil {
			return err
		}
		id := l.Base().ID
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: "layer " + id, Reason: "id is not unique"}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.Layers = make(Layers, len(p.Layers))
	for i, l := range p.Layers {
		c.Layers[i] = l.Clone()
	}
	return &c
}

// Layer returns the layer with the given id and its index in Layers.
func (p *Project) Layer(id string) (Layer, int) {
	for i, l := range p.Layers {
		if l.Base().ID == id {
			return l, i
		}
	}
	return nil, -1
}

// Ordered returns the layers in ascending z-order. Layers with equal
// ZIndex keep their list order.
func (p *Project) Ordered() []Layer {
	out := slices.Clone([]Layer(p.Layers))
	slices.SortStableFunc(out, func(a, b Layer) int {
		return a.Base().ZIndex - b.Base().ZIndex
	})
	return out
}

// Visible returns the visible layers in ascending z-order.
func (p *Project) Visible() []Layer {
	ordered := p.Ordered()
	out := ordered[:0]
	for _, l := range ordered {
		if l.Base().Visible {
			out = append(out, l)
		}
	}
	return out
}

func (p *Project) topZ() int {
	top := -1
	for _, l := range p.Layers {
		top = max(top, l.Base().ZIndex)
	}
	return top
}

// Patch is a partial project update. Nil fields are left unchanged.
// Id, generation id and canonical size are never patched.
type Patch struct {
	BaseAssetURL *string  `json:"baseAssetUrl,omitempty"`
	Crop         *Crop    `json:"crop,omitempty"`
	Filters      *Filters `json:"filters,omitempty"`
	Layers       *Layers  `json:"layers,omitempty"`
}

// FullPatch returns a patch that replaces every patchable field of p.
// Saves use it to persist the project wholesale.
func FullPatch(p *Project) Patch {
	url := p.BaseAssetURL
	crop := p.Crop
	filters := p.Filters
	layers := p.Clone().Layers
	return Patch{
		BaseAssetURL: &url,
		Crop:         &crop,
		Filters:      &filters,
		Layers:       &layers,
	}
}

// IsEmpty reports whether the patch changes nothing.
func (pt Patch) IsEmpty() bool {
	return pt.BaseAssetURL == nil && pt.Crop == nil && pt.Filters == nil && pt.Layers == nil
}

// WithPatch returns a copy of p with the patch applied and validated.
func (p *Project) WithPatch(pt Patch) (*Project, error) {
	c := p.Clone()
	if pt.BaseAssetURL != nil {
		c.BaseAssetURL = *pt.BaseAssetURL
	}
	if pt.Crop != nil {
		c.Crop = *pt.Crop
	}
	if pt.Filters != nil {
		c.Filters = pt.Filters.Clamp()
	}
	if pt.Layers != nil {
		c.Layers = make(Layers, len(*pt.Layers))
		for i, l := range *pt.Layers {
			if l == nil {
				return nil, &ValidationError{Field: "layers", Reason: "contains a nil layer"}
			}
			c.Layers[i] = l.Clone()
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
