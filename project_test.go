package artboard

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNewProject(t *testing.T) {
	p := NewProject("gen-1", "https://cdn/x.png", 1024, 768)
	if p.ID == "" || p.GenerationID != "gen-1" {
		t.Errorf("unexpected ids: %q %q", p.ID, p.GenerationID)
	}
	if len(p.Layers) != 0 {
		t.Error("new project should have no layers")
	}
	if p.Filters != NeutralFilters() {
		t.Errorf("filters = %+v, want neutral", p.Filters)
	}
	if p.Crop != DefaultCrop() {
		t.Errorf("crop = %+v", p.Crop)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProjectValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Project)
	}{
		{"zero width", func(p *Project) { p.BaseWidth = 0 }},
		{"negative height", func(p *Project) { p.BaseHeight = -1 }},
		{"nan x", func(p *Project) {
			l := NewTextLayer("a", 0, 0)
			l.X = math.NaN()
			p.Layers = append(p.Layers, l)
		}},
		{"infinite rotation", func(p *Project) {
			l := NewTextLayer("a", 0, 0)
			l.Rotation = math.Inf(1)
			p.Layers = append(p.Layers, l)
		}},
		{"duplicate ids", func(p *Project) {
			l := NewTextLayer("a", 0, 0)
			p.Layers = append(p.Layers, l, l.Clone())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProject("g", "u", 100, 100)
			tt.mutate(p)
			err := p.Validate()
			if !errors.Is(err, ErrInvalidProject) {
				t.Errorf("Validate() = %v, want ErrInvalidProject", err)
			}
		})
	}
}

func TestProjectAllowsOffCanvasLayers(t *testing.T) {
	p := NewProject("g", "u", 100, 100)
	p.Layers = append(p.Layers, NewTextLayer("far", -5000, 9000))
	if err := p.Validate(); err != nil {
		t.Errorf("off-canvas layer should be valid: %v", err)
	}
}

func TestProjectOrderedAndVisible(t *testing.T) {
	p := NewProject("g", "u", 100, 100)
	a := NewTextLayer("a", 0, 0)
	a.ZIndex = 2
	b := NewTextLayer("b", 0, 0)
	b.ZIndex = 0
	c := NewTextLayer("c", 0, 0)
	c.ZIndex = 1
	c.Visible = false
	d := NewTextLayer("d", 0, 0)
	d.ZIndex = 0
	p.Layers = Layers{a, b, c, d}

	var names []string
	for _, l := range p.Ordered() {
		names = append(names, l.Base().Name)
	}
	if want := []string{"b", "d", "c", "a"}; !equalStrings(names, want) {
		t.Errorf("Ordered() = %v, want %v", names, want)
	}

	names = names[:0]
	for _, l := range p.Visible() {
		names = append(names, l.Base().Name)
	}
	if want := []string{"b", "d", "a"}; !equalStrings(names, want) {
		t.Errorf("Visible() = %v, want %v", names, want)
	}
	if len(p.Layers) != 4 || p.Layers[0] != a {
		t.Error("Ordered/Visible must not reorder the project's layers")
	}
}

func TestProjectJSONDefaults(t *testing.T) {
	var p Project
	data := `{"id":"p1","baseAssetUrl":"u","baseWidth":10,"baseHeight":20,"filters":{"grain":5}}`
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := NeutralFilters()
	want.Grain = 5
	if p.Filters != want {
		t.Errorf("filters = %+v, want %+v", p.Filters, want)
	}
	if p.Crop != DefaultCrop() {
		t.Errorf("crop = %+v", p.Crop)
	}
	if p.Layers == nil {
		t.Error("layers should decode as an empty list")
	}
}

func TestProjectJSONRoundTrip(t *testing.T) {
	p := NewProject("g", "https://x/y.png", 512, 512)
	p.Layers = Layers{NewTextLayer("Hi", 1, 2), NewImageLayer("data:image/png;base64,AAAA", 3, 4)}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Project
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != p.ID || got.BaseWidth != 512 || len(got.Layers) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Layers[1].Kind() != KindImage {
		t.Errorf("layer 1 kind = %q", got.Layers[1].Kind())
	}
}

func TestWithPatch(t *testing.T) {
	p := NewProject("g", "u", 100, 100)
	filters := Filters{Brightness: 300, Contrast: 100, Saturation: 100}
	layers := Layers{NewTextLayer("a", 1, 1)}
	url := "v"

	got, err := p.WithPatch(Patch{Filters: &filters, Layers: &layers, BaseAssetURL: &url})
	if err != nil {
		t.Fatalf("WithPatch: %v", err)
	}
	if got.Filters.Brightness != MaxBrightness {
		t.Errorf("patched filters should be clamped, got %v", got.Filters.Brightness)
	}
	if got.BaseAssetURL != "v" || len(got.Layers) != 1 {
		t.Errorf("patch not applied: %+v", got)
	}
	if p.BaseAssetURL != "u" || len(p.Layers) != 0 {
		t.Error("WithPatch modified the receiver")
	}

	bad := Layers{nil}
	if _, err := p.WithPatch(Patch{Layers: &bad}); !errors.Is(err, ErrInvalidProject) {
		t.Errorf("nil layer patch = %v, want ErrInvalidProject", err)
	}
	if !(Patch{}).IsEmpty() || FullPatch(p).IsEmpty() {
		t.Error("IsEmpty mismatch")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
