package editor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/mask"
	"github.com/gogpu/artboard/render"
	"github.com/gogpu/artboard/store"
	"github.com/gogpu/artboard/store/memory"
)

func baseURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+2] = 200
		img.Pix[i+3] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func openSession(t *testing.T, st store.Store, w, h int) *Session {
	t.Helper()
	s, err := Open(context.Background(), Deps{Store: st}, "gen-1", baseURL(t, w, h))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// flakyStore fails Create or Update on demand.
type flakyStore struct {
	store.Store
	createErr error
	updateErr error
}

func (f *flakyStore) Create(ctx context.Context, generationID string, p *artboard.Project) (*artboard.Project, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Store.Create(ctx, generationID, p)
}

func (f *flakyStore) Update(ctx context.Context, id string, patch artboard.Patch) (*artboard.Project, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Store.Update(ctx, id, patch)
}

func TestOpenCreatesProject(t *testing.T) {
	st := memory.New()
	s := openSession(t, st, 200, 100)

	p := s.Project()
	if p.BaseWidth != 200 || p.BaseHeight != 100 {
		t.Errorf("canonical size = %dx%d, want 200x100", p.BaseWidth, p.BaseHeight)
	}
	if p.GenerationID != "gen-1" || len(p.Layers) != 0 || p.Filters != artboard.NeutralFilters() {
		t.Errorf("initial project = %+v", p)
	}
	if s.State() != Ready {
		t.Errorf("state = %v, want ready", s.State())
	}
	if s.Base() == nil || s.Base().Bounds().Dx() != 200 {
		t.Error("base image not decoded")
	}

	again := openSession(t, st, 200, 100)
	if again.Project().ID != p.ID {
		t.Errorf("reopen created a second project: %s != %s", again.Project().ID, p.ID)
	}
	if st.Len() != 1 {
		t.Errorf("store holds %d projects, want 1", st.Len())
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Deps{Store: memory.New()}, "gen-1", "file:///does/not/exist.png")
	if !errors.Is(err, ErrLoad) {
		t.Errorf("unreachable base: err = %v, want ErrLoad", err)
	}

	quota := errors.New("generation quota exceeded")
	_, err = Open(ctx, Deps{Store: &flakyStore{Store: memory.New(), createErr: quota}}, "gen-1", baseURL(t, 4, 4))
	if err != quota {
		t.Errorf("create error = %v, want it verbatim", err)
	}

	_, err = Open(ctx, Deps{}, "gen-1", baseURL(t, 4, 4))
	if !errors.Is(err, ErrLoad) {
		t.Errorf("no store: err = %v, want ErrLoad", err)
	}
}

func TestDragIsZoomIndependent(t *testing.T) {
	for _, zoom := range []float64{0.5, 1, 2.5} {
		s := openSession(t, memory.New(), 400, 400)
		id, err := s.AddText("drag me")
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Apply(artboard.MoveLayer{ID: id, X: 100, Y: 100}); err != nil {
			t.Fatal(err)
		}

		m := artboard.Mapping{BaseWidth: 400, BaseHeight: 400, Width: 400 * zoom, Height: 400 * zoom}
		// Grab 10px right of and 5px above the anchor.
		tok, err := s.BeginDrag(id, artboard.Pt(110*zoom, 95*zoom), m)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.DragTo(tok, artboard.Pt(160*zoom, 95*zoom)); err != nil {
			t.Fatal(err)
		}
		if err := s.EndDrag(tok); err != nil {
			t.Fatal(err)
		}

		l, _ := s.Project().Layer(id)
		b := l.Base()
		if math.Abs(b.X-150) > 1e-9 || math.Abs(b.Y-100) > 1e-9 {
			t.Errorf("zoom %v: anchor = (%v, %v), want (150, 100)", zoom, b.X, b.Y)
		}
		if s.Dragging() || s.Selected() != id || s.State() != EditingLayer {
			t.Errorf("zoom %v: after drag state=%v selected=%q", zoom, s.State(), s.Selected())
		}
	}
}

func TestDragGrabDoesNotJump(t *testing.T) {
	s := openSession(t, memory.New(), 100, 100)
	id, _ := s.AddText("x")
	m := artboard.Mapping{BaseWidth: 100, BaseHeight: 100, Width: 300, Height: 300}
	tok, err := s.BeginDrag(id, artboard.Pt(130, 170), m)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DragTo(tok, artboard.Pt(130, 170)); err != nil {
		t.Fatal(err)
	}
	l, _ := s.Project().Layer(id)
	if b := l.Base(); math.Abs(b.X-50) > 1e-9 || math.Abs(b.Y-50) > 1e-9 {
		t.Errorf("layer jumped to (%v, %v)", b.X, b.Y)
	}
}

func TestDragTokens(t *testing.T) {
	s := openSession(t, memory.New(), 100, 100)
	a, _ := s.AddText("a")
	b, _ := s.AddText("b")
	m := artboard.Mapping{BaseWidth: 100, BaseHeight: 100, Width: 100, Height: 100}

	first, err := s.BeginDrag(a, artboard.Pt(50, 50), m)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.BeginDrag(b, artboard.Pt(50, 50), m)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DragTo(first, artboard.Pt(0, 0)); !errors.Is(err, ErrNoDrag) {
		t.Errorf("stale token: err = %v, want ErrNoDrag", err)
	}
	if err := s.DragTo(second, artboard.Pt(60, 50)); err != nil {
		t.Errorf("active token: %v", err)
	}

	s.ReleaseCapture()
	if s.Dragging() {
		t.Error("ReleaseCapture left a drag active")
	}
	if err := s.DragTo(second, artboard.Pt(70, 50)); !errors.Is(err, ErrNoDrag) {
		t.Errorf("after release: err = %v, want ErrNoDrag", err)
	}
	if err := s.EndDrag(second); !errors.Is(err, ErrNoDrag) {
		t.Errorf("EndDrag after release: err = %v, want ErrNoDrag", err)
	}
	l, _ := s.Project().Layer(b)
	if l.Base().X != 60 {
		t.Errorf("x = %v, want 60", l.Base().X)
	}
}

func TestLockedLayerRejectsDrag(t *testing.T) {
	s := openSession(t, memory.New(), 100, 100)
	id, _ := s.AddText("locked")
	if err := s.Apply(artboard.SetLocked{ID: id, Locked: true}); err != nil {
		t.Fatal(err)
	}
	m := artboard.Mapping{BaseWidth: 100, BaseHeight: 100, Width: 100, Height: 100}
	if _, err := s.BeginDrag(id, artboard.Pt(50, 50), m); !errors.Is(err, artboard.ErrLayerLocked) {
		t.Errorf("err = %v, want ErrLayerLocked", err)
	}
	if err := s.Apply(artboard.MoveLayer{ID: id, X: 1, Y: 1}); !errors.Is(err, artboard.ErrLayerLocked) {
		t.Errorf("move: err = %v, want ErrLayerLocked", err)
	}
}

func TestSelectAndDelete(t *testing.T) {
	s := openSession(t, memory.New(), 100, 100)
	id, _ := s.AddText("")
	l, _ := s.Project().Layer(id)
	if tl, ok := artboard.AsText(l); !ok || tl.Text != artboard.DefaultText || tl.X != 50 || tl.Y != 50 {
		t.Errorf("new text layer = %+v", l)
	}
	if s.Selected() != id || s.State() != EditingLayer {
		t.Errorf("new layer not selected: %q %v", s.Selected(), s.State())
	}
	if err := s.Select(""); err != nil || s.State() != Ready {
		t.Errorf("deselect: %v, state %v", err, s.State())
	}
	if err := s.Select("missing"); !errors.Is(err, artboard.ErrLayerNotFound) {
		t.Errorf("select missing: %v", err)
	}
	_ = s.Select(id)
	if err := s.Delete(id); err != nil {
		t.Fatal(err)
	}
	if s.Selected() != "" || s.State() != Ready || len(s.Project().Layers) != 0 {
		t.Errorf("after delete: selected %q state %v layers %d", s.Selected(), s.State(), len(s.Project().Layers))
	}
	if !s.Dirty() {
		t.Error("edits should mark the session dirty")
	}
}

func TestAddImage(t *testing.T) {
	s := openSession(t, memory.New(), 100, 100)
	id, err := s.AddImage(context.Background(), baseURL(t, 8, 8))
	if err != nil {
		t.Fatal(err)
	}
	l, _ := s.Project().Layer(id)
	if _, ok := artboard.AsImage(l); !ok {
		t.Errorf("layer %T, want image", l)
	}
	if _, err := s.AddImage(context.Background(), "file:///nope.png"); err == nil {
		t.Error("unreachable image: want error")
	}
	if len(s.Project().Layers) != 1 {
		t.Errorf("layers = %d, want 1", len(s.Project().Layers))
	}
}

func TestMaskEditing(t *testing.T) {
	s := openSession(t, memory.New(), 100, 100)
	id, _ := s.AddText("masked")
	m := artboard.Mapping{BaseWidth: 100, BaseHeight: 100, Width: 100, Height: 100}

	if err := s.PaintMask(50, 50, 5, mask.Erase); !errors.Is(err, ErrNotEditingMask) {
		t.Errorf("paint outside edit: %v", err)
	}
	if err := s.BeginMaskEdit(id); err != nil {
		t.Fatal(err)
	}
	if s.State() != EditingMask {
		t.Fatalf("state = %v", s.State())
	}
	if _, err := s.BeginDrag(id, artboard.Pt(50, 50), m); !errors.Is(err, ErrMaskEditing) {
		t.Errorf("drag while mask editing: %v", err)
	}
	if err := s.Apply(artboard.MoveLayer{ID: id, X: 1, Y: 1}); !errors.Is(err, ErrMaskEditing) {
		t.Errorf("apply while mask editing: %v", err)
	}

	if err := s.PaintMask(50, 50, 5, mask.Erase); err != nil {
		t.Fatal(err)
	}
	if err := s.StrokeMask(10, 10, 30, 10, 2, mask.Erase); err != nil {
		t.Fatal(err)
	}
	if l, _ := s.Preview().Layer(id); l.Base().Mask == nil {
		t.Error("preview lacks the working mask")
	}
	if l, _ := s.Project().Layer(id); l.Base().Mask != nil {
		t.Error("uncommitted mask leaked into the project")
	}

	// Discard restores the mask the layer had: none.
	if err := s.DiscardMask(); err != nil {
		t.Fatal(err)
	}
	if l, _ := s.Project().Layer(id); l.Base().Mask != nil {
		t.Error("discard kept the painted mask")
	}
	if s.State() != EditingLayer {
		t.Errorf("state after discard = %v", s.State())
	}

	// Commit writes it back.
	_ = s.BeginMaskEdit(id)
	_ = s.PaintMask(50, 50, 5, mask.Erase)
	if err := s.CommitMask(); err != nil {
		t.Fatal(err)
	}
	l, _ := s.Project().Layer(id)
	committed := l.Base().Mask
	if committed == nil {
		t.Fatal("commit dropped the mask")
	}
	if lum, alpha := committed.At(50, 50); lum != 0 || alpha != 255 {
		t.Errorf("erased pixel = (%d, %d), want opaque black", lum, alpha)
	}

	// A second edit starts from the committed mask; discarding keeps it.
	_ = s.BeginMaskEdit(id)
	_ = s.InvertMask()
	_ = s.DiscardMask()
	l, _ = s.Project().Layer(id)
	if !l.Base().Mask.Equal(committed) {
		t.Error("discard did not restore the committed mask")
	}

	// Reset then commit removes the mask.
	_ = s.BeginMaskEdit(id)
	_ = s.ResetMask()
	_ = s.CommitMask()
	l, _ = s.Project().Layer(id)
	if l.Base().Mask != nil {
		t.Error("reset mask should be removed on commit")
	}
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	flaky := &flakyStore{Store: memory.New()}
	s := openSession(t, flaky, 100, 100)
	id, _ := s.AddText("keep me")
	_ = s.Select("")

	flaky.updateErr = errors.New("connection refused")
	err := s.Save(context.Background())
	if !errors.Is(err, ErrSave) || !errors.Is(err, flaky.updateErr) {
		t.Fatalf("err = %v, want ErrSave wrapping the store error", err)
	}
	if s.State() != Ready {
		t.Errorf("state = %v, want ready", s.State())
	}
	if l, _ := s.Project().Layer(id); l == nil || !s.Dirty() {
		t.Error("failed save lost the local edits")
	}

	flaky.updateErr = nil
	if err := s.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("saved session still dirty")
	}
	stored, err := flaky.Get(context.Background(), "gen-1")
	if err != nil {
		t.Fatal(err)
	}
	if l, _ := stored.Layer(id); l == nil {
		t.Error("saved project lacks the layer")
	}
}

func TestSaveExportWhileMaskEditing(t *testing.T) {
	st := memory.New()
	s := openSession(t, st, 100, 100)
	id, _ := s.AddText("masked")
	if err := s.BeginMaskEdit(id); err != nil {
		t.Fatal(err)
	}
	if err := s.PaintMask(50, 50, 10, mask.Erase); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := s.Save(ctx); err != nil {
		t.Fatalf("save while mask editing: %v", err)
	}
	if s.State() != EditingMask {
		t.Errorf("state after save = %v, want editing-mask", s.State())
	}
	stored, err := st.Get(ctx, s.Project().ID)
	if err != nil {
		t.Fatal(err)
	}
	if l, _ := stored.Layer(id); l == nil || l.Base().Mask != nil {
		t.Error("save wrote the uncommitted mask")
	}

	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		t.Fatalf("export while mask editing: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty archive")
	}
	if s.State() != EditingMask {
		t.Errorf("state after export = %v, want editing-mask", s.State())
	}

	// The edit survives both and can still be committed.
	if l, _ := s.Preview().Layer(id); l.Base().Mask == nil {
		t.Error("working mask lost")
	}
	if err := s.CommitMask(); err != nil {
		t.Fatal(err)
	}
	if l, _ := s.Project().Layer(id); l.Base().Mask == nil {
		t.Error("committed mask missing")
	}
	if !s.Dirty() {
		t.Error("commit after save should mark the session dirty")
	}
}

func TestExport(t *testing.T) {
	st := memory.New()
	profile := render.ExportProfile{Targets: []render.Target{
		{Name: "cover.png", Size: 32, Format: "png"},
		{Name: "thumb.jpg", Size: 16, Format: "jpeg", Quality: 0.8},
	}}
	s, err := Open(context.Background(), Deps{Store: st, Render: []render.Option{render.WithProfile(profile)}}, "gen-1", baseURL(t, 64, 64))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = s.AddText("Export")

	var buf bytes.Buffer
	if err := s.Export(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 4 {
		t.Errorf("archive has %d files, want 4", len(zr.File))
	}
	if s.State() != EditingLayer {
		t.Errorf("state after export = %v, want editing-layer", s.State())
	}

	out, err := s.Render(context.Background(), 20, render.PNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("preview width = %d", img.Bounds().Dx())
	}
	// The base is blue; the preview must be drawn from it.
	if _, _, b, _ := img.At(0, 0).RGBA(); b>>8 < 150 {
		t.Errorf("preview corner = %v, want the blue base", color.NRGBAModel.Convert(img.At(0, 0)))
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Loading, "loading"},
		{Ready, "ready"},
		{EditingLayer, "editing-layer"},
		{EditingMask, "editing-mask"},
		{Exporting, "exporting"},
		{Saving, "saving"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
