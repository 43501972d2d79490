package text

import (
	"math"
	"testing"

	"github.com/gogpu/artboard"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestShape(t *testing.T) {
	face := goFace(t)
	glyphs := Shape(face, "Hello", 32)
	if len(glyphs) != 5 {
		t.Fatalf("Shape(Hello) = %d glyphs, want 5", len(glyphs))
	}
	for i, g := range glyphs {
		if g.Advance <= 0 {
			t.Errorf("glyph %d advance = %v", i, g.Advance)
		}
		if g.ID == 0 {
			t.Errorf("glyph %d is .notdef", i)
		}
	}
	if Shape(face, "", 32) != nil {
		t.Error("empty text should shape to nil")
	}
}

func TestShapeScalesWithSize(t *testing.T) {
	face := goFace(t)
	width := func(size float64) float64 {
		w := 0.0
		for _, g := range Shape(face, "Resolution", size) {
			w += g.Advance
		}
		return w
	}
	if r := width(64) / width(32); math.Abs(r-2) > 0.02 {
		t.Errorf("width ratio = %v, want 2", r)
	}
}

func TestLines(t *testing.T) {
	l := artboard.NewTextLayer("Hello\r\nworld", 0, 0)
	if got := Lines(l); len(got) != 2 || got[0] != "Hello" || got[1] != "world" {
		t.Errorf("Lines = %q", got)
	}
	l.Uppercase = true
	if got := Lines(l); got[0] != "HELLO" || got[1] != "WORLD" {
		t.Errorf("uppercase Lines = %q", got)
	}
	l.Text = "straße"
	if got := Lines(l); got[0] != "STRASSE" {
		t.Errorf("uppercase ß = %q, want STRASSE", got[0])
	}
}

func TestLayoutLetterSpacing(t *testing.T) {
	face := goFace(t)
	l := artboard.NewTextLayer("Spacing", 0, 0)

	var sum float64
	for _, g := range Shape(face, "Spacing", l.FontSize) {
		sum += g.Advance
	}
	base := Layout(l, face)
	if !near(base.Lines[0].Width, sum) {
		t.Errorf("letterSpacing 0 width = %v, want shaped advance sum %v", base.Lines[0].Width, sum)
	}

	l.LetterSpacing = 4
	spaced := Layout(l, face)
	want := sum + 4*float64(len(spaced.Lines[0].Glyphs))
	if !near(spaced.Lines[0].Width, want) {
		t.Errorf("spaced width = %v, want %v", spaced.Lines[0].Width, want)
	}
	if spaced.Lines[0].Width <= base.Lines[0].Width {
		t.Error("letter spacing must widen the line")
	}

	// Glyph pitch grows by exactly the spacing.
	g0, g1 := base.Lines[0].Glyphs, spaced.Lines[0].Glyphs
	d0 := g0[1].X - g0[0].X
	d1 := g1[1].X - g1[0].X
	if !near(d1-d0, 4) {
		t.Errorf("pitch difference = %v, want 4", d1-d0)
	}
}

func TestLayoutCentering(t *testing.T) {
	face := goFace(t)
	l := artboard.NewTextLayer("one\nlonger line\nthree", 0, 0)
	l.FontSize = 40
	l.LineHeight = 1.5
	b := Layout(l, face)

	if len(b.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(b.Lines))
	}
	pitch := 60.0
	if !near(b.LineHeight, pitch) {
		t.Errorf("LineHeight = %v, want %v", b.LineHeight, pitch)
	}
	for i, want := range []float64{-pitch, 0, pitch} {
		if !near(b.Lines[i].Middle, want) {
			t.Errorf("line %d middle = %v, want %v", i, b.Lines[i].Middle, want)
		}
		if !near(b.Lines[i].X, -b.Lines[i].Width/2) {
			t.Errorf("line %d not centered: X = %v, width %v", i, b.Lines[i].X, b.Lines[i].Width)
		}
		if b.Lines[i].Baseline <= b.Lines[i].Middle {
			t.Errorf("line %d baseline %v should be below middle %v", i, b.Lines[i].Baseline, b.Lines[i].Middle)
		}
	}
	if !near(b.Height(), 3*pitch) {
		t.Errorf("Height = %v, want %v", b.Height(), 3*pitch)
	}
	bounds := b.Bounds()
	if !near(bounds.Min.Y, -90) || !near(bounds.Max.Y, 90) {
		t.Errorf("Bounds = %+v", bounds)
	}
	if !near(bounds.Width(), b.Lines[1].Width) {
		t.Errorf("bounds width %v, want widest line %v", bounds.Width(), b.Lines[1].Width)
	}
}

func TestLayoutSingleLineMiddleAtOrigin(t *testing.T) {
	b := Layout(artboard.NewTextLayer("Hi", 0, 0), goFace(t))
	if !near(b.Lines[0].Middle, 0) {
		t.Errorf("single line middle = %v, want 0", b.Lines[0].Middle)
	}
}

func TestLayoutEmptyLine(t *testing.T) {
	b := Layout(artboard.NewTextLayer("a\n\nb", 0, 0), goFace(t))
	if len(b.Lines) != 3 || len(b.Lines[1].Glyphs) != 0 || b.Lines[1].Width != 0 {
		t.Errorf("empty middle line = %+v", b.Lines[1])
	}
}

func TestRectInset(t *testing.T) {
	r := Rect{Min: artboard.Pt(-10, -5), Max: artboard.Pt(10, 5)}.Inset(2)
	if r.Width() != 24 || r.Height() != 14 {
		t.Errorf("inset rect %+v", r)
	}
}
