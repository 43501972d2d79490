package text

import (
	"strings"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/artboard"
)

// Block is a laid-out text layer in layer-local canonical pixels. The block
// is centered on the origin, which the layer matrix maps to the anchor.
type Block struct {
	Face       *Face
	Size       float64
	LineHeight float64 // line pitch in pixels
	Lines      []Line
}

// Line is one laid-out line.
type Line struct {
	Text   string
	Glyphs []PlacedGlyph

	// Width is the sum of glyph advances plus letter spacing.
	Width float64
	// X is the left edge; lines are centered, so X is -Width/2.
	X float64
	// Middle is the vertical center of the line box.
	Middle float64
	// Baseline is the alphabetic baseline.
	Baseline float64
}

// PlacedGlyph is a glyph at its final local position on the baseline.
type PlacedGlyph struct {
	ID sfnt.GlyphIndex
	X  float64
	Y  float64
}

// Rect is an axis-aligned rectangle in local coordinates.
type Rect struct {
	Min, Max artboard.Point
}

// Width returns the width of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the height of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Inset grows r by d on every side. Negative d shrinks it.
func (r Rect) Inset(d float64) Rect {
	return Rect{
		Min: artboard.Pt(r.Min.X-d, r.Min.Y-d),
		Max: artboard.Pt(r.Max.X+d, r.Max.Y+d),
	}
}

// Corners returns the corners of r clockwise from the top left.
func (r Rect) Corners() [4]artboard.Point {
	return [4]artboard.Point{
		r.Min,
		artboard.Pt(r.Max.X, r.Min.Y),
		r.Max,
		artboard.Pt(r.Min.X, r.Max.Y),
	}
}

var upper = cases.Upper(language.Und)

// Lines returns the display lines of a text layer: the uppercase transform
// applied when set, split on line breaks.
func Lines(l *artboard.TextLayer) []string {
	s := strings.ReplaceAll(l.Text, "\r\n", "\n")
	if l.Uppercase {
		s = upper.String(s)
	}
	return strings.Split(s, "\n")
}

// Layout shapes and positions the lines of l with face.
//
// Each glyph advances the pen by its shaped advance plus LetterSpacing.
// Lines are centered horizontally on the origin, and line i has its middle
// at (i - (n-1)/2) * FontSize * LineHeight so that the whole block is
// centered vertically.
func Layout(l *artboard.TextLayer, face *Face) *Block {
	size := l.FontSize
	if size <= 0 {
		size = artboard.DefaultFontSize
	}
	lineHeight := l.LineHeight
	if lineHeight <= 0 {
		lineHeight = artboard.DefaultLineHeight
	}
	pitch := size * lineHeight

	m := face.Metrics(size)
	// Distance from the middle of the em box down to the baseline.
	toBaseline := (m.Ascent - m.Descent) / 2

	texts := Lines(l)
	b := &Block{
		Face:       face,
		Size:       size,
		LineHeight: pitch,
		Lines:      make([]Line, len(texts)),
	}
	n := float64(len(texts))
	for i, s := range texts {
		shaped := Shape(face, s, size)
		placed := make([]PlacedGlyph, len(shaped))
		pen := 0.0
		for j, g := range shaped {
			placed[j] = PlacedGlyph{ID: g.ID, X: pen + g.XOffset, Y: g.YOffset}
			pen += g.Advance + l.LetterSpacing
		}

		middle := (float64(i) - (n-1)/2) * pitch
		x := -pen / 2
		for j := range placed {
			placed[j].X += x
			placed[j].Y += middle + toBaseline
		}
		b.Lines[i] = Line{
			Text:     s,
			Glyphs:   placed,
			Width:    pen,
			X:        x,
			Middle:   middle,
			Baseline: middle + toBaseline,
		}
	}
	return b
}

// Width returns the width of the widest line.
func (b *Block) Width() float64 {
	w := 0.0
	for _, ln := range b.Lines {
		w = max(w, ln.Width)
	}
	return w
}

// Height returns the block height, number of lines times the line pitch.
func (b *Block) Height() float64 {
	return float64(len(b.Lines)) * b.LineHeight
}

// Bounds returns the layout box of the block, centered on the origin.
func (b *Block) Bounds() Rect {
	w, h := b.Width(), b.Height()
	return Rect{
		Min: artboard.Pt(-w/2, -h/2),
		Max: artboard.Pt(w/2, h/2),
	}
}
