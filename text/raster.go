package text

import (
	"fmt"
	"image"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/vector"

	"github.com/gogpu/artboard"
)

// Coverage fills the glyph outlines of b, transformed by m, into an alpha
// mask covering clip. m maps layer-local coordinates to target pixels,
// typically artboard.LayerMatrix.
func (b *Block) Coverage(m artboard.Matrix, clip image.Rectangle) (*image.Alpha, error) {
	dst := image.NewAlpha(clip)
	if clip.Empty() {
		return dst, nil
	}
	z := newRasterizer(clip)
	p := pathSink{z: z, m: m, origin: artboard.Pt(float64(clip.Min.X), float64(clip.Min.Y))}

	outlines := make(map[sfnt.GlyphIndex][]Segment)
	drawn := false
	for _, ln := range b.Lines {
		for _, g := range ln.Glyphs {
			segs, ok := outlines[g.ID]
			if !ok {
				var err error
				segs, err = Outline(b.Face, g.ID, b.Size)
				if err != nil {
					return nil, fmt.Errorf("text: rasterize %q: %w", ln.Text, err)
				}
				outlines[g.ID] = segs
			}
			if len(segs) > 0 {
				p.glyph(segs, artboard.Pt(g.X, g.Y))
				drawn = true
			}
		}
	}
	if drawn {
		z.Draw(dst, clip, image.Opaque, image.Point{})
	}
	return dst, nil
}

// FillRect rasterizes the local rectangle r transformed by m into an alpha
// mask covering clip.
func FillRect(r Rect, m artboard.Matrix, clip image.Rectangle) *image.Alpha {
	dst := image.NewAlpha(clip)
	if clip.Empty() {
		return dst
	}
	z := newRasterizer(clip)
	p := pathSink{z: z, m: m, origin: artboard.Pt(float64(clip.Min.X), float64(clip.Min.Y))}
	c := r.Corners()
	p.moveTo(c[0])
	for _, pt := range c[1:] {
		p.lineTo(pt)
	}
	z.ClosePath()
	z.Draw(dst, clip, image.Opaque, image.Point{})
	return dst
}

// TargetBounds returns the pixel bounds of the local rectangle r under m.
func TargetBounds(r Rect, m artboard.Matrix) image.Rectangle {
	c := r.Corners()
	minP := m.TransformPoint(c[0])
	maxP := minP
	for _, pt := range c[1:] {
		q := m.TransformPoint(pt)
		minP.X, minP.Y = min(minP.X, q.X), min(minP.Y, q.Y)
		maxP.X, maxP.Y = max(maxP.X, q.X), max(maxP.Y, q.Y)
	}
	return image.Rect(floor(minP.X), floor(minP.Y), ceil(maxP.X), ceil(maxP.Y))
}

// floatMathWidth is the smallest rasterizer width for which
// vector.Rasterizer accumulates in floating point.
const floatMathWidth = 513

// newRasterizer returns a rasterizer for clip that always accumulates in
// floating point. vector.Rasterizer switches to fixed point below 513
// pixels, which changes edge coverage by a few levels, so a clip and a
// full surface would otherwise disagree. Only the clip's columns are drawn.
func newRasterizer(clip image.Rectangle) *vector.Rasterizer {
	w, h := clip.Dx(), clip.Dy()
	if w < floatMathWidth && h < floatMathWidth {
		w = floatMathWidth
	}
	return vector.NewRasterizer(w, h)
}

// pathSink feeds transformed outline segments into a rasterizer.
type pathSink struct {
	z      *vector.Rasterizer
	m      artboard.Matrix
	origin artboard.Point
	open   bool
}

func (p *pathSink) pt(q artboard.Point) (float32, float32) {
	t := p.m.TransformPoint(q).Sub(p.origin)
	return float32(t.X), float32(t.Y)
}

func (p *pathSink) moveTo(q artboard.Point) {
	if p.open {
		p.z.ClosePath()
	}
	x, y := p.pt(q)
	p.z.MoveTo(x, y)
	p.open = true
}

func (p *pathSink) lineTo(q artboard.Point) {
	x, y := p.pt(q)
	p.z.LineTo(x, y)
}

func (p *pathSink) glyph(segs []Segment, at artboard.Point) {
	for _, s := range segs {
		switch s.Op {
		case MoveTo:
			p.moveTo(s.Args[0].Add(at))
		case LineTo:
			p.lineTo(s.Args[0].Add(at))
		case QuadTo:
			bx, by := p.pt(s.Args[0].Add(at))
			cx, cy := p.pt(s.Args[1].Add(at))
			p.z.QuadTo(bx, by, cx, cy)
		case CubeTo:
			bx, by := p.pt(s.Args[0].Add(at))
			cx, cy := p.pt(s.Args[1].Add(at))
			dx, dy := p.pt(s.Args[2].Add(at))
			p.z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if p.open {
		p.z.ClosePath()
		p.open = false
	}
}

func floor(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}
	return i
}

func ceil(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
