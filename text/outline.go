package text

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/artboard"
)

// SegmentOp is the kind of an outline segment.
type SegmentOp uint8

// Outline segment kinds.
const (
	MoveTo SegmentOp = iota
	LineTo
	QuadTo
	CubeTo
)

// Segment is one outline command. Points are in pixels relative to the
// glyph origin on the baseline, with Y pointing down. MoveTo and LineTo use
// Args[0], QuadTo Args[0:2] and CubeTo Args[0:3].
type Segment struct {
	Op   SegmentOp
	Args [3]artboard.Point
}

// Outline returns the outline of glyph gid at size pixels per em.
// Glyphs without contours, such as spaces, return no segments.
func Outline(face *Face, gid sfnt.GlyphIndex, size float64) ([]Segment, error) {
	var buf sfnt.Buffer
	segs, err := face.sfnt.LoadGlyph(&buf, gid, fixed.Int26_6(size*64), nil)
	if err != nil {
		return nil, fmt.Errorf("text: glyph %d: %w", gid, err)
	}
	out := make([]Segment, len(segs))
	for i, s := range segs {
		var seg Segment
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			seg.Op = MoveTo
		case sfnt.SegmentOpLineTo:
			seg.Op = LineTo
		case sfnt.SegmentOpQuadTo:
			seg.Op = QuadTo
		case sfnt.SegmentOpCubeTo:
			seg.Op = CubeTo
		}
		for j := range seg.Args {
			seg.Args[j] = artboard.Pt(fixedToFloat(s.Args[j].X), fixedToFloat(s.Args[j].Y))
		}
		out[i] = seg
	}
	return out, nil
}
