package text

import (
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Glyph is one shaped glyph. Advances and offsets are in pixels at the
// shaping size; YOffset is positive downward.
type Glyph struct {
	ID      sfnt.GlyphIndex
	Cluster int
	Advance float64
	XOffset float64
	YOffset float64
}

// HarfbuzzShaper is not safe for concurrent use, so instances are pooled.
var shaperPool = sync.Pool{
	New: func() any {
		return &shaping.HarfbuzzShaper{}
	},
}

// Shape shapes a single line of left-to-right text with face at size
// pixels per em. Kerning and ligatures are applied.
func Shape(face *Face, s string, size float64) []Glyph {
	runes := []rune(s)
	if len(runes) == 0 || face == nil {
		return nil
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		// font.NewFace is cheap; faces carry per-call state.
		Face:     gotext.NewFace(face.shaper),
		Size:     fixed.Int26_6(size * 64),
		Script:   detectScript(runes),
		Language: language.NewLanguage("en"),
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	shaperPool.Put(hb)

	glyphs := make([]Glyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = Glyph{
			ID:      sfnt.GlyphIndex(g.GlyphID),
			Cluster: g.TextIndex(),
			Advance: fixedToFloat(g.Advance),
			XOffset: fixedToFloat(g.XOffset),
			YOffset: -fixedToFloat(g.YOffset),
		}
	}
	return glyphs
}

// detectScript returns the script of the first letter. Mixed-script lines
// are shaped with that script.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return language.LookupScript(r)
		}
	}
	return language.Latin
}
