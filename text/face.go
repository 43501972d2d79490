package text

import (
	"bytes"
	"strings"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Style selects a face within a family.
type Style struct {
	Bold   bool
	Italic bool
}

// String returns the provider variant name of the style.
func (s Style) String() string {
	switch {
	case s.Bold && s.Italic:
		return "bolditalic"
	case s.Bold:
		return "bold"
	case s.Italic:
		return "italic"
	default:
		return "regular"
	}
}

// StyleFor maps a CSS font weight and italic flag to a Style.
// Weights of 600 and above are bold.
func StyleFor(weight int, italic bool) Style {
	return Style{Bold: weight >= 600, Italic: italic}
}

// Face is one parsed font file. It holds the sfnt font used for outlines
// and metrics and the go-text font used for shaping. Face is safe for
// concurrent use.
type Face struct {
	family string
	style  Style
	sfnt   *opentype.Font
	shaper *gotext.Font
}

// ParseFace parses TrueType or OpenType data.
func ParseFace(family string, data []byte) (*Face, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, &FontError{Family: family, Err: err}
	}
	gf, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &FontError{Family: family, Err: err}
	}
	f := &Face{
		family: family,
		sfnt:   sf,
		shaper: gf.Font,
	}
	f.style = f.detectStyle()
	return f, nil
}

// Family returns the family the face is registered under.
func (f *Face) Family() string { return f.family }

// Style returns the style of the face.
func (f *Face) Style() Style { return f.style }

// Name returns the family name stored in the font, or "" if absent.
func (f *Face) Name() string {
	name, err := f.sfnt.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

func (f *Face) detectStyle() Style {
	sub, err := f.sfnt.Name(nil, sfnt.NameIDSubfamily)
	if err != nil {
		return Style{}
	}
	sub = strings.ToLower(sub)
	return Style{
		Bold:   strings.Contains(sub, "bold") || strings.Contains(sub, "black") || strings.Contains(sub, "heavy"),
		Italic: strings.Contains(sub, "italic") || strings.Contains(sub, "oblique"),
	}
}

// Metrics are vertical font metrics in pixels at a given size.
// Descent is positive below the baseline.
type Metrics struct {
	Ascent  float64
	Descent float64
	LineGap float64
}

// Metrics returns the unhinted metrics of the face at size pixels per em.
func (f *Face) Metrics(size float64) Metrics {
	var buf sfnt.Buffer
	m, err := f.sfnt.Metrics(&buf, fixed.Int26_6(size*64), font.HintingNone)
	if err != nil {
		return Metrics{Ascent: size * 0.8, Descent: size * 0.2}
	}
	asc := fixedToFloat(m.Ascent)
	desc := fixedToFloat(m.Descent)
	return Metrics{
		Ascent:  asc,
		Descent: desc,
		LineGap: fixedToFloat(m.Height) - asc - desc,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
