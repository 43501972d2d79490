package artboard

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Common colors.
var (
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Black       = color.NRGBA{A: 255}
	Transparent = color.NRGBA{}
)

// ParseColor parses a CSS color string ("#fff", "#ffcc00", "#ffcc0080",
// "rgb(…)", "rgba(…)", "hsl(…)" or a named color) into straight-alpha RGBA.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Transparent, fmt.Errorf("artboard: empty color")
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return Transparent, fmt.Errorf("artboard: parse color %q: %w", s, err)
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// ParseColorOr is like ParseColor but returns fallback on error. It is
// intended for stored layer colors that were validated on write.
func ParseColorOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		Logger().Debug("artboard: invalid color, using fallback", "color", s, "err", err)
		return fallback
	}
	return c
}

// HexColor formats a color as "#rrggbb", or "#rrggbbaa" when not opaque.
func HexColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
