// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/text"
)

// ColorFunc returns the fill color of a text layer.
type ColorFunc func(l *artboard.TextLayer) color.NRGBA

// StoredColor is a ColorFunc that returns the layer's stored color.
func StoredColor(l *artboard.TextLayer) color.NRGBA {
	return artboard.ParseColorOr(l.Color, artboard.Black)
}

// Overlay returns an SVG document in canonical space holding the visible
// text layers as editable text. Each layer is a group transformed by
// translate(x y) rotate(r) scale(s) with one <text> element per line.
// Shadows and blur-behind patches are not represented. A nil colorFor uses
// the stored colors.
func Overlay(p *artboard.Project, colorFor ColorFunc) []byte {
	if colorFor == nil {
		colorFor = StoredColor
	}
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(p.BaseWidth, p.BaseHeight, 0, 0, p.BaseWidth, p.BaseHeight)

	for _, l := range p.Visible() {
		tl, ok := artboard.AsText(l)
		if !ok {
			continue
		}
		canvas.Gtransform(fmt.Sprintf("translate(%s %s) rotate(%s) scale(%s)",
			num(tl.X), num(tl.Y), num(tl.Rotation), num(tl.Scale)))

		attrs := textAttrs(tl, colorFor(tl))
		lines := text.Lines(tl)
		pitch := tl.FontSize * tl.LineHeight
		n := float64(len(lines))
		for i, line := range lines {
			middle := (float64(i) - (n-1)/2) * pitch
			lineAttrs := attrs
			if middle != 0 {
				lineAttrs = append([]string{attr("transform", "translate(0 "+num(middle)+")")}, attrs...)
			}
			canvas.Text(0, 0, line, lineAttrs...)
		}
		canvas.Gend()
	}
	canvas.End()
	return buf.Bytes()
}

func textAttrs(l *artboard.TextLayer, fill color.NRGBA) []string {
	attrs := []string{
		attr("font-family", l.FontFamily),
		attr("font-size", num(l.FontSize)),
		attr("font-weight", strconv.Itoa(l.FontWeight)),
		attr("fill", artboard.HexColor(fill)),
		attr("opacity", num(l.Opacity)),
		attr("text-anchor", "middle"),
		attr("dominant-baseline", "middle"),
	}
	if l.Italic {
		attrs = append(attrs, attr("font-style", "italic"))
	}
	if l.LetterSpacing != 0 {
		attrs = append(attrs, attr("letter-spacing", num(l.LetterSpacing)))
	}
	if ol := l.Outline; ol != nil && ol.Width > 0 {
		attrs = append(attrs,
			attr("stroke", artboard.HexColor(artboard.ParseColorOr(ol.Color, artboard.Black))),
			attr("stroke-width", num(ol.Width)),
			attr("paint-order", "stroke"),
		)
	}
	return attrs
}

var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// attr formats one attribute for svgo, which passes strings containing
// '=' through verbatim.
func attr(name, value string) string {
	return name + `="` + attrEscaper.Replace(value) + `"`
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
