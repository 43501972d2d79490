// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/xml"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/artboard"
)

func overlayProject(t *testing.T, layers ...artboard.Layer) *artboard.Project {
	t.Helper()
	p := artboard.NewProject("g", "", 1024, 768)
	ops := make([]artboard.Op, len(layers))
	for i, l := range layers {
		ops[i] = artboard.AddLayer{Layer: l}
	}
	out, err := artboard.Apply(p, ops...)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// svgDoc is the subset of an SVG document the tests inspect.
type svgDoc struct {
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Groups []struct {
		Transform string `xml:"transform,attr"`
		Texts     []struct {
			Value      string `xml:",chardata"`
			Fill       string `xml:"fill,attr"`
			Family     string `xml:"font-family,attr"`
			Size       string `xml:"font-size,attr"`
			Anchor     string `xml:"text-anchor,attr"`
			Transform  string `xml:"transform,attr"`
			Stroke     string `xml:"stroke,attr"`
			FontStyle  string `xml:"font-style,attr"`
			LetterSpac string `xml:"letter-spacing,attr"`
		} `xml:"text"`
	} `xml:"g"`
}

func parseOverlay(t *testing.T, data []byte) svgDoc {
	t.Helper()
	var doc svgDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("overlay is not valid XML: %v\n%s", err, data)
	}
	return doc
}

func TestOverlayText(t *testing.T) {
	l := artboard.NewTextLayer("Hello", 512, 300)
	l.Rotation = 15
	l.Scale = 1.5
	doc := parseOverlay(t, Overlay(overlayProject(t, l), nil))

	if doc.Width != "1024" || doc.Height != "768" {
		t.Errorf("size = %sx%s, want canonical 1024x768", doc.Width, doc.Height)
	}
	if len(doc.Groups) != 1 || len(doc.Groups[0].Texts) != 1 {
		t.Fatalf("groups = %+v", doc.Groups)
	}
	g := doc.Groups[0]
	if g.Transform != "translate(512 300) rotate(15) scale(1.5)" {
		t.Errorf("transform = %q", g.Transform)
	}
	txt := g.Texts[0]
	if txt.Value != "Hello" {
		t.Errorf("text = %q, want Hello", txt.Value)
	}
	if txt.Fill != "#ffffff" || txt.Family != "sans-serif" || txt.Size != "32" || txt.Anchor != "middle" {
		t.Errorf("attributes = %+v", txt)
	}
}

func TestOverlayUppercase(t *testing.T) {
	l := artboard.NewTextLayer("Hello", 10, 10)
	l.Uppercase = true
	doc := parseOverlay(t, Overlay(overlayProject(t, l), nil))
	if got := doc.Groups[0].Texts[0].Value; got != "HELLO" {
		t.Errorf("text = %q, want HELLO", got)
	}
}

func TestOverlayEscapes(t *testing.T) {
	l := artboard.NewTextLayer(`<b>&"x"`, 10, 10)
	l.FontFamily = `"Playfair Display", serif`
	data := Overlay(overlayProject(t, l), nil)
	if strings.Contains(string(data), "<b>") {
		t.Error("text not escaped")
	}
	doc := parseOverlay(t, data)
	txt := doc.Groups[0].Texts[0]
	if txt.Value != `<b>&"x"` {
		t.Errorf("text = %q", txt.Value)
	}
	if txt.Family != `"Playfair Display", serif` {
		t.Errorf("family = %q", txt.Family)
	}
}

func TestOverlayMultiline(t *testing.T) {
	l := artboard.NewTextLayer("one\ntwo\nthree", 100, 100)
	l.FontSize = 20
	l.LineHeight = 1.5
	doc := parseOverlay(t, Overlay(overlayProject(t, l), nil))
	texts := doc.Groups[0].Texts
	if len(texts) != 3 {
		t.Fatalf("lines = %d, want 3", len(texts))
	}
	want := []string{"translate(0 -30)", "", "translate(0 30)"}
	for i, tx := range texts {
		if tx.Transform != want[i] {
			t.Errorf("line %d transform = %q, want %q", i, tx.Transform, want[i])
		}
	}
}

func TestOverlaySkipsHiddenAndImages(t *testing.T) {
	hidden := artboard.NewTextLayer("secret", 10, 10)
	hidden.Visible = false
	img := artboard.NewImageLayer("data:image/png;base64,AAAA", 10, 10)
	shown := artboard.NewTextLayer("shown", 10, 10)
	data := Overlay(overlayProject(t, hidden, img, shown), nil)
	if strings.Contains(string(data), "secret") {
		t.Error("hidden layer in overlay")
	}
	if len(parseOverlay(t, data).Groups) != 1 {
		t.Error("overlay should hold only the visible text layer")
	}
}

func TestOverlayStyleAttributes(t *testing.T) {
	l := artboard.NewTextLayer("Styled", 10, 10)
	l.Italic = true
	l.LetterSpacing = 2.5
	l.Outline = &artboard.Outline{Width: 3, Color: "red"}
	l.AutoContrast = true
	doc := parseOverlay(t, Overlay(overlayProject(t, l), func(*artboard.TextLayer) color.NRGBA {
		return artboard.Black
	}))
	txt := doc.Groups[0].Texts[0]
	if txt.FontStyle != "italic" || txt.LetterSpac != "2.5" || txt.Stroke != "#ff0000" {
		t.Errorf("style attributes = %+v", txt)
	}
	if txt.Fill != "#000000" {
		t.Errorf("fill = %q, want color from colorFor", txt.Fill)
	}
}
