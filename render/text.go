// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/internal/filter"
	"github.com/gogpu/artboard/text"
)

// drawText draws a text layer onto surface in four passes: blur-behind
// backdrop, shadow, outline and fill. backdrop is the composite so far,
// which the blur-behind patch samples.
func (r *Renderer) drawText(ctx context.Context, surface, backdrop *image.RGBA, p *artboard.Project, l *artboard.TextLayer, base image.Image, m artboard.Mapping) error {
	face, err := r.fonts.Resolve(ctx, l.FontFamily, l.FontWeight, l.Italic)
	if err != nil {
		return err
	}
	block := text.Layout(l, face)
	xf := artboard.LayerMatrix(l, m)
	bounds := surface.Bounds()

	cov, err := block.Coverage(xf, bounds)
	if err != nil {
		return err
	}

	if bb := l.BlurBehind; bb != nil && bb.Enabled {
		drawBlurBehind(surface, backdrop, block.Bounds(), xf, bb, blurScale(m))
	}

	if sh := l.Shadow; sh != nil {
		c := artboard.ParseColorOr(sh.Color, artboard.Black)
		if c.A > 0 {
			dx := int(math.Round(sh.OffsetX * m.SX()))
			dy := int(math.Round(sh.OffsetY * m.SY()))
			// Canvas shadow blur is twice the Gaussian standard deviation.
			shadow := filter.Shadow(cov, dx, dy, sh.Blur/2*blurScale(m), c)
			draw.Draw(surface, bounds, shadow, bounds.Min, draw.Over)
		}
	}

	if ol := l.Outline; ol != nil && ol.Width > 0 {
		c := artboard.ParseColorOr(ol.Color, artboard.Black)
		if c.A > 0 {
			stroke := filter.Dilate(cov, ol.Width/2*xf.ScaleFactor())
			draw.DrawMask(surface, bounds, image.NewUniform(c), image.Point{}, stroke, bounds.Min, draw.Over)
		}
	}

	fill := textColor(l, base, p)
	draw.DrawMask(surface, bounds, image.NewUniform(fill), image.Point{}, cov, bounds.Min, draw.Over)
	return nil
}

// drawBlurBehind draws a blurred copy of backdrop through a feathered patch
// covering the text bounds grown by the spread.
func drawBlurBehind(surface, backdrop *image.RGBA, local text.Rect, xf artboard.Matrix, bb *artboard.BlurBehind, scale float64) {
	patch := local.Inset(bb.Spread)
	if patch.Width() <= 0 || patch.Height() <= 0 {
		return
	}
	feather := math.Max(0, bb.Fade) * xf.ScaleFactor()
	radius := math.Max(0, bb.Intensity) * scale

	pad := int(math.Ceil(3*(feather+radius))) + 1
	area := text.TargetBounds(patch, xf).Inset(-pad).Intersect(surface.Bounds())
	if area.Empty() {
		return
	}

	shape := text.FillRect(patch, xf, area)
	filter.BlurAlpha(shape, feather)

	blurred := image.NewRGBA(area)
	draw.Draw(blurred, area, backdrop, area.Min, draw.Src)
	filter.Blur{Radius: radius}.Apply(blurred)

	draw.DrawMask(surface, area, blurred, area.Min, shape, area.Min, draw.Over)
}

// textColor is the fill color of l as drawn by the renderer.
func textColor(l *artboard.TextLayer, base image.Image, p *artboard.Project) color.NRGBA {
	return text.FillColor(l, base, p.BaseWidth, p.BaseHeight)
}
