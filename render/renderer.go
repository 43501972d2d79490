// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/assets"
	"github.com/gogpu/artboard/internal/filter"
	"github.com/gogpu/artboard/text"
)

// MaxSize bounds the side of a rendered surface.
const MaxSize = 8192

// Option configures a Renderer.
//
// Example:
//
//	r := render.New(
//	    render.WithAssets(loader),
//	    render.WithFonts(registry),
//	)
type Option func(*rendererOptions)

type rendererOptions struct {
	assets  assets.Source
	fonts   *text.Registry
	profile ExportProfile
	seed    *uint64
	base    image.Image
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		profile: DefaultProfile(),
	}
}

// WithAssets sets the source used for the base image and image layers.
// The default is an assets.Loader with default options.
func WithAssets(src assets.Source) Option {
	return func(o *rendererOptions) {
		o.assets = src
	}
}

// WithFonts sets the font registry. The default is text.DefaultRegistry.
func WithFonts(r *text.Registry) Option {
	return func(o *rendererOptions) {
		o.fonts = r
	}
}

// WithProfile sets the export profile used by Export.
func WithProfile(p ExportProfile) Option {
	return func(o *rendererOptions) {
		o.profile = p
	}
}

// WithGrainSeed fixes the grain seed. By default the seed is derived from
// the project id, so a project always renders the same grain.
func WithGrainSeed(seed uint64) Option {
	return func(o *rendererOptions) {
		o.seed = &seed
	}
}

// WithBaseImage supplies an already decoded base image. The base asset URL
// of rendered projects is then not loaded.
func WithBaseImage(img image.Image) Option {
	return func(o *rendererOptions) {
		o.base = img
	}
}

// Renderer renders projects. A Renderer is safe for concurrent use if its
// asset source and font registry are.
type Renderer struct {
	assets  assets.Source
	fonts   *text.Registry
	profile ExportProfile
	seed    *uint64
	base    image.Image
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.assets == nil {
		o.assets = assets.NewLoader()
	}
	if o.fonts == nil {
		o.fonts = text.DefaultRegistry()
	}
	return &Renderer{
		assets:  o.assets,
		fonts:   o.fonts,
		profile: o.profile,
		seed:    o.seed,
		base:    o.base,
	}
}

// Profile returns the export profile of r.
func (r *Renderer) Profile() ExportProfile { return r.profile }

// Render renders p to a size×size raster and encodes it. quality applies
// to JPEG, see Encode.
func (r *Renderer) Render(ctx context.Context, p *artboard.Project, size int, format Format, quality float64) ([]byte, error) {
	if format != PNG && format != JPEG {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	img, err := r.Composite(ctx, p, size, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Composite renders p to a new w×h image.
func (r *Renderer) Composite(ctx context.Context, p *artboard.Project, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 || w > MaxSize || h > MaxSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	base, err := r.baseImage(ctx, p)
	if err != nil {
		return nil, err
	}

	m := artboard.NewMapping(p, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	drawBase(dst, base, p.Filters, blurScale(m))

	for _, l := range p.Visible() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.drawLayer(ctx, dst, p, l, base, m); err != nil {
			return nil, &LayerError{LayerID: l.Base().ID, Err: err}
		}
	}

	filter.PostEffects(dst, p.Filters, r.grainSeed(p))

	artboard.Logger().Debug("render: composite",
		"project", p.ID,
		"size", fmt.Sprintf("%dx%d", w, h),
		"layers", len(p.Layers),
		"elapsed", time.Since(start))
	return dst, nil
}

func (r *Renderer) baseImage(ctx context.Context, p *artboard.Project) (image.Image, error) {
	if r.base != nil {
		return r.base, nil
	}
	img, err := r.assets.Load(ctx, p.BaseAssetURL)
	if err != nil {
		return nil, fmt.Errorf("render: base image: %w", err)
	}
	return img, nil
}

// drawBase draws base stretched over dst and runs the color filters and
// blur over it.
func drawBase(dst *image.RGBA, base image.Image, f artboard.Filters, scale float64) {
	if base == nil || base.Bounds().Empty() {
		return
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), base, base.Bounds(), draw.Src, nil)
	filter.ApplyChain(dst, filter.Chain(f, scale))
}

func (r *Renderer) drawLayer(ctx context.Context, dst *image.RGBA, p *artboard.Project, l artboard.Layer, base image.Image, m artboard.Mapping) error {
	b := l.Base()
	if b.Opacity <= 0 {
		return nil
	}

	surface := image.NewRGBA(dst.Bounds())
	switch l := l.(type) {
	case *artboard.TextLayer:
		if err := r.drawText(ctx, surface, dst, p, l, base, m); err != nil {
			return err
		}
	case *artboard.ImageLayer:
		if err := r.drawImage(ctx, surface, l, m); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported layer %T", l)
	}

	composite(dst, surface, layerMask(b, dst.Bounds()))
	artboard.Logger().Debug("render: layer", "id", b.ID, "kind", string(l.Kind()), "z", b.ZIndex)
	return nil
}

// layerMask returns the alpha the layer surface is multiplied by: the mask
// coverage scaled to the target, times the opacity.
func layerMask(b *artboard.LayerBase, bounds image.Rectangle) image.Image {
	opacity := math.Max(0, math.Min(1, b.Opacity))
	if b.Mask == nil || b.Mask.Width() == 0 || b.Mask.Height() == 0 {
		return image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	}
	cov := b.Mask.Coverage()
	scaled := cov
	if cov.Rect.Size() == bounds.Size() {
		scaled.Rect = bounds
	} else {
		scaled = image.NewAlpha(bounds)
		draw.ApproxBiLinear.Scale(scaled, bounds, cov, cov.Bounds(), draw.Src, nil)
	}
	if opacity < 1 {
		for i, v := range scaled.Pix {
			scaled.Pix[i] = uint8(math.Round(float64(v) * opacity))
		}
	}
	return scaled
}

// composite draws src over dst through mask.
func composite(dst, src *image.RGBA, mask image.Image) {
	r := dst.Bounds()
	draw.DrawMask(dst, r, src, r.Min, mask, r.Min, draw.Over)
}

func (r *Renderer) drawImage(ctx context.Context, surface *image.RGBA, l *artboard.ImageLayer, m artboard.Mapping) error {
	img, err := r.assets.Load(ctx, l.Src)
	if err != nil {
		return err
	}
	sb := img.Bounds()
	if sb.Empty() {
		return nil
	}
	// Natural size in canonical pixels, centered on the anchor.
	w, h := float64(sb.Dx()), float64(sb.Dy())
	xf := artboard.LayerMatrix(l, m).
		Multiply(artboard.Translate(-w/2-float64(sb.Min.X), -h/2-float64(sb.Min.Y)))
	draw.BiLinear.Transform(surface, xf.Aff3(), img, sb, draw.Over, nil)
	return nil
}

// blurScale converts canonical blur radii to target pixels.
func blurScale(m artboard.Mapping) float64 {
	return math.Sqrt(m.SX() * m.SY())
}

func (r *Renderer) grainSeed(p *artboard.Project) uint64 {
	if r.seed != nil {
		return *r.seed
	}
	h := fnv.New64a()
	h.Write([]byte(p.ID))
	return h.Sum64()
}
