package filter

import (
	"image"

	"github.com/gogpu/artboard"
)

// Chain returns the pre-composite operations for f, in order: brightness,
// contrast, saturate, hue-rotate and, only when f.Blur > 0, a Gaussian
// blur. scale converts the canonical blur radius to target pixels.
// Neutral knobs are omitted, so neutral filters yield an empty chain.
func Chain(f artboard.Filters, scale float64) []Filter {
	f = f.Clamp()
	var chain []Filter
	if f.Brightness != 100 {
		chain = append(chain, Brightness(f.Brightness/100))
	}
	if f.Contrast != 100 {
		chain = append(chain, Contrast(f.Contrast/100))
	}
	if f.Saturation != 100 {
		chain = append(chain, Saturate(f.Saturation/100))
	}
	if f.Hue != 0 {
		chain = append(chain, HueRotate(f.Hue))
	}
	if f.Blur > 0 {
		chain = append(chain, Blur{Radius: f.Blur * scale})
	}
	return chain
}

// ApplyChain runs every filter of chain over img in order.
func ApplyChain(img *image.RGBA, chain []Filter) {
	for _, f := range chain {
		f.Apply(img)
	}
}

// PostEffects applies the post-composite overlays of f to img: vignette,
// then grain seeded by seed.
func PostEffects(img *image.RGBA, f artboard.Filters, seed uint64) {
	f = f.Clamp()
	Vignette(img, f.Vignette)
	Grain(img, f.Grain, seed)
}
