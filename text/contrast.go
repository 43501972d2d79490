package text

import (
	"image"
	"image/color"

	"github.com/gogpu/artboard"
)

// SampleSize is the side of the canonical neighborhood sampled for
// auto-contrast.
const SampleSize = 40

// SampleLuma returns the mean luma 0.299R + 0.587G + 0.114B (0..255) of img
// over a size×size square of canonical space centered on (cx, cy). The
// square is shifted to stay inside the canonical bounds baseW×baseH and
// mapped onto img, which may have any resolution. An empty image samples
// as black.
func SampleLuma(img image.Image, cx, cy float64, baseW, baseH int, size float64) float64 {
	if img == nil || baseW <= 0 || baseH <= 0 {
		return 0
	}
	b := img.Bounds()
	if b.Empty() {
		return 0
	}

	size = min(size, float64(baseW), float64(baseH))
	x0 := clampRange(cx-size/2, 0, float64(baseW)-size)
	y0 := clampRange(cy-size/2, 0, float64(baseH)-size)

	kx := float64(b.Dx()) / float64(baseW)
	ky := float64(b.Dy()) / float64(baseH)
	r := image.Rect(
		b.Min.X+floor(x0*kx), b.Min.Y+floor(y0*ky),
		b.Min.X+ceil((x0+size)*kx), b.Min.Y+ceil((y0+size)*ky),
	).Intersect(b)
	if r.Empty() {
		r = image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Min.Y+1)
	}

	var sum float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			sum += 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		}
	}
	return sum / float64(r.Dx()*r.Dy())
}

// ContrastColor returns white on dark backgrounds (luma below 128) and
// black otherwise.
func ContrastColor(luma float64) color.NRGBA {
	if luma < 128 {
		return artboard.White
	}
	return artboard.Black
}

// FillColor returns the color a text layer is drawn with. With
// AutoContrast set and a base image available, the color is chosen from
// the base luminance under the anchor; the stored color is not changed.
func FillColor(l *artboard.TextLayer, base image.Image, baseW, baseH int) color.NRGBA {
	if l.AutoContrast && base != nil {
		return ContrastColor(SampleLuma(base, l.X, l.Y, baseW, baseH, SampleSize))
	}
	return artboard.ParseColorOr(l.Color, artboard.Black)
}

func clampRange(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}
