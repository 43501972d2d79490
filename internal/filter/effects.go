package filter

import (
	"image"
	"math"
	"math/rand/v2"
)

// Vignette inner radius, as a fraction of the center-to-corner distance,
// inside which the overlay is fully transparent.
const vignetteInner = 0.35

// maxGrainAlpha is the overlay opacity of grain at 100%.
const maxGrainAlpha = 0.3

// Vignette darkens img toward its corners with a black source-over overlay.
// strength is in percent: 0 leaves img untouched, 100 is fully opaque black
// at the corners. The falloff is computed in normalized coordinates, so the
// effect looks the same at every output size.
func Vignette(img *image.RGBA, strength float64) {
	if img == nil || strength <= 0 {
		return
	}
	s := math.Min(strength, 100) / 100
	w, h := img.Rect.Dx(), img.Rect.Dy()
	corner := math.Sqrt(0.5)

	for y := 0; y < h; y++ {
		ny := (float64(y)+0.5)/float64(h) - 0.5
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			nx := (float64(x)+0.5)/float64(w) - 0.5
			d := math.Sqrt(nx*nx+ny*ny) / corner
			if d <= vignetteInner {
				continue
			}
			t := math.Min((d-vignetteInner)/(1-vignetteInner), 1)
			a := float32(s * t * t)
			overlay(row[x*4:x*4+4], 0, a)
		}
	}
}

// Grain overlays uniform monochrome noise on img. amount is in percent; the
// overlay opacity is 0.3*amount/100. The noise is fully determined by seed.
func Grain(img *image.RGBA, amount float64, seed uint64) {
	if img == nil || amount <= 0 {
		return
	}
	a := float32(maxGrainAlpha * math.Min(amount, 100) / 100)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			v := float32(rng.IntN(256))
			overlay(row[x*4:x*4+4], v, a)
		}
	}
}

// overlay composites an opaque gray value v with opacity a source-over onto
// one premultiplied pixel.
func overlay(px []uint8, v, a float32) {
	inv := 1 - a
	src := v * a
	px[0] = clampUint8(src + float32(px[0])*inv)
	px[1] = clampUint8(src + float32(px[1])*inv)
	px[2] = clampUint8(src + float32(px[2])*inv)
	px[3] = clampUint8(255*a + float32(px[3])*inv)
}
