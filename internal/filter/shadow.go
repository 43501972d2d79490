package filter

import (
	"image"
	"image/color"
)

// Shadow builds a drop shadow from glyph coverage:
//  1. shift the coverage by (dx, dy)
//  2. blur it with the given radius
//  3. colorize it with c
//
// The result has the bounds of coverage and is premultiplied, ready to be
// drawn source-over beneath the glyphs.
func Shadow(coverage *image.Alpha, dx, dy int, radius float64, c color.NRGBA) *image.RGBA {
	shifted := Shift(coverage, dx, dy)
	BlurAlpha(shifted, radius)
	return Colorize(shifted, c)
}

// Shift returns a copy of src translated by (dx, dy) within the same
// bounds. Pixels shifted in from outside are transparent.
func Shift(src *image.Alpha, dx, dy int) *image.Alpha {
	dst := image.NewAlpha(src.Rect)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		sy := y - dy
		if sy < 0 || sy >= h {
			continue
		}
		for x := 0; x < w; x++ {
			sx := x - dx
			if sx < 0 || sx >= w {
				continue
			}
			dst.Pix[y*dst.Stride+x] = src.Pix[sy*src.Stride+sx]
		}
	}
	return dst
}

// Colorize returns a premultiplied image of color c masked by coverage.
func Colorize(coverage *image.Alpha, c color.NRGBA) *image.RGBA {
	dst := image.NewRGBA(coverage.Rect)
	w, h := coverage.Rect.Dx(), coverage.Rect.Dy()
	ca := float32(c.A) / 255
	for y := 0; y < h; y++ {
		src := coverage.Pix[y*coverage.Stride : y*coverage.Stride+w]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x, v := range src {
			if v == 0 {
				continue
			}
			a := float32(v) / 255 * ca
			row[x*4+0] = clampUint8(float32(c.R) * a)
			row[x*4+1] = clampUint8(float32(c.G) * a)
			row[x*4+2] = clampUint8(float32(c.B) * a)
			row[x*4+3] = clampUint8(255 * a)
		}
	}
	return dst
}
