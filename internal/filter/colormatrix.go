package filter

import (
	"image"
	"math"
)

// Filter transforms a premultiplied RGBA image in place.
type Filter interface {
	Apply(img *image.RGBA)
}

// ColorMatrix is a 4x5 color transformation matrix in row-major order:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// Channels are straight-alpha values in [0, 255]; the fifth column is a
// bias in the same units.
type ColorMatrix [20]float32

// IdentityMatrix returns the matrix that leaves colors unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness scales RGB by amount (CSS brightness()).
// 0 is black, 1 unchanged, 2 twice as bright.
func Brightness(amount float64) ColorMatrix {
	f := float32(amount)
	return ColorMatrix{
		f, 0, 0, 0, 0,
		0, f, 0, 0, 0,
		0, 0, f, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales RGB around mid gray (CSS contrast()).
// 0 is uniform gray, 1 unchanged.
func Contrast(amount float64) ColorMatrix {
	f := float32(amount)
	off := float32(127.5 * (1 - amount))
	return ColorMatrix{
		f, 0, 0, 0, off,
		0, f, 0, 0, off,
		0, 0, f, 0, off,
		0, 0, 0, 1, 0,
	}
}

// Rec. 709 luminance weights used by saturate() and hue-rotate().
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Saturate blends between grayscale (0) and the original colors (1)
// (CSS saturate()). Values above 1 oversaturate.
func Saturate(amount float64) ColorMatrix {
	s := float32(amount)
	inv := 1 - s
	return ColorMatrix{
		lumR*inv + s, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + s, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// HueRotate rotates hue by the given angle in degrees (CSS hue-rotate()).
func HueRotate(degrees float64) ColorMatrix {
	rad := degrees * math.Pi / 180
	c := float32(math.Cos(rad))
	s := float32(math.Sin(rad))

	const (
		r = 0.213
		g = 0.715
		b = 0.072
	)
	return ColorMatrix{
		r + c*(1-r) - s*r, g - c*g - s*g, b - c*b + s*(1-b), 0, 0,
		r - c*r + s*0.143, g + c*(1-g) + s*0.140, b - c*b - s*0.283, 0, 0,
		r - c*r - s*(1-r), g - c*g + s*g, b + c*(1-b) + s*b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Then returns the matrix that applies m first and next second.
func (m ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var r ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += next[row*5+k] * m[k*5+col]
			}
			r[row*5+col] = sum
		}
		r[row*5+4] = next[row*5+0]*m[4] + next[row*5+1]*m[9] +
			next[row*5+2]*m[14] + next[row*5+3]*m[19] + next[row*5+4]
	}
	return r
}

// IsIdentity reports whether m leaves colors unchanged.
func (m ColorMatrix) IsIdentity() bool {
	return m == IdentityMatrix()
}

// Apply transforms every pixel of img in place. Pixels are
// un-premultiplied, transformed, clamped to [0, 255] and premultiplied
// again.
func (m ColorMatrix) Apply(img *image.RGBA) {
	if img == nil || m.IsIdentity() {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			a := float32(row[i+3])
			if a == 0 && m[19] == 0 {
				continue
			}
			var r, g, b float32
			if a > 0 {
				r = float32(row[i+0]) * 255 / a
				g = float32(row[i+1]) * 255 / a
				b = float32(row[i+2]) * 255 / a
			}

			nr := clampf(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
			ng := clampf(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
			nb := clampf(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
			na := clampf(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])

			f := na / 255
			row[i+0] = clampUint8(nr * f)
			row[i+1] = clampUint8(ng * f)
			row[i+2] = clampUint8(nb * f)
			row[i+3] = clampUint8(na)
		}
	}
}

func clampf(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// clampUint8 clamps a float32 to [0, 255] and rounds to uint8.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
