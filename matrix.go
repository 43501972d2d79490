package artboard

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transform in the row-major layout of f64.Aff3:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Matrix f64.Aff3

// Identity returns the transform that leaves points unchanged.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0}
}

// Translate returns a translation by (x, y).
func Translate(x, y float64) Matrix {
	return Matrix{1, 0, x, 0, 1, y}
}

// Scale returns a scale by (x, y) about the origin.
func Scale(x, y float64) Matrix {
	return Matrix{x, 0, 0, 0, y, 0}
}

// Rotate returns a rotation by rad radians about the origin. With Y
// pointing down, positive angles turn clockwise on screen.
func Rotate(rad float64) Matrix {
	sin, cos := math.Sincos(rad)
	return Matrix{cos, -sin, 0, sin, cos, 0}
}

// RotateDegrees is Rotate with the angle in degrees.
func RotateDegrees(deg float64) Matrix {
	return Rotate(deg * math.Pi / 180)
}

// Multiply returns m · o, which applies o first, then m.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[3],
		m[0]*o[1] + m[1]*o[4],
		m[0]*o[2] + m[1]*o[5] + m[2],
		m[3]*o[0] + m[4]*o[3],
		m[3]*o[1] + m[4]*o[4],
		m[3]*o[2] + m[4]*o[5] + m[5],
	}
}

// TransformPoint maps p through m.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Invert returns the inverse of m. A singular m, such as a zero scale,
// has no inverse and yields Identity and false.
func (m Matrix) Invert() (Matrix, bool) {
	det := m[0]*m[4] - m[1]*m[3]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Identity(), false
	}
	a, b := m[4]/det, -m[1]/det
	d, e := -m[3]/det, m[0]/det
	return Matrix{
		a, b, -(a*m[2] + b*m[5]),
		d, e, -(d*m[2] + e*m[5]),
	}, true
}

// Aff3 returns m for use with golang.org/x/image/draw transformers.
func (m Matrix) Aff3() f64.Aff3 { return f64.Aff3(m) }

// ScaleFactor returns the geometric mean of the axis scale factors, used
// to size blur radii and outline widths under an anisotropic transform.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m[0]*m[4] - m[1]*m[3]))
}
