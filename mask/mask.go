// Package mask implements per-layer reveal/hide rasters.
//
// A Mask is authored at the project's canonical resolution and stored as
// two planes: luminance and alpha. Unpainted pixels are fully transparent
// and reveal the layer; painted pixels are opaque black (hide) or opaque
// white (reveal). At render time a layer's content is multiplied by the
// mask Coverage.
package mask

import (
	"image"
	"math"
)

// Mode selects the color a brush paints.
type Mode int

const (
	// Erase paints opaque black, hiding the layer.
	Erase Mode = iota
	// Restore paints opaque white, revealing the layer.
	Restore
)

// String returns the mode name used by the editor API.
func (m Mode) String() string {
	switch m {
	case Erase:
		return "erase"
	case Restore:
		return "restore"
	default:
		return "unknown"
	}
}

// ParseMode parses "erase" or "restore".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "erase":
		return Erase, true
	case "restore":
		return Restore, true
	default:
		return Erase, false
	}
}

// Mask is a luminance/alpha raster. Values range from 0 to 255.
type Mask struct {
	width  int
	height int
	lum    []uint8
	alpha  []uint8
}

// New creates a fully transparent mask with the given dimensions.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		width:  width,
		height: height,
		lum:    make([]uint8, width*height),
		alpha:  make([]uint8, width*height),
	}
}

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// At returns the luminance and alpha at (x, y).
// Returns (0, 0) for coordinates outside the mask bounds.
func (m *Mask) At(x, y int) (lum, alpha uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0, 0
	}
	i := y*m.width + x
	return m.lum[i], m.alpha[i]
}

// Set sets the luminance and alpha at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, lum, alpha uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	i := y*m.width + x
	m.lum[i] = lum
	m.alpha[i] = alpha
}

// Paint fills a disc of the given radius centered at canonical (x, y)
// with opaque black (Erase) or opaque white (Restore). A pixel is inside
// the disc when its center is within radius of (x, y).
func (m *Mask) Paint(x, y, radius float64, mode Mode) {
	if radius <= 0 || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	var lum uint8
	if mode == Restore {
		lum = 255
	}

	minX := clampInt(int(math.Floor(x-radius)), 0, m.width)
	maxX := clampInt(int(math.Ceil(x+radius))+1, 0, m.width)
	minY := clampInt(int(math.Floor(y-radius)), 0, m.height)
	maxY := clampInt(int(math.Ceil(y+radius))+1, 0, m.height)

	r2 := radius * radius
	for py := minY; py < maxY; py++ {
		dy := float64(py) + 0.5 - y
		row := py * m.width
		for px := minX; px < maxX; px++ {
			dx := float64(px) + 0.5 - x
			if dx*dx+dy*dy > r2 {
				continue
			}
			m.lum[row+px] = lum
			m.alpha[row+px] = 255
		}
	}
}

// Stroke paints discs along the segment from (x0, y0) to (x1, y1), spaced
// at most half a radius apart, so fast pointer moves leave no gaps.
func (m *Mask) Stroke(x0, y0, x1, y1, radius float64, mode Mode) {
	if radius <= 0 {
		return
	}
	dist := math.Hypot(x1-x0, y1-y0)
	step := math.Max(radius/2, 0.5)
	n := int(math.Ceil(dist / step))
	for i := 0; i <= n; i++ {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		m.Paint(x0+(x1-x0)*t, y0+(y1-y0)*t, radius, mode)
	}
}

// Reset clears the mask to fully transparent, revealing the whole layer.
func (m *Mask) Reset() {
	clear(m.lum)
	clear(m.alpha)
}

// Invert flips the luminance plane in place (255 - value).
// The alpha plane is preserved, so Invert is its own inverse.
func (m *Mask) Invert() {
	for i := range m.lum {
		m.lum[i] = 255 - m.lum[i]
	}
}

// Clone creates a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	c := New(m.width, m.height)
	copy(c.lum, m.lum)
	copy(c.alpha, m.alpha)
	return c
}

// Equal reports whether two masks have identical dimensions and planes.
func (m *Mask) Equal(o *Mask) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i := range m.lum {
		if m.lum[i] != o.lum[i] || m.alpha[i] != o.alpha[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no pixel has been painted.
func (m *Mask) IsEmpty() bool {
	for _, a := range m.alpha {
		if a != 0 {
			return false
		}
	}
	return true
}

// Coverage returns the reveal factor of every pixel as an alpha image:
//
//	coverage = 255 - alpha*(255-lum)/255
//
// Transparent pixels reveal (255), opaque black hides (0) and opaque
// white reveals (255).
func (m *Mask) Coverage() *image.Alpha {
	out := image.NewAlpha(m.Bounds())
	for i := range m.alpha {
		a := uint32(m.alpha[i])
		l := uint32(m.lum[i])
		out.Pix[i] = uint8(255 - (a*(255-l)+127)/255)
	}
	return out
}

func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
