package artboard

// Mapping maps canonical project pixel space onto a render target or an
// on-screen preview of Width×Height pixels.
//
// The scale factors are independent per axis: a non-square target
// stretches canonical space anisotropically, exactly like the base image
// is stretched to fill it.
type Mapping struct {
	BaseWidth  float64
	BaseHeight float64
	Width      float64
	Height     float64
}

// NewMapping returns the mapping from the project's canonical space to a
// target of w×h pixels.
func NewMapping(p *Project, w, h float64) Mapping {
	return Mapping{
		BaseWidth:  float64(p.BaseWidth),
		BaseHeight: float64(p.BaseHeight),
		Width:      w,
		Height:     h,
	}
}

// SX returns the horizontal scale factor W/baseWidth.
func (m Mapping) SX() float64 {
	if m.BaseWidth == 0 {
		return 1
	}
	return m.Width / m.BaseWidth
}

// SY returns the vertical scale factor H/baseHeight.
func (m Mapping) SY() float64 {
	if m.BaseHeight == 0 {
		return 1
	}
	return m.Height / m.BaseHeight
}

// ToTarget maps a canonical point to target pixels.
func (m Mapping) ToTarget(p Point) Point {
	return Point{X: p.X * m.SX(), Y: p.Y * m.SY()}
}

// ToCanonical maps a target (or screen) point back to canonical space.
func (m Mapping) ToCanonical(p Point) Point {
	return Point{X: p.X / m.SX(), Y: p.Y / m.SY()}
}

// DeltaToCanonical maps a pointer delta measured on the target back to a
// canonical delta. Pointer motion goes through the same sx, sy as layer
// placement so dragging is independent of preview zoom.
func (m Mapping) DeltaToCanonical(d Point) Point {
	return m.ToCanonical(d)
}

// LayerMatrix returns the transform from layer-local coordinates (content
// centered at the origin) to target pixels:
//
//	Translate(x*sx, y*sy) · Rotate(rotation) · Scale(scale*sx, scale*sy)
//
// Rotation is applied before the anisotropic scale. The exported raster and
// the interactive preview both use this order, which keeps rotated content
// consistent between them on non-square targets.
func LayerMatrix(l Layer, m Mapping) Matrix {
	b := l.Base()
	sx, sy := m.SX(), m.SY()
	return Translate(b.X*sx, b.Y*sy).
		Multiply(RotateDegrees(b.Rotation)).
		Multiply(Scale(b.Scale*sx, b.Scale*sy))
}

// LayerPoint maps the target pixel p back into l's local coordinates. It
// reports false when the layer is scaled to nothing.
func LayerPoint(l Layer, m Mapping, p Point) (Point, bool) {
	inv, ok := LayerMatrix(l, m).Invert()
	if !ok {
		return Point{}, false
	}
	return inv.TransformPoint(p), true
}

// Anchor returns the layer's anchor in target pixels.
func Anchor(l Layer, m Mapping) Point {
	b := l.Base()
	return m.ToTarget(Point{X: b.X, Y: b.Y})
}
