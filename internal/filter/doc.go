// Package filter implements the pixel operations behind project filters
// and text effects.
//
// Pre-composite adjustments follow CSS filter semantics and run on the base
// image: brightness, contrast, saturate and hue-rotate as 4x5 color
// matrices, then an optional Gaussian blur. Post-composite effects
// (Vignette, Grain) are source-over overlays computed in normalized
// coordinates so their strength does not depend on the output size.
//
// All RGBA operations work in place on premultiplied *image.RGBA images;
// alpha operations (BlurAlpha, Dilate, Shift) work on *image.Alpha planes.
package filter
