// Package text lays out and rasterizes text layers.
//
// # Fonts
//
// A [Registry] maps CSS-style family names to parsed faces. The Go fonts
// are always available and back the generic families (sans-serif, serif,
// monospace, system-ui). Other families come from [Registry.Register],
// from user uploads ([Registry.RegisterUpload]), from a font directory
// ([Registry.WatchDir]) or on demand from a hosted [Provider].
//
// # Layout
//
// [Layout] shapes each line of a text layer with HarfBuzz (go-text
// typesetting) and positions glyphs so that the block is centered on the
// layer anchor. Letter spacing is added to every glyph advance, so the
// result is exact and identical at every output size.
//
// # Rasterization
//
// [Block.Coverage] fills glyph outlines (golang.org/x/image/font/sfnt)
// transformed by the layer matrix with golang.org/x/image/vector, so glyphs
// are rendered directly at the target resolution.
package text
