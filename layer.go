package artboard

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/artboard/mask"
)

// LayerKind discriminates the layer variants in JSON.
type LayerKind string

// Layer kinds.
const (
	KindText  LayerKind = "text"
	KindImage LayerKind = "image"
)

// Defaults applied to new layers and to stored layers missing a field.
const (
	DefaultFontFamily = "sans-serif"
	DefaultFontSize   = 32
	DefaultFontWeight = 400
	DefaultLineHeight = 1.2
	DefaultTextColor  = "#ffffff"
	DefaultText       = "New Text"
)

// LayerBase holds the fields shared by every layer variant.
//
// X and Y are the layer anchor in canonical project pixels. Layer content
// is drawn centered on the anchor, rotated by Rotation degrees and scaled
// by Scale.
type LayerBase struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Scale    float64    `json:"scale"`
	Rotation float64    `json:"rotation"`
	Opacity  float64    `json:"opacity"`
	Visible  bool       `json:"visible"`
	Locked   bool       `json:"locked"`
	ZIndex   int        `json:"zIndex"`
	Mask     *mask.Mask `json:"mask,omitempty"`
}

func defaultBase() LayerBase {
	return LayerBase{
		Scale:   1,
		Opacity: 1,
		Visible: true,
	}
}

func (b LayerBase) clone() LayerBase {
	b.Mask = b.Mask.Clone()
	return b
}

func (b *LayerBase) validate() error {
	switch {
	case b.ID == "":
		return &ValidationError{Field: "layer.id", Reason: "is empty"}
	case !isFinite(b.X) || !isFinite(b.Y):
		return &ValidationError{Field: "layer " + b.ID + " position", Reason: "is not finite"}
	case !isFinite(b.Scale) || b.Scale <= 0:
		return &ValidationError{Field: "layer " + b.ID + " scale", Reason: "must be a positive number"}
	case !isFinite(b.Rotation):
		return &ValidationError{Field: "layer " + b.ID + " rotation", Reason: "is not finite"}
	case !isFinite(b.Opacity) || b.Opacity < 0 || b.Opacity > 1:
		return &ValidationError{Field: "layer " + b.ID + " opacity", Reason: "must be within [0,1]"}
	}
	return nil
}

// Layer is one movable, maskable content unit stacked above the base image.
// The set of implementations is closed: *TextLayer and *ImageLayer.
type Layer interface {
	// Base returns the shared fields. The pointer aliases the layer.
	Base() *LayerBase
	// Kind returns the variant discriminator.
	Kind() LayerKind
	// Clone returns a deep copy, including the mask.
	Clone() Layer

	validate() error
}

// Shadow is a drop shadow drawn beneath text glyphs.
type Shadow struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

// Outline strokes text glyphs before they are filled.
type Outline struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// BlurBehind draws a blurred backdrop patch behind text.
// Intensity is the blur radius, Spread grows the patch beyond the text
// bounds and Fade feathers its edges; all in canonical pixels.
type BlurBehind struct {
	Enabled   bool    `json:"enabled"`
	Intensity float64 `json:"intensity"`
	Spread    float64 `json:"spread"`
	Fade      float64 `json:"fade"`
}

// TextLayer renders one or more lines of text.
type TextLayer struct {
	LayerBase

	Text          string      `json:"text"`
	FontFamily    string      `json:"fontFamily"`
	FontSize      float64     `json:"fontSize"`
	FontWeight    int         `json:"fontWeight"`
	Italic        bool        `json:"italic"`
	Color         string      `json:"color"`
	Uppercase     bool        `json:"uppercase"`
	LetterSpacing float64     `json:"letterSpacing"`
	LineHeight    float64     `json:"lineHeight"`
	Shadow        *Shadow     `json:"shadow,omitempty"`
	Outline       *Outline    `json:"outline,omitempty"`
	BlurBehind    *BlurBehind `json:"blurBehind,omitempty"`
	AutoContrast  bool        `json:"autoContrast"`
}

// NewTextLayer creates a visible text layer anchored at canonical (x, y)
// with default styling and a fresh id.
func NewTextLayer(text string, x, y float64) *TextLayer {
	l := defaultTextLayer()
	l.ID = uuid.NewString()
	l.Name = text
	l.Text = text
	l.X = x
	l.Y = y
	return l
}

func defaultTextLayer() *TextLayer {
	return &TextLayer{
		LayerBase:  defaultBase(),
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		FontWeight: DefaultFontWeight,
		Color:      DefaultTextColor,
		LineHeight: DefaultLineHeight,
	}
}

// Base implements Layer.
func (l *TextLayer) Base() *LayerBase { return &l.LayerBase }

// Kind implements Layer.
func (l *TextLayer) Kind() LayerKind { return KindText }

// Clone implements Layer.
func (l *TextLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	if l.Shadow != nil {
		s := *l.Shadow
		c.Shadow = &s
	}
	if l.Outline != nil {
		o := *l.Outline
		c.Outline = &o
	}
	if l.BlurBehind != nil {
		b := *l.BlurBehind
		c.BlurBehind = &b
	}
	return &c
}

func (l *TextLayer) validate() error {
	if err := l.LayerBase.validate(); err != nil {
		return err
	}
	if !isFinite(l.FontSize) || l.FontSize <= 0 {
		return &ValidationError{Field: "layer " + l.ID + " fontSize", Reason: "must be a positive number"}
	}
	if !isFinite(l.LineHeight) || l.LineHeight <= 0 {
		return &ValidationError{Field: "layer " + l.ID + " lineHeight", Reason: "must be a positive number"}
	}
	if !isFinite(l.LetterSpacing) {
		return &ValidationError{Field: "layer " + l.ID + " letterSpacing", Reason: "is not finite"}
	}
	if _, err := ParseColor(l.Color); err != nil {
		return &ValidationError{Field: "layer " + l.ID + " color", Reason: err.Error()}
	}
	if l.Shadow != nil {
		if _, err := ParseColor(l.Shadow.Color); err != nil {
			return &ValidationError{Field: "layer " + l.ID + " shadow.color", Reason: err.Error()}
		}
	}
	if l.Outline != nil {
		if _, err := ParseColor(l.Outline.Color); err != nil {
			return &ValidationError{Field: "layer " + l.ID + " outline.color", Reason: err.Error()}
		}
	}
	return nil
}

// MarshalJSON encodes the layer with its "type" discriminator.
func (l TextLayer) MarshalJSON() ([]byte, error) {
	type plain TextLayer
	return json.Marshal(struct {
		Type LayerKind `json:"type"`
		plain
	}{KindText, plain(l)})
}

// ImageLayer draws a raster image. Src is a data URL, a local path, an
// http(s) URL or an s3://bucket/key reference.
type ImageLayer struct {
	LayerBase

	Src string `json:"src"`
}

// NewImageLayer creates a visible image layer anchored at canonical (x, y).
func NewImageLayer(src string, x, y float64) *ImageLayer {
	l := &ImageLayer{LayerBase: defaultBase(), Src: src}
	l.ID = uuid.NewString()
	l.Name = "Image"
	l.X = x
	l.Y = y
	return l
}

// Base implements Layer.
func (l *ImageLayer) Base() *LayerBase { return &l.LayerBase }

// Kind implements Layer.
func (l *ImageLayer) Kind() LayerKind { return KindImage }

// Clone implements Layer.
func (l *ImageLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	return &c
}

func (l *ImageLayer) validate() error {
	if err := l.LayerBase.validate(); err != nil {
		return err
	}
	if l.Src == "" {
		return &ValidationError{Field: "layer " + l.ID + " src", Reason: "is empty"}
	}
	return nil
}

// MarshalJSON encodes the layer with its "type" discriminator.
func (l ImageLayer) MarshalJSON() ([]byte, error) {
	type plain ImageLayer
	return json.Marshal(struct {
		Type LayerKind `json:"type"`
		plain
	}{KindImage, plain(l)})
}

// Layers is the layer list of a project. It decodes the "type"
// discriminator into the matching variant; entries without a type are
// text layers.
type Layers []Layer

// UnmarshalJSON implements json.Unmarshaler.
func (ls *Layers) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("artboard: decode layers: %w", err)
	}
	out := make(Layers, 0, len(raws))
	for i, raw := range raws {
		l, err := decodeLayer(raw)
		if err != nil {
			return fmt.Errorf("artboard: decode layer %d: %w", i, err)
		}
		out = append(out, l)
	}
	*ls = out
	return nil
}

// DecodeLayer decodes a single layer, applying defaults for missing fields.
func DecodeLayer(data []byte) (Layer, error) {
	return decodeLayer(data)
}

func decodeLayer(raw []byte) (Layer, error) {
	var head struct {
		Type LayerKind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case KindText, "":
		l := defaultTextLayer()
		if err := json.Unmarshal(raw, (*plainText)(l)); err != nil {
			return nil, err
		}
		return l, nil
	case KindImage:
		l := &ImageLayer{LayerBase: defaultBase()}
		if err := json.Unmarshal(raw, (*plainImage)(l)); err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown layer type %q", head.Type)
	}
}

// plainText and plainImage strip the MarshalJSON methods so decoding
// fills the variant structs field by field over their defaults.
type (
	plainText  TextLayer
	plainImage ImageLayer
)

// AsText returns the layer as a text layer.
func AsText(l Layer) (*TextLayer, bool) {
	t, ok := l.(*TextLayer)
	return t, ok
}

// AsImage returns the layer as an image layer.
func AsImage(l Layer) (*ImageLayer, bool) {
	img, ok := l.(*ImageLayer)
	return img, ok
}
