package mask

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
)

// DataURLPrefix is the prefix of serialized masks.
const DataURLPrefix = "data:image/png;base64,"

// ErrInvalidDataURL is returned when a serialized mask is not a PNG data URL.
var ErrInvalidDataURL = errors.New("mask: invalid data url")

// Image returns the mask as a straight-alpha RGBA image: the luminance is
// written to R, G and B and the alpha plane to A.
func (m *Mask) Image() *image.NRGBA {
	img := image.NewNRGBA(m.Bounds())
	for i := range m.alpha {
		l := m.lum[i]
		j := i * 4
		img.Pix[j+0] = l
		img.Pix[j+1] = l
		img.Pix[j+2] = l
		img.Pix[j+3] = m.alpha[i]
	}
	return img
}

// FromImage builds a mask from any image. Luminance is computed from the
// straight-alpha color with Rec.601 weights.
func FromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())

	if n, ok := img.(*image.NRGBA); ok {
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				j := n.PixOffset(b.Min.X+x, b.Min.Y+y)
				i := y*m.width + x
				m.lum[i] = luma(n.Pix[j], n.Pix[j+1], n.Pix[j+2])
				m.alpha[i] = n.Pix[j+3]
			}
		}
		return m
	}

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*m.width + x
			m.lum[i] = luma(c.R, c.G, c.B)
			m.alpha[i] = c.A
		}
	}
	return m
}

// EncodePNG writes the mask as a PNG. The encoding is lossless: both planes
// survive a DecodePNG round trip, including luminance under zero alpha.
func (m *Mask) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, m.Image()); err != nil {
		return fmt.Errorf("mask: encode png: %w", err)
	}
	return nil
}

// DecodePNG reads a mask from PNG data.
func DecodePNG(r io.Reader) (*Mask, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("mask: decode png: %w", err)
	}
	return FromImage(img), nil
}

// DataURL returns the mask as a self-contained PNG data URL.
func (m *Mask) DataURL() (string, error) {
	var buf bytes.Buffer
	if err := m.EncodePNG(&buf); err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ParseDataURL decodes a mask from a PNG data URL.
func ParseDataURL(s string) (*Mask, error) {
	payload, ok := strings.CutPrefix(s, DataURLPrefix)
	if !ok {
		return nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return DecodePNG(bytes.NewReader(data))
}

// MarshalJSON encodes the mask as a JSON string holding a PNG data URL.
func (m *Mask) MarshalJSON() ([]byte, error) {
	s, err := m.DataURL()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// UnmarshalJSON decodes a mask from a JSON string holding a PNG data URL.
func (m *Mask) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("mask: %w", err)
	}
	dec, err := ParseDataURL(s)
	if err != nil {
		return err
	}
	*m = *dec
	return nil
}

func luma(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}
