package artboard

// Filter knob bounds.
const (
	MaxBrightness = 200
	MaxContrast   = 200
	MaxSaturation = 200
	MinHue        = -180
	MaxHue        = 180
	MaxBlur       = 20
	MaxVignette   = 100
	MaxGrain      = 100
)

// Filters are global adjustments applied to the base image only.
//
// Brightness, Contrast and Saturation are percentages of neutral (100).
// Hue is a rotation in degrees. Blur is a radius in canonical pixels.
// Vignette and Grain are strengths in percent, applied over the finished
// composite.
type Filters struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Hue        float64 `json:"hue"`
	Vignette   float64 `json:"vignette"`
	Grain      float64 `json:"grain"`
	Blur       float64 `json:"blur"`
}

// NeutralFilters returns filters that leave the base image unchanged.
func NeutralFilters() Filters {
	return Filters{
		Brightness: 100,
		Contrast:   100,
		Saturation: 100,
	}
}

// Clamp returns a copy with every knob clamped to its bounds.
func (f Filters) Clamp() Filters {
	return Filters{
		Brightness: clamp(f.Brightness, 0, MaxBrightness),
		Contrast:   clamp(f.Contrast, 0, MaxContrast),
		Saturation: clamp(f.Saturation, 0, MaxSaturation),
		Hue:        clamp(f.Hue, MinHue, MaxHue),
		Vignette:   clamp(f.Vignette, 0, MaxVignette),
		Grain:      clamp(f.Grain, 0, MaxGrain),
		Blur:       clamp(f.Blur, 0, MaxBlur),
	}
}

// IsNeutral reports whether the pre-composite adjustments are all neutral.
func (f Filters) IsNeutral() bool {
	return f.Brightness == 100 && f.Contrast == 100 && f.Saturation == 100 &&
		f.Hue == 0 && f.Blur == 0
}

func clamp(v, lo, hi float64) float64 {
	if !isFinite(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Crop is persisted with the project but is not read by any render or
// export path; canonical space is always the full base image.
type Crop struct {
	Aspect string  `json:"aspect,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scale  float64 `json:"scale"`
}

// DefaultCrop returns the crop stored on newly created projects.
func DefaultCrop() Crop {
	return Crop{Aspect: "1:1", Scale: 1}
}
