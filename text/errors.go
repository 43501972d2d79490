package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownFamily is returned when a family is neither registered nor
	// available from the provider.
	ErrUnknownFamily = errors.New("text: unknown font family")

	// ErrNoProvider is returned by fetches on a registry without a provider.
	ErrNoProvider = errors.New("text: no font provider")
)

// FontError describes a font that could not be parsed.
type FontError struct {
	Family string
	Err    error
}

func (e *FontError) Error() string {
	return "text: parse font " + e.Family + ": " + e.Err.Error()
}

func (e *FontError) Unwrap() error { return e.Err }
