package text

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/artboard"
)

// Built-in family names.
const (
	FamilyGo     = "Go"
	FamilyGoMono = "Go Mono"

	// DefaultFallback is the family used when nothing else matches.
	DefaultFallback = "sans-serif"

	// UploadPrefix starts every synthesized upload family name.
	UploadPrefix = "upload-"
)

// genericFamilies maps CSS generic families to built-in families.
var genericFamilies = map[string]string{
	"sans-serif": FamilyGo,
	"serif":      FamilyGo,
	"system-ui":  FamilyGo,
	"monospace":  FamilyGoMono,
}

// Registry maps family names to faces. Family names are case-insensitive.
// A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family

	provider Provider
	fallback string
	builtins bool
	fetches  singleflight.Group
}

type family struct {
	name  string
	faces map[Style]*Face
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithProvider sets the hosted font provider consulted for unknown families.
func WithProvider(p Provider) RegistryOption {
	return func(r *Registry) {
		r.provider = p
	}
}

// WithFallback sets the family used when a requested family is unavailable.
func WithFallback(name string) RegistryOption {
	return func(r *Registry) {
		r.fallback = name
	}
}

// WithoutBuiltins creates an empty registry without the Go fonts.
func WithoutBuiltins() RegistryOption {
	return func(r *Registry) {
		r.builtins = false
	}
}

// NewRegistry creates a registry holding the Go fonts under "Go", "Go Mono"
// and the generic CSS families.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		families: make(map[string]*family),
		fallback: DefaultFallback,
		builtins: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.builtins {
		r.registerBuiltins()
	}
	return r
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns a shared registry with the built-in fonts only.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func (r *Registry) registerBuiltins() {
	builtin := []struct {
		family string
		style  Style
		data   []byte
	}{
		{FamilyGo, Style{}, goregular.TTF},
		{FamilyGo, Style{Bold: true}, gobold.TTF},
		{FamilyGo, Style{Italic: true}, goitalic.TTF},
		{FamilyGo, Style{Bold: true, Italic: true}, gobolditalic.TTF},
		{FamilyGoMono, Style{}, gomono.TTF},
		{FamilyGoMono, Style{Bold: true}, gomonobold.TTF},
		{FamilyGoMono, Style{Italic: true}, gomonoitalic.TTF},
		{FamilyGoMono, Style{Bold: true, Italic: true}, gomonobolditalic.TTF},
	}
	for _, b := range builtin {
		face, err := ParseFace(b.family, b.data)
		if err != nil {
			// The embedded fonts always parse.
			panic(err)
		}
		face.style = b.style
		r.add(b.family, face)
		for generic, target := range genericFamilies {
			if target == b.family {
				r.add(generic, face)
			}
		}
	}
}

// Register parses data and adds it to family. The style is read from the
// font's subfamily name.
func (r *Registry) Register(name string, data []byte) (*Face, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("text: register: empty family name")
	}
	face, err := ParseFace(name, data)
	if err != nil {
		return nil, err
	}
	r.add(name, face)
	artboard.Logger().Debug("font registered", "family", name, "style", face.style.String())
	return face, nil
}

// RegisterUpload registers user-supplied font data under a synthesized
// family name and returns that name.
func (r *Registry) RegisterUpload(data []byte) (string, error) {
	name := UploadPrefix + uuid.NewString()
	if _, err := r.Register(name, data); err != nil {
		return "", err
	}
	return name, nil
}

func (r *Registry) add(name string, face *Face) {
	key := familyKey(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	fam, ok := r.families[key]
	if !ok {
		fam = &family{name: name, faces: make(map[Style]*Face)}
		r.families[key] = fam
	}
	fam.faces[face.style] = face
}

// Has reports whether family is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.families[familyKey(name)]
	return ok
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.families))
	for _, fam := range r.families {
		names = append(names, fam.name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Lookup returns the registered face closest to style in family.
// It does not consult the provider.
func (r *Registry) Lookup(name string, style Style) (*Face, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fam, ok := r.families[familyKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
	}
	return fam.closest(style), nil
}

// closest prefers the exact style, then matching weight, then matching
// slant, then anything.
func (f *family) closest(s Style) *Face {
	candidates := []Style{
		s,
		{Bold: s.Bold},
		{Italic: s.Italic},
		{},
	}
	for _, c := range candidates {
		if face, ok := f.faces[c]; ok {
			return face
		}
	}
	for _, face := range f.faces {
		return face
	}
	return nil
}

// Resolve returns a face for a CSS font-family list such as
// `"Playfair Display", serif`. Each family is tried in order, first among
// registered fonts and then from the provider. When nothing matches, the
// fallback family is used. Resolve only fails if ctx is done or the
// registry has no fallback.
func (r *Registry) Resolve(ctx context.Context, families string, weight int, italic bool) (*Face, error) {
	style := StyleFor(weight, italic)
	for _, name := range SplitFamilies(families) {
		if face, err := r.Lookup(name, style); err == nil {
			return face, nil
		}
		if r.provider == nil {
			continue
		}
		face, err := r.fetch(ctx, name, style)
		if err == nil {
			return face, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		artboard.Logger().Debug("font fetch failed", "family", name, "style", style.String(), "error", err)
	}

	face, err := r.Lookup(r.fallback, style)
	if err != nil {
		return nil, err
	}
	artboard.Logger().Debug("font fallback", "requested", families, "fallback", r.fallback)
	return face, nil
}

// fetch downloads one family style from the provider. Concurrent requests
// for the same family and style share a single download.
func (r *Registry) fetch(ctx context.Context, name string, style Style) (*Face, error) {
	key := familyKey(name) + "/" + style.String()
	v, err, _ := r.fetches.Do(key, func() (any, error) {
		if face, err := r.Lookup(name, style); err == nil && face.style == style {
			return face, nil
		}
		data, err := r.provider.Fetch(ctx, name, style)
		if err != nil {
			return nil, err
		}
		face, err := ParseFace(name, data)
		if err != nil {
			return nil, err
		}
		face.style = style
		r.add(name, face)
		artboard.Logger().Info("font fetched", "family", name, "style", style.String(), "bytes", len(data))
		return face, nil
	})
	if err != nil {
		return nil, err
	}
	face, ok := v.(*Face)
	if !ok {
		return nil, errors.New("text: fetch: unexpected result")
	}
	return face, nil
}

// SplitFamilies splits a CSS font-family list into unquoted names.
func SplitFamilies(list string) []string {
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

func familyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
