package text

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider fetches font binaries for families that are not registered.
type Provider interface {
	Fetch(ctx context.Context, family string, style Style) ([]byte, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, family string, style Style) ([]byte, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, family string, style Style) ([]byte, error) {
	return f(ctx, family, style)
}

// maxFontSize limits downloaded font files.
const maxFontSize = 32 << 20

// HTTPProvider downloads fonts from a hosted font service.
//
// Template is a URL with the placeholders {family} (path-escaped family
// name) and {variant} (regular, bold, italic or bolditalic), for example
// "https://fonts.example.com/{family}/{variant}.ttf".
type HTTPProvider struct {
	Template string
	Client   *http.Client
}

// NewHTTPProvider returns a provider for the URL template with a client
// that times out after 15 seconds.
func NewHTTPProvider(template string) *HTTPProvider {
	return &HTTPProvider{
		Template: template,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// URL expands the template for family and style.
func (p *HTTPProvider) URL(family string, style Style) string {
	r := strings.NewReplacer(
		"{family}", url.PathEscape(family),
		"{variant}", style.String(),
	)
	return r.Replace(p.Template)
}

// Fetch implements Provider.
func (p *HTTPProvider) Fetch(ctx context.Context, family string, style Style) ([]byte, error) {
	if p.Template == "" {
		return nil, ErrNoProvider
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(family, style), nil)
	if err != nil {
		return nil, fmt.Errorf("text: font request: %w", err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text: fetch %s: %w", family, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("text: fetch %s: status %d", family, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontSize))
	if err != nil {
		return nil, fmt.Errorf("text: fetch %s: %w", family, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	return data, nil
}
