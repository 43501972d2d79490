// Package assets loads source images for projects and image layers.
//
// Sources are addressed by a string: a data URL, a local path (optionally
// with a file:// scheme), an http(s) URL or an s3://bucket/key URL. PNG,
// JPEG, GIF, WebP and BMP are decoded. Decoded images are cached by source.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/internal/cache"
)

// Source resolves a source string to a decoded image.
type Source interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Errors returned by Load.
var (
	ErrEmptySource       = errors.New("assets: empty source")
	ErrUnsupportedScheme = errors.New("assets: unsupported source scheme")
	ErrNotFound          = errors.New("assets: not found")
	ErrTooLarge          = errors.New("assets: source too large")
	ErrOutsideBaseDir    = errors.New("assets: path outside base directory")
	ErrFilesDisabled     = errors.New("assets: local files disabled")
)

// DefaultMaxBytes limits the encoded size of a single source.
const DefaultMaxBytes = 64 << 20

// DefaultCacheSize is the number of decoded images kept by default.
const DefaultCacheSize = 32

// Loader loads images from data URLs, files, http(s) and S3.
// A Loader is safe for concurrent use.
type Loader struct {
	client   *http.Client
	s3       ObjectGetter
	s3Region string
	s3Once   sync.Once
	s3Err    error
	baseDir  string
	noFiles  bool
	maxBytes int64

	cache *cache.LRU[string, image.Image]
	group singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithS3 sets the client used for s3:// sources. Without it, a client is
// created from the default AWS configuration on first use.
func WithS3(c ObjectGetter) Option {
	return func(l *Loader) {
		l.s3 = c
	}
}

// WithS3Region sets the region of the lazily created S3 client.
func WithS3Region(region string) Option {
	return func(l *Loader) {
		l.s3Region = region
	}
}

// WithBaseDir confines local files to dir. Paths are resolved relative to
// dir; absolute paths, file:// URLs and paths leaving dir are rejected with
// ErrOutsideBaseDir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithoutLocalFiles rejects file paths and file:// URLs with
// ErrFilesDisabled.
func WithoutLocalFiles() Option {
	return func(l *Loader) {
		l.noFiles = true
	}
}

// WithCacheSize sets the number of decoded images kept. Zero disables the
// cache.
func WithCacheSize(n int) Option {
	return func(l *Loader) {
		l.cache = cache.New[string, image.Image](n)
	}
}

// WithMaxBytes limits the encoded size of one source.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		l.maxBytes = n
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
		cache:    cache.New[string, image.Image](DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the decoded image for src. Concurrent loads of the same
// source share one fetch and decode. The returned image must not be
// modified.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}
	if img, ok := l.cache.Get(src); ok {
		return img, nil
	}
	v, err, _ := l.group.Do(src, func() (any, error) {
		start := time.Now()
		data, err := l.fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		img, format, err := Decode(data)
		if err != nil {
			return nil, err
		}
		l.cache.Set(src, img)
		artboard.Logger().Debug("asset loaded",
			"src", Describe(src),
			"format", format,
			"bounds", img.Bounds().String(),
			"elapsed", time.Since(start))
		return img, nil
	})
	if err != nil {
		return nil, fmt.Errorf("assets: load %s: %w", Describe(src), err)
	}
	return v.(image.Image), nil
}

// Fetch returns the encoded bytes of src without decoding or caching.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	data, err := l.fetch(ctx, strings.TrimSpace(src))
	if err != nil {
		return nil, fmt.Errorf("assets: fetch %s: %w", Describe(src), err)
	}
	return data, nil
}

// CacheStats returns the decoded image cache statistics.
func (l *Loader) CacheStats() cache.Stats { return l.cache.Stats() }

// Forget drops src from the cache.
func (l *Loader) Forget(src string) {
	l.cache.Delete(strings.TrimSpace(src))
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	switch scheme(src) {
	case "data":
		return parseDataURL(src)
	case "http", "https":
		return l.fetchHTTP(ctx, src)
	case "s3":
		return l.fetchS3(ctx, src)
	case "file", "":
		return l.readFile(src)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme(src))
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return l.readAll(resp.Body)
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// scheme returns the lowercased URL scheme of src, or "" for plain paths.
// Windows drive letters are not treated as schemes.
func scheme(src string) string {
	i := strings.Index(src, ":")
	if i <= 1 {
		return ""
	}
	s := strings.ToLower(src[:i])
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return ""
		}
	}
	return s
}

// Describe shortens src for logs and errors. Data URLs are reduced to
// their media type and length.
func Describe(src string) string {
	if scheme(src) == "data" {
		head, _, _ := strings.Cut(src, ",")
		return fmt.Sprintf("%s,…(%d bytes)", head, len(src))
	}
	return src
}
