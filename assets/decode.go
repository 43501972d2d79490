package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	// Registered image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrInvalidDataURL is returned for malformed data URLs.
var ErrInvalidDataURL = errors.New("assets: invalid data URL")

// Decode decodes PNG, JPEG, GIF, WebP or BMP data and returns the format
// name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode: %w", err)
	}
	return img, format, nil
}

// DecodeConfig returns the dimensions and format of encoded image data
// without decoding the pixels.
func DecodeConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode config: %w", err)
	}
	return cfg, format, nil
}

// parseDataURL returns the payload of an RFC 2397 data URL.
func parseDataURL(src string) ([]byte, error) {
	if len(src) < 5 || !strings.EqualFold(src[:5], "data:") {
		return nil, ErrInvalidDataURL
	}
	rest := src[5:]
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURL
	}
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			// Some encoders drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(payload), "="))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
			}
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return []byte(s), nil
}

func (l *Loader) readFile(src string) ([]byte, error) {
	if l.noFiles {
		return nil, ErrFilesDisabled
	}
	if l.baseDir != "" {
		return l.readBaseDir(src)
	}
	path := src
	if scheme(src) == "file" {
		u, err := url.Parse(src)
		if err != nil {
			return nil, err
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()
	return l.readAll(f)
}

// readBaseDir opens src inside baseDir through an os.Root, so neither ".."
// nor a symlink can reach outside it.
func (l *Loader) readBaseDir(src string) ([]byte, error) {
	if scheme(src) == "file" {
		return nil, ErrOutsideBaseDir
	}
	path := filepath.FromSlash(src)
	if !filepath.IsLocal(path) {
		return nil, ErrOutsideBaseDir
	}
	root, err := os.OpenRoot(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("open base dir: %w", err)
	}
	defer root.Close()
	f, err := root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()
	return l.readAll(f)
}
