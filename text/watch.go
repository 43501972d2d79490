package text

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/artboard"
)

// IsFontFile reports whether path has a TrueType or OpenType extension.
func IsFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

// LoadDir registers every font file in dir and returns the number loaded.
// Files that fail to parse are logged and skipped.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("text: load dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !IsFontFile(e.Name()) {
			continue
		}
		if _, err := r.RegisterFile(filepath.Join(dir, e.Name())); err != nil {
			artboard.Logger().Warn("skipping font", "path", e.Name(), "error", err)
			continue
		}
		n++
	}
	return n, nil
}

// RegisterFile registers a font file under the family name stored in the
// font, or under the file name without extension if the font has none.
func (r *Registry) RegisterFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("text: read font: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	face, err := ParseFace(stem, data)
	if err != nil {
		return "", err
	}
	name := face.Name()
	if name == "" {
		name = stem
	}
	face.family = name
	r.add(name, face)
	artboard.Logger().Debug("font file registered", "family", name, "path", path)
	return name, nil
}

// WatchDir loads the fonts in dir and keeps registering font files that are
// created or rewritten there until ctx is done. The watch runs in its own
// goroutine; WatchDir returns once it is established.
func (r *Registry) WatchDir(ctx context.Context, dir string) error {
	if _, err := r.LoadDir(dir); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("text: watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("text: watch %s: %w", dir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !IsFontFile(ev.Name) || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) {
					continue
				}
				if _, err := r.RegisterFile(ev.Name); err != nil {
					// Writes may arrive before the file is complete.
					artboard.Logger().Debug("font not registered", "path", ev.Name, "error", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				artboard.Logger().Warn("font watch error", "dir", dir, "error", err)
			}
		}
	}()
	return nil
}
