// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// Names of the non-raster archive entries.
const (
	OverlayName     = "overlay.svg"
	ProjectJSONName = "project.json"
)

// Target is one raster in an export archive.
type Target struct {
	Name    string  `yaml:"name"`
	Size    int     `yaml:"size"`
	Format  string  `yaml:"format"`
	Quality float64 `yaml:"quality,omitempty"`
}

// ExportProfile lists the rasters of an export archive. The overlay and the
// project document are always included.
type ExportProfile struct {
	Targets []Target `yaml:"targets"`
}

// DefaultProfile returns the standard cover set: a 3000px PNG, a 1400px
// JPEG at quality 0.92 and a 600px JPEG thumbnail at quality 0.8.
func DefaultProfile() ExportProfile {
	return ExportProfile{Targets: []Target{
		{Name: "cover_3000.png", Size: 3000, Format: "png"},
		{Name: "cover_1400.jpg", Size: 1400, Format: "jpeg", Quality: 0.92},
		{Name: "thumb_600.jpg", Size: 600, Format: "jpeg", Quality: 0.8},
	}}
}

// ParseProfile decodes a YAML export profile and validates it.
//
//	targets:
//	  - name: cover_3000.png
//	    size: 3000
//	    format: png
//	  - name: cover_1400.jpg
//	    size: 1400
//	    format: jpeg
//	    quality: 0.92
func ParseProfile(data []byte) (ExportProfile, error) {
	var p ExportProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return ExportProfile{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return ExportProfile{}, err
	}
	return p, nil
}

// LoadProfile reads a YAML export profile from a file.
func LoadProfile(file string) (ExportProfile, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return ExportProfile{}, fmt.Errorf("render: read profile: %w", err)
	}
	return ParseProfile(data)
}

// Validate checks that the profile has at least one target, that names are
// unique plain file names not clashing with the overlay or project
// document, and that sizes, formats and qualities are valid.
func (p ExportProfile) Validate() error {
	if len(p.Targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidProfile)
	}
	seen := map[string]bool{OverlayName: true, ProjectJSONName: true}
	for i, t := range p.Targets {
		if t.Name == "" || path.Base(t.Name) != t.Name || t.Name == "." || t.Name == ".." {
			return fmt.Errorf("%w: target %d: bad name %q", ErrInvalidProfile, i, t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidProfile, t.Name)
		}
		seen[t.Name] = true
		if t.Size <= 0 || t.Size > MaxSize {
			return fmt.Errorf("%w: %s: size %d out of range", ErrInvalidProfile, t.Name, t.Size)
		}
		if _, err := ParseFormat(t.Format); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, t.Name, err)
		}
		if t.Quality < 0 || t.Quality > 1 {
			return fmt.Errorf("%w: %s: quality %v not in [0,1]", ErrInvalidProfile, t.Name, t.Quality)
		}
	}
	return nil
}
