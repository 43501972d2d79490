// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/gogpu/artboard"
)

// ArchiveName returns the file name of the export archive of p.
func ArchiveName(p *artboard.Project) string {
	return "project-" + p.ID + ".zip"
}

// File is one entry of an export archive.
type File struct {
	Name string
	Data []byte
}

// ExportFiles renders every target of the profile in order, then the
// overlay and the indented project document. Any failure aborts the export.
func (r *Renderer) ExportFiles(ctx context.Context, p *artboard.Project) ([]File, error) {
	if err := r.profile.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	base, err := r.baseImage(ctx, p)
	if err != nil {
		return nil, err
	}
	// Load the base once for every target and the overlay colors.
	rr := *r
	rr.base = base

	files := make([]File, 0, len(r.profile.Targets)+2)
	for _, t := range r.profile.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		format, err := ParseFormat(t.Format)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		data, err := rr.Render(ctx, p, t.Size, format, t.Quality)
		if err != nil {
			return nil, fmt.Errorf("render: export %s: %w", t.Name, err)
		}
		artboard.Logger().Debug("render: export target",
			"name", t.Name, "bytes", len(data), "elapsed", time.Since(start))
		files = append(files, File{Name: t.Name, Data: data})
	}

	overlay := Overlay(p, func(l *artboard.TextLayer) color.NRGBA {
		return textColor(l, base, p)
	})
	files = append(files, File{Name: OverlayName, Data: overlay})

	doc, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: export %s: %w", ProjectJSONName, err)
	}
	files = append(files, File{Name: ProjectJSONName, Data: doc})
	return files, nil
}

// Export renders p and writes a zip archive with the profile's rasters,
// overlay.svg and project.json to w. Every part is produced before the
// first byte is written, so a failed export writes nothing.
func (r *Renderer) Export(ctx context.Context, p *artboard.Project, w io.Writer) error {
	start := time.Now()
	files, err := r.ExportFiles(ctx, p)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteArchive(&buf, files); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("render: write archive: %w", err)
	}
	artboard.Logger().Info("render: export complete",
		"project", p.ID, "files", len(files), "elapsed", time.Since(start))
	return nil
}

// WriteArchive writes files as a zip archive to w.
func WriteArchive(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("render: archive %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("render: archive %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("render: archive: %w", err)
	}
	return nil
}
