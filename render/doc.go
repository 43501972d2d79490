// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render rasterizes projects and builds export archives.
//
// # Pipeline
//
// A render targets a W×H surface mapped from the project's canonical space:
//
//  1. The base image is drawn stretched to fill the surface, then the
//     color filters and blur of the project run over it.
//  2. Visible layers are drawn in ascending z-order. Each layer is drawn to
//     its own surface, multiplied by its mask coverage and opacity, and
//     composited source-over.
//  3. Vignette and grain run once over the composite.
//
// Text layers draw, in order, a blurred backdrop patch, a drop shadow, an
// outline and the fill. Glyphs are rasterized from their outlines at the
// target resolution, so every export size is sharp.
//
// # Export
//
// [Renderer.Export] renders every target of an [ExportProfile] in order,
// builds the vector overlay and the project document, and writes them as
// one zip archive. Nothing is written unless every part succeeded.
//
// # Quick Start
//
//	r := render.New(render.WithAssets(assets.NewLoader()))
//	png, err := r.Render(ctx, project, 1024, render.PNG, 0)
//	...
//	f, _ := os.Create(render.ArchiveName(project))
//	err = r.Export(ctx, project, f)
package render
