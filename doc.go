// Package artboard provides the data model and editing primitives of a
// layered image-composition engine.
//
// # Overview
//
// An artboard [Project] is a base raster image plus an ordered stack of
// movable, maskable text and image layers and a set of global photo
// filters. The project is authored in canonical pixel space: the
// BaseWidth×BaseHeight coordinate system of the base image. Every layer
// position and every mask raster is expressed in that space, independent
// of the size it is previewed or exported at.
//
// # Quick Start
//
//	p := artboard.NewProject("gen-42", "https://cdn.example/gen-42.png", 1024, 1024)
//
//	layer := artboard.NewTextLayer("Hello", 512, 512)
//	p, err := artboard.Apply(p, artboard.AddLayer{Layer: layer})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Rendering and export live in the render package.
//	r := render.New()
//	png, err := r.Render(ctx, p, 1024, render.PNG, 0)
//
// # Architecture
//
// The module is organized into:
//   - artboard: Project, Filters, Layer variants, stack operations, geometry
//   - mask: per-layer reveal/hide raster
//   - text: font registry, shaping and line layout
//   - render: compositor, vector overlay and archive export
//   - editor: interactive session state machine (drag, mask editing, save)
//   - store, assets: persistence and source image adapters
//
// # Coordinate System
//
//   - Origin (0,0) at the top-left of the base image
//   - X increases right, Y increases down
//   - Layer rotation is in degrees, clockwise on screen
//
// # Immutability
//
// Projects are updated through [Apply], which clones the project, applies
// one or more operations and validates the result. The input project is
// never modified, so the previous state stays available to the caller.
package artboard
