// Package pkg provides the core libraries of Sealforge, a compositor for
// circular sacred seal images.
//
// # Overview
//
// A seal is a central design surrounded by three concentric rings: numerals
// in colored disks on ring 1, glyph images on ring 2 and a repeated
// affirmation laid around ring 3, all framed by a gold border. The pkg
// directory is organized into four main areas:
//
//  1. [seal] - Domain logic (palette, clock positions, layouts, text fitting,
//     asset resolution, fallback shapes, scene composition)
//  2. [render] - Backends that draw a composed scene (bitmap, SVG) and the
//     external rasterizer
//  3. [pipeline] - Orchestration (validate → resolve → compose → render)
//  4. Infrastructure: [cache], [artifact], [config], [server],
//     [observability], [errors]
//
// # Architecture
//
// The typical data flow through Sealforge:
//
//	Layout JSON + settings JSON
//	         ↓
//	    [seal/assets] (resolve templates and glyphs once per export)
//	         ↓
//	    [seal/geometry] (compose a backend-agnostic scene)
//	         ↓
//	    [render/raster] or [render/vector] + rsvg-convert
//	         ↓
//	    PNG / SVG / PDF output
//
// # Quick Start
//
//	l, _ := layout.ReadLayoutFile("seal.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	runner.Resolver = assets.NewResolver("/srv/sealforge")
//	png, err := runner.ExportSeal(ctx, l, layout.DefaultSettings(), 1200)
//
// [seal]: github.com/anointarray/sealforge/pkg/seal
// [render]: github.com/anointarray/sealforge/pkg/render
// [pipeline]: github.com/anointarray/sealforge/pkg/pipeline
// [cache]: github.com/anointarray/sealforge/pkg/cache
// [artifact]: github.com/anointarray/sealforge/pkg/artifact
// [config]: github.com/anointarray/sealforge/pkg/config
// [server]: github.com/anointarray/sealforge/pkg/server
// [observability]: github.com/anointarray/sealforge/pkg/observability
// [errors]: github.com/anointarray/sealforge/pkg/errors
// [seal/assets]: github.com/anointarray/sealforge/pkg/seal/assets
// [seal/geometry]: github.com/anointarray/sealforge/pkg/seal/geometry
// [render/raster]: github.com/anointarray/sealforge/pkg/render/raster
// [render/vector]: github.com/anointarray/sealforge/pkg/render/vector
package pkg
