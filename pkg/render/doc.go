// Package render provides the rendering backends of a seal and the external
// SVG rasterizer.
//
// # Overview
//
// A seal is composed once into a backend-agnostic scene (package
// geometry) and then drawn by one of two backends:
//
//   - Bitmap drawing with fogleman/gg (in [raster] subpackage)
//   - SVG documents with ajstarks/svgo (in [vector] subpackage)
//
// # Format Conversion
//
// The high-fidelity export path rasterizes the SVG document with the
// external rsvg-convert tool (from librsvg). [RSVG] runs it under a
// timeout and kills the process when the deadline passes or the caller
// cancels, so a wedged rasterizer never stalls an export.
//
//	doc, _ := vector.Render(scene)
//	png, err := render.NewRSVG("", 30*time.Second).Rasterize(ctx, doc, 2400)
//	pdf, err := render.NewRSVG("", 30*time.Second).Convert(ctx, doc, render.FormatPDF, 2400)
//
// [raster]: github.com/anointarray/sealforge/pkg/render/raster
// [vector]: github.com/anointarray/sealforge/pkg/render/vector
package render
