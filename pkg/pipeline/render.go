package pipeline

import (
	"context"

	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/render"
	"github.com/anointarray/sealforge/pkg/render/raster"
	"github.com/anointarray/sealforge/pkg/render/vector"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
)

// Render draws a composed scene in each requested format.
//
// Baseline PNGs come from the bitmap backend. High-fidelity PNGs and all
// PDFs are produced by handing the SVG document to the rasterizer; its
// failure fails the whole render and no partial bytes are returned.
func (r *Runner) Render(ctx context.Context, scene *geometry.Scene, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	var doc []byte
	svgDoc := func() ([]byte, error) {
		if doc != nil {
			return doc, nil
		}
		var err error
		doc, err = vector.Render(scene, vector.WithLogger(logger))
		return doc, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch {
		case format == FormatSVG:
			data, err = svgDoc()

		case format == FormatPNG && opts.Fidelity == FidelityBaseline:
			data, err = raster.New(raster.WithLogger(logger)).RenderPNG(scene)

		case format == FormatPNG:
			var d []byte
			if d, err = svgDoc(); err == nil {
				data, err = r.rasterizer().Rasterize(ctx, d, scene.Size)
			}

		case format == FormatPDF:
			conv, ok := r.rasterizer().(render.Converter)
			if !ok {
				return nil, errs.New(errs.ErrCodeUnsupported, "rasterizer cannot produce pdf")
			}
			var d []byte
			if d, err = svgDoc(); err == nil {
				data, err = conv.Convert(ctx, d, render.FormatPDF, scene.Size)
			}

		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
