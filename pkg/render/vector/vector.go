// Package vector writes a composed seal scene as an SVG document.
//
// This is the high-fidelity export backend: the document is rasterized by an
// external renderer (see package render), which keeps circular text crisp
// at large sizes. Like the bitmap backend it only translates scene
// operations; it never computes geometry.
//
// # Precision
//
// The document's viewBox is expressed in hundredths of a pixel
// (width=size, viewBox 0 0 size*100 size*100), so integer SVG coordinates
// carry sub-pixel positions.
//
// # Images
//
// Templates and glyphs are embedded as base64 data URIs with
// preserveAspectRatio="xMidYMid slice", clipped by a circle: the same
// crop-to-fill the bitmap backend performs. Formats rasterizers commonly
// reject (GIF, BMP, TIFF, WebP) are transcoded to PNG first.
package vector

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/fonts"
	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
)

// Unit is the number of viewBox units per output pixel.
const Unit = 100

// Option configures SVG rendering.
type Option func(*renderer)

// WithoutEmbeddedFonts omits the @font-face block. The document is smaller
// but its text depends on fonts installed where it is rasterized.
func WithoutEmbeddedFonts() Option {
	return func(r *renderer) { r.embedFonts = false }
}

// WithLogger sets the logger used for skipped images.
func WithLogger(l *log.Logger) Option {
	return func(r *renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

type renderer struct {
	embedFonts bool
	logger     *log.Logger

	canvas *svg.SVG
	clips  int
	hrefs  map[*assets.Asset]string
}

// Render writes scene as a standalone SVG document.
func Render(scene *geometry.Scene, opts ...Option) ([]byte, error) {
	if scene == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "nil scene")
	}
	r := &renderer{
		embedFonts: true,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		hrefs:      make(map[*assets.Asset]string),
	}
	for _, opt := range opts {
		opt(r)
	}

	var buf bytes.Buffer
	r.canvas = svg.New(&buf)
	r.canvas.Startview(scene.Size, scene.Size, 0, 0, scene.Size*Unit, scene.Size*Unit)
	if r.embedFonts {
		r.canvas.Style("text/css", fontFaces())
	}
	for _, op := range scene.Ops {
		r.draw(scene, op)
	}
	r.canvas.End()
	return buf.Bytes(), nil
}

func fontFaces() string {
	return fmt.Sprintf(
		"@font-face{font-family:'%s';font-weight:400;src:url(data:font/ttf;base64,%s) format('truetype');}\n"+
			"@font-face{font-family:'%s';font-weight:700;src:url(data:font/ttf;base64,%s) format('truetype');}",
		fonts.FontFamily, fonts.RegularTTFBase64(), fonts.FontFamily, fonts.BoldTTFBase64())
}

// u converts pixels to viewBox units.
func u(v float64) int {
	return int(math.Round(v * Unit))
}

func strokeAttrs(stroke string, width float64) string {
	if stroke == "" || width <= 0 {
		return `stroke="none"`
	}
	return fmt.Sprintf(`stroke="%s" stroke-width="%d"`, stroke, u(width))
}

func (r *renderer) draw(scene *geometry.Scene, op geometry.Op) {
	c := r.canvas
	switch op.Kind {
	case geometry.OpRect:
		c.Rect(0, 0, u(float64(scene.Size)), u(float64(scene.Size)), fmt.Sprintf(`fill="%s"`, op.Fill))

	case geometry.OpDisk:
		c.Circle(u(op.X), u(op.Y), u(op.R), fmt.Sprintf(`fill="%s"`, op.Fill), strokeAttrs(op.Stroke, op.Width))

	case geometry.OpCircle:
		c.Circle(u(op.X), u(op.Y), u(op.R), `fill="none"`, strokeAttrs(op.Stroke, op.Width))

	case geometry.OpPolyline:
		xs, ys := make([]int, len(op.Points)), make([]int, len(op.Points))
		for i, p := range op.Points {
			xs[i], ys[i] = u(p.X), u(p.Y)
		}
		style := []string{`fill="none"`, strokeAttrs(op.Stroke, op.Width), `stroke-linejoin="round"`}
		if op.Closed {
			c.Polygon(xs, ys, style...)
		} else {
			c.Polyline(xs, ys, style...)
		}

	case geometry.OpImage:
		r.image(op)

	case geometry.OpText:
		r.text(op)
	}
}

func (r *renderer) image(op geometry.Op) {
	href, ok := r.hrefs[op.Asset]
	if !ok {
		var err error
		href, err = dataURI(op.Asset)
		if err != nil {
			r.logger.Warn("skipping undecodable asset", "name", op.Asset.Name, "error", err)
		}
		r.hrefs[op.Asset] = href
	}
	if href == "" {
		return
	}

	id := fmt.Sprintf("clip%d", r.clips)
	r.clips++

	c := r.canvas
	c.Def()
	c.ClipPath(fmt.Sprintf(`id="%s"`, id))
	c.Circle(u(op.X), u(op.Y), u(op.R))
	c.ClipEnd()
	c.DefEnd()

	side := u(2 * op.R)
	c.Image(u(op.X)-side/2, u(op.Y)-side/2, side, side, href,
		`preserveAspectRatio="xMidYMid slice"`, fmt.Sprintf(`clip-path="url(#%s)"`, id))
}

// dataURI embeds an asset, transcoding formats outside PNG, JPEG and SVG.
func dataURI(a *assets.Asset) (string, error) {
	mime, data := a.MIME(), a.Data
	switch mime {
	case "image/png", "image/jpeg", "image/svg+xml":
	default:
		img, err := assets.Decode(a.Data, a.Name, 0)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return "", err
		}
		mime, data = "image/png", buf.Bytes()
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (r *renderer) text(op geometry.Op) {
	weight := 400
	if op.Bold {
		weight = 700
	}
	attrs := []string{
		`text-anchor="middle"`,
		`dominant-baseline="central"`,
		fmt.Sprintf(`font-family="%s"`, fonts.FallbackFontFamily),
		fmt.Sprintf(`font-size="%d"`, u(op.FontSize)),
		fmt.Sprintf(`font-weight="%d"`, weight),
		fmt.Sprintf(`fill="%s"`, op.Fill),
	}
	if op.Stroke != "" && op.Width > 0 {
		attrs = append(attrs, strokeAttrs(op.Stroke, 2*op.Width), `paint-order="stroke"`, `stroke-linejoin="round"`)
	}
	if op.Rotate != 0 {
		attrs = append(attrs, fmt.Sprintf(`transform="rotate(%.3f %d %d)"`, op.Rotate, u(op.X), u(op.Y)))
	}
	r.canvas.Text(u(op.X), u(op.Y), op.Text, attrs...)
}
