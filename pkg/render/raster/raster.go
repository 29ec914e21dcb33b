// Package raster draws a composed seal scene into a bitmap with fogleman/gg.
//
// This is the baseline export backend and the preview backend. It makes no
// geometric decisions: every coordinate, radius, width and font size comes
// from the [geometry.Scene].
package raster

import (
	"bytes"
	"image"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/fonts"
	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
)

// outlineSteps is the number of offset copies used to outline text.
const outlineSteps = 8

// Renderer is a bitmap backend. The zero value is not usable; use [New].
type Renderer struct {
	logger *log.Logger
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithLogger sets the logger used for skipped images.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a bitmap renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws scene with a default renderer.
func Render(scene *geometry.Scene) (image.Image, error) {
	return New().Render(scene)
}

// RenderPNG draws scene with a default renderer and encodes it as PNG.
func RenderPNG(scene *geometry.Scene) ([]byte, error) {
	img, err := Render(scene)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// RenderPNG draws scene and encodes it as PNG.
func (r *Renderer) RenderPNG(scene *geometry.Scene) ([]byte, error) {
	img, err := r.Render(scene)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Render draws scene onto a size×size canvas, transparent where nothing is
// drawn.
func (r *Renderer) Render(scene *geometry.Scene) (image.Image, error) {
	if scene == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "nil scene")
	}
	d := &drawer{
		dc:     gg.NewContext(scene.Size, scene.Size),
		size:   scene.Size,
		logger: r.logger,
		images: make(map[*assets.Asset]image.Image),
		faces:  make(map[faceKey]font.Face),
	}
	defer d.close()

	for _, op := range scene.Ops {
		if err := d.draw(op); err != nil {
			return nil, err
		}
	}
	return d.dc.Image(), nil
}

type faceKey struct {
	size float64
	bold bool
}

type drawer struct {
	dc     *gg.Context
	size   int
	logger *log.Logger
	images map[*assets.Asset]image.Image
	faces  map[faceKey]font.Face
}

func (d *drawer) close() {
	for _, f := range d.faces {
		f.Close()
	}
}

func (d *drawer) draw(op geometry.Op) error {
	dc := d.dc
	switch op.Kind {
	case geometry.OpRect:
		dc.DrawRectangle(0, 0, float64(d.size), float64(d.size))
		dc.SetHexColor(op.Fill)
		dc.Fill()

	case geometry.OpDisk:
		dc.DrawCircle(op.X, op.Y, op.R)
		dc.SetHexColor(op.Fill)
		if op.Stroke == "" || op.Width <= 0 {
			dc.Fill()
			return nil
		}
		dc.FillPreserve()
		dc.SetHexColor(op.Stroke)
		dc.SetLineWidth(op.Width)
		dc.Stroke()

	case geometry.OpCircle:
		dc.DrawCircle(op.X, op.Y, op.R)
		dc.SetHexColor(op.Stroke)
		dc.SetLineWidth(op.Width)
		dc.Stroke()

	case geometry.OpPolyline:
		if len(op.Points) < 2 {
			return nil
		}
		dc.MoveTo(op.Points[0].X, op.Points[0].Y)
		for _, p := range op.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if op.Closed {
			dc.ClosePath()
		}
		dc.SetHexColor(op.Stroke)
		dc.SetLineWidth(op.Width)
		dc.Stroke()

	case geometry.OpImage:
		d.image(op)

	case geometry.OpText:
		return d.text(op)
	}
	return nil
}

// image draws op.Asset crop-to-fill into its circle. An asset that fails to
// decode is skipped, leaving whatever was drawn beneath.
func (d *drawer) image(op geometry.Op) {
	src, ok := d.images[op.Asset]
	if !ok {
		side := int(math.Ceil(2 * op.R))
		img, err := assets.Decode(op.Asset.Data, op.Asset.Name, side)
		if err != nil {
			d.logger.Warn("skipping undecodable asset", "name", op.Asset.Name, "error", err)
			d.images[op.Asset] = nil
			return
		}
		src = img
		d.images[op.Asset] = src
	}
	if src == nil {
		return
	}

	side := max(1, int(math.Ceil(2*op.R)))
	filled := imaging.Fill(src, side, side, imaging.Center, imaging.Lanczos)

	dc := d.dc
	dc.Push()
	dc.DrawCircle(op.X, op.Y, op.R)
	dc.Clip()
	dc.DrawImage(filled, int(math.Round(op.X-float64(side)/2)), int(math.Round(op.Y-float64(side)/2)))
	dc.ResetClip()
	dc.Pop()
}

func (d *drawer) face(size float64, bold bool) (font.Face, error) {
	key := faceKey{size, bold}
	if f, ok := d.faces[key]; ok {
		return f, nil
	}
	f, err := fonts.Face(size, bold)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "load font")
	}
	d.faces[key] = f
	return f, nil
}

// text draws op.Text centred on its point, rotated clockwise, with an
// optional outline built from offset copies.
func (d *drawer) text(op geometry.Op) error {
	face, err := d.face(op.FontSize, op.Bold)
	if err != nil {
		return err
	}
	dc := d.dc
	dc.Push()
	defer dc.Pop()
	dc.SetFontFace(face)
	if op.Rotate != 0 {
		dc.RotateAbout(gg.Radians(op.Rotate), op.X, op.Y)
	}

	if op.Stroke != "" && op.Width > 0 {
		dc.SetHexColor(op.Stroke)
		for i := range outlineSteps {
			th := float64(i) * 2 * math.Pi / outlineSteps
			dc.DrawStringAnchored(op.Text, op.X+op.Width*math.Cos(th), op.Y+op.Width*math.Sin(th), 0.5, 0.5)
		}
	}
	dc.SetHexColor(op.Fill)
	dc.DrawStringAnchored(op.Text, op.X, op.Y, 0.5, 0.5)
	return nil
}
