package assets

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp"

	errs "github.com/anointarray/sealforge/pkg/errors"
)

// DefaultSVGSize is the pixel size SVG assets are rasterized to when the
// caller does not request one.
const DefaultSVGSize = 512

// Decode decodes an asset. Bitmap formats (PNG, JPEG, GIF, BMP, TIFF, WebP)
// are decoded as-is; SVG documents are rasterized to a square of svgSize
// pixels, preserving aspect ratio.
func Decode(data []byte, name string, svgSize int) (image.Image, error) {
	if IsSVG(data, name) {
		return decodeSVG(data, svgSize)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode %s", name)
	}
	return img, nil
}

// IsSVG reports whether an asset is an SVG document, by extension or by
// sniffing its first bytes.
func IsSVG(data []byte, name string) bool {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return true
	}
	head := bytes.TrimSpace(data[:min(len(data), 512)])
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

func decodeSVG(data []byte, size int) (image.Image, error) {
	if size <= 0 {
		size = DefaultSVGSize
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode svg")
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(size), float64(size)
	}
	scale := float64(size) / max(w, h)
	outW, outH := w*scale, h*scale
	icon.SetTarget((float64(size)-outW)/2, (float64(size)-outH)/2, outW, outH)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}
