// Package fonts provides the embedded fonts used by both seal backends.
//
// The bitmap backend draws with faces parsed from the Go font family
// (golang.org/x/image/font/gofont); the SVG backend embeds the same TTF bytes
// as a base64 @font-face so rsvg-convert and browsers draw identical glyphs.
// Nothing is loaded from the system.
package fonts

import (
	"encoding/base64"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name of the embedded font.
const FontFamily = "Go"

// FallbackFontFamily lists families used when the embedded font is not honoured.
const FallbackFontFamily = `'Go', 'DejaVu Sans', 'Helvetica Neue', Arial, sans-serif`

// RegularTTF returns the Go Regular TTF data.
func RegularTTF() []byte {
	return goregular.TTF
}

// BoldTTF returns the Go Bold TTF data.
func BoldTTF() []byte {
	return gobold.TTF
}

// Parsed fonts (parsed once on first access).
var (
	regular, bold *truetype.Font
	parseErr      error
	parseOnce     sync.Once
	boldBase64    string
	regularBase64 string
	base64Once    sync.Once
)

func parse() {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
}

// Font returns the parsed regular or bold font.
func Font(isBold bool) (*truetype.Font, error) {
	parse()
	if parseErr != nil {
		return nil, parseErr
	}
	if isBold {
		return bold, nil
	}
	return regular, nil
}

// Face returns a new face of the given pixel size. Faces are not safe for
// concurrent use; callers create one per render.
func Face(size float64, isBold bool) (font.Face, error) {
	f, err := Font(isBold)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

func encode() {
	base64Once.Do(func() {
		regularBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
		boldBase64 = base64.StdEncoding.EncodeToString(gobold.TTF)
	})
}

// RegularTTFBase64 returns the regular TTF data as a base64 string.
// The result is cached after first computation.
func RegularTTFBase64() string {
	encode()
	return regularBase64
}

// BoldTTFBase64 returns the bold TTF data as a base64 string.
// The result is cached after first computation.
func BoldTTFBase64() string {
	encode()
	return boldBase64
}
