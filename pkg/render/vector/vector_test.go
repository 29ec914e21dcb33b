package vector

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"strings"
	"testing"

	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
	"github.com/anointarray/sealforge/pkg/seal/layout"
	"github.com/anointarray/sealforge/pkg/seal/palette"
)

func compose(t *testing.T, l *layout.Layout, size int, opts geometry.Options) *geometry.Scene {
	t.Helper()
	scene, err := geometry.Compose(l, layout.DefaultSettings(), size, opts)
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	return scene
}

func blueToken() *layout.Layout {
	return &layout.Layout{
		Ring1:       []layout.NumberToken{{Position: "12:00", Color: "BLUE", Value: 7}},
		Affirmation: "OM NAMAH SHIVAYA",
	}
}

// elements counts start elements by local name.
func elements(t *testing.T, doc []byte) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("invalid XML: %v", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			counts[se.Name.Local]++
		}
	}
	return counts
}

func TestRenderDocument(t *testing.T) {
	scene := compose(t, blueToken(), 600, geometry.Options{})
	doc, err := Render(scene)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	s := string(doc)

	if !strings.Contains(s, `viewBox="0 0 60000 60000"`) {
		t.Error("missing centipixel viewBox")
	}
	if !strings.Contains(s, `width="600"`) {
		t.Error("missing pixel width")
	}
	if !strings.Contains(s, "@font-face") {
		t.Error("missing embedded font")
	}

	counts := elements(t, doc)
	if want := len(scene.Layer(geometry.LayerText)) + 1; counts["text"] != want {
		t.Errorf("<text> = %d, want %d (ring 3 runes + numeral)", counts["text"], want)
	}
	if counts["image"] != 0 {
		t.Errorf("<image> = %d, want 0 without assets", counts["image"])
	}
	if !strings.Contains(s, `fill="`+palette.Gold+`"`) {
		t.Error("gold fill missing")
	}
	if !strings.Contains(s, `paint-order="stroke"`) {
		t.Error("numeral outline missing")
	}
}

func TestRenderWithoutFonts(t *testing.T) {
	doc, err := Render(compose(t, blueToken(), 300, geometry.Options{}), WithoutEmbeddedFonts())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(doc, []byte("@font-face")) {
		t.Error("font embedded despite WithoutEmbeddedFonts")
	}
}

func TestRenderImagesClipped(t *testing.T) {
	pngData := []byte("\x89PNG\r\n\x1a\n0000")
	om := &assets.Asset{Kind: assets.KindGlyph, Name: "om.png", Data: pngData}
	set := assets.NewSet(nil, map[string]*assets.Asset{"om.png": om}, nil)
	l := &layout.Layout{Ring2: []layout.GlyphToken{
		{Position: "12:00", Color: "GOLD", GlyphRef: "om.png"},
		{Position: "6:00", Color: "RED", GlyphRef: "om.png"},
	}}

	doc, err := Render(compose(t, l, 600, geometry.Options{Assets: set}))
	if err != nil {
		t.Fatal(err)
	}
	counts := elements(t, doc)
	if counts["image"] != 2 || counts["clipPath"] != 2 {
		t.Errorf("image/clipPath = %d/%d, want 2/2", counts["image"], counts["clipPath"])
	}
	s := string(doc)
	if !strings.Contains(s, `preserveAspectRatio="xMidYMid slice"`) {
		t.Error("images should crop to fill")
	}
	if !strings.Contains(s, "data:image/png;base64,") {
		t.Error("missing PNG data URI")
	}
	if !strings.Contains(s, `clip-path="url(#clip1)"`) {
		t.Error("second image should use its own clip")
	}
}

func TestRenderTranscodesGIF(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	tpl := &assets.Asset{Kind: assets.KindTemplate, Name: "torus.gif", Data: buf.Bytes()}
	l := blueToken()
	l.CentralDesign = "torus"

	doc, err := Render(compose(t, l, 300, geometry.Options{Assets: assets.NewSet(tpl, nil, nil)}))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(doc, []byte("data:image/gif")) || !bytes.Contains(doc, []byte("data:image/png;base64,")) {
		t.Error("GIF template should be embedded as PNG")
	}
}

func TestRenderDeterministic(t *testing.T) {
	a, _ := Render(compose(t, blueToken(), 600, geometry.Options{Mode: geometry.ModePreview, Debug: []int{2}}))
	b, _ := Render(compose(t, blueToken(), 600, geometry.Options{Mode: geometry.ModePreview, Debug: []int{2}}))
	if !bytes.Equal(a, b) {
		t.Error("SVG output differs between identical renders")
	}
}

func TestRenderRotation(t *testing.T) {
	doc, err := Render(compose(t, blueToken(), 600, geometry.Options{}), WithoutEmbeddedFonts())
	if err != nil {
		t.Fatal(err)
	}
	// The first rune sits at 12:00 unrotated; the second is rotated.
	if !bytes.Contains(doc, []byte(`transform="rotate(`)) {
		t.Error("ring-3 runes should be rotated")
	}
}

func TestRenderNilScene(t *testing.T) {
	if _, err := Render(nil); err == nil {
		t.Error("Render(nil) should fail")
	}
}
