package fallback

import (
	"slices"
	"testing"

	"github.com/anointarray/sealforge/pkg/seal/assets"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sri-yantra", "sri-yantra"},
		{"Sri_Yantra.png", "sri-yantra"},
		{"  sri yantra  ", "sri-yantra"},
		{"SRI-YANTRA.SVG", "sri-yantra"},
		{"Metatron's Cube", "metatrons-cube"},
		{"flower__of  life", "flower-of-life"},
		{"torus.v2", "torus.v2"},
		{"Torus.webp", "torus"},
		{"torus.JPEG", "torus"},
		{"torus.tiff", "torus"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalStripsResolverExtensions(t *testing.T) {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".svg", ".txt"} {
		name := "torus" + ext
		stripped := Canonical(name) == "torus"
		if stripped != assets.HasImageExt(name) {
			t.Errorf("Canonical(%q) stripped = %v, HasImageExt = %v", name, stripped, assets.HasImageExt(name))
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	want := []string{"flower-of-life", "metatrons-cube", "sri-yantra", "torus"}
	if got := Default().Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	for _, name := range []string{"Torus.png", "flower of life", "SRI_YANTRA", "metatron's cube"} {
		if _, ok := Default().Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
	if _, ok := Default().Lookup("om-mandala"); ok {
		t.Error("Lookup(om-mandala) should miss")
	}
}

func TestBuiltinsFitRadius(t *testing.T) {
	const r = 80.0
	for _, name := range Default().Names() {
		t.Run(name, func(t *testing.T) {
			gen, _ := Default().Lookup(name)
			shapes := gen(r)
			if len(shapes) == 0 {
				t.Fatal("no shapes")
			}
			if ext := Extent(shapes); ext > r {
				t.Errorf("Extent = %v, want <= %v", ext, r)
			}
		})
	}
}

func TestBuiltinsDeterministic(t *testing.T) {
	for _, name := range Default().Names() {
		gen, _ := Default().Lookup(name)
		a, b := gen(50), gen(50)
		if len(a) != len(b) {
			t.Fatalf("%s: %d vs %d shapes", name, len(a), len(b))
		}
		for i := range a {
			if a[i].Kind != b[i].Kind || a[i].Center != b[i].Center || a[i].Radius != b[i].Radius || !slices.Equal(a[i].Points, b[i].Points) {
				t.Errorf("%s: shape %d differs between calls", name, i)
			}
		}
	}
}

func TestShapeCounts(t *testing.T) {
	tests := []struct {
		gen     Generator
		name    string
		circles int
		lines   int
	}{
		{Torus, "torus", 13, 0},
		{FlowerOfLife, "flower-of-life", 20, 0},
		{SriYantra, "sri-yantra", 2, 9},
		{MetatronsCube, "metatrons-cube", 13, 78},
	}

	for _, tt := range tests {
		var circles, lines int
		for _, s := range tt.gen(100) {
			switch s.Kind {
			case KindCircle:
				circles++
			case KindPolyline:
				lines++
			}
		}
		if circles != tt.circles || lines != tt.lines {
			t.Errorf("%s: circles=%d lines=%d, want %d/%d", tt.name, circles, lines, tt.circles, tt.lines)
		}
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("Custom Seal", func(float64) []Shape { return []Shape{circle(0, 0, 1)} })
	gen, ok := r.Lookup("custom_seal.png")
	if !ok {
		t.Fatal("Lookup after Register failed")
	}
	if n := len(gen(10)); n != 1 {
		t.Errorf("len(shapes) = %d, want 1", n)
	}

	var nilReg *Registry
	if _, ok := nilReg.Lookup("torus"); ok {
		t.Error("nil registry should miss")
	}
}
