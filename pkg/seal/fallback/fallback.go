// Package fallback provides procedural placeholder shapes for central designs
// whose template image is missing.
//
// Shapes are plain circles and polylines in coordinates relative to the
// centre of the central circle. The geometry package turns them into scene
// operations, so every rendering backend draws the same placeholder.
//
// Names are matched loosely: "Sri_Yantra.png", "sri yantra" and "SRI-YANTRA"
// all select the same generator.
package fallback

import (
	"math"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/anointarray/sealforge/pkg/seal/assets"
)

// Kind tags a [Shape].
type Kind int

const (
	KindCircle Kind = iota
	KindPolyline
)

// Point is a coordinate relative to the central circle's centre.
type Point struct {
	X, Y float64
}

// Shape is one stroked primitive of a placeholder.
type Shape struct {
	Kind   Kind
	Center Point   // KindCircle
	Radius float64 // KindCircle
	Points []Point // KindPolyline
	Closed bool    // KindPolyline
}

// Generator builds a placeholder fitting inside a circle of radius r.
type Generator func(r float64) []Shape

// Registry maps canonical design names to generators. It is safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]Generator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{gens: make(map[string]Generator)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared registry holding the built-in shapes.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register("torus", Torus)
		defaultRegistry.Register("flower-of-life", FlowerOfLife)
		defaultRegistry.Register("sri-yantra", SriYantra)
		defaultRegistry.Register("metatrons-cube", MetatronsCube)
	})
	return defaultRegistry
}

// Register adds or replaces the generator for name.
func (r *Registry) Register(name string, gen Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[Canonical(name)] = gen
}

// Lookup returns the generator registered under name.
func (r *Registry) Lookup(name string) (Generator, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.gens[Canonical(name)]
	return gen, ok
}

// Names returns the registered canonical names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gens))
	for name := range r.gens {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Canonical lowercases name, drops an image extension and apostrophes, and
// joins words with '-'.
func Canonical(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if assets.HasImageExt(s) {
		s = strings.TrimSuffix(s, filepath.Ext(s))
	}
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	s = strings.Map(func(r rune) rune {
		if r == '_' || r == ' ' {
			return '-'
		}
		return r
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

func circle(x, y, r float64) Shape {
	return Shape{Kind: KindCircle, Center: Point{x, y}, Radius: r}
}

func polar(d, deg float64) Point {
	th := deg * math.Pi / 180
	return Point{d * math.Cos(th), d * math.Sin(th)}
}

// Torus draws twelve overlapping circles around the centre.
func Torus(r float64) []Shape {
	shapes := make([]Shape, 0, 13)
	for k := range 12 {
		c := polar(0.45*r, float64(k)*30)
		shapes = append(shapes, circle(c.X, c.Y, 0.45*r))
	}
	return append(shapes, circle(0, 0, 0.92*r))
}

// FlowerOfLife draws the 19-circle pattern inside an enclosing circle.
func FlowerOfLife(r float64) []Shape {
	p := 0.28 * r
	shapes := []Shape{circle(0, 0, p)}
	for k := range 6 {
		c := polar(p, float64(k)*60-90)
		shapes = append(shapes, circle(c.X, c.Y, p))
	}
	for k := range 6 {
		c := polar(2*p, float64(k)*60-90)
		shapes = append(shapes, circle(c.X, c.Y, p))
		c = polar(p*math.Sqrt(3), float64(k)*60-60)
		shapes = append(shapes, circle(c.X, c.Y, p))
	}
	return append(shapes, circle(0, 0, 3*p+0.04*r))
}

// SriYantra draws four upward and five downward interlocking triangles with
// the central point.
func SriYantra(r float64) []Shape {
	type tri struct {
		s, dy float64
		up    bool
	}
	tris := []tri{
		{0.90, 0.05, false}, {0.70, 0.10, false}, {0.55, -0.05, false}, {0.40, 0.12, false}, {0.25, 0.02, false},
		{0.85, -0.05, true}, {0.62, -0.10, true}, {0.45, 0.05, true}, {0.30, -0.10, true},
	}
	shapes := make([]Shape, 0, len(tris)+2)
	for _, t := range tris {
		s, dy := t.s*r, t.dy*r
		half := s * math.Sqrt(3) / 2
		apex, base := dy+s, dy-s/2
		if t.up {
			apex, base = dy-s, dy+s/2
		}
		shapes = append(shapes, Shape{
			Kind:   KindPolyline,
			Points: []Point{{0, apex}, {-half, base}, {half, base}},
			Closed: true,
		})
	}
	return append(shapes, circle(0, 0, 0.03*r), circle(0, 0, 0.95*r))
}

// MetatronsCube draws the 13 circles of the fruit of life and every line
// joining their centres.
func MetatronsCube(r float64) []Shape {
	d, c := 0.4*r, 0.13*r
	centres := []Point{{0, 0}}
	for k := range 6 {
		centres = append(centres, polar(d, float64(k)*60-90))
	}
	for k := range 6 {
		centres = append(centres, polar(2*d, float64(k)*60-90))
	}

	shapes := make([]Shape, 0, len(centres)+78)
	for _, p := range centres {
		shapes = append(shapes, circle(p.X, p.Y, c))
	}
	for i := range centres {
		for j := i + 1; j < len(centres); j++ {
			shapes = append(shapes, Shape{Kind: KindPolyline, Points: []Point{centres[i], centres[j]}})
		}
	}
	return shapes
}

// Extent returns the largest distance from the centre reached by shapes.
func Extent(shapes []Shape) float64 {
	var m float64
	for _, s := range shapes {
		switch s.Kind {
		case KindCircle:
			m = max(m, math.Hypot(s.Center.X, s.Center.Y)+s.Radius)
		case KindPolyline:
			for _, p := range s.Points {
				m = max(m, math.Hypot(p.X, p.Y))
			}
		}
	}
	return m
}
