package geometry

import (
	"fmt"
	"strings"

	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/textfit"
)

// Mode selects the output variant of a seal.
type Mode int

const (
	// ModeExport is the product image: transparent outside the gold ring.
	ModeExport Mode = iota
	// ModePreview is the on-screen variant: white canvas, ring-3 stroke,
	// glyph text fallbacks and optional debug ticks.
	ModePreview
)

// String returns the mode name used in options and cache keys.
func (m Mode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "export"
}

// ParseMode parses "export" or "preview" (empty means export).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "export":
		return ModeExport, nil
	case "preview":
		return ModePreview, nil
	}
	return ModeExport, fmt.Errorf("unknown mode %q", s)
}

// Layer orders operations; a layer is emitted completely before the next.
type Layer int

const (
	LayerBackground Layer = iota
	LayerRings
	LayerGold
	LayerCentral
	LayerRing1
	LayerRing2
	LayerText
	LayerDebug
)

var layerNames = [...]string{"background", "rings", "gold", "central", "ring1", "ring2", "text", "debug"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("layer(%d)", int(l))
}

// OpKind tags an [Op].
type OpKind int

const (
	// OpRect fills the whole canvas with Fill.
	OpRect OpKind = iota
	// OpDisk fills a circle with Fill and, when Stroke is set, outlines it.
	OpDisk
	// OpCircle strokes a circle.
	OpCircle
	// OpImage draws Asset crop-to-fill inside a circle, clipped to it.
	OpImage
	// OpText draws Text centred on (X, Y), rotated clockwise by Rotate
	// degrees, filled with Fill and outlined with Stroke when set.
	OpText
	// OpPolyline strokes Points, closing the path when Closed.
	OpPolyline
)

// Point is an absolute canvas coordinate in pixels.
type Point struct {
	X, Y float64
}

// Op is one drawing primitive. Only the fields of its Kind are meaningful.
type Op struct {
	Kind  OpKind
	Layer Layer

	X, Y float64 // centre
	R    float64 // circle radius

	Fill   string  // "#RRGGBB", empty for none
	Stroke string  // "#RRGGBB", empty for none
	Width  float64 // stroke width

	Text     string
	FontSize float64
	Bold     bool
	Rotate   float64

	Asset *assets.Asset

	Points []Point
	Closed bool
}

// Degradation kinds recorded in [Scene.Degradations].
const (
	DegradeMissingTemplate  = "missing_template"
	DegradeFallbackShape    = "fallback_shape"
	DegradeMissingGlyph     = "missing_glyph"
	DegradeUnknownColor     = "unknown_color"
	DegradeUnknownPosition  = "unknown_position"
	DegradeDuplicate        = "duplicate_position"
	DegradeEmptyAffirmation = "empty_affirmation"
	DegradeClamped          = "clamped"
)

// Degradation is a non-fatal problem corrected while composing.
type Degradation struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func (d Degradation) String() string {
	return d.Kind + ": " + d.Detail
}

// Dropped is a token removed because a later token of the same ring claimed
// its position.
type Dropped struct {
	Ring     int     `json:"ring"`
	Index    int     `json:"index"`
	Position string  `json:"position"`
	Angle    float64 `json:"angle"`
	Winner   int     `json:"winner"`
}

// Radii are the pixel radii a scene was composed with, after clamping.
type Radii struct {
	Central float64 `json:"central"`
	Ring1   float64 `json:"ring1"`
	Ring2   float64 `json:"ring2"`
	Ring3   float64 `json:"ring3"`
	Gold    float64 `json:"gold"`
}

// Scene is a composed seal ready for a backend.
type Scene struct {
	Size  int
	Mode  Mode
	Scale float64

	// CX, CY is the seal centre in pixels.
	CX, CY float64
	Radii  Radii

	// GoldWidth is the stroke width of the gold annulus.
	GoldWidth float64

	Text textfit.Result
	Ops  []Op

	Clamped      bool
	Dropped      []Dropped
	Degradations []Degradation
}

// Layer returns the operations of one layer, in emission order.
func (s *Scene) Layer(l Layer) []Op {
	var ops []Op
	for _, op := range s.Ops {
		if op.Layer == l {
			ops = append(ops, op)
		}
	}
	return ops
}

// Degraded reports whether any degradation of kind was recorded.
func (s *Scene) Degraded(kind string) bool {
	for _, d := range s.Degradations {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Assets returns the distinct assets drawn by the scene.
func (s *Scene) Assets() []*assets.Asset {
	seen := make(map[*assets.Asset]bool)
	var out []*assets.Asset
	for _, op := range s.Ops {
		if op.Kind == OpImage && op.Asset != nil && !seen[op.Asset] {
			seen[op.Asset] = true
			out = append(out, op.Asset)
		}
	}
	return out
}
