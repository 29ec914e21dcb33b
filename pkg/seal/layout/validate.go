package layout

import (
	"math"

	errs "github.com/anointarray/sealforge/pkg/errors"
)

// Validate rejects layouts that cannot be drawn at all. Recoverable problems
// (unknown colors, unknown positions, missing glyphs) are not reported here;
// the compositor degrades the affected token instead.
func (l *Layout) Validate() error {
	if l == nil {
		return errs.New(errs.ErrCodeInvalidLayout, "layout is empty")
	}
	for i, t := range l.Ring1 {
		if t.Kind != "" && t.Kind != KindNumber {
			return errs.New(errs.ErrCodeInvalidLayout, "ring1Tokens[%d]: type %q, want %q", i, t.Kind, KindNumber)
		}
	}
	for i, t := range l.Ring2 {
		if t.Kind != "" && t.Kind != KindGlyph {
			return errs.New(errs.ErrCodeInvalidLayout, "ring2Tokens[%d]: type %q, want %q", i, t.Kind, KindGlyph)
		}
	}
	return nil
}

// Validate checks that the settings describe drawable, nested rings.
func (s Settings) Validate() error {
	values := map[string]float64{
		"centerX":       s.CenterX,
		"centerY":       s.CenterY,
		"centralRadius": s.CentralRadius,
		"innerRadius":   s.Ring1Radius,
		"middleRadius":  s.Ring2Radius,
		"outerRadius":   s.Ring3Radius,
		"canvasSize":    s.CanvasSize,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.New(errs.ErrCodeInvalidSettings, "%s is not a finite number", name)
		}
	}
	if s.CanvasSize <= 0 {
		return errs.New(errs.ErrCodeInvalidSettings, "canvasSize must be positive, got %v", s.CanvasSize)
	}
	if s.CentralRadius <= 0 {
		return errs.New(errs.ErrCodeInvalidSettings, "centralRadius must be positive, got %v", s.CentralRadius)
	}
	if !(s.CentralRadius < s.Ring1Radius && s.Ring1Radius < s.Ring2Radius && s.Ring2Radius < s.Ring3Radius) {
		return errs.New(errs.ErrCodeInvalidSettings,
			"radii must increase outward: central=%v inner=%v middle=%v outer=%v",
			s.CentralRadius, s.Ring1Radius, s.Ring2Radius, s.Ring3Radius)
	}
	return nil
}
