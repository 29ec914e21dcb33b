package geometry

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/clock"
	"github.com/anointarray/sealforge/pkg/seal/fallback"
	"github.com/anointarray/sealforge/pkg/seal/layout"
	"github.com/anointarray/sealforge/pkg/seal/palette"
	"github.com/anointarray/sealforge/pkg/seal/textfit"
)

// DebugColor is used for tick markers.
const DebugColor = "#FF0000"

// SeparatorScale enlarges the ring-3 separator relative to the other runes.
const SeparatorScale = 1.2

// Options controls [Compose]. The zero value composes an export seal with
// default metrics, no assets and the built-in fallback shapes.
type Options struct {
	Mode    Mode
	Metrics Metrics

	// Assets holds the resolved template and glyphs; nil means none resolved.
	Assets *assets.Set

	// Fallbacks supplies placeholder shapes for a missing template. Nil
	// selects [fallback.Default]; an empty registry disables placeholders.
	Fallbacks *fallback.Registry

	// Debug lists the rings (1, 2, 3) that get tick markers in preview mode.
	Debug []int

	// TextFit is the font band at [ReferenceSize]; it is scaled to the
	// output size. Zero fields take [textfit.DefaultOptions] values.
	TextFit textfit.Options

	// Logger receives debug detail. Degradations are recorded on the scene
	// and left to the caller to report.
	Logger *log.Logger
}

// Compose validates its inputs and builds the scene of one seal at size×size
// pixels. Inputs are not modified.
func Compose(l *layout.Layout, s layout.Settings, size int, opts Options) (*Scene, error) {
	if err := errs.ValidateSize(size); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	c := &composer{
		layout:   l,
		settings: s,
		opts:     opts,
		px:       opts.Metrics.withDefaults().at(size),
		logger:   opts.Logger,
		scene:    &Scene{Size: size, Mode: opts.Mode, Scale: s.Scale(size)},
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c.opts.Fallbacks == nil {
		c.opts.Fallbacks = fallback.Default()
	}

	if err := c.radii(); err != nil {
		return nil, err
	}
	c.background()
	c.rings()
	c.gold()
	c.central()
	c.ring1()
	c.ring2()
	c.text()
	c.debug()
	return c.scene, nil
}

type composer struct {
	layout   *layout.Layout
	settings layout.Settings
	opts     Options
	px       pixels
	logger   *log.Logger
	scene    *Scene
}

func (c *composer) emit(op Op) {
	c.scene.Ops = append(c.scene.Ops, op)
}

func (c *composer) degrade(kind, detail string) {
	c.scene.Degradations = append(c.scene.Degradations, Degradation{Kind: kind, Detail: detail})
}

// radii scales the settings to pixels and shrinks ring 3 when the gold ring
// would leave the canvas.
func (c *composer) radii() error {
	sc := c.scene
	scale := sc.Scale
	half := float64(sc.Size) / 2
	ox, oy := c.settings.CenterX*scale, c.settings.CenterY*scale
	sc.CX, sc.CY = half+ox, half+oy

	r := Radii{
		Central: c.settings.CentralRadius * scale,
		Ring1:   c.settings.Ring1Radius * scale,
		Ring2:   c.settings.Ring2Radius * scale,
		Ring3:   c.settings.Ring3Radius * scale,
	}

	limit := half - max(math.Abs(ox), math.Abs(oy)) - c.px.margin
	extra := c.px.goldOffset + c.px.goldWidth/2
	if r.Ring3+extra > limit {
		target := limit - extra
		if target <= 0 {
			return errs.New(errs.ErrCodeInvalidSettings,
				"centre offset (%v, %v) leaves no room for the seal at %dpx", c.settings.CenterX, c.settings.CenterY, sc.Size)
		}
		if target > r.Ring2 {
			r.Ring3 = target
		} else {
			// Ring 3 cannot pass ring 2; shrink every radius together.
			f := target / r.Ring3
			r.Central *= f
			r.Ring1 *= f
			r.Ring2 *= f
			r.Ring3 = target
		}
		sc.Clamped = true
		c.degrade(DegradeClamped, fmt.Sprintf("outer radius %.2fpx reduced to %.2fpx", c.settings.Ring3Radius*scale, r.Ring3))
	}
	r.Gold = r.Ring3 + c.px.goldOffset
	sc.Radii = r
	sc.GoldWidth = c.px.goldWidth
	return nil
}

func (c *composer) background() {
	sc := c.scene
	if sc.Mode == ModePreview {
		c.emit(Op{Kind: OpRect, Layer: LayerBackground, Fill: palette.White})
		return
	}
	c.emit(Op{Kind: OpDisk, Layer: LayerBackground, X: sc.CX, Y: sc.CY, R: sc.Radii.Gold, Fill: palette.White})
}

func (c *composer) rings() {
	sc := c.scene
	radii := []float64{sc.Radii.Ring1, sc.Radii.Ring2}
	if sc.Mode == ModePreview {
		radii = append(radii, sc.Radii.Ring3)
	}
	for _, r := range radii {
		c.emit(Op{Kind: OpCircle, Layer: LayerRings, X: sc.CX, Y: sc.CY, R: r, Stroke: palette.Black, Width: c.px.ringStroke})
	}
}

func (c *composer) gold() {
	sc := c.scene
	c.emit(Op{Kind: OpCircle, Layer: LayerGold, X: sc.CX, Y: sc.CY, R: sc.Radii.Gold, Stroke: palette.Gold, Width: sc.GoldWidth})
}

func (c *composer) central() {
	sc := c.scene
	name := strings.TrimSpace(c.layout.CentralDesign)

	if tpl, ok := c.opts.Assets.Template(); ok {
		c.emit(Op{Kind: OpImage, Layer: LayerCentral, X: sc.CX, Y: sc.CY, R: sc.Radii.Central, Asset: tpl})
	} else if name != "" {
		c.degrade(DegradeMissingTemplate, name)
		if gen, ok := c.opts.Fallbacks.Lookup(name); ok {
			c.fallbackShapes(gen(sc.Radii.Central))
			c.degrade(DegradeFallbackShape, fallback.Canonical(name))
		}
	}
	c.emit(Op{Kind: OpCircle, Layer: LayerCentral, X: sc.CX, Y: sc.CY, R: sc.Radii.Central, Stroke: palette.Black, Width: c.px.centralBorder})
}

func (c *composer) fallbackShapes(shapes []fallback.Shape) {
	sc := c.scene
	for _, s := range shapes {
		switch s.Kind {
		case fallback.KindCircle:
			c.emit(Op{Kind: OpCircle, Layer: LayerCentral, X: sc.CX + s.Center.X, Y: sc.CY + s.Center.Y, R: s.Radius,
				Stroke: palette.Gold, Width: c.px.centralBorder})
		case fallback.KindPolyline:
			pts := make([]Point, len(s.Points))
			for i, p := range s.Points {
				pts[i] = Point{sc.CX + p.X, sc.CY + p.Y}
			}
			c.emit(Op{Kind: OpPolyline, Layer: LayerCentral, Points: pts, Closed: s.Closed,
				Stroke: palette.Gold, Width: c.px.centralBorder})
		}
	}
}

// placement is a token that survived position resolution.
type placement struct {
	index int
	angle float64
}

// place resolves clock positions for one ring. Unknown positions are skipped;
// when two tokens share a position the later one wins.
func (c *composer) place(ring int, positions []string, declared []float64) []placement {
	var out []placement
	slot := make(map[float64]int)
	for i, pos := range positions {
		deg, ok := clock.AngleFor(pos)
		if !ok {
			c.degrade(DegradeUnknownPosition, fmt.Sprintf("ring%d[%d] %q", ring, i, pos))
			continue
		}
		if d := math.Mod(math.Abs(declared[i]-deg), 360); d > 1e-6 && d < 360-1e-6 {
			c.logger.Debug("token angle differs from position", "ring", ring, "index", i, "position", pos, "angle", declared[i], "table", deg)
		}
		if j, dup := slot[deg]; dup {
			prev := out[j]
			c.scene.Dropped = append(c.scene.Dropped, Dropped{
				Ring: ring, Index: prev.index, Position: positions[prev.index], Angle: deg, Winner: i,
			})
			label, _ := clock.Canonical(pos)
			c.degrade(DegradeDuplicate, fmt.Sprintf("ring%d[%d] replaced by ring%d[%d] at %s", ring, prev.index, ring, i, label))
			out[j].index = -1
		}
		slot[deg] = len(out)
		out = append(out, placement{index: i, angle: deg})
	}
	return slices.DeleteFunc(out, func(p placement) bool { return p.index < 0 })
}

func (c *composer) color(ring, index int, name string) string {
	hex, ok := palette.Lookup(name)
	if !ok {
		c.degrade(DegradeUnknownColor, fmt.Sprintf("ring%d[%d] %q", ring, index, name))
	}
	return hex
}

func (c *composer) ring1() {
	sc := c.scene
	tokens := c.layout.Ring1
	positions := make([]string, len(tokens))
	declared := make([]float64, len(tokens))
	for i, t := range tokens {
		positions[i], declared[i] = t.Position, t.Angle
	}

	for _, p := range c.place(1, positions, declared) {
		t := tokens[p.index]
		fill := c.color(1, p.index, t.Color)
		x, y := clock.Point(sc.CX, sc.CY, sc.Radii.Ring1, p.angle)
		c.emit(Op{Kind: OpDisk, Layer: LayerRing1, X: x, Y: y, R: c.px.ring1Token,
			Fill: fill, Stroke: palette.Black, Width: c.px.tokenOutline})
		c.emit(Op{Kind: OpText, Layer: LayerRing1, X: x, Y: y, Text: strconv.Itoa(int(t.Value)),
			FontSize: c.px.numeralFont, Bold: true,
			Fill: palette.ContrastingText(fill), Stroke: palette.Outline(fill), Width: c.px.numeralOutline})
	}
}

func (c *composer) ring2() {
	sc := c.scene
	tokens := c.layout.Ring2
	positions := make([]string, len(tokens))
	declared := make([]float64, len(tokens))
	for i, t := range tokens {
		positions[i], declared[i] = t.Position, t.Angle
	}

	reported := make(map[string]bool)
	for _, p := range c.place(2, positions, declared) {
		t := tokens[p.index]
		fill := c.color(2, p.index, t.Color)
		x, y := clock.Point(sc.CX, sc.CY, sc.Radii.Ring2, p.angle)
		c.emit(Op{Kind: OpDisk, Layer: LayerRing2, X: x, Y: y, R: c.px.ring2Token,
			Fill: fill, Stroke: palette.Black, Width: c.px.tokenOutline})

		ref := strings.TrimSpace(t.GlyphRef)
		if glyph, ok := c.opts.Assets.Glyph(ref); ok {
			c.emit(Op{Kind: OpImage, Layer: LayerRing2, X: x, Y: y, R: c.px.glyphR, Asset: glyph})
			continue
		}
		if ref != "" && !reported[ref] {
			reported[ref] = true
			c.degrade(DegradeMissingGlyph, ref)
		}
		if sc.Mode == ModePreview {
			c.emit(Op{Kind: OpText, Layer: LayerRing2, X: x, Y: y, Text: Initials(ref),
				FontSize: c.px.fallbackFont, Bold: true, Fill: palette.ContrastingText(fill)})
		}
	}
}

func (c *composer) text() {
	sc := c.scene
	if textfit.Normalize(c.layout.Affirmation) == "" {
		c.degrade(DegradeEmptyAffirmation, "using "+strconv.Quote(textfit.DefaultPhrase))
	}

	fit := textfit.Fit(c.layout.Affirmation, sc.Radii.Ring3, c.textOptions())
	sc.Text = fit

	angles := fit.Angles()
	for i, r := range fit.Runes() {
		if unicode.IsSpace(r) {
			continue
		}
		x, y := clock.Point(sc.CX, sc.CY, sc.Radii.Ring3, angles[i])
		op := Op{Kind: OpText, Layer: LayerText, X: x, Y: y, Text: string(r),
			FontSize: fit.FontSize, Bold: true, Fill: palette.Black, Rotate: angles[i]}
		if op.Text == textfit.Separator {
			op.FontSize *= SeparatorScale
			op.Fill = palette.Gold
		}
		c.emit(op)
	}
}

// textOptions scales the font band from ReferenceSize to the output size.
func (c *composer) textOptions() textfit.Options {
	o, d := c.opts.TextFit, textfit.DefaultOptions()
	if o.MinSize <= 0 {
		o.MinSize = d.MinSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = d.MaxSize
	}
	if o.Coefficient <= 0 {
		o.Coefficient = d.Coefficient
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	k := float64(c.scene.Size) / ReferenceSize
	o.MinSize *= k
	o.MaxSize *= k
	return o
}

func (c *composer) debug() {
	sc := c.scene
	if sc.Mode != ModePreview {
		return
	}
	for _, ring := range c.opts.Debug {
		var r float64
		switch ring {
		case 1:
			r = sc.Radii.Ring1
		case 2:
			r = sc.Radii.Ring2
		case 3:
			r = sc.Radii.Ring3
		default:
			continue
		}
		for i, label := range clock.Labels() {
			deg := float64(i) * clock.TickStep
			x, y := clock.Point(sc.CX, sc.CY, r, deg)
			c.emit(Op{Kind: OpDisk, Layer: LayerDebug, X: x, Y: y, R: c.px.tickRadius, Fill: DebugColor})
			lx, ly := clock.Point(sc.CX, sc.CY, r-4*c.px.tickRadius, deg)
			c.emit(Op{Kind: OpText, Layer: LayerDebug, X: lx, Y: ly, Text: label,
				FontSize: 2.5 * c.px.tickRadius, Fill: DebugColor})
		}
	}
}

// Initials returns the two-letter preview fallback for a glyph filename:
// the first two letters or digits of its stem, uppercased.
func Initials(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	n := 0
	for _, r := range stem {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if n++; n == 2 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// ParseDebugRings parses a comma-separated list such as "ring1,ring3" or
// "1,2" into ring numbers.
func ParseDebugRings(s string) ([]int, error) {
	var rings []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(part)), "ring")
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 3 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "unknown debug ring %q", part)
		}
		if !slices.Contains(rings, n) {
			rings = append(rings, n)
		}
	}
	return rings, nil
}
