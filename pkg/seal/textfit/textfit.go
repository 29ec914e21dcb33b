// Package textfit sizes an affirmation so it closes the loop around a circle.
//
// The fitter normalizes the phrase, repeats short phrases so the ring does not
// look empty, and searches the largest font size whose estimated run length
// fits the circumference. Width is estimated as
//
//	runes × Coefficient × fontSize
//
// which is deliberately font-agnostic: both rendering backends use the same
// estimate, so they agree on the size even though their glyph metrics differ.
package textfit

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultPhrase replaces an affirmation that is empty after normalization.
const DefaultPhrase = "OM NAMAH SHIVAYA"

// Separator is drawn between repetitions (and closes the loop after the last).
const Separator = "•"

// separatorRun is one separator with its surrounding spaces.
const separatorRun = " " + Separator + " "

// labelPrefix matches an upstream "gayatri:" style marker.
var labelPrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*:\s*`)

// Options bounds the font-size search.
type Options struct {
	MinSize     float64 // smallest allowed font size (px)
	MaxSize     float64 // largest allowed font size (px)
	Coefficient float64 // estimated advance per rune, as a fraction of font size
	Margin      float64 // allowed overrun of the circumference, e.g. 0.01 for 1%
}

// DefaultOptions returns the band used for a 600px seal; geometry scales it.
func DefaultOptions() Options {
	return Options{
		MinSize:     8,
		MaxSize:     30,
		Coefficient: 0.62,
		Margin:      0.01,
	}
}

// Result is a fitted ring of text.
type Result struct {
	Phrase   string  // normalized phrase, before repetition
	Text     string  // full display string laid around the circle
	Repeats  int     // number of phrase repetitions in Text
	FontSize float64 // chosen font size (px)
}

// Runes returns the display text split into runes.
func (r Result) Runes() []rune {
	return []rune(r.Text)
}

// Angles returns the clockwise angle in degrees from 12 o'clock of each rune:
// rune i of N sits at i × 360/N.
func (r Result) Angles() []float64 {
	n := utf8.RuneCountInString(r.Text)
	out := make([]float64, n)
	for i := range n {
		out[i] = float64(i) * 360 / float64(n)
	}
	return out
}

// Normalize trims phrase, strips leading "label:" markers, collapses
// whitespace and uppercases it. Normalize(Normalize(s)) == Normalize(s).
func Normalize(phrase string) string {
	s := strings.TrimSpace(phrase)
	for {
		stripped := labelPrefix.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// RepeatCount returns how many times a phrase of the given word count is
// repeated: up to 3 words → 3, up to 5 → 2, otherwise 1.
func RepeatCount(words int) int {
	switch {
	case words <= 3:
		return 3
	case words <= 5:
		return 2
	default:
		return 1
	}
}

// Expand repeats the normalized phrase with a separator after every copy.
func Expand(phrase string, repeats int) string {
	return strings.Repeat(phrase+separatorRun, max(1, repeats))
}

// Fit lays phrase around a circle of the given radius (px).
func Fit(phrase string, radius float64, opts Options) Result {
	opts = opts.withDefaults()

	norm := Normalize(phrase)
	if norm == "" {
		norm = DefaultPhrase
	}
	repeats := RepeatCount(len(strings.Fields(norm)))
	text := Expand(norm, repeats)

	return Result{
		Phrase:   norm,
		Text:     text,
		Repeats:  repeats,
		FontSize: FontSize(utf8.RuneCountInString(text), radius, opts),
	}
}

// FontSize returns the largest size in [MinSize, MaxSize] such that a run of
// n runes fits 2πr × (1 + Margin). If even MinSize overflows, MinSize is used.
func FontSize(n int, radius float64, opts Options) float64 {
	opts = opts.withDefaults()
	if n <= 0 || radius <= 0 {
		return opts.MinSize
	}
	limit := 2 * math.Pi * radius * (1 + opts.Margin)
	fits := func(size float64) bool {
		return float64(n)*opts.Coefficient*size <= limit
	}

	if fits(opts.MaxSize) {
		return opts.MaxSize
	}
	if !fits(opts.MinSize) {
		return opts.MinSize
	}

	lo, hi := opts.MinSize, opts.MaxSize
	for range 40 {
		mid := (lo + hi) / 2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	// Round down to a hundredth so both backends see the same value.
	return math.Floor(lo*100) / 100
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinSize <= 0 {
		o.MinSize = d.MinSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = d.MaxSize
	}
	if o.MaxSize < o.MinSize {
		o.MaxSize = o.MinSize
	}
	if o.Coefficient <= 0 {
		o.Coefficient = d.Coefficient
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}
