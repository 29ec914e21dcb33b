// Package pipeline provides the seal export pipeline shared by the CLI and
// the HTTP service.
//
// # Architecture
//
// An export runs four stages:
//
//  1. Validate: check the layout, the settings and the export options
//  2. Resolve: look up the central template and every distinct glyph once
//  3. Compose: build the backend-agnostic scene (package geometry)
//  4. Render: draw the scene with the bitmap or SVG backend
//
// Baseline fidelity draws PNGs directly with the bitmap backend. High
// fidelity writes SVG and hands it to an external rasterizer, which is
// killed if it exceeds its timeout.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	runner.Resolver = assets.NewResolver("/srv/sealforge")
//	result, err := runner.Export(ctx, l, settings, pipeline.Options{
//	    Size:     2400,
//	    Fidelity: pipeline.FidelityHigh,
//	    Formats:  []string{pipeline.FormatPNG, pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/anointarray/sealforge/pkg/cache"
	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
)

// Defaults shared by the CLI and the service.
const (
	DefaultSize        = 1200
	DefaultPreviewSize = 1200
	DefaultFidelity    = FidelityBaseline
)

// Fidelity levels.
const (
	FidelityBaseline = "baseline"
	FidelityHigh     = "high"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatPDF: true,
}

// MIME returns the content type of an output format.
func MIME(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// Options configures one export.
type Options struct {
	Size     int           `json:"size,omitempty"`
	Fidelity string        `json:"fidelity,omitempty"`
	Mode     geometry.Mode `json:"-"`
	Formats  []string      `json:"formats,omitempty"`
	Debug    []int         `json:"debug,omitempty"`
	Refresh  bool          `json:"refresh,omitempty"`
	Logger   *log.Logger   `json:"-"`

	validated bool
}

// Result is the output of one export.
type Result struct {
	// Artifacts holds the rendered bytes keyed by format.
	Artifacts map[string][]byte

	// LayoutHash identifies the layout the artifacts were rendered from.
	LayoutHash string

	// Degraded lists the non-fatal corrections made while composing.
	Degraded []geometry.Degradation

	// Dropped lists tokens that lost a duplicate position.
	Dropped []geometry.Dropped

	Stats    Stats
	CacheHit bool
}

// Stats holds stage timings of an export.
type Stats struct {
	ResolveTime time.Duration
	ComposeTime time.Duration
	RenderTime  time.Duration
	Assets      int
	Missing     int
}

// ValidateFidelity checks a fidelity level.
func ValidateFidelity(f string) error {
	if f != FidelityBaseline && f != FidelityHigh {
		return errs.New(errs.ErrCodeInvalidFidelity, "invalid fidelity %q (must be baseline or high)", f)
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format %q (must be one of: png, svg, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Fidelity == "" {
		o.Fidelity = DefaultFidelity
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if err := errs.ValidateSize(o.Size); err != nil {
		return err
	}
	if err := ValidateFidelity(o.Fidelity); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for _, ring := range o.Debug {
		if ring < 1 || ring > 3 {
			return errs.New(errs.ErrCodeInvalidInput, "debug ring %d out of range [1, 3]", ring)
		}
	}
	o.Formats = dedupe(o.Formats)
	o.Debug = dedupeInts(o.Debug)
	slices.Sort(o.Debug)
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns the cache key options of one output format.
func (o *Options) ArtifactKeyOpts(format, settingsHash string) cache.ArtifactKeyOpts {
	fidelity := o.Fidelity
	if format == FormatSVG {
		// SVG output does not depend on the rasterizer.
		fidelity = ""
	}
	return cache.ArtifactKeyOpts{
		SettingsHash: settingsHash,
		Size:         o.Size,
		Fidelity:     fidelity,
		Mode:         o.Mode.String(),
		Format:       format,
		Debug:        o.Debug,
	}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func dedupeInts(in []int) []int {
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// String describes the options for log lines.
func (o Options) String() string {
	return fmt.Sprintf("%dpx %s %s %v", o.Size, o.Fidelity, o.Mode, o.Formats)
}
