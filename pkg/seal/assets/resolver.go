// Package assets locates and decodes the images a seal is composed from.
//
// Two kinds of asset exist: central templates, looked up by design name, and
// ring-2 glyphs, looked up by filename. Each kind has an ordered list of
// candidate roots; the first root holding the file wins. A missing asset is
// never an error, the compositor degrades instead.
//
// # Roots
//
// By default the roots mirror the three storage areas of an installation:
//
//	<base>/uploads/templates   <base>/uploads/glyphs
//	<base>/public/templates    <base>/public/glyphs
//	<base>/legacy/templates    <base>/legacy/glyphs
//
// # Batch resolution
//
// [Resolver.ResolveAll] resolves the template and every distinct glyph of a
// layout once, in parallel across assets and sequentially across the roots of
// one asset, and returns an immutable [Set].
package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"

	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/observability"
)

// Kind names an asset category.
type Kind string

const (
	KindTemplate Kind = "template"
	KindGlyph    Kind = "glyph"
)

// Areas are the storage areas probed, in order, under the base directory.
var Areas = []string{"uploads", "public", "legacy"}

// DefaultRoots returns the candidate roots for kind under base.
func DefaultRoots(base string, kind Kind) []string {
	sub := "templates"
	if kind == KindGlyph {
		sub = "glyphs"
	}
	roots := make([]string, len(Areas))
	for i, area := range Areas {
		roots[i] = filepath.Join(base, area, sub)
	}
	return roots
}

// Resolver looks assets up under ordered candidate roots. It is read-only and
// safe for concurrent use.
type Resolver struct {
	templateRoots []string
	glyphRoots    []string
	logger        *log.Logger
	lookups       atomic.Int64
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithTemplateRoots replaces the template roots.
func WithTemplateRoots(roots ...string) Option {
	return func(r *Resolver) { r.templateRoots = slices.Clone(roots) }
}

// WithGlyphRoots replaces the glyph roots.
func WithGlyphRoots(roots ...string) Option {
	return func(r *Resolver) { r.glyphRoots = slices.Clone(roots) }
}

// WithLogger sets the logger used for warnings about rejected names.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver returns a resolver using [DefaultRoots] under base unless
// overridden by options.
func NewResolver(base string, opts ...Option) *Resolver {
	r := &Resolver{
		templateRoots: DefaultRoots(base, KindTemplate),
		glyphRoots:    DefaultRoots(base, KindGlyph),
		logger:        log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Roots returns a copy of the candidate roots for kind.
func (r *Resolver) Roots(kind Kind) []string {
	if kind == KindGlyph {
		return slices.Clone(r.glyphRoots)
	}
	return slices.Clone(r.templateRoots)
}

// Lookups returns how many single-asset lookups the resolver has performed.
func (r *Resolver) Lookups() int64 {
	return r.lookups.Load()
}

// ResolveTemplate returns the bytes of the template for a design name. The
// file probed is <root>/<name>.png, or <root>/<name> when name already
// carries an image extension.
func (r *Resolver) ResolveTemplate(ctx context.Context, name string) ([]byte, bool) {
	file := strings.TrimSpace(name)
	if !HasImageExt(file) {
		file += ".png"
	}
	return r.resolve(ctx, KindTemplate, file, r.templateRoots)
}

// ResolveGlyph returns the bytes of the glyph file <root>/<filename>.
func (r *Resolver) ResolveGlyph(ctx context.Context, filename string) ([]byte, bool) {
	return r.resolve(ctx, KindGlyph, strings.TrimSpace(filename), r.glyphRoots)
}

func (r *Resolver) resolve(ctx context.Context, kind Kind, file string, roots []string) ([]byte, bool) {
	r.lookups.Add(1)
	if err := errs.ValidateAssetName(file); err != nil {
		r.logger.Warn("rejected asset name", "kind", kind, "name", file, "error", err)
		observability.Asset().OnAssetMissing(ctx, string(kind), file)
		return nil, false
	}
	for _, root := range roots {
		if ctx.Err() != nil {
			return nil, false
		}
		data, err := os.ReadFile(filepath.Join(root, file))
		if err != nil {
			continue
		}
		r.logger.Debug("resolved asset", "kind", kind, "name", file, "root", root)
		observability.Asset().OnAssetResolved(ctx, string(kind), file, root)
		return data, true
	}
	r.logger.Debug("asset not found", "kind", kind, "name", file, "roots", len(roots))
	observability.Asset().OnAssetMissing(ctx, string(kind), file)
	return nil, false
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true, ".svg": true,
}

// HasImageExt reports whether name ends in a supported image extension.
func HasImageExt(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}
