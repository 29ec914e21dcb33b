package assets

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// DefaultConcurrency bounds parallel lookups in [Resolver.ResolveAll].
const DefaultConcurrency = 8

// Asset is a resolved asset file.
type Asset struct {
	Kind Kind
	Name string
	Data []byte
}

// MIME returns the media type of the asset bytes.
func (a *Asset) MIME() string {
	if IsSVG(a.Data, a.Name) {
		return "image/svg+xml"
	}
	return http.DetectContentType(a.Data)
}

// Ref identifies an asset that could not be resolved.
type Ref struct {
	Kind Kind
	Name string
}

// Set is the immutable result of resolving every asset of one layout.
type Set struct {
	template *Asset
	glyphs   map[string]*Asset
	missing  []Ref
}

// NewSet builds a set from already-resolved assets. A nil template means the
// template is absent.
func NewSet(template *Asset, glyphs map[string]*Asset, missing []Ref) *Set {
	g := make(map[string]*Asset, len(glyphs))
	for k, v := range glyphs {
		g[k] = v
	}
	return &Set{template: template, glyphs: g, missing: slices.Clone(missing)}
}

// Template returns the central template, if it resolved.
func (s *Set) Template() (*Asset, bool) {
	if s == nil || s.template == nil {
		return nil, false
	}
	return s.template, true
}

// Glyph returns the glyph for a ring-2 reference, if it resolved.
func (s *Set) Glyph(ref string) (*Asset, bool) {
	if s == nil {
		return nil, false
	}
	a, ok := s.glyphs[strings.TrimSpace(ref)]
	return a, ok
}

// GlyphCount returns the number of distinct glyphs that resolved.
func (s *Set) GlyphCount() int {
	if s == nil {
		return 0
	}
	return len(s.glyphs)
}

// Missing returns the assets that resolved under no root, templates first,
// then glyphs in name order.
func (s *Set) Missing() []Ref {
	if s == nil {
		return nil
	}
	return slices.Clone(s.missing)
}

// ResolveAll resolves the central template and each distinct glyph of l
// exactly once. Missing assets are reported through [Set.Missing]; the only
// error returned is the context's.
func (r *Resolver) ResolveAll(ctx context.Context, l *layout.Layout) (*Set, error) {
	refs := l.GlyphRefs()

	var (
		mu       sync.Mutex
		template *Asset
		glyphs   = make(map[string]*Asset, len(refs))
		missing  []Ref
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)

	if name := strings.TrimSpace(l.CentralDesign); name != "" {
		g.Go(func() error {
			data, ok := r.ResolveTemplate(gctx, name)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				template = &Asset{Kind: KindTemplate, Name: name, Data: data}
			} else {
				missing = append(missing, Ref{Kind: KindTemplate, Name: name})
			}
			return nil
		})
	}
	for _, ref := range refs {
		g.Go(func() error {
			data, ok := r.ResolveGlyph(gctx, ref)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				glyphs[ref] = &Asset{Kind: KindGlyph, Name: ref, Data: data}
			} else {
				missing = append(missing, Ref{Kind: KindGlyph, Name: ref})
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(missing, func(a, b Ref) int {
		if a.Kind != b.Kind {
			if a.Kind == KindTemplate {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return &Set{template: template, glyphs: glyphs, missing: missing}, nil
}
