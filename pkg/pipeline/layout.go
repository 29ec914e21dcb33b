package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/anointarray/sealforge/pkg/cache"
	"github.com/anointarray/sealforge/pkg/observability"
	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// Compose resolves the assets of l and composes its scene. Degradations
// are logged at warn and reported to the render hooks.
func (r *Runner) Compose(ctx context.Context, l *layout.Layout, s layout.Settings, opts Options) (*geometry.Scene, Stats, error) {
	var stats Stats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}

	// Reject bad inputs before touching the filesystem.
	if err := l.Validate(); err != nil {
		return nil, stats, err
	}
	if err := s.Validate(); err != nil {
		return nil, stats, err
	}

	set, stats, err := r.resolve(ctx, l, opts)
	if err != nil {
		return nil, stats, err
	}
	return r.compose(ctx, l, s, set, stats, opts)
}

// resolve batch-resolves the assets of l once.
func (r *Runner) resolve(ctx context.Context, l *layout.Layout, opts Options) (*assets.Set, Stats, error) {
	var stats Stats
	start := time.Now()
	set, err := r.resolver().ResolveAll(ctx, l)
	if err != nil {
		return nil, stats, err
	}
	stats.ResolveTime = time.Since(start)
	stats.Assets = countAssets(set)
	stats.Missing = len(set.Missing())
	r.logger(opts).Debug("resolved assets", "found", stats.Assets, "missing", stats.Missing, "duration", stats.ResolveTime)
	return set, stats, nil
}

// compose lays out the scene of l from an already-resolved asset set.
func (r *Runner) compose(ctx context.Context, l *layout.Layout, s layout.Settings, set *assets.Set, stats Stats, opts Options) (*geometry.Scene, Stats, error) {
	logger := r.logger(opts)
	start := time.Now()
	scene, err := geometry.Compose(l, s, opts.Size, geometry.Options{
		Mode:      opts.Mode,
		Assets:    set,
		Fallbacks: r.Fallbacks,
		Debug:     opts.Debug,
		Logger:    logger,
	})
	if err != nil {
		return nil, stats, err
	}
	stats.ComposeTime = time.Since(start)

	for _, d := range scene.Degradations {
		logger.Warn("degraded seal", "kind", d.Kind, "detail", d.Detail)
		observability.Render().OnDegraded(ctx, d.Kind)
	}
	logger.Debug("composed scene", "ops", len(scene.Ops), "font", scene.Text.FontSize, "duration", stats.ComposeTime)
	return scene, stats, nil
}

func countAssets(set *assets.Set) int {
	n := 0
	if _, ok := set.Template(); ok {
		n++
	}
	return n + set.GlyphCount()
}

// assetDigest hashes the content of every asset a layout references, with
// an explicit marker for each one that did not resolve, so that uploading or
// replacing a file changes the cache key.
func assetDigest(l *layout.Layout, set *assets.Set) (string, error) {
	const absent = "absent"
	entries := make([]string, 0, 1+len(l.Ring2))
	if name := strings.TrimSpace(l.CentralDesign); name != "" {
		if a, ok := set.Template(); ok {
			entries = append(entries, "template:"+name+":"+cache.Hash(a.Data))
		} else {
			entries = append(entries, "template:"+name+":"+absent)
		}
	}
	for _, ref := range l.GlyphRefs() {
		if a, ok := set.Glyph(ref); ok {
			entries = append(entries, "glyph:"+ref+":"+cache.Hash(a.Data))
		} else {
			entries = append(entries, "glyph:"+ref+":"+absent)
		}
	}
	return cache.HashJSON(entries)
}
