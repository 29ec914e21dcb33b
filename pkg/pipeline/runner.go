package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/anointarray/sealforge/pkg/cache"
	"github.com/anointarray/sealforge/pkg/observability"
	"github.com/anointarray/sealforge/pkg/render"
	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/fallback"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// manifestFormat keys the cached degradation record of an export.
const manifestFormat = "manifest"

// Runner executes exports with caching. The CLI and the service share it.
//
// The Runner is stateless except for its collaborators; it never stores
// export results itself. Multiple goroutines can use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Resolver finds templates and glyphs; nil means the default roots
	// under the working directory.
	Resolver *assets.Resolver

	// Rasterizer converts SVG for high-fidelity PNG and for PDF; nil means
	// rsvg-convert on PATH with the default timeout.
	Rasterizer render.Rasterizer

	// Fallbacks supplies placeholder shapes for missing templates; nil
	// means the built-in registry.
	Fallbacks *fallback.Registry

	// TTL is how long artifacts stay cached; zero means cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

type manifest struct {
	Degraded []geometry.Degradation `json:"degraded,omitempty"`
	Dropped  []geometry.Dropped     `json:"dropped,omitempty"`
}

// Export validates, resolves, composes and renders one seal, serving every
// requested format from the cache when all of them are present.
func (r *Runner) Export(ctx context.Context, l *layout.Layout, s layout.Settings, opts Options) (result *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	start := time.Now()
	observability.Render().OnExportStart(ctx, opts.Size, opts.Fidelity)
	defer func() {
		observability.Render().OnExportComplete(ctx, opts.Size, opts.Fidelity, time.Since(start), err)
	}()

	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	layoutHash, settingsHash, err := Hashes(l, s)
	if err != nil {
		return nil, err
	}

	set, stats, err := r.resolve(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	assetHash, err := assetDigest(l, set)
	if err != nil {
		return nil, err
	}
	settingsHash = r.scopeHash(settingsHash, assetHash)

	if !opts.Refresh {
		if cached, ok := r.fromCache(ctx, layoutHash, settingsHash, opts); ok {
			cached.Stats = stats
			logger.Debug("served from cache", "layout", layoutHash[:12], "options", opts.String())
			return cached, nil
		}
	}

	scene, stats, err := r.compose(ctx, l, s, set, stats, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, scene, opts)
	if err != nil {
		return nil, err
	}
	stats.RenderTime = time.Since(renderStart)

	result = &Result{
		Artifacts:  artifacts,
		LayoutHash: layoutHash,
		Degraded:   scene.Degradations,
		Dropped:    scene.Dropped,
		Stats:      stats,
	}
	r.store(ctx, result, settingsHash, opts)

	logger.Info("exported seal",
		"size", opts.Size,
		"fidelity", opts.Fidelity,
		"formats", opts.Formats,
		"degraded", len(result.Degraded),
		"duration", time.Since(start))
	return result, nil
}

// ExportSeal renders a baseline export PNG at size×size.
func (r *Runner) ExportSeal(ctx context.Context, l *layout.Layout, s layout.Settings, size int) ([]byte, error) {
	res, err := r.Export(ctx, l, s, Options{Size: size, Fidelity: FidelityBaseline, Formats: []string{FormatPNG}})
	if err != nil {
		return nil, err
	}
	return res.Artifacts[FormatPNG], nil
}

func (r *Runner) fromCache(ctx context.Context, layoutHash, settingsHash string, opts Options) (*Result, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, settingsHash))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.logger(opts).Warn("cache read failed", "error", err)
		}
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, format)
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, format)
		artifacts[format] = data
	}

	result := &Result{Artifacts: artifacts, LayoutHash: layoutHash, CacheHit: true}
	key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(manifestFormat, settingsHash))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var m manifest
		if json.Unmarshal(data, &m) == nil {
			result.Degraded, result.Dropped = m.Degraded, m.Dropped
		}
	}
	return result, true
}

func (r *Runner) store(ctx context.Context, result *Result, settingsHash string, opts Options) {
	set := func(format string, data []byte) {
		key := r.Keyer.ArtifactKey(result.LayoutHash, opts.ArtifactKeyOpts(format, settingsHash))
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			r.logger(opts).Warn("cache write failed", "format", format, "error", err)
			return
		}
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
	if data, err := json.Marshal(manifest{Degraded: result.Degraded, Dropped: result.Dropped}); err == nil {
		set(manifestFormat, data)
	}
	for _, format := range opts.Formats {
		set(format, result.Artifacts[format])
	}
}

// scopeHash folds the asset roots and the asset content digest into the
// settings hash so runners reading different asset trees, or the same tree
// before and after an upload, never share entries.
func (r *Runner) scopeHash(settingsHash, assetHash string) string {
	res := r.resolver()
	h, err := cache.HashJSON([]any{settingsHash, assetHash, res.Roots(assets.KindTemplate), res.Roots(assets.KindGlyph)})
	if err != nil {
		return settingsHash
	}
	return h
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

func (r *Runner) resolver() *assets.Resolver {
	if r.Resolver == nil {
		return assets.NewResolver(".")
	}
	return r.Resolver
}

func (r *Runner) rasterizer() render.Rasterizer {
	if r.Rasterizer == nil {
		return render.NewRSVG("", 0)
	}
	return r.Rasterizer
}

func (r *Runner) ttl() time.Duration {
	if r.TTL == 0 {
		return cache.DefaultTTL
	}
	return r.TTL
}
