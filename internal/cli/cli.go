package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/anointarray/sealforge/pkg/artifact"
	"github.com/anointarray/sealforge/pkg/buildinfo"
	"github.com/anointarray/sealforge/pkg/cache"
	"github.com/anointarray/sealforge/pkg/config"
	"github.com/anointarray/sealforge/pkg/pipeline"
	"github.com/anointarray/sealforge/pkg/render"
	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sealforge"

	// configEnv overrides the default config file location.
	configEnv = "SEALFORGE_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the TOML file loaded before each command. Empty means
	// $SEALFORGE_CONFIG or the XDG config location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Sealforge composes sacred seal images",
		Long: `Sealforge composes circular sacred seals from a layout of number tokens,
glyph tokens, a central design and an affirmation, and exports them as PNG,
SVG or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $"+configEnv+" or ~/.config/sealforge/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.fitCommand())
	root.AddCommand(c.clockCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) loadConfig() error {
	path := c.ConfigPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		path, _ = configPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		c.SetLogLevel(lvl)
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// settings loads the geometry settings from path, falling back to the
// configured settings file and then to the built-in defaults.
func (c *CLI) settings(path string) (layout.Settings, error) {
	if path == "" {
		path = c.config().Render.SettingsFile
	}
	if path == "" {
		return layout.DefaultSettings(), nil
	}
	return layout.ReadSettingsFile(path)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. assetsDir, when set,
// replaces the configured asset base directory.
func (c *CLI) newRunner(ctx context.Context, noCache bool, assetsDir string) (*pipeline.Runner, error) {
	cfg := c.config()
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	r.Resolver = newResolver(cfg.Assets, assetsDir, c.Logger)
	r.Rasterizer = render.NewRSVG(cfg.Render.Rasterizer, cfg.Render.RasterizerTimeout.Duration)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config().Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.RedisURL, Prefix: cfg.RedisPrefix})
	case config.BackendFile:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				c.Logger.Warn("cache disabled", "error", err)
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

func newResolver(cfg config.Assets, assetsDir string, logger *log.Logger) *assets.Resolver {
	base := cfg.BaseDir
	if assetsDir != "" {
		base = assetsDir
	}
	opts := []assets.Option{assets.WithLogger(logger)}
	if len(cfg.TemplateRoots) > 0 && assetsDir == "" {
		opts = append(opts, assets.WithTemplateRoots(cfg.TemplateRoots...))
	}
	if len(cfg.GlyphRoots) > 0 && assetsDir == "" {
		opts = append(opts, assets.WithGlyphRoots(cfg.GlyphRoots...))
	}
	return assets.NewResolver(base, opts...)
}

// newStore opens the configured artifact store; nil means persistence is
// disabled.
func (c *CLI) newStore(ctx context.Context) (artifact.Store, error) {
	cfg := c.config().Artifacts
	switch cfg.Backend {
	case config.BackendFile:
		return artifact.NewFileStore(cfg.Dir)
	case config.BackendMongo:
		return artifact.NewMongoStore(ctx, artifact.MongoOptions{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	default:
		return nil, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sealforge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return cache.DefaultDir()
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file (~/.config/sealforge/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
