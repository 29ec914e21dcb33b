// Package config loads the sealforge service configuration from TOML.
//
// Every field has a default, so a missing file is not an error:
//
//	[assets]
//	base_dir = "/srv/sealforge"
//
//	[render]
//	default_size = 1200
//	fidelity = "high"
//	rasterizer_timeout = "45s"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
// Command-line flags override loaded values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/anointarray/sealforge/pkg/errors"
)

// Config is the full configuration.
type Config struct {
	Assets    Assets    `toml:"assets"`
	Render    Render    `toml:"render"`
	Cache     Cache     `toml:"cache"`
	Artifacts Artifacts `toml:"artifacts"`
	Server    Server    `toml:"server"`
	Log       Log       `toml:"log"`
}

// Assets locates templates and glyphs. Empty root lists mean the default
// uploads/public/legacy areas under BaseDir.
type Assets struct {
	BaseDir       string   `toml:"base_dir"`
	TemplateRoots []string `toml:"template_roots"`
	GlyphRoots    []string `toml:"glyph_roots"`
}

// Render holds export defaults.
type Render struct {
	DefaultSize       int      `toml:"default_size"`
	Fidelity          string   `toml:"fidelity"`
	Rasterizer        string   `toml:"rasterizer"`
	RasterizerTimeout Duration `toml:"rasterizer_timeout"`
	SettingsFile      string   `toml:"settings_file"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend     string   `toml:"backend"`
	Dir         string   `toml:"dir"`
	TTL         Duration `toml:"ttl"`
	RedisURL    string   `toml:"redis_url"`
	RedisPrefix string   `toml:"redis_prefix"`
}

// Artifacts selects where persisted seals are stored.
type Artifacts struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Server configures the HTTP render service.
type Server struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Assets: Assets{BaseDir: "."},
		Render: Render{
			DefaultSize:       1200,
			Fidelity:          "baseline",
			Rasterizer:        "rsvg-convert",
			RasterizerTimeout: Duration{30 * time.Second},
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
		},
		Artifacts: Artifacts{
			Backend:       BackendNone,
			MongoDatabase: "sealforge",
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: Duration{60 * time.Second},
			MaxBodyBytes:   1 << 20,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config")
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result. Unknown keys
// are rejected so typos surface.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return cfg.Validate()
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks value ranges and backend requirements.
func (c *Config) Validate() error {
	bad := func(format string, args ...any) error {
		return errs.New(errs.ErrCodeInvalidConfig, format, args...)
	}
	if err := errs.ValidateSize(c.Render.DefaultSize); err != nil {
		return bad("render.default_size: %v", err)
	}
	switch c.Render.Fidelity {
	case "baseline", "high":
	default:
		return bad("render.fidelity %q: must be baseline or high", c.Render.Fidelity)
	}
	if c.Render.RasterizerTimeout.Duration <= 0 {
		return bad("render.rasterizer_timeout must be positive")
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return bad("cache.redis_url is required for the redis backend")
		}
	default:
		return bad("cache.backend %q: must be none, file, or redis", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return bad("cache.ttl must not be negative")
	}

	switch c.Artifacts.Backend {
	case BackendNone:
	case BackendFile:
		if c.Artifacts.Dir == "" {
			return bad("artifacts.dir is required for the file backend")
		}
	case BackendMongo:
		if c.Artifacts.MongoURI == "" {
			return bad("artifacts.mongo_uri is required for the mongo backend")
		}
	default:
		return bad("artifacts.backend %q: must be none, file, or mongo", c.Artifacts.Backend)
	}

	if c.Server.MaxBodyBytes <= 0 {
		return bad("server.max_body_bytes must be positive")
	}
	if !validLogLevels[c.Log.Level] {
		return bad("log.level %q: must be debug, info, warn, or error", c.Log.Level)
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
