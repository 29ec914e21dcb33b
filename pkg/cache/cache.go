// Package cache stores rendered seal artifacts keyed by their inputs.
//
// A render is a pure function of the layout, the settings and the export
// options, so its bytes can be reused for as long as the assets behind it
// are unchanged. Keys are produced by a [Keyer]; values are opaque bytes.
//
// Backends:
//   - [FileCache]: sharded files under a directory (CLI default)
//   - [RedisCache]: a Redis server shared by service replicas
//   - [NullCache]: stores nothing (--no-cache)
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 24 * time.Hour

// Cache is a byte store with per-entry expiry. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// ArtifactKeyOpts are the export options that change rendered bytes.
type ArtifactKeyOpts struct {
	SettingsHash string `json:"settings"`
	Size         int    `json:"size"`
	Fidelity     string `json:"fidelity"`
	Mode         string `json:"mode"`
	Format       string `json:"format"`
	Debug        []int  `json:"debug,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of one rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "seal:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("seal", layoutHash, opts)
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
