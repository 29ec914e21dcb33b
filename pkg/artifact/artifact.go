// Package artifact persists generated seal images.
//
// A seal is stored as a generated artifact rather than re-rendered on demand:
// the PNG is what gets printed, so the bytes saved at order time must be the
// bytes retrieved later. Each artifact has a UUID and a small metadata
// record describing how it was produced.
//
// Backends:
//   - [FileStore]: <dir>/<id>.png plus <dir>/<id>.json
//   - [MongoStore]: one document per artifact in a MongoDB collection
package artifact

import (
	"context"
	"time"

	"github.com/google/uuid"

	errs "github.com/anointarray/sealforge/pkg/errors"
)

// Meta describes one stored artifact.
type Meta struct {
	ID         string    `json:"id" bson:"_id"`
	Size       int       `json:"size" bson:"size"`
	Fidelity   string    `json:"fidelity" bson:"fidelity"`
	Mode       string    `json:"mode" bson:"mode"`
	LayoutHash string    `json:"layout_hash" bson:"layout_hash"`
	Degraded   []string  `json:"degraded,omitempty" bson:"degraded,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Store saves and loads artifacts. Implementations are safe for concurrent
// use.
type Store interface {
	// Save stores png under a new ID, filling meta.ID and meta.CreatedAt.
	Save(ctx context.Context, meta Meta, png []byte) (Meta, error)

	// Load returns a stored artifact. A missing ID yields an error with
	// code NOT_FOUND.
	Load(ctx context.Context, id string) (Meta, []byte, error)

	Close() error
}

// NewID returns a fresh artifact ID.
func NewID() string {
	return uuid.NewString()
}

// ValidateID rejects anything that is not a canonical UUID, so IDs are safe
// to use as file names.
func ValidateID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return errs.New(errs.ErrCodeInvalidInput, "invalid artifact id %q", id)
	}
	return nil
}

func stamp(meta Meta) Meta {
	meta.ID = NewID()
	meta.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return meta
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeNotFound, "artifact %s not found", id)
}
