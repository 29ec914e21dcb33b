package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps artifacts in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) paths(id string) (png, meta string) {
	return filepath.Join(s.dir, id+".png"), filepath.Join(s.dir, id+".json")
}

// Save implements Store. The image is written before its metadata, so a
// metadata file always refers to a complete image.
func (s *FileStore) Save(ctx context.Context, meta Meta, png []byte) (Meta, error) {
	meta = stamp(meta)
	pngPath, metaPath := s.paths(meta.ID)

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Meta{}, fmt.Errorf("marshal artifact meta: %w", err)
	}
	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		return Meta{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		os.Remove(pngPath)
		return Meta{}, fmt.Errorf("write artifact meta: %w", err)
	}
	return meta, nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, id string) (Meta, []byte, error) {
	if err := ValidateID(id); err != nil {
		return Meta{}, nil, err
	}
	pngPath, metaPath := s.paths(id)

	data, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Meta{}, nil, notFound(id)
	}
	if err != nil {
		return Meta{}, nil, fmt.Errorf("read artifact meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("parse artifact meta: %w", err)
	}

	png, err := os.ReadFile(pngPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Meta{}, nil, notFound(id)
	}
	if err != nil {
		return Meta{}, nil, fmt.Errorf("read artifact: %w", err)
	}
	return meta, png, nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
