// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/umrunclub/clubsite/internal/log"
)

// FileStore keeps one JSON document per collection under a local directory.
// Missing or unreadable documents self-heal: the first access writes a fresh
// empty collection. Writes are atomic (write to temp file, fsync, rename).
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore returns a store rooted at dir. The directory is created
// lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: log.WithComponent("store.file"),
	}
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load reads the collection document. A missing or corrupt file is replaced
// with an empty collection and never surfaces as an error.
func (s *FileStore) Load(ctx context.Context, collection string) ([]byte, error) {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", s.path(collection), err)
		}
		return s.reset(ctx, collection, "missing")
	}
	if !json.Valid(data) {
		return s.reset(ctx, collection, "corrupt")
	}
	return data, nil
}

// reset writes a fresh empty collection document and returns its contents.
func (s *FileStore) reset(ctx context.Context, collection, reason string) ([]byte, error) {
	empty := []byte("[]")
	s.logger.Warn().
		Str("collection", collection).
		Str("reason", reason).
		Msg("initializing empty collection document")
	if err := s.Save(ctx, collection, empty); err != nil {
		return nil, err
	}
	return empty, nil
}

// Save atomically replaces the collection document, creating the data
// directory if needed.
func (s *FileStore) Save(_ context.Context, collection string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}
	if err := renameio.WriteFile(s.path(collection), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path(collection), err)
	}
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *FileStore) Close() error { return nil }
