// SPDX-License-Identifier: MIT

// Package store persists whole named collections (routes, events) as a unit
// behind one of three interchangeable backends: a local JSON document per
// collection, a remote Redis key per collection, or a typed SQLite table per
// collection.
//
// The backend is selected once at process start. Every read re-fetches the
// full collection and every write re-serializes it; collections are small
// (tens to low hundreds of records) and this trades throughput for
// simplicity. The load-mutate-save pattern is not transactional across
// processes: concurrent writers to the same collection can lose updates.
// Repositories serialize their own mutations in-process.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/umrunclub/clubsite/internal/log"
)

// Collection names. Each collection is owned entirely by one repository.
const (
	CollectionRoutes = "routes"
	CollectionEvents = "events"
)

// ErrUnknownCollection is returned by backends that only know a fixed set of
// collections (the relational backend).
var ErrUnknownCollection = errors.New("store: unknown collection")

// Store persists and retrieves an entire named collection as a serialized
// JSON array.
//
// Load never fails on absent data: a missing collection yields an empty (or
// nil) payload. I/O failures propagate as errors and mean storage is
// unavailable for this call; there are no automatic retries.
type Store interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, data []byte) error
	Close() error
}

// LoadCollection loads and decodes a collection. A corrupt payload is treated
// as "no data": it is logged and an empty collection is returned, never an
// error. Malformed stored data does not escape the store boundary.
func LoadCollection[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	data, err := s.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", collection, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		logger := log.WithComponent("store")
		logger.Warn().
			Err(err).
			Str("collection", collection).
			Msg("stored payload is not a valid collection, starting empty")
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// SaveCollection encodes and persists a collection. The payload is
// pretty-printed; on the flat-file backend the document doubles as a
// human-editable data file.
func SaveCollection[T any](ctx context.Context, s Store, collection string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", collection, err)
	}
	if err := s.Save(ctx, collection, data); err != nil {
		return fmt.Errorf("store: save %s: %w", collection, err)
	}
	return nil
}
