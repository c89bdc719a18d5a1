// SPDX-License-Identifier: MIT

package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Options carries backend-specific settings for Open.
type Options struct {
	DataDir  string  // file backend
	RedisURL string  // redis backend
	DB       *sql.DB // sqlite backend; lifecycle owned by the caller
}

// Open creates a Store for the configured backend. The backend is fixed for
// the process lifetime; it is not switchable per call.
func Open(backend string, opts Options) (Store, error) {
	switch backend {
	case "file":
		return NewFileStore(opts.DataDir), nil
	case "redis":
		return NewRedisStore(opts.RedisURL)
	case "sqlite":
		if opts.DB == nil {
			return nil, errors.New("store: sqlite backend requires an open database handle")
		}
		return NewSQLStore(opts.DB)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}
