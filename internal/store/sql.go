// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/umrunclub/clubsite/internal/log"
	"github.com/umrunclub/clubsite/internal/model"
)

const sqlSchemaVersion = 1

// SQLStore keeps one typed table per collection. Structured fields (route
// points) are stored as serialized JSON text and parsed on read. Save
// replaces the whole table contents in a single transaction, matching the
// load-all/save-all contract of the other backends.
type SQLStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLStore wraps an open database handle and applies the schema.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	s := &SQLStore{db: db, logger: log.WithComponent("store.sql")}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("sql store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	var currentVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= sqlSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		distance TEXT NOT NULL,
		difficulty TEXT NOT NULL CHECK (difficulty IN ('Easy', 'Moderate', 'Hard')),
		estimated_time TEXT NOT NULL,
		points TEXT NOT NULL,
		is_upcoming INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY,
		badge TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		date TEXT NOT NULL,
		location TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqlSchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Load reads all rows of the collection's table, newest first, and
// re-marshals them as a JSON array.
func (s *SQLStore) Load(ctx context.Context, collection string) ([]byte, error) {
	switch collection {
	case CollectionRoutes:
		routes, err := s.loadRoutes(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(routes)
	case CollectionEvents:
		events, err := s.loadEvents(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(events)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
}

// Save decodes the JSON array and replaces the collection's table contents
// in one transaction.
func (s *SQLStore) Save(ctx context.Context, collection string, data []byte) error {
	switch collection {
	case CollectionRoutes:
		var routes []model.Route
		if err := json.Unmarshal(data, &routes); err != nil {
			return fmt.Errorf("sql store: decode routes: %w", err)
		}
		return s.saveRoutes(ctx, routes)
	case CollectionEvents:
		var events []model.Event
		if err := json.Unmarshal(data, &events); err != nil {
			return fmt.Errorf("sql store: decode events: %w", err)
		}
		return s.saveEvents(ctx, events)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
}

// Close is a no-op; the database handle is owned by the process entry point.
func (s *SQLStore) Close() error { return nil }

func (s *SQLStore) loadRoutes(ctx context.Context) ([]model.Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, distance, difficulty, estimated_time,
		       points, is_upcoming, created_at, updated_at
		FROM routes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sql store: query routes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	routes := []model.Route{}
	for rows.Next() {
		var (
			r          model.Route
			points     string
			isUpcoming int
			createdAt  string
			updatedAt  string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Distance, &r.Difficulty,
			&r.EstimatedTime, &points, &isUpcoming, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("sql store: scan route: %w", err)
		}
		if err := json.Unmarshal([]byte(points), &r.Points); err != nil {
			// Corrupt points never escape the store boundary.
			s.logger.Warn().Err(err).Int("id", r.ID).Msg("invalid points payload, dropping points")
			r.Points = nil
		}
		r.IsUpcoming = isUpcoming != 0
		if r.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("sql store: route %d created_at: %w", r.ID, err)
		}
		if r.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("sql store: route %d updated_at: %w", r.ID, err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *SQLStore) saveRoutes(ctx context.Context, routes []model.Route) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM routes"); err != nil {
		return fmt.Errorf("sql store: clear routes: %w", err)
	}
	for _, r := range routes {
		points, err := json.Marshal(r.Points)
		if err != nil {
			return fmt.Errorf("sql store: encode points for route %d: %w", r.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO routes (id, name, description, distance, difficulty,
			                    estimated_time, points, is_upcoming, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Description, r.Distance, string(r.Difficulty),
			r.EstimatedTime, string(points), boolToInt(r.IsUpcoming),
			formatTimestamp(r.CreatedAt), formatTimestamp(r.UpdatedAt))
		if err != nil {
			return fmt.Errorf("sql store: insert route %d: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) loadEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, badge, title, description, date, location,
		       is_active, sort_order, created_at, updated_at
		FROM events ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sql store: query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []model.Event{}
	for rows.Next() {
		var (
			e         model.Event
			isActive  int
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&e.ID, &e.Badge, &e.Title, &e.Description, &e.Date,
			&e.Location, &isActive, &e.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("sql store: scan event: %w", err)
		}
		e.IsActive = isActive != 0
		if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("sql store: event %d created_at: %w", e.ID, err)
		}
		if e.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("sql store: event %d updated_at: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLStore) saveEvents(ctx context.Context, events []model.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return fmt.Errorf("sql store: clear events: %w", err)
	}
	for _, e := range events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, badge, title, description, date, location,
			                    is_active, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Badge, e.Title, e.Description, e.Date, e.Location,
			boolToInt(e.IsActive), e.SortOrder,
			formatTimestamp(e.CreatedAt), formatTimestamp(e.UpdatedAt))
		if err != nil {
			return fmt.Errorf("sql store: insert event %d: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
