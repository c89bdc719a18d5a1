// SPDX-License-Identifier: MIT

// Package routes implements the running-route repository on top of the
// record store.
package routes

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/umrunclub/clubsite/internal/log"
	"github.com/umrunclub/clubsite/internal/model"
	"github.com/umrunclub/clubsite/internal/store"
)

// ErrNotFound is returned when an operation references a route id absent
// from the collection.
var ErrNotFound = errors.New("routes: route not found")

// NewRoute holds the caller-provided fields of a route. ID and timestamps
// are assigned by the repository.
type NewRoute struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Distance      string             `json:"distance"`
	Difficulty    model.Difficulty   `json:"difficulty"`
	EstimatedTime string             `json:"estimatedTime"`
	Points        []model.RoutePoint `json:"points"`
	IsUpcoming    bool               `json:"isUpcoming"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name          *string             `json:"name"`
	Description   *string             `json:"description"`
	Distance      *string             `json:"distance"`
	Difficulty    *model.Difficulty   `json:"difficulty"`
	EstimatedTime *string             `json:"estimatedTime"`
	Points        *[]model.RoutePoint `json:"points"`
	IsUpcoming    *bool               `json:"isUpcoming"`
}

// Repository owns the routes collection. Mutations are serialized by an
// in-process mutex, so the load-mutate-save sequence cannot interleave with
// another mutation from this process. Concurrent writers in other processes
// can still lose updates on the file and redis backends; see the store
// package documentation.
type Repository struct {
	mu     sync.Mutex
	store  store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewRepository creates a route repository over the given store.
func NewRepository(s store.Store) *Repository {
	return &Repository{
		store:  s,
		logger: log.WithComponent("routes"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) load(ctx context.Context) ([]model.Route, error) {
	return store.LoadCollection[model.Route](ctx, r.store, store.CollectionRoutes)
}

func (r *Repository) save(ctx context.Context, records []model.Route) error {
	return store.SaveCollection(ctx, r.store, store.CollectionRoutes, records)
}

// sortCanonical orders routes newest first. The ordering is applied
// uniformly regardless of backend.
func sortCanonical(records []model.Route) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
}

// List returns all routes, newest first.
func (r *Repository) List(ctx context.Context) ([]model.Route, error) {
	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sortCanonical(records)
	return records, nil
}

// Upcoming returns the route flagged for the next scheduled group run, or
// nil when none is flagged.
func (r *Repository) Upcoming(ctx context.Context) (*model.Route, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].IsUpcoming {
			return &records[i], nil
		}
	}
	return nil, nil
}

// Add appends a new route and returns its assigned id. IDs are strictly
// increasing: max existing id + 1, or 1 on an empty collection.
func (r *Repository) Add(ctx context.Context, nr NewRoute) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	route := model.Route{
		ID:            nextID(records),
		Name:          nr.Name,
		Description:   nr.Description,
		Distance:      nr.Distance,
		Difficulty:    nr.Difficulty,
		EstimatedTime: nr.EstimatedTime,
		Points:        nr.Points,
		IsUpcoming:    nr.IsUpcoming,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if route.IsUpcoming {
		clearUpcoming(records, now)
	}
	records = append(records, route)

	if err := r.save(ctx, records); err != nil {
		return 0, err
	}
	r.logger.Info().Int("id", route.ID).Str("name", route.Name).Msg("route added")
	return route.ID, nil
}

// Update merges the provided fields onto the stored route and refreshes
// updatedAt. Returns ErrNotFound if the id is absent.
func (r *Repository) Update(ctx context.Context, id int, patch Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return ErrNotFound
	}

	now := r.now()
	if patch.IsUpcoming != nil && *patch.IsUpcoming {
		clearUpcoming(records, now)
	}

	route := &records[idx]
	if patch.Name != nil {
		route.Name = *patch.Name
	}
	if patch.Description != nil {
		route.Description = *patch.Description
	}
	if patch.Distance != nil {
		route.Distance = *patch.Distance
	}
	if patch.Difficulty != nil {
		route.Difficulty = *patch.Difficulty
	}
	if patch.EstimatedTime != nil {
		route.EstimatedTime = *patch.EstimatedTime
	}
	if patch.Points != nil {
		route.Points = *patch.Points
	}
	if patch.IsUpcoming != nil {
		route.IsUpcoming = *patch.IsUpcoming
	}
	route.UpdatedAt = now

	return r.save(ctx, records)
}

// Delete removes the route. Hard delete, no tombstone. Returns ErrNotFound
// if the id is absent.
func (r *Repository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return ErrNotFound
	}
	records = append(records[:idx], records[idx+1:]...)

	if err := r.save(ctx, records); err != nil {
		return err
	}
	r.logger.Info().Int("id", id).Msg("route deleted")
	return nil
}

// SetUpcoming flags the route with the given id as the next scheduled run
// and clears the flag on every other route. Target existence is verified
// before any record is mutated, so a bad id leaves the flag distribution
// unchanged. Readers observe the whole clear-then-set as one write.
func (r *Repository) SetUpcoming(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return ErrNotFound
	}

	now := r.now()
	clearUpcoming(records, now)
	records[idx].IsUpcoming = true
	records[idx].UpdatedAt = now

	if err := r.save(ctx, records); err != nil {
		return err
	}
	r.logger.Info().Int("id", id).Msg("upcoming route set")
	return nil
}

// clearUpcoming drops the flag on every flagged route, refreshing updatedAt
// only on records that actually change.
func clearUpcoming(records []model.Route, now time.Time) {
	for i := range records {
		if records[i].IsUpcoming {
			records[i].IsUpcoming = false
			records[i].UpdatedAt = now
		}
	}
}

func indexOf(records []model.Route, id int) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func nextID(records []model.Route) int {
	max := 0
	for i := range records {
		if records[i].ID > max {
			max = records[i].ID
		}
	}
	return max + 1
}
