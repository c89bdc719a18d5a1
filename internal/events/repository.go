// SPDX-License-Identifier: MIT

// Package events implements the recurring-event repository on top of the
// record store.
package events

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

// ErrNotFound is returned when an operation references an event id absent
// from the collection.
var ErrNotFound = errors.New("events: event not found")

// NewEvent holds the caller-provided fields of an event. ID and timestamps
// are assigned by the repository.
type NewEvent struct {
	Badge       string `json:"badge"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	IsActive    bool   `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Badge       *string `json:"badge"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

// Repository owns the events collection. Mutations are serialized by an
// in-process mutex; see the store package for the cross-process caveats.
type Repository struct {
	mu     sync.Mutex
	store  store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewRepository creates an event repository over the given store.
func NewRepository(s store.Store) *Repository {
	return &Repository{
		store:  s,
		logger: log.WithComponent("events"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) load(ctx context.Context) ([]model.Event, error) {
	return store.LoadCollection[model.Event](ctx, r.store, store.CollectionEvents)
}

func (r *Repository) save(ctx context.Context, records []model.Event) error {
	return store.SaveCollection(ctx, r.store, store.CollectionEvents, records)
}

// List returns all events, newest first.
func (r *Repository) List(ctx context.Context) ([]model.Event, error) {
	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// ListActive returns active events in display order: sortOrder ascending,
// ties broken by id ascending.
func (r *Repository) ListActive(ctx context.Context) ([]model.Event, error) {
	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	active := []model.Event{}
	for _, e := range records {
		if e.IsActive {
			active = append(active, e)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].SortOrder != active[j].SortOrder {
			return active[i].SortOrder < active[j].SortOrder
		}
		return active[i].ID < active[j].ID
	})
	return active, nil
}

// Add appends a new event and returns its assigned id.
func (r *Repository) Add(ctx context.Context, ne NewEvent) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	event := model.Event{
		ID:          nextID(records),
		Badge:       ne.Badge,
		Title:       ne.Title,
		Description: ne.Description,
		Date:        ne.Date,
		Location:    ne.Location,
		IsActive:    ne.IsActive,
		SortOrder:   ne.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	records = append(records, event)

	if err := r.save(ctx, records); err != nil {
		return 0, err
	}
	r.logger.Info().Int("id", event.ID).Str("title", event.Title).Msg("event added")
	return event.ID, nil
}

// Update merges the provided fields onto the stored event and refreshes
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

	event := &records[idx]
	if patch.Badge != nil {
		event.Badge = *patch.Badge
	}
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.IsActive != nil {
		event.IsActive = *patch.IsActive
	}
	if patch.SortOrder != nil {
		event.SortOrder = *patch.SortOrder
	}
	event.UpdatedAt = r.now()

	return r.save(ctx, records)
}

// Delete removes the event. Returns ErrNotFound if the id is absent.
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
	r.logger.Info().Int("id", id).Msg("event deleted")
	return nil
}

// Seed inserts the club's standing schedule when the collection is empty.
// Called once at startup; a non-empty collection is left alone.
func (r *Repository) Seed(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return nil
	}

	now := r.now()
	defaults := []model.Event{
		{
			Badge:       "WEEKLY",
			Title:       "Wednesday Group Run",
			Description: "Our signature 5-mile group run with multiple pace groups for all fitness levels.",
			Date:        "Every Wednesday, 6:00 PM",
			Location:    "Ann Arbor - Meet at TBD",
			SortOrder:   1,
		},
		{
			Badge:       "WEEKEND",
			Title:       "Saturday Long Run",
			Description: "Build endurance with our weekend long runs, perfect for marathon training.",
			Date:        "Every Saturday, 7:00 AM",
			Location:    "Ann Arbor - Meet at TBD",
			SortOrder:   2,
		},
		{
			Badge:       "MONTHLY",
			Title:       "Social Run & Coffee",
			Description: "Easy-paced social run followed by coffee. Great for newcomers to meet the group.",
			Date:        "First Sunday of each month",
			Location:    "Ann Arbor - Meet at TBD",
			SortOrder:   3,
		},
	}
	for i := range defaults {
		defaults[i].ID = i + 1
		defaults[i].IsActive = true
		defaults[i].CreatedAt = now
		defaults[i].UpdatedAt = now
	}

	if err := r.save(ctx, defaults); err != nil {
		return err
	}
	r.logger.Info().Int("count", len(defaults)).Msg("seeded default events")
	return nil
}

func indexOf(records []model.Event, id int) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func nextID(records []model.Event) int {
	max := 0
	for i := range records {
		if records[i].ID > max {
			max = records[i].ID
		}
	}
	return max + 1
}
