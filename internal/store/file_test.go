// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/umrunclub/clubsite/internal/model"
)

func testRoutes() []model.Route {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []model.Route{
		{
			ID:            1,
			Name:          "Campus Loop",
			Description:   "Scenic loop around campus.",
			Distance:      "3.0 miles",
			Difficulty:    model.DifficultyEasy,
			EstimatedTime: "25-30 minutes",
			Points: []model.RoutePoint{
				{Lat: 42.2808, Lng: -83.743, Name: "Start: Diag"},
				{Lat: 42.2776, Lng: -83.7382, Name: "Michigan Union"},
			},
			IsUpcoming: true,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
		{
			ID:            2,
			Name:          "Riverside Out-and-Back",
			Description:   "Flat riverside miles.",
			Distance:      "5.0 miles",
			Difficulty:    model.DifficultyModerate,
			EstimatedTime: "40-50 minutes",
			Points:        []model.RoutePoint{{Lat: 42.29, Lng: -83.74, Name: "Trailhead"}},
			CreatedAt:     created.Add(time.Hour),
			UpdatedAt:     created.Add(time.Hour),
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	want := testRoutes()
	if err := SaveCollection(ctx, s, CollectionRoutes, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadCollection[model.Route](ctx, s, CollectionRoutes)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreMissingFileYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	got, err := LoadCollection[model.Route](ctx, s, CollectionRoutes)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty collection, got %d records", len(got))
	}

	// First access self-heals: the document now exists.
	if _, err := os.Stat(filepath.Join(dir, "routes.json")); err != nil {
		t.Errorf("expected routes.json to be created: %v", err)
	}
}

func TestFileStoreCorruptFileSelfHeals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(dir)
	got, err := LoadCollection[model.Route](context.Background(), s, CollectionRoutes)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty collection after corrupt file, got %d records", len(got))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("expected file reset to empty array, got %q", data)
	}
}

func TestFileStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewFileStore(dir)

	if err := SaveCollection(context.Background(), s, CollectionEvents, []model.Event{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected data dir to be created: %v", err)
	}
}

func TestLoadCollectionWrongShapeYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	// Valid JSON, wrong shape: object instead of array.
	if err := os.WriteFile(filepath.Join(dir, "routes.json"), []byte(`{"oops": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(dir)
	got, err := LoadCollection[model.Route](context.Background(), s, CollectionRoutes)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty collection, got %d records", len(got))
	}
}
