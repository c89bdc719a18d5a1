// SPDX-License-Identifier: MIT

package registration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/umrunclub/clubsite/internal/persistence/sqlite"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "registrations.db"), sqlite.DefaultConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	r, err := NewRepository(db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return r
}

func testRegistration(email string) Registration {
	return Registration{
		FirstName:         "Jordan",
		LastName:          "Taylor",
		Email:             email,
		Phone:             "734-555-0100",
		IsUMUndergrad:     true,
		Grade:             "sophomore",
		Major:             "Kinesiology",
		RunningExperience: "2 years of casual running",
		FitnessLevel:      "intermediate",
		EmergencyContact:  "Sam Taylor",
		EmergencyPhone:    "734-555-0101",
		Availability:      []string{"Wednesday", "Saturday"},
		IPAddress:         "203.0.113.9",
	}
}

func TestInsertAndList(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	id, err := r.Insert(ctx, testRegistration("jordan@umich.edu"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}

	records, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(records))
	}
	got := records[0]
	if got.Email != "jordan@umich.edu" {
		t.Errorf("expected email round trip, got %q", got.Email)
	}
	if !got.IsUMUndergrad {
		t.Error("expected undergrad flag to round trip")
	}
	if len(got.Availability) != 2 || got.Availability[0] != "Wednesday" {
		t.Errorf("expected availability round trip, got %v", got.Availability)
	}
	if got.SubmittedAt.IsZero() {
		t.Error("expected server-assigned submittedAt")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	if _, err := r.Insert(ctx, testRegistration("dup@umich.edu")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	second := testRegistration("dup@umich.edu")
	second.FirstName = "Casey"
	if _, err := r.Insert(ctx, second); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// The collision must not have created a second record.
	records, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 registration after duplicate, got %d", len(records))
	}
}

func TestEmailExists(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	exists, err := r.EmailExists(ctx, "nobody@umich.edu")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if exists {
		t.Error("expected email to not exist")
	}

	if _, err := r.Insert(ctx, testRegistration("somebody@umich.edu")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	exists, err = r.EmailExists(ctx, "somebody@umich.edu")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if !exists {
		t.Error("expected email to exist")
	}
}

func TestListOrdersNewestSubmissionFirst(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	for _, email := range []string{"a@umich.edu", "b@umich.edu", "c@umich.edu"} {
		if _, err := r.Insert(ctx, testRegistration(email)); err != nil {
			t.Fatalf("insert %s: %v", email, err)
		}
	}

	records, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 registrations, got %d", len(records))
	}
	if records[0].Email != "c@umich.edu" {
		t.Errorf("expected newest submission first, got %q", records[0].Email)
	}
	for i := 1; i < len(records); i++ {
		if records[i].SubmittedAt.After(records[i-1].SubmittedAt) {
			t.Errorf("expected submittedAt descending at index %d", i)
		}
	}
}
