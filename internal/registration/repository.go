// SPDX-License-Identifier: MIT

// Package registration implements the append-only membership application
// store. Registrations live in SQLite regardless of which backend serves the
// content collections.
package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/umrunclub/clubsite/internal/log"
	"github.com/umrunclub/clubsite/internal/model"
)

// ErrDuplicateEmail is returned when an insert collides with an existing
// registration's email. The record is never overwritten.
var ErrDuplicateEmail = errors.New("registration: email already registered")

// Registration holds the caller-provided fields of an application. ID and
// submittedAt are assigned on insert.
type Registration struct {
	FirstName         string   `json:"firstName"`
	LastName          string   `json:"lastName"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	IsUMUndergrad     bool     `json:"isUMUndergrad"`
	Grade             string   `json:"grade"`
	Major             string   `json:"major"`
	RunningExperience string   `json:"runningExperience"`
	FitnessLevel      string   `json:"fitnessLevel"`
	Goals             string   `json:"goals"`
	EmergencyContact  string   `json:"emergencyContact"`
	EmergencyPhone    string   `json:"emergencyPhone"`
	MedicalConditions string   `json:"medicalConditions"`
	Availability      []string `json:"availability"`
	HearAboutUs       string   `json:"hearAboutUs"`
	AdditionalInfo    string   `json:"additionalInfo"`
	IPAddress         string   `json:"-"`
}

// Repository is the append-only registration store. No update or delete is
// exposed.
type Repository struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewRepository prepares the registrations table on the given database.
func NewRepository(db *sql.DB) (*Repository, error) {
	r := &Repository{
		db:     db,
		logger: log.WithComponent("registration"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := r.migrate(); err != nil {
		return nil, fmt.Errorf("registration: migration failed: %w", err)
	}
	return r, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS registrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL,
		is_um_undergrad INTEGER NOT NULL,
		grade TEXT NOT NULL,
		major TEXT NOT NULL,
		running_experience TEXT NOT NULL,
		fitness_level TEXT NOT NULL,
		goals TEXT NOT NULL DEFAULT '',
		emergency_contact TEXT NOT NULL,
		emergency_phone TEXT NOT NULL,
		medical_conditions TEXT NOT NULL DEFAULT '',
		availability TEXT NOT NULL DEFAULT '[]',
		hear_about_us TEXT NOT NULL DEFAULT '',
		additional_info TEXT NOT NULL DEFAULT '',
		submitted_at TEXT NOT NULL,
		ip_address TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_registrations_submitted ON registrations(submitted_at);
	`
	_, err := r.db.Exec(schema)
	return err
}

// EmailExists reports whether a registration with the given email already
// exists.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var id int
	err := r.db.QueryRowContext(ctx, "SELECT id FROM registrations WHERE email = ?", email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("registration: email lookup: %w", err)
	}
	return true, nil
}

// Insert appends a new registration and returns its assigned id. Duplicate
// emails fail with ErrDuplicateEmail: the explicit check catches the common
// case and the UNIQUE constraint backstops the check-then-insert race.
func (r *Repository) Insert(ctx context.Context, reg Registration) (int, error) {
	exists, err := r.EmailExists(ctx, reg.Email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateEmail
	}

	availability, err := json.Marshal(reg.Availability)
	if err != nil {
		return 0, fmt.Errorf("registration: encode availability: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO registrations (
			first_name, last_name, email, phone, is_um_undergrad, grade, major,
			running_experience, fitness_level, goals, emergency_contact,
			emergency_phone, medical_conditions, availability, hear_about_us,
			additional_info, submitted_at, ip_address
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.FirstName, reg.LastName, reg.Email, reg.Phone, boolToInt(reg.IsUMUndergrad),
		reg.Grade, reg.Major, reg.RunningExperience, reg.FitnessLevel, reg.Goals,
		reg.EmergencyContact, reg.EmergencyPhone, reg.MedicalConditions,
		string(availability), reg.HearAboutUs, reg.AdditionalInfo,
		r.now().Format(time.RFC3339Nano), reg.IPAddress)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("registration: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("registration: last insert id: %w", err)
	}
	r.logger.Info().Int64("id", id).Msg("registration recorded")
	return int(id), nil
}

// List returns all registrations, newest submission first.
func (r *Repository) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone, is_um_undergrad, grade,
		       major, running_experience, fitness_level, goals, emergency_contact,
		       emergency_phone, medical_conditions, availability, hear_about_us,
		       additional_info, submitted_at, ip_address
		FROM registrations ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("registration: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.Registration{}
	for rows.Next() {
		var reg model.Registration
		var isUndergrad int
		var availability, submittedAt string
		if err := rows.Scan(&reg.ID, &reg.FirstName, &reg.LastName, &reg.Email,
			&reg.Phone, &isUndergrad, &reg.Grade, &reg.Major, &reg.RunningExperience,
			&reg.FitnessLevel, &reg.Goals, &reg.EmergencyContact, &reg.EmergencyPhone,
			&reg.MedicalConditions, &availability, &reg.HearAboutUs,
			&reg.AdditionalInfo, &submittedAt, &reg.IPAddress); err != nil {
			return nil, fmt.Errorf("registration: scan: %w", err)
		}
		reg.IsUMUndergrad = isUndergrad != 0
		if err := json.Unmarshal([]byte(availability), &reg.Availability); err != nil {
			reg.Availability = nil
		}
		if reg.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt); err != nil {
			return nil, fmt.Errorf("registration: invalid submitted_at %q: %w", submittedAt, err)
		}
		records = append(records, reg)
	}
	return records, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
