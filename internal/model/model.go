// SPDX-License-Identifier: MIT

// Package model defines the content entities managed by the club site:
// running routes, recurring events and membership registrations.
package model

import "time"

// Difficulty grades a route for the public route listing.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyHard     Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulty grades.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return true
	}
	return false
}

// RoutePoint is a single geo point on a route. Point order defines path
// traversal order. Callers treat (0,0) as "unset".
type RoutePoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// Route is a running route shown on the site and managed from the admin
// dashboard. At most one route carries IsUpcoming at any time.
type Route struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Distance      string       `json:"distance"` // free-form, e.g. "5.0 miles"
	Difficulty    Difficulty   `json:"difficulty"`
	EstimatedTime string       `json:"estimatedTime"`
	Points        []RoutePoint `json:"points"`
	IsUpcoming    bool         `json:"isUpcoming"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Event is a recurring schedule entry. Date is prose, not a structured date
// ("Every Wednesday, 6:00 PM").
type Event struct {
	ID          int       `json:"id"`
	Badge       string    `json:"badge"` // short category label: WEEKLY, WEEKEND, ...
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	IsActive    bool      `json:"isActive"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Registration is a membership application. Append-only: once submitted it is
// never updated or deleted. Email is unique across all registrations.
type Registration struct {
	ID                int       `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	IsUMUndergrad     bool      `json:"isUMUndergrad"`
	Grade             string    `json:"grade"`
	Major             string    `json:"major"`
	RunningExperience string    `json:"runningExperience"`
	FitnessLevel      string    `json:"fitnessLevel"`
	Goals             string    `json:"goals,omitempty"`
	EmergencyContact  string    `json:"emergencyContact"`
	EmergencyPhone    string    `json:"emergencyPhone"`
	MedicalConditions string    `json:"medicalConditions,omitempty"`
	Availability      []string  `json:"availability"`
	HearAboutUs       string    `json:"hearAboutUs,omitempty"`
	AdditionalInfo    string    `json:"additionalInfo,omitempty"`
	SubmittedAt       time.Time `json:"submittedAt"`
	IPAddress         string    `json:"ipAddress,omitempty"`
}
