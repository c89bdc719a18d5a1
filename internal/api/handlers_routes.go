// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/umrunclub/clubsite/internal/model"
	"github.com/umrunclub/clubsite/internal/routes"
)

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	records, err := s.routes.List(r.Context())
	if err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAddRoute(w http.ResponseWriter, r *http.Request) {
	var nr routes.NewRoute
	if err := json.NewDecoder(r.Body).Decode(&nr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validateNewRoute(nr); len(errs) > 0 {
		writeBadRequest(w, "validation failed", errs)
		return
	}

	id, err := s.routes.Add(r.Context(), nr)
	if err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": "route added"})
}

func (s *Server) handleUpdateRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("action") == "set-upcoming" {
		if err := s.routes.SetUpcoming(r.Context(), id); err != nil {
			writeRepositoryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "upcoming route set"})
		return
	}

	var patch routes.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Difficulty != nil && !patch.Difficulty.Valid() {
		writeBadRequest(w, "validation failed", []string{"difficulty must be Easy, Moderate or Hard"})
		return
	}

	if err := s.routes.Update(r.Context(), id, patch); err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "route updated"})
}

func (s *Server) handleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.routes.Delete(r.Context(), id); err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "route deleted"})
}

// handleUpcomingRoute returns the flagged route, or the static Campus Loop
// fallback when no route is flagged, so the public page always has something
// to render.
func (s *Server) handleUpcomingRoute(w http.ResponseWriter, r *http.Request) {
	route, err := s.routes.Upcoming(r.Context())
	if err != nil {
		writeRepositoryError(w, err)
		return
	}
	if route == nil {
		fallback := fallbackUpcomingRoute()
		route = &fallback
	}
	writeJSON(w, http.StatusOK, route)
}

func validateNewRoute(nr routes.NewRoute) []string {
	var errs []string
	if nr.Name == "" {
		errs = append(errs, "name is required")
	}
	if nr.Distance == "" {
		errs = append(errs, "distance is required")
	}
	if !nr.Difficulty.Valid() {
		errs = append(errs, "difficulty must be Easy, Moderate or Hard")
	}
	return errs
}

// idParam parses the required id query parameter, writing a 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

// fallbackUpcomingRoute is the route shown before the admin flags a real one.
func fallbackUpcomingRoute() model.Route {
	created := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	return model.Route{
		ID:            1,
		Name:          "Campus Loop",
		Description:   "A scenic 3-mile loop around the University of Michigan campus, perfect for beginners and a great way to see the beautiful campus.",
		Distance:      "3.0 miles",
		Difficulty:    model.DifficultyEasy,
		EstimatedTime: "25-30 minutes",
		Points: []model.RoutePoint{
			{Lat: 42.2808, Lng: -83.743, Name: "Start: Diag"},
			{Lat: 42.2776, Lng: -83.7382, Name: "Michigan Union"},
			{Lat: 42.2737, Lng: -83.7347, Name: "Law School"},
			{Lat: 42.2769, Lng: -83.7321, Name: "Medical Campus"},
			{Lat: 42.2808, Lng: -83.743, Name: "End: Diag"},
		},
		IsUpcoming: true,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}
