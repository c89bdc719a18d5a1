// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	"github.com/umrunclub/clubsite/internal/events"
)

// handleListEvents serves the public schedule: active events in display
// order. The admin dashboard passes all=1 to see inactive entries too.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") != "" {
		records, err := s.events.List(r.Context())
		if err != nil {
			writeRepositoryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}
	records, err := s.events.ListActive(r.Context())
	if err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// addEventRequest mirrors events.NewEvent but lets an absent isActive
// default to true, matching the admin form.
type addEventRequest struct {
	Badge       string `json:"badge"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	IsActive    *bool  `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req addEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"badge", req.Badge},
		{"title", req.Title},
		{"description", req.Description},
		{"date", req.Date},
		{"location", req.Location},
	} {
		if field.value == "" {
			errs = append(errs, field.name+" is required")
		}
	}
	if len(errs) > 0 {
		writeBadRequest(w, "validation failed", errs)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	id, err := s.events.Add(r.Context(), events.NewEvent{
		Badge:       req.Badge,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		IsActive:    active,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": "event added"})
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch events.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.events.Update(r.Context(), id, patch); err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event updated"})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.events.Delete(r.Context(), id); err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}
