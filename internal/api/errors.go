// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/umrunclub/clubsite/internal/events"
	"github.com/umrunclub/clubsite/internal/registration"
	"github.com/umrunclub/clubsite/internal/routes"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeBadRequest writes a 400 response, optionally with per-field details.
func writeBadRequest(w http.ResponseWriter, msg string, details []string) {
	body := map[string]any{"error": msg}
	if len(details) > 0 {
		body["errors"] = details
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// writeRepositoryError maps repository errors to status codes: absent ids to
// 404, duplicate emails to 409, everything else (storage unavailable) to 500.
func writeRepositoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routes.ErrNotFound), errors.Is(err, events.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, registration.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "an application with this email address already exists")
	default:
		writeError(w, http.StatusInternalServerError, "storage unavailable")
	}
}
