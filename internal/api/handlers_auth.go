// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"
)

// handleAuth verifies the admin dashboard password. The comparison is
// constant time, and failed attempts pay a fixed delay on top of the per-IP
// rate limit.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if s.cfg.AdminPassword == "" {
		s.logger.Error().Msg("admin password is not configured")
		writeError(w, http.StatusInternalServerError, "admin password not configured")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AdminPassword)) == 1 {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "authentication successful"})
		return
	}

	time.Sleep(time.Second)
	writeError(w, http.StatusUnauthorized, "invalid password")
}
