// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/umrunclub/clubsite/internal/registration"
)

var umichEmail = regexp.MustCompile(`^[^\s@]+@umich\.edu$`)

var validGrades = map[string]bool{
	"freshman":  true,
	"sophomore": true,
	"junior":    true,
	"senior":    true,
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg registration.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validateRegistration(reg); len(errs) > 0 {
		writeBadRequest(w, "validation failed", errs)
		return
	}

	reg.IPAddress = clientIP(r)

	id, err := s.regs.Insert(r.Context(), reg)
	if err != nil {
		writeRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"id":      id,
		"message": "registration submitted",
	})
}

func validateRegistration(reg registration.Registration) []string {
	var errs []string
	if strings.TrimSpace(reg.FirstName) == "" {
		errs = append(errs, "first name is required")
	}
	if strings.TrimSpace(reg.LastName) == "" {
		errs = append(errs, "last name is required")
	}
	switch {
	case strings.TrimSpace(reg.Email) == "":
		errs = append(errs, "email address is required")
	case !umichEmail.MatchString(reg.Email):
		errs = append(errs, "email must be a University of Michigan address ending in @umich.edu")
	}
	if strings.TrimSpace(reg.Phone) == "" {
		errs = append(errs, "phone number is required")
	}
	if !reg.IsUMUndergrad {
		errs = append(errs, "must confirm current University of Michigan undergraduate student status")
	}
	if strings.TrimSpace(reg.Grade) == "" {
		errs = append(errs, "class year is required")
	} else if !validGrades[reg.Grade] {
		errs = append(errs, "invalid class year")
	}
	if strings.TrimSpace(reg.EmergencyContact) == "" {
		errs = append(errs, "emergency contact name is required")
	}
	if strings.TrimSpace(reg.EmergencyPhone) == "" {
		errs = append(errs, "emergency contact phone is required")
	}
	return errs
}

// clientIP resolves the client address behind the usual proxy headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
