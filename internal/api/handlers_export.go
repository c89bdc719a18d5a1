// SPDX-License-Identifier: MIT

package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// handleExport streams all registrations as a CSV download for the admin
// dashboard.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.regs.List(r.Context())
	if err != nil {
		writeRepositoryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="registrations.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "firstName", "lastName", "email", "phone", "isUMUndergrad",
		"grade", "major", "runningExperience", "fitnessLevel", "goals",
		"emergencyContact", "emergencyPhone", "medicalConditions",
		"availability", "hearAboutUs", "additionalInfo", "submittedAt", "ipAddress",
	})
	for _, reg := range records {
		_ = cw.Write([]string{
			strconv.Itoa(reg.ID),
			reg.FirstName,
			reg.LastName,
			reg.Email,
			reg.Phone,
			strconv.FormatBool(reg.IsUMUndergrad),
			reg.Grade,
			reg.Major,
			reg.RunningExperience,
			reg.FitnessLevel,
			reg.Goals,
			reg.EmergencyContact,
			reg.EmergencyPhone,
			reg.MedicalConditions,
			strings.Join(reg.Availability, "; "),
			reg.HearAboutUs,
			reg.AdditionalInfo,
			reg.SubmittedAt.Format(time.RFC3339),
			reg.IPAddress,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Warn().Err(err).Msg("csv export write failed")
	}
}
