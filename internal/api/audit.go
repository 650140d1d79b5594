package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/gray-logic-cec/internal/audit"
)

// handleListAudit returns paginated audit entries with optional filters.
//
// Query parameters:
//   - action: command or sequence
//   - source: api, mqtt or system
//   - success: true or false
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action: q.Get("action"),
		Source: q.Get("source"),
	}

	if v := q.Get("success"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "success must be true or false")
			return
		}
		filter.Success = &b
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListSightings returns every device ever seen, with first and last
// sighting times.
func (s *Server) handleListSightings(w http.ResponseWriter, r *http.Request) {
	if s.sightings == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit logging not configured")
		return
	}

	sightings, err := s.sightings.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list device sightings", "error", err)
		writeInternalError(w, "failed to list device sightings")
		return
	}
	if sightings == nil {
		sightings = []audit.Sighting{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"sightings": sightings})
}
