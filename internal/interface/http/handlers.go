package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sooam-edu/tutoring-hub/internal/application/command"
	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth runs the registered dependency checks and reports the result.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	checks := make(map[string]string, len(s.deps.HealthChecks))
	httpStatus := http.StatusOK

	for name, check := range s.deps.HealthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// handleLive is the liveness probe: the process is up.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// INGESTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// ingestRequest is the body of the ingest endpoint.
type ingestRequest struct {
	// Kind selects the payload shape: test, monthly, weekly, consolidated.
	Kind string `json:"kind"`

	// Analysis is the raw analysis payload.
	Analysis json.RawMessage `json:"analysis"`
}

// handleIngestReport accepts one analysis payload and merges it into the
// student's profile.
//
// POST /api/v1/students/{id}/reports/{reportID}/ingest
func (s *Server) handleIngestReport(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	reportID := r.PathValue("reportID")

	var req ingestRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	kind, err := report.ParseKind(req.Kind)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_kind", err.Error())
		return
	}

	payload, err := report.Decode(req.Analysis)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	result, err := s.deps.IngestReport.Handle(r.Context(), command.IngestReportCommand{
		StudentID:     studentID,
		ReportID:      reportID,
		Kind:          kind,
		Payload:       payload,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// 207: the ingestion finished, but some candidates were skipped.
	status := http.StatusOK
	if !result.Success {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProfile returns the active profile view for one student.
//
// GET /api/v1/students/{id}/profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.deps.GetProfile.Handle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleGetChangeHistory returns the audit trail for one student,
// newest first. Supports ?limit=N (default 50, max 200).
//
// GET /api/v1/students/{id}/history
func (s *Server) handleGetChangeHistory(w http.ResponseWriter, r *http.Request) {
	limit := getQueryParamInt(r, "limit", 50)
	events, err := s.deps.GetChangeHistory.Handle(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER ACTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleResolveWeakness marks a weakness resolved on behalf of a teacher.
//
// POST /api/v1/weaknesses/{id}/resolve
func (s *Server) handleResolveWeakness(w http.ResponseWriter, r *http.Request) {
	resolved, err := s.deps.TeacherActions.ResolveWeakness(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// addWeaknessRequest is the body of the manual weakness endpoint.
type addWeaknessRequest struct {
	Concept  string `json:"concept"`
	Category string `json:"category"`
	Severity int    `json:"severity"`
}

// handleAddManualWeakness creates a weakness entered by hand.
//
// POST /api/v1/students/{id}/weaknesses
func (s *Server) handleAddManualWeakness(w http.ResponseWriter, r *http.Request) {
	var req addWeaknessRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	w2, err := s.deps.TeacherActions.AddManualWeakness(r.Context(), command.AddManualWeaknessCommand{
		StudentID: r.PathValue("id"),
		Concept:   req.Concept,
		Category:  profile.WeaknessCategory(req.Category),
		Severity:  req.Severity,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, w2)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain errors to HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound) || errors.Is(err, profile.ErrEntryNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, profile.ErrNotResolvable):
		writeJSONError(w, http.StatusConflict, "not_resolvable", err.Error())
	case errors.Is(err, shared.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, shared.ErrInvalidInput) ||
		errors.Is(err, shared.ErrInvalidID) ||
		errors.Is(err, shared.ErrValidation) ||
		errors.Is(err, shared.ErrInvalidEntity) ||
		errors.Is(err, profile.ErrInvalidConcept) ||
		errors.Is(err, profile.ErrInvalidSeverity) ||
		errors.Is(err, profile.ErrInvalidCategory) ||
		errors.Is(err, profile.ErrInvalidStudentID):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// decodeBody decodes the JSON request body into dest.
func decodeBody(r *http.Request, dest interface{}) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
