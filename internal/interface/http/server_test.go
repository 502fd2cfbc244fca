package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooam-edu/tutoring-hub/internal/application/command"
	"github.com/sooam-edu/tutoring-hub/internal/application/query"
	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory backing store driving the full handler stack.
// ─────────────────────────────────────────────────────────────────────────────

type memRepo struct {
	weaknesses []*profile.Weakness
	strengths  []*profile.Strength
	patterns   []*profile.Pattern

	failCreateWeaknessConcept string
}

func (r *memRepo) CreateWeakness(_ context.Context, w *profile.Weakness) error {
	if r.failCreateWeaknessConcept != "" && w.Concept == r.failCreateWeaknessConcept {
		return errors.New("storage unavailable")
	}
	r.weaknesses = append(r.weaknesses, w.Clone())
	return nil
}

func (r *memRepo) UpdateWeakness(_ context.Context, w *profile.Weakness) error {
	for i, existing := range r.weaknesses {
		if existing.ID == w.ID {
			r.weaknesses[i] = w.Clone()
			return nil
		}
	}
	return profile.ErrEntryNotFound
}

func (r *memRepo) ListWeaknesses(_ context.Context, studentID string) ([]*profile.Weakness, error) {
	var out []*profile.Weakness
	for _, w := range r.weaknesses {
		if w.StudentID == studentID {
			out = append(out, w.Clone())
		}
	}
	return out, nil
}

func (r *memRepo) ActiveWeaknesses(ctx context.Context, studentID string) ([]*profile.Weakness, error) {
	all, err := r.ListWeaknesses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var out []*profile.Weakness
	for _, w := range all {
		if w.Status.IsConcern() {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *memRepo) ResolveWeakness(_ context.Context, id string, resolvedAt time.Time) (*profile.Weakness, error) {
	for _, w := range r.weaknesses {
		if w.ID == id {
			if err := w.Resolve(resolvedAt); err != nil {
				return nil, err
			}
			return w.Clone(), nil
		}
	}
	return nil, profile.ErrEntryNotFound
}

func (r *memRepo) CreateStrength(_ context.Context, s *profile.Strength) error {
	r.strengths = append(r.strengths, s.Clone())
	return nil
}

func (r *memRepo) UpdateStrength(_ context.Context, s *profile.Strength) error {
	for i, existing := range r.strengths {
		if existing.ID == s.ID {
			r.strengths[i] = s.Clone()
			return nil
		}
	}
	return profile.ErrEntryNotFound
}

func (r *memRepo) ListStrengths(_ context.Context, studentID string) ([]*profile.Strength, error) {
	var out []*profile.Strength
	for _, s := range r.strengths {
		if s.StudentID == studentID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *memRepo) ActiveStrengths(ctx context.Context, studentID string) ([]*profile.Strength, error) {
	all, err := r.ListStrengths(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var out []*profile.Strength
	for _, s := range all {
		if s.Status == profile.EntryActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) CreatePattern(_ context.Context, p *profile.Pattern) error {
	r.patterns = append(r.patterns, p.Clone())
	return nil
}

func (r *memRepo) UpdatePattern(_ context.Context, p *profile.Pattern) error {
	for i, existing := range r.patterns {
		if existing.ID == p.ID {
			r.patterns[i] = p.Clone()
			return nil
		}
	}
	return profile.ErrEntryNotFound
}

func (r *memRepo) ListPatterns(_ context.Context, studentID string) ([]*profile.Pattern, error) {
	var out []*profile.Pattern
	for _, p := range r.patterns {
		if p.StudentID == studentID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *memRepo) ActivePatterns(ctx context.Context, studentID string) ([]*profile.Pattern, error) {
	all, err := r.ListPatterns(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var out []*profile.Pattern
	for _, p := range all {
		if p.Status == profile.EntryActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type memLog struct {
	events []*profile.ChangeEvent
}

func (l *memLog) Append(_ context.Context, event *profile.ChangeEvent) error {
	l.events = append(l.events, event)
	return nil
}

func (l *memLog) ListByStudent(_ context.Context, studentID string, limit int) ([]*profile.ChangeEvent, error) {
	var out []*profile.ChangeEvent
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].StudentID != studentID {
			continue
		}
		out = append(out, l.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (l *memLog) ListByReport(_ context.Context, reportID string) ([]*profile.ChangeEvent, error) {
	var out []*profile.ChangeEvent
	for _, e := range l.events {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Test server
// ─────────────────────────────────────────────────────────────────────────────

func newTestServer(repo *memRepo, log *memLog, checks map[string]HealthChecker) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ingest := command.NewIngestReportHandler(command.IngestReportDeps{
		Repository: repo,
		ChangeLog:  log,
		Logger:     logger,
	})
	teacher := command.NewTeacherActionsHandler(repo, log, nil, logger)

	return NewServer(DefaultConfig(), Dependencies{
		IngestReport:     ingest,
		TeacherActions:   teacher,
		GetProfile:       query.NewGetProfileHandler(repo, nil, logger),
		GetChangeHistory: query.NewGetChangeHistoryHandler(log),
		HealthChecks:     checks,
		Logger:           logger,
	})
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestServer_IngestReport(t *testing.T) {
	repo := &memRepo{}
	log := &memLog{}
	srv := newTestServer(repo, log, nil)

	body := `{"kind": "test", "analysis": {"test": {"weaknesses": "분수 나눗셈", "strengths": "빠른 연산"}}}`
	rec := doRequest(srv, http.MethodPost, "/api/v1/students/student-1/reports/report-1/ingest", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	require.Len(t, repo.weaknesses, 1)
	assert.Equal(t, "student-1", repo.weaknesses[0].StudentID)
	require.Len(t, repo.strengths, 1)
	assert.Len(t, log.events, 2)
}

func TestServer_IngestReport_PartialFailureIsMultiStatus(t *testing.T) {
	repo := &memRepo{failCreateWeaknessConcept: "소수점 계산"}
	srv := newTestServer(repo, &memLog{}, nil)

	body := `{"kind": "test", "analysis": {"test": {"weaknesses": "분수 나눗셈, 소수점 계산"}}}`
	rec := doRequest(srv, http.MethodPost, "/api/v1/students/student-1/reports/report-1/ingest", body)

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	require.Len(t, repo.weaknesses, 1)
}

func TestServer_IngestReport_BadRequests(t *testing.T) {
	srv := newTestServer(&memRepo{}, &memLog{}, nil)
	path := "/api/v1/students/student-1/reports/report-1/ingest"

	rec := doRequest(srv, http.MethodPost, path, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, path, `{"kind": "quarterly", "analysis": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_kind", decodeResponse(t, rec).Error.Code)

	// Kind that does not match the payload section.
	rec = doRequest(srv, http.MethodPost, path, `{"kind": "monthly", "analysis": {"test": {}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown top-level fields are rejected.
	rec = doRequest(srv, http.MethodPost, path, `{"kind": "test", "analysis": {"test": {}}, "extra": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetProfile(t *testing.T) {
	repo := &memRepo{}
	log := &memLog{}
	srv := newTestServer(repo, log, nil)

	body := `{"kind": "test", "analysis": {"test": {"weaknesses": "분수 나눗셈"}}}`
	doRequest(srv, http.MethodPost, "/api/v1/students/student-1/reports/report-1/ingest", body)

	rec := doRequest(srv, http.MethodGet, "/api/v1/students/student-1/profile", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "student-1", data["student_id"])
	assert.Len(t, data["weaknesses"], 1)
}

func TestServer_GetChangeHistory(t *testing.T) {
	repo := &memRepo{}
	log := &memLog{}
	srv := newTestServer(repo, log, nil)

	body := `{"kind": "test", "analysis": {"test": {"weaknesses": "분수 나눗셈, 소수점 계산"}}}`
	doRequest(srv, http.MethodPost, "/api/v1/students/student-1/reports/report-1/ingest", body)

	rec := doRequest(srv, http.MethodGet, "/api/v1/students/student-1/history?limit=1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeResponse(t, rec).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["count"])
}

func TestServer_ResolveWeakness(t *testing.T) {
	repo := &memRepo{}
	srv := newTestServer(repo, &memLog{}, nil)

	body := `{"kind": "test", "analysis": {"test": {"weaknesses": "분수 나눗셈"}}}`
	doRequest(srv, http.MethodPost, "/api/v1/students/student-1/reports/report-1/ingest", body)
	require.Len(t, repo.weaknesses, 1)
	id := repo.weaknesses[0].ID

	rec := doRequest(srv, http.MethodPost, "/api/v1/weaknesses/"+id+"/resolve", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, profile.WeaknessResolved, repo.weaknesses[0].Status)

	// Resolving twice conflicts.
	rec = doRequest(srv, http.MethodPost, "/api/v1/weaknesses/"+id+"/resolve", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/v1/weaknesses/unknown/resolve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AddManualWeakness(t *testing.T) {
	repo := &memRepo{}
	srv := newTestServer(repo, &memLog{}, nil)

	rec := doRequest(srv, http.MethodPost, "/api/v1/students/student-1/weaknesses",
		`{"concept": "받아올림 실수", "category": "calculation", "severity": 4}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.weaknesses, 1)
	assert.True(t, repo.weaknesses[0].IsManuallyAdded)

	rec = doRequest(srv, http.MethodPost, "/api/v1/students/student-1/weaknesses",
		`{"concept": "받아올림 실수", "category": "calculation", "severity": 9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(&memRepo{}, &memLog{}, map[string]HealthChecker{
		"postgres": func(context.Context) error { return nil },
	})

	rec := doRequest(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	degraded := newTestServer(&memRepo{}, &memLog{}, map[string]HealthChecker{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec = doRequest(degraded, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(degraded, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RequestIDPropagation(t *testing.T) {
	srv := newTestServer(&memRepo{}, &memLog{}, nil)

	rec := doRequest(srv, http.MethodGet, "/live", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "trace-42", rec.Header().Get("X-Request-ID"))
}

func TestWriteDomainError(t *testing.T) {
	srv := newTestServer(&memRepo{}, &memLog{}, nil)

	tests := []struct {
		err  error
		want int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{profile.ErrEntryNotFound, http.StatusNotFound},
		{profile.ErrNotResolvable, http.StatusConflict},
		{shared.ErrAlreadyExists, http.StatusConflict},
		{shared.ErrInvalidInput, http.StatusBadRequest},
		{profile.ErrInvalidSeverity, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.writeDomainError(rec, tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestGetQueryParamInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=25&bad=abc", nil)

	assert.Equal(t, 25, getQueryParamInt(req, "limit", 50))
	assert.Equal(t, 50, getQueryParamInt(req, "bad", 50))
	assert.Equal(t, 50, getQueryParamInt(req, "missing", 50))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.9:4312"
	assert.Equal(t, "10.0.0.9", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.7")
	assert.Equal(t, "10.0.0.7", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", getClientIP(req))
}
