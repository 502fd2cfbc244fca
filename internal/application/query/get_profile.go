// Package query contains read operations (CQRS - Queries).
// Queries never mutate the profile; they serve the dashboard read path.
package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// profileCacheTTL bounds staleness of the cached dashboard snapshot.
// Every ingest mutation invalidates the snapshot anyway; the TTL only
// covers invalidation failures.
const profileCacheTTL = 10 * time.Minute

// GetProfileHandler returns the active profile view for one student:
// weaknesses with status active/recurring sorted by severity then occurrence
// count, strengths and patterns with status active sorted by level/occurrence.
type GetProfileHandler struct {
	repo   profile.Repository
	cache  profile.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewGetProfileHandler creates the handler. Cache is optional.
func NewGetProfileHandler(repo profile.Repository, cache profile.Cache, logger *slog.Logger) *GetProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetProfileHandler{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Handle returns the profile snapshot, preferring the cache.
func (h *GetProfileHandler) Handle(ctx context.Context, studentID string) (*profile.Snapshot, error) {
	if studentID == "" {
		return nil, shared.NewDomainError("profile", "GetProfile", shared.ErrInvalidID, "student id is required")
	}

	if h.cache != nil {
		if snapshot, err := h.cache.GetSnapshot(ctx, studentID); err == nil {
			return snapshot, nil
		}
	}

	weaknesses, err := h.repo.ActiveWeaknesses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	strengths, err := h.repo.ActiveStrengths(ctx, studentID)
	if err != nil {
		return nil, err
	}
	patterns, err := h.repo.ActivePatterns(ctx, studentID)
	if err != nil {
		return nil, err
	}

	snapshot := &profile.Snapshot{
		StudentID:  studentID,
		Weaknesses: weaknesses,
		Strengths:  strengths,
		Patterns:   patterns,
		BuiltAt:    h.now(),
	}

	if h.cache != nil {
		if err := h.cache.SetSnapshot(ctx, snapshot, profileCacheTTL); err != nil {
			h.logger.Warn("profile snapshot cache write failed",
				slog.String("student_id", studentID), slog.Any("error", err))
		}
	}

	return snapshot, nil
}

// GetChangeHistoryHandler returns the audit trail for one student.
type GetChangeHistoryHandler struct {
	changes profile.ChangeLog
}

// NewGetChangeHistoryHandler creates the handler.
func NewGetChangeHistoryHandler(changes profile.ChangeLog) *GetChangeHistoryHandler {
	return &GetChangeHistoryHandler{changes: changes}
}

// Handle returns the most recent change events for a student, newest first.
func (h *GetChangeHistoryHandler) Handle(ctx context.Context, studentID string, limit int) ([]*profile.ChangeEvent, error) {
	if studentID == "" {
		return nil, shared.NewDomainError("profile", "GetChangeHistory", shared.ErrInvalidID, "student id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return h.changes.ListByStudent(ctx, studentID, limit)
}
