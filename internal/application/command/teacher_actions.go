package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER ACTIONS
// Resolving a weakness and adding one manually are teacher capabilities.
// The extraction engine only ever reads the resolved state (as the
// precondition for the recurrence transition); it never writes it.
// ══════════════════════════════════════════════════════════════════════════════

// TeacherActionsHandler executes teacher-attributed profile mutations.
type TeacherActionsHandler struct {
	repo    profile.Repository
	changes profile.ChangeLog
	cache   profile.Cache
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewTeacherActionsHandler creates the handler.
func NewTeacherActionsHandler(repo profile.Repository, changes profile.ChangeLog, cache profile.Cache, logger *slog.Logger) *TeacherActionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeacherActionsHandler{
		repo:    repo,
		changes: changes,
		cache:   cache,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// ResolveWeakness marks a weakness resolved on behalf of a teacher and logs
// a teacher-attributed change event.
func (h *TeacherActionsHandler) ResolveWeakness(ctx context.Context, weaknessID string) (*profile.Weakness, error) {
	if weaknessID == "" {
		return nil, shared.NewDomainError("profile", "ResolveWeakness", shared.ErrInvalidID, "weakness id is required")
	}

	now := h.now()
	resolved, err := h.repo.ResolveWeakness(ctx, weaknessID, now)
	if err != nil {
		return nil, err
	}

	event, err := profile.NewChangeEvent(profile.NewChangeEventParams{
		ID:            h.newID(),
		StudentID:     resolved.StudentID,
		ReportID:      resolved.LastDetectedReportID,
		ChangeType:    profile.ChangeWeaknessUpdated,
		AttributeType: profile.AttributeWeakness,
		AttributeID:   resolved.ID,
		NewState:      resolved.Snapshot(),
		ChangedBy:     profile.ActorTeacher,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	if err := h.changes.Append(ctx, event); err != nil {
		h.logger.Error("change log append failed after resolve",
			slog.String("weakness_id", weaknessID), slog.Any("error", err))
	}

	h.invalidate(ctx, resolved.StudentID)
	return resolved, nil
}

// AddManualWeaknessCommand contains the data for a hand-entered weakness.
type AddManualWeaknessCommand struct {
	StudentID string
	Concept   string
	Category  profile.WeaknessCategory
	Severity  int
}

// AddManualWeakness creates a weakness entered by a teacher, marked
// isManuallyAdded so extraction-driven merges remain distinguishable.
func (h *TeacherActionsHandler) AddManualWeakness(ctx context.Context, cmd AddManualWeaknessCommand) (*profile.Weakness, error) {
	now := h.now()
	w, err := profile.NewWeakness(profile.NewWeaknessParams{
		ID:              h.newID(),
		StudentID:       cmd.StudentID,
		Concept:         cmd.Concept,
		Category:        cmd.Category,
		Severity:        cmd.Severity,
		ReportID:        "manual:" + h.newID(),
		DetectedAt:      now,
		IsManuallyAdded: true,
	})
	if err != nil {
		return nil, err
	}

	if err := h.repo.CreateWeakness(ctx, w); err != nil {
		return nil, err
	}

	event, err := profile.NewChangeEvent(profile.NewChangeEventParams{
		ID:            h.newID(),
		StudentID:     w.StudentID,
		ReportID:      w.FirstDetectedReportID,
		ChangeType:    profile.ChangeWeaknessAdded,
		AttributeType: profile.AttributeWeakness,
		AttributeID:   w.ID,
		NewState:      w.Snapshot(),
		ChangedBy:     profile.ActorTeacher,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	if err := h.changes.Append(ctx, event); err != nil {
		h.logger.Error("change log append failed after manual add",
			slog.String("weakness_id", w.ID), slog.Any("error", err))
	}

	h.invalidate(ctx, w.StudentID)
	return w, nil
}

func (h *TeacherActionsHandler) invalidate(ctx context.Context, studentID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, studentID); err != nil {
		h.logger.Warn("profile cache invalidation failed",
			slog.String("student_id", studentID), slog.Any("error", err))
	}
}
