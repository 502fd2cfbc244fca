package profile

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the contract for the persistent record store.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository persists weaknesses, strengths and patterns.
//
// The extraction engine only calls the Create/Update/List operations; the
// Active* reads serve dashboards and ResolveWeakness is the teacher-action
// capability the engine never invokes.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Weaknesses
	// ─────────────────────────────────────────────────────────────────────────

	// CreateWeakness stores a new weakness.
	// Returns shared.ErrAlreadyExists if the id is already taken.
	CreateWeakness(ctx context.Context, w *Weakness) error

	// UpdateWeakness stores the new state of an existing weakness.
	// Returns ErrEntryNotFound if the weakness does not exist.
	UpdateWeakness(ctx context.Context, w *Weakness) error

	// ListWeaknesses returns every weakness of a student, oldest first.
	// This is the match pool for the extraction engine - it must include
	// resolved entries so recurrence can be detected.
	ListWeaknesses(ctx context.Context, studentID string) ([]*Weakness, error)

	// ActiveWeaknesses returns weaknesses with status active or recurring,
	// sorted by severity desc, then occurrence count desc.
	ActiveWeaknesses(ctx context.Context, studentID string) ([]*Weakness, error)

	// ResolveWeakness marks a weakness resolved on behalf of a teacher.
	// The extraction engine must never call this.
	ResolveWeakness(ctx context.Context, id string, resolvedAt time.Time) (*Weakness, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Strengths
	// ─────────────────────────────────────────────────────────────────────────

	// CreateStrength stores a new strength.
	CreateStrength(ctx context.Context, s *Strength) error

	// UpdateStrength stores the new state of an existing strength.
	UpdateStrength(ctx context.Context, s *Strength) error

	// ListStrengths returns every strength of a student, oldest first.
	ListStrengths(ctx context.Context, studentID string) ([]*Strength, error)

	// ActiveStrengths returns strengths with status active,
	// sorted by level desc, then confirmation count desc.
	ActiveStrengths(ctx context.Context, studentID string) ([]*Strength, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Patterns
	// ─────────────────────────────────────────────────────────────────────────

	// CreatePattern stores a new pattern.
	CreatePattern(ctx context.Context, p *Pattern) error

	// UpdatePattern stores the new state of an existing pattern.
	UpdatePattern(ctx context.Context, p *Pattern) error

	// ListPatterns returns every pattern of a student, oldest first.
	ListPatterns(ctx context.Context, studentID string) ([]*Pattern, error)

	// ActivePatterns returns patterns with status active,
	// sorted by occurrence count desc.
	ActivePatterns(ctx context.Context, studentID string) ([]*Pattern, error)
}

// ChangeLog appends and reads the immutable profile change history.
type ChangeLog interface {
	// Append stores one change event. Events are never updated or deleted.
	Append(ctx context.Context, event *ChangeEvent) error

	// ListByStudent returns change events for a student, newest first.
	ListByStudent(ctx context.Context, studentID string, limit int) ([]*ChangeEvent, error)

	// ListByReport returns change events produced by one report ingestion.
	ListByReport(ctx context.Context, reportID string) ([]*ChangeEvent, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot is the cached dashboard view of one student profile.
type Snapshot struct {
	StudentID  string      `json:"student_id"`
	Weaknesses []*Weakness `json:"weaknesses"`
	Strengths  []*Strength `json:"strengths"`
	Patterns   []*Pattern  `json:"patterns"`
	BuiltAt    time.Time   `json:"built_at"`
}

// Cache caches the dashboard read path. A cache miss is signalled by the
// implementation's miss error; callers fall back to the repository.
type Cache interface {
	// GetSnapshot returns the cached profile snapshot for a student.
	GetSnapshot(ctx context.Context, studentID string) (*Snapshot, error)

	// SetSnapshot stores a profile snapshot with the given TTL.
	SetSnapshot(ctx context.Context, snapshot *Snapshot, ttl time.Duration) error

	// Invalidate drops the cached snapshot after a profile mutation.
	Invalidate(ctx context.Context, studentID string) error
}
