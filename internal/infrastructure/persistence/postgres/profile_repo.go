package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements profile.Repository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Weaknesses
// ─────────────────────────────────────────────────────────────────────────────

const weaknessColumns = `
	id, student_id, concept, category, severity, status, occurrence_count,
	first_detected_at, first_detected_report_id,
	last_detected_at, last_detected_report_id,
	recurred_at, related_report_ids, is_manually_added, created_at, updated_at
`

// CreateWeakness stores a new weakness.
func (r *ProfileRepository) CreateWeakness(ctx context.Context, w *profile.Weakness) error {
	query := `
		INSERT INTO weaknesses (` + weaknessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.conn.Exec(ctx, query,
		w.ID,
		w.StudentID,
		w.Concept,
		string(w.Category),
		w.Severity,
		string(w.Status),
		w.OccurrenceCount,
		w.FirstDetectedAt,
		w.FirstDetectedReportID,
		w.LastDetectedAt,
		w.LastDetectedReportID,
		w.RecurredAt,
		w.RelatedReportIDs,
		w.IsManuallyAdded,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create weakness: %w", err)
	}
	return nil
}

// UpdateWeakness stores the new state of an existing weakness.
func (r *ProfileRepository) UpdateWeakness(ctx context.Context, w *profile.Weakness) error {
	query := `
		UPDATE weaknesses SET
			concept = $2, category = $3, severity = $4, status = $5,
			occurrence_count = $6, last_detected_at = $7, last_detected_report_id = $8,
			recurred_at = $9, related_report_ids = $10, updated_at = $11
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		w.ID,
		w.Concept,
		string(w.Category),
		w.Severity,
		string(w.Status),
		w.OccurrenceCount,
		w.LastDetectedAt,
		w.LastDetectedReportID,
		w.RecurredAt,
		w.RelatedReportIDs,
		w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update weakness: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrEntryNotFound
	}
	return nil
}

// ListWeaknesses returns every weakness of a student, oldest first.
func (r *ProfileRepository) ListWeaknesses(ctx context.Context, studentID string) ([]*profile.Weakness, error) {
	query := `
		SELECT ` + weaknessColumns + `
		FROM weaknesses
		WHERE student_id = $1
		ORDER BY created_at ASC
	`
	return r.queryWeaknesses(ctx, query, studentID)
}

// ActiveWeaknesses returns weaknesses that still count as open concerns.
func (r *ProfileRepository) ActiveWeaknesses(ctx context.Context, studentID string) ([]*profile.Weakness, error) {
	query := `
		SELECT ` + weaknessColumns + `
		FROM weaknesses
		WHERE student_id = $1 AND status IN ('active', 'recurring')
		ORDER BY severity DESC, occurrence_count DESC
	`
	return r.queryWeaknesses(ctx, query, studentID)
}

// ResolveWeakness marks a weakness resolved on behalf of a teacher.
func (r *ProfileRepository) ResolveWeakness(ctx context.Context, id string, resolvedAt time.Time) (*profile.Weakness, error) {
	query := `
		UPDATE weaknesses
		SET status = 'resolved', updated_at = $2
		WHERE id = $1 AND status != 'resolved'
		RETURNING ` + weaknessColumns

	w, err := scanWeakness(r.conn.QueryRow(ctx, query, id, resolvedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrNotResolvable
		}
		return nil, fmt.Errorf("failed to resolve weakness: %w", err)
	}
	return w, nil
}

func (r *ProfileRepository) queryWeaknesses(ctx context.Context, query string, args ...any) ([]*profile.Weakness, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weaknesses: %w", err)
	}
	defer rows.Close()

	var out []*profile.Weakness
	for rows.Next() {
		w, err := scanWeakness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWeakness(row pgx.Row) (*profile.Weakness, error) {
	var (
		w        profile.Weakness
		category string
		status   string
	)
	err := row.Scan(
		&w.ID,
		&w.StudentID,
		&w.Concept,
		&category,
		&w.Severity,
		&status,
		&w.OccurrenceCount,
		&w.FirstDetectedAt,
		&w.FirstDetectedReportID,
		&w.LastDetectedAt,
		&w.LastDetectedReportID,
		&w.RecurredAt,
		&w.RelatedReportIDs,
		&w.IsManuallyAdded,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Category = profile.WeaknessCategory(category)
	w.Status = profile.WeaknessStatus(status)
	return &w, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Strengths
// ─────────────────────────────────────────────────────────────────────────────

const strengthColumns = `
	id, student_id, concept, category, level, status, confirmation_count,
	first_detected_at, first_detected_report_id,
	last_confirmed_at, last_confirmed_report_id,
	related_report_ids, created_at, updated_at
`

// CreateStrength stores a new strength.
func (r *ProfileRepository) CreateStrength(ctx context.Context, s *profile.Strength) error {
	query := `
		INSERT INTO strengths (` + strengthColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.StudentID,
		s.Concept,
		string(s.Category),
		s.Level,
		string(s.Status),
		s.ConfirmationCount,
		s.FirstDetectedAt,
		s.FirstDetectedReportID,
		s.LastConfirmedAt,
		s.LastConfirmedReportID,
		s.RelatedReportIDs,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create strength: %w", err)
	}
	return nil
}

// UpdateStrength stores the new state of an existing strength.
func (r *ProfileRepository) UpdateStrength(ctx context.Context, s *profile.Strength) error {
	query := `
		UPDATE strengths SET
			concept = $2, category = $3, level = $4, status = $5,
			confirmation_count = $6, last_confirmed_at = $7, last_confirmed_report_id = $8,
			related_report_ids = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Concept,
		string(s.Category),
		s.Level,
		string(s.Status),
		s.ConfirmationCount,
		s.LastConfirmedAt,
		s.LastConfirmedReportID,
		s.RelatedReportIDs,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update strength: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrEntryNotFound
	}
	return nil
}

// ListStrengths returns every strength of a student, oldest first.
func (r *ProfileRepository) ListStrengths(ctx context.Context, studentID string) ([]*profile.Strength, error) {
	query := `
		SELECT ` + strengthColumns + `
		FROM strengths
		WHERE student_id = $1
		ORDER BY created_at ASC
	`
	return r.queryStrengths(ctx, query, studentID)
}

// ActiveStrengths returns active strengths sorted by level then confirmations.
func (r *ProfileRepository) ActiveStrengths(ctx context.Context, studentID string) ([]*profile.Strength, error) {
	query := `
		SELECT ` + strengthColumns + `
		FROM strengths
		WHERE student_id = $1 AND status = 'active'
		ORDER BY level DESC, confirmation_count DESC
	`
	return r.queryStrengths(ctx, query, studentID)
}

func (r *ProfileRepository) queryStrengths(ctx context.Context, query string, args ...any) ([]*profile.Strength, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query strengths: %w", err)
	}
	defer rows.Close()

	var out []*profile.Strength
	for rows.Next() {
		s, err := scanStrength(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStrength(row pgx.Row) (*profile.Strength, error) {
	var (
		s        profile.Strength
		category string
		status   string
	)
	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.Concept,
		&category,
		&s.Level,
		&status,
		&s.ConfirmationCount,
		&s.FirstDetectedAt,
		&s.FirstDetectedReportID,
		&s.LastConfirmedAt,
		&s.LastConfirmedReportID,
		&s.RelatedReportIDs,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Category = profile.StrengthCategory(category)
	s.Status = profile.EntryStatus(status)
	return &s, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Patterns
// ─────────────────────────────────────────────────────────────────────────────

const patternColumns = `
	id, student_id, pattern_type, description, is_positive, frequency, status,
	occurrence_count, first_detected_at, last_detected_at,
	related_report_ids, created_at, updated_at
`

// CreatePattern stores a new pattern.
func (r *ProfileRepository) CreatePattern(ctx context.Context, p *profile.Pattern) error {
	query := `
		INSERT INTO patterns (` + patternColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.StudentID,
		string(p.Type),
		p.Description,
		p.IsPositive,
		string(p.Frequency),
		string(p.Status),
		p.OccurrenceCount,
		p.FirstDetectedAt,
		p.LastDetectedAt,
		p.RelatedReportIDs,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create pattern: %w", err)
	}
	return nil
}

// UpdatePattern stores the new state of an existing pattern.
func (r *ProfileRepository) UpdatePattern(ctx context.Context, p *profile.Pattern) error {
	query := `
		UPDATE patterns SET
			description = $2, is_positive = $3, frequency = $4, status = $5,
			occurrence_count = $6, last_detected_at = $7,
			related_report_ids = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		p.ID,
		p.Description,
		p.IsPositive,
		string(p.Frequency),
		string(p.Status),
		p.OccurrenceCount,
		p.LastDetectedAt,
		p.RelatedReportIDs,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update pattern: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrEntryNotFound
	}
	return nil
}

// ListPatterns returns every pattern of a student, oldest first.
func (r *ProfileRepository) ListPatterns(ctx context.Context, studentID string) ([]*profile.Pattern, error) {
	query := `
		SELECT ` + patternColumns + `
		FROM patterns
		WHERE student_id = $1
		ORDER BY created_at ASC
	`
	return r.queryPatterns(ctx, query, studentID)
}

// ActivePatterns returns active patterns sorted by occurrence count.
func (r *ProfileRepository) ActivePatterns(ctx context.Context, studentID string) ([]*profile.Pattern, error) {
	query := `
		SELECT ` + patternColumns + `
		FROM patterns
		WHERE student_id = $1 AND status = 'active'
		ORDER BY occurrence_count DESC
	`
	return r.queryPatterns(ctx, query, studentID)
}

func (r *ProfileRepository) queryPatterns(ctx context.Context, query string, args ...any) ([]*profile.Pattern, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var out []*profile.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPattern(row pgx.Row) (*profile.Pattern, error) {
	var (
		p           profile.Pattern
		patternType string
		frequency   string
		status      string
	)
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&patternType,
		&p.Description,
		&p.IsPositive,
		&frequency,
		&status,
		&p.OccurrenceCount,
		&p.FirstDetectedAt,
		&p.LastDetectedAt,
		&p.RelatedReportIDs,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = profile.PatternType(patternType)
	p.Frequency = profile.Frequency(frequency)
	p.Status = profile.EntryStatus(status)
	return &p, nil
}
