package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANGE LOG IMPLEMENTATION
// Append-only. State snapshots are stored as JSONB documents so the audit
// trail survives schema changes to the entry tables.
// ══════════════════════════════════════════════════════════════════════════════

// ChangeLogRepository implements profile.ChangeLog for PostgreSQL.
type ChangeLogRepository struct {
	conn *Connection
}

// NewChangeLogRepository creates a new ChangeLogRepository.
func NewChangeLogRepository(conn *Connection) *ChangeLogRepository {
	return &ChangeLogRepository{conn: conn}
}

const changeEventColumns = `
	id, student_id, report_id, change_type, attribute_type, attribute_id,
	previous_state, new_state, changed_by, teacher_approved, created_at
`

// Append stores one change event.
func (r *ChangeLogRepository) Append(ctx context.Context, event *profile.ChangeEvent) error {
	var previous []byte
	if event.PreviousState != nil {
		data, err := json.Marshal(event.PreviousState)
		if err != nil {
			return fmt.Errorf("failed to marshal previous state: %w", err)
		}
		previous = data
	}
	newState, err := json.Marshal(event.NewState)
	if err != nil {
		return fmt.Errorf("failed to marshal new state: %w", err)
	}

	query := `
		INSERT INTO profile_change_events (` + changeEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.conn.Exec(ctx, query,
		event.ID,
		event.StudentID,
		event.ReportID,
		string(event.ChangeType),
		string(event.AttributeType),
		event.AttributeID,
		previous,
		newState,
		string(event.ChangedBy),
		event.TeacherApproved,
		event.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to append change event: %w", err)
	}
	return nil
}

// ListByStudent returns change events for a student, newest first.
func (r *ChangeLogRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]*profile.ChangeEvent, error) {
	query := `
		SELECT ` + changeEventColumns + `
		FROM profile_change_events
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.queryEvents(ctx, query, studentID, limit)
}

// ListByReport returns change events produced by one report ingestion,
// oldest first so the list reads as the order of application.
func (r *ChangeLogRepository) ListByReport(ctx context.Context, reportID string) ([]*profile.ChangeEvent, error) {
	query := `
		SELECT ` + changeEventColumns + `
		FROM profile_change_events
		WHERE report_id = $1
		ORDER BY created_at ASC
	`
	return r.queryEvents(ctx, query, reportID)
}

func (r *ChangeLogRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*profile.ChangeEvent, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query change events: %w", err)
	}
	defer rows.Close()

	var out []*profile.ChangeEvent
	for rows.Next() {
		event, err := scanChangeEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func scanChangeEvent(row pgx.Row) (*profile.ChangeEvent, error) {
	var (
		event         profile.ChangeEvent
		changeType    string
		attributeType string
		changedBy     string
		previous      []byte
		newState      []byte
	)
	err := row.Scan(
		&event.ID,
		&event.StudentID,
		&event.ReportID,
		&changeType,
		&attributeType,
		&event.AttributeID,
		&previous,
		&newState,
		&changedBy,
		&event.TeacherApproved,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.ChangeType = profile.ChangeType(changeType)
	event.AttributeType = profile.AttributeType(attributeType)
	event.ChangedBy = profile.Actor(changedBy)

	if len(previous) > 0 {
		if err := json.Unmarshal(previous, &event.PreviousState); err != nil {
			return nil, fmt.Errorf("failed to unmarshal previous state: %w", err)
		}
	}
	if err := json.Unmarshal(newState, &event.NewState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal new state: %w", err)
	}
	return &event, nil
}
