// Package postgres implements the PostgreSQL persistence layer for the
// tutoring record platform.
package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: PROFILE ENTRIES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create profile entry tables
-- Version: 001

CREATE TABLE IF NOT EXISTS weaknesses (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL,
    concept VARCHAR(200) NOT NULL,
    category VARCHAR(20) NOT NULL,
    severity SMALLINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    occurrence_count INTEGER NOT NULL DEFAULT 1,
    first_detected_at TIMESTAMP WITH TIME ZONE NOT NULL,
    first_detected_report_id VARCHAR(64) NOT NULL,
    last_detected_at TIMESTAMP WITH TIME ZONE NOT NULL,
    last_detected_report_id VARCHAR(64) NOT NULL,
    recurred_at TIMESTAMP WITH TIME ZONE,
    related_report_ids TEXT[] NOT NULL DEFAULT '{}',
    is_manually_added BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT weaknesses_valid_category CHECK (category IN ('concept', 'calculation', 'application', 'reading', 'habit')),
    CONSTRAINT weaknesses_valid_status CHECK (status IN ('active', 'improving', 'recurring', 'resolved')),
    CONSTRAINT weaknesses_valid_severity CHECK (severity BETWEEN 1 AND 5),
    CONSTRAINT weaknesses_valid_occurrences CHECK (occurrence_count >= 1)
);

CREATE INDEX IF NOT EXISTS idx_weaknesses_student_id ON weaknesses(student_id);
CREATE INDEX IF NOT EXISTS idx_weaknesses_student_status ON weaknesses(student_id, status);
CREATE INDEX IF NOT EXISTS idx_weaknesses_student_severity ON weaknesses(student_id, severity DESC, occurrence_count DESC);

CREATE TABLE IF NOT EXISTS strengths (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL,
    concept VARCHAR(200) NOT NULL,
    category VARCHAR(20) NOT NULL,
    level SMALLINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    confirmation_count INTEGER NOT NULL DEFAULT 1,
    first_detected_at TIMESTAMP WITH TIME ZONE NOT NULL,
    first_detected_report_id VARCHAR(64) NOT NULL,
    last_confirmed_at TIMESTAMP WITH TIME ZONE NOT NULL,
    last_confirmed_report_id VARCHAR(64) NOT NULL,
    related_report_ids TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT strengths_valid_category CHECK (category IN ('concept', 'calculation', 'application', 'reading', 'creativity')),
    CONSTRAINT strengths_valid_status CHECK (status IN ('active', 'inactive')),
    CONSTRAINT strengths_valid_level CHECK (level BETWEEN 1 AND 5),
    CONSTRAINT strengths_valid_confirmations CHECK (confirmation_count >= 1)
);

CREATE INDEX IF NOT EXISTS idx_strengths_student_id ON strengths(student_id);
CREATE INDEX IF NOT EXISTS idx_strengths_student_level ON strengths(student_id, level DESC, confirmation_count DESC);

CREATE TABLE IF NOT EXISTS patterns (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL,
    pattern_type VARCHAR(10) NOT NULL,
    description VARCHAR(200) NOT NULL,
    is_positive BOOLEAN NOT NULL DEFAULT FALSE,
    frequency VARCHAR(20) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    occurrence_count INTEGER NOT NULL DEFAULT 1,
    first_detected_at TIMESTAMP WITH TIME ZONE NOT NULL,
    last_detected_at TIMESTAMP WITH TIME ZONE NOT NULL,
    related_report_ids TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT patterns_valid_type CHECK (pattern_type IN ('habit', 'error')),
    CONSTRAINT patterns_valid_frequency CHECK (frequency IN ('rare', 'sometimes', 'often', 'always')),
    CONSTRAINT patterns_valid_status CHECK (status IN ('active', 'inactive')),
    CONSTRAINT patterns_valid_occurrences CHECK (occurrence_count >= 1)
);

CREATE INDEX IF NOT EXISTS idx_patterns_student_id ON patterns(student_id);
CREATE INDEX IF NOT EXISTS idx_patterns_student_occurrences ON patterns(student_id, occurrence_count DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CHANGE LOG
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create the append-only profile change log
-- Version: 002

CREATE TABLE IF NOT EXISTS profile_change_events (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL,
    report_id VARCHAR(128) NOT NULL,
    change_type VARCHAR(30) NOT NULL,
    attribute_type VARCHAR(10) NOT NULL,
    attribute_id UUID NOT NULL,
    previous_state JSONB,
    new_state JSONB NOT NULL,
    changed_by VARCHAR(10) NOT NULL,
    teacher_approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT change_events_valid_type CHECK (change_type IN (
        'weakness_added', 'weakness_updated', 'weakness_recurred',
        'strength_added', 'strength_updated',
        'pattern_added', 'pattern_changed'
    )),
    CONSTRAINT change_events_valid_attribute CHECK (attribute_type IN ('weakness', 'strength', 'pattern')),
    CONSTRAINT change_events_valid_actor CHECK (changed_by IN ('ai', 'teacher'))
);

CREATE INDEX IF NOT EXISTS idx_change_events_student_id ON profile_change_events(student_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_change_events_report_id ON profile_change_events(report_id);
CREATE INDEX IF NOT EXISTS idx_change_events_attribute ON profile_change_events(attribute_type, attribute_id);
`

// migrations in execution order.
var migrations = []string{
	migration001Up,
	migration002Up,
}

// Migrate applies all migrations. Statements are idempotent (IF NOT EXISTS)
// so re-running on startup is safe.
func Migrate(ctx context.Context, conn *Connection) error {
	for i, migration := range migrations {
		if _, err := conn.Exec(ctx, migration); err != nil {
			return fmt.Errorf("%w: migration %03d: %v", ErrMigrationFailed, i+1, err)
		}
	}
	return nil
}
