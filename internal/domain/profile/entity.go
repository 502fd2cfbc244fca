// Package profile contains the longitudinal student profile domain model:
// weaknesses, strengths, behavioral patterns and their immutable change log.
// This is the core of the business logic - there are no external dependencies here.
package profile

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// WeaknessCategory classifies what kind of difficulty a weakness describes.
type WeaknessCategory string

const (
	// WeaknessConcept - a gap in conceptual understanding.
	WeaknessConcept WeaknessCategory = "concept"
	// WeaknessCalculation - errors in arithmetic or symbolic manipulation.
	WeaknessCalculation WeaknessCategory = "calculation"
	// WeaknessApplication - trouble applying a known concept to problems.
	WeaknessApplication WeaknessCategory = "application"
	// WeaknessReading - misreading or misunderstanding problem statements.
	WeaknessReading WeaknessCategory = "reading"
	// WeaknessHabit - study-habit or attitude related difficulties.
	WeaknessHabit WeaknessCategory = "habit"
)

// IsValid reports whether the category is one of the known values.
func (c WeaknessCategory) IsValid() bool {
	switch c {
	case WeaknessConcept, WeaknessCalculation, WeaknessApplication, WeaknessReading, WeaknessHabit:
		return true
	default:
		return false
	}
}

// StrengthCategory classifies what kind of ability a strength describes.
type StrengthCategory string

const (
	StrengthConcept     StrengthCategory = "concept"
	StrengthCalculation StrengthCategory = "calculation"
	StrengthApplication StrengthCategory = "application"
	StrengthReading     StrengthCategory = "reading"
	StrengthCreativity  StrengthCategory = "creativity"
)

// IsValid reports whether the category is one of the known values.
func (c StrengthCategory) IsValid() bool {
	switch c {
	case StrengthConcept, StrengthCalculation, StrengthApplication, StrengthReading, StrengthCreativity:
		return true
	default:
		return false
	}
}

// WeaknessStatus is the lifecycle state of a weakness.
type WeaknessStatus string

const (
	// WeaknessActive - the weakness is a current concern.
	WeaknessActive WeaknessStatus = "active"
	// WeaknessImproving - recent observations show lower severity.
	WeaknessImproving WeaknessStatus = "improving"
	// WeaknessRecurring - the weakness came back after being resolved.
	WeaknessRecurring WeaknessStatus = "recurring"
	// WeaknessResolved - a teacher confirmed the weakness is gone.
	// The engine never sets this state itself; it only reads it as the
	// precondition for the recurrence transition.
	WeaknessResolved WeaknessStatus = "resolved"
)

// IsValid reports whether the status is one of the known values.
func (s WeaknessStatus) IsValid() bool {
	switch s {
	case WeaknessActive, WeaknessImproving, WeaknessRecurring, WeaknessResolved:
		return true
	default:
		return false
	}
}

// IsConcern returns true if the weakness still counts as an open concern.
func (s WeaknessStatus) IsConcern() bool {
	return s == WeaknessActive || s == WeaknessRecurring
}

// EntryStatus is the lifecycle state of strengths and patterns.
type EntryStatus string

const (
	EntryActive   EntryStatus = "active"
	EntryInactive EntryStatus = "inactive"
)

// IsValid reports whether the status is one of the known values.
func (s EntryStatus) IsValid() bool {
	return s == EntryActive || s == EntryInactive
}

// PatternType distinguishes behavioral habits from recurring error patterns.
type PatternType string

const (
	PatternHabit PatternType = "habit"
	PatternError PatternType = "error"
)

// IsValid reports whether the pattern type is one of the known values.
func (p PatternType) IsValid() bool {
	return p == PatternHabit || p == PatternError
}

// Frequency describes how often a pattern shows up.
type Frequency string

const (
	FrequencyRare      Frequency = "rare"
	FrequencySometimes Frequency = "sometimes"
	FrequencyOften     Frequency = "often"
	FrequencyAlways    Frequency = "always"
)

// IsValid reports whether the frequency is one of the known values.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyRare, FrequencySometimes, FrequencyOften, FrequencyAlways:
		return true
	default:
		return false
	}
}

// rank orders frequencies so observed frequency never regresses on merge.
func (f Frequency) rank() int {
	switch f {
	case FrequencyRare:
		return 1
	case FrequencySometimes:
		return 2
	case FrequencyOften:
		return 3
	case FrequencyAlways:
		return 4
	default:
		return 0
	}
}

// Stronger returns the more frequent of the two.
func (f Frequency) Stronger(other Frequency) Frequency {
	if other.rank() > f.rank() {
		return other
	}
	return f
}

// ══════════════════════════════════════════════════════════════════════════════
// CHANGE LOG TYPES
// ══════════════════════════════════════════════════════════════════════════════

// AttributeType names which profile entry kind a change event refers to.
type AttributeType string

const (
	AttributeWeakness AttributeType = "weakness"
	AttributeStrength AttributeType = "strength"
	AttributePattern  AttributeType = "pattern"
)

// IsValid reports whether the attribute type is one of the known values.
func (a AttributeType) IsValid() bool {
	switch a {
	case AttributeWeakness, AttributeStrength, AttributePattern:
		return true
	default:
		return false
	}
}

// ChangeType names what happened to a profile entry.
type ChangeType string

const (
	ChangeWeaknessAdded    ChangeType = "weakness_added"
	ChangeWeaknessUpdated  ChangeType = "weakness_updated"
	ChangeWeaknessRecurred ChangeType = "weakness_recurred"
	ChangeStrengthAdded    ChangeType = "strength_added"
	ChangeStrengthUpdated  ChangeType = "strength_updated"
	ChangePatternAdded     ChangeType = "pattern_added"
	ChangePatternChanged   ChangeType = "pattern_changed"
)

// IsValid reports whether the change type is one of the known values.
func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeWeaknessAdded, ChangeWeaknessUpdated, ChangeWeaknessRecurred,
		ChangeStrengthAdded, ChangeStrengthUpdated,
		ChangePatternAdded, ChangePatternChanged:
		return true
	default:
		return false
	}
}

// Actor identifies who caused a profile mutation.
type Actor string

const (
	ActorAI      Actor = "ai"
	ActorTeacher Actor = "teacher"
)

// IsValid reports whether the actor is one of the known values.
func (a Actor) IsValid() bool {
	return a == ActorAI || a == ActorTeacher
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidConcept - concept text outside the allowed length bounds.
	ErrInvalidConcept = errors.New("invalid concept: must be 2-200 chars")

	// ErrInvalidSeverity - severity/level outside the 1-5 scale.
	ErrInvalidSeverity = errors.New("invalid severity: must be between 1 and 5")

	// ErrInvalidCategory - unknown category value.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidStudentID - missing or malformed student id.
	ErrInvalidStudentID = errors.New("invalid student id")

	// ErrInvalidReportID - missing or malformed report id.
	ErrInvalidReportID = errors.New("invalid report id")

	// ErrInvalidFrequency - unknown frequency label.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidPatternType - unknown pattern type.
	ErrInvalidPatternType = errors.New("invalid pattern type")

	// ErrEntryNotFound - a profile entry was not found.
	ErrEntryNotFound = errors.New("profile entry not found")

	// ErrNotResolvable - a resolve was attempted on an entry the teacher
	// cannot resolve (already resolved).
	ErrNotResolvable = errors.New("weakness is already resolved")
)

// ══════════════════════════════════════════════════════════════════════════════
// WEAKNESS
// ══════════════════════════════════════════════════════════════════════════════

// Weakness is one deduplicated, longitudinal difficulty record for a student.
// It is created on the first extraction of a concept and mutated on every
// subsequent matching extraction; it is never physically deleted.
type Weakness struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// StudentID - owner of this profile entry.
	StudentID string

	// Concept - short canonical label naming the skill or topic.
	Concept string

	// Category - what kind of difficulty this is.
	Category WeaknessCategory

	// Severity - 1 (mild) to 5 (critical). Monotonically non-decreasing
	// across merges; only an explicit external correction lowers it.
	Severity int

	// Status - lifecycle state. The engine moves entries among
	// active/improving/recurring; only a teacher action sets resolved.
	Status WeaknessStatus

	// OccurrenceCount - how many accepted observations matched this entry.
	OccurrenceCount int

	// FirstDetectedAt / FirstDetectedReportID - provenance of creation.
	FirstDetectedAt       time.Time
	FirstDetectedReportID string

	// LastDetectedAt / LastDetectedReportID - most recent observation.
	LastDetectedAt       time.Time
	LastDetectedReportID string

	// RecurredAt - set when a resolved weakness was rediscovered.
	RecurredAt *time.Time

	// RelatedReportIDs - every report that ever contributed an observation.
	// Grows monotonically; ids are never removed.
	RelatedReportIDs []string

	// IsManuallyAdded - true when a teacher entered this entry by hand.
	IsManuallyAdded bool

	// CreatedAt / UpdatedAt - record timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWeaknessParams contains parameters for creating a new weakness.
type NewWeaknessParams struct {
	ID              string
	StudentID       string
	Concept         string
	Category        WeaknessCategory
	Severity        int
	ReportID        string
	DetectedAt      time.Time
	IsManuallyAdded bool
}

// NewWeakness creates a weakness in its initial state with full validation.
// Initial state: occurrenceCount=1, status=active, relatedReportIDs={reportID}.
func NewWeakness(params NewWeaknessParams) (*Weakness, error) {
	if params.ID == "" {
		return nil, errors.New("weakness id is required")
	}
	if params.StudentID == "" {
		return nil, ErrInvalidStudentID
	}
	if !validConceptLength(params.Concept) {
		return nil, ErrInvalidConcept
	}
	if !params.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if params.Severity < 1 || params.Severity > 5 {
		return nil, ErrInvalidSeverity
	}
	if params.ReportID == "" {
		return nil, ErrInvalidReportID
	}

	now := params.DetectedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &Weakness{
		ID:                    params.ID,
		StudentID:             params.StudentID,
		Concept:               params.Concept,
		Category:              params.Category,
		Severity:              params.Severity,
		Status:                WeaknessActive,
		OccurrenceCount:       1,
		FirstDetectedAt:       now,
		FirstDetectedReportID: params.ReportID,
		LastDetectedAt:        now,
		LastDetectedReportID:  params.ReportID,
		RelatedReportIDs:      []string{params.ReportID},
		IsManuallyAdded:       params.IsManuallyAdded,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// ApplyObservation merges a new matching observation into the weakness and
// returns the change type the mutation must be logged as.
//
// Transition table (the engine's half of the state machine):
//   - resolved  -> recurring (and RecurredAt is set)
//   - any state, observed severity below stored severity -> improving
//   - improving -> improving (sticky until contradicted)
//   - otherwise -> active
//
// Severity is max(stored, observed); occurrence count always grows by one.
func (w *Weakness) ApplyObservation(severity int, reportID string, now time.Time) ChangeType {
	changeType := ChangeWeaknessUpdated

	switch {
	case w.Status == WeaknessResolved:
		w.Status = WeaknessRecurring
		recurred := now
		w.RecurredAt = &recurred
		changeType = ChangeWeaknessRecurred
	case severity < w.Severity:
		w.Status = WeaknessImproving
	case w.Status == WeaknessImproving:
		// stays improving
	default:
		w.Status = WeaknessActive
	}

	if severity > w.Severity {
		w.Severity = severity
	}

	w.OccurrenceCount++
	w.RelatedReportIDs = appendUnique(w.RelatedReportIDs, reportID)
	w.LastDetectedAt = now
	w.LastDetectedReportID = reportID
	w.UpdatedAt = now

	return changeType
}

// Resolve marks the weakness as resolved. This is the teacher capability;
// the extraction engine itself must never call it.
func (w *Weakness) Resolve(now time.Time) error {
	if w.Status == WeaknessResolved {
		return ErrNotResolvable
	}
	w.Status = WeaknessResolved
	w.UpdatedAt = now
	return nil
}

// Snapshot returns a serializable view of the weakness for change events.
func (w *Weakness) Snapshot() map[string]interface{} {
	snap := map[string]interface{}{
		"id":                       w.ID,
		"student_id":               w.StudentID,
		"concept":                  w.Concept,
		"category":                 string(w.Category),
		"severity":                 w.Severity,
		"status":                   string(w.Status),
		"occurrence_count":         w.OccurrenceCount,
		"first_detected_at":        w.FirstDetectedAt.Format(time.RFC3339),
		"first_detected_report_id": w.FirstDetectedReportID,
		"last_detected_at":         w.LastDetectedAt.Format(time.RFC3339),
		"last_detected_report_id":  w.LastDetectedReportID,
		"related_report_ids":       append([]string(nil), w.RelatedReportIDs...),
		"is_manually_added":        w.IsManuallyAdded,
	}
	if w.RecurredAt != nil {
		snap["recurred_at"] = w.RecurredAt.Format(time.RFC3339)
	}
	return snap
}

// Clone creates a deep copy of the weakness.
func (w *Weakness) Clone() *Weakness {
	if w == nil {
		return nil
	}
	clone := *w
	clone.RelatedReportIDs = append([]string(nil), w.RelatedReportIDs...)
	if w.RecurredAt != nil {
		recurred := *w.RecurredAt
		clone.RecurredAt = &recurred
	}
	return &clone
}

// String returns a compact representation for logging.
func (w *Weakness) String() string {
	return fmt.Sprintf("Weakness{ID: %s, Concept: %q, Severity: %d, Status: %s, Occurrences: %d}",
		w.ID, w.Concept, w.Severity, w.Status, w.OccurrenceCount)
}

// ══════════════════════════════════════════════════════════════════════════════
// STRENGTH
// ══════════════════════════════════════════════════════════════════════════════

// Strength is one deduplicated ability record for a student.
type Strength struct {
	ID        string
	StudentID string

	// Concept - short canonical label naming the skill or topic.
	Concept string

	// Category - what kind of ability this is.
	Category StrengthCategory

	// Level - 1 (emerging) to 5 (mastered). Monotonically non-decreasing.
	Level int

	// Status - active or inactive.
	Status EntryStatus

	// ConfirmationCount - how many accepted observations confirmed this entry.
	ConfirmationCount int

	FirstDetectedAt       time.Time
	FirstDetectedReportID string

	LastConfirmedAt       time.Time
	LastConfirmedReportID string

	RelatedReportIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStrengthParams contains parameters for creating a new strength.
type NewStrengthParams struct {
	ID         string
	StudentID  string
	Concept    string
	Category   StrengthCategory
	Level      int
	ReportID   string
	DetectedAt time.Time
}

// NewStrength creates a strength in its initial state with full validation.
func NewStrength(params NewStrengthParams) (*Strength, error) {
	if params.ID == "" {
		return nil, errors.New("strength id is required")
	}
	if params.StudentID == "" {
		return nil, ErrInvalidStudentID
	}
	if !validConceptLength(params.Concept) {
		return nil, ErrInvalidConcept
	}
	if !params.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if params.Level < 1 || params.Level > 5 {
		return nil, ErrInvalidSeverity
	}
	if params.ReportID == "" {
		return nil, ErrInvalidReportID
	}

	now := params.DetectedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &Strength{
		ID:                    params.ID,
		StudentID:             params.StudentID,
		Concept:               params.Concept,
		Category:              params.Category,
		Level:                 params.Level,
		Status:                EntryActive,
		ConfirmationCount:     1,
		FirstDetectedAt:       now,
		FirstDetectedReportID: params.ReportID,
		LastConfirmedAt:       now,
		LastConfirmedReportID: params.ReportID,
		RelatedReportIDs:      []string{params.ReportID},
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// Confirm merges a new matching observation into the strength.
// Level is max(stored, observed); the entry always reactivates.
func (s *Strength) Confirm(level int, reportID string, now time.Time) ChangeType {
	if level > s.Level {
		s.Level = level
	}
	s.Status = EntryActive
	s.ConfirmationCount++
	s.RelatedReportIDs = appendUnique(s.RelatedReportIDs, reportID)
	s.LastConfirmedAt = now
	s.LastConfirmedReportID = reportID
	s.UpdatedAt = now
	return ChangeStrengthUpdated
}

// Snapshot returns a serializable view of the strength for change events.
func (s *Strength) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"id":                       s.ID,
		"student_id":               s.StudentID,
		"concept":                  s.Concept,
		"category":                 string(s.Category),
		"level":                    s.Level,
		"status":                   string(s.Status),
		"confirmation_count":       s.ConfirmationCount,
		"first_detected_at":        s.FirstDetectedAt.Format(time.RFC3339),
		"first_detected_report_id": s.FirstDetectedReportID,
		"last_confirmed_at":        s.LastConfirmedAt.Format(time.RFC3339),
		"last_confirmed_report_id": s.LastConfirmedReportID,
		"related_report_ids":       append([]string(nil), s.RelatedReportIDs...),
	}
}

// Clone creates a deep copy of the strength.
func (s *Strength) Clone() *Strength {
	if s == nil {
		return nil
	}
	clone := *s
	clone.RelatedReportIDs = append([]string(nil), s.RelatedReportIDs...)
	return &clone
}

// String returns a compact representation for logging.
func (s *Strength) String() string {
	return fmt.Sprintf("Strength{ID: %s, Concept: %q, Level: %d, Confirmations: %d}",
		s.ID, s.Concept, s.Level, s.ConfirmationCount)
}

// ══════════════════════════════════════════════════════════════════════════════
// PATTERN
// ══════════════════════════════════════════════════════════════════════════════

// Pattern is one deduplicated behavioral observation record for a student.
type Pattern struct {
	ID        string
	StudentID string

	// Type - habit or error pattern.
	Type PatternType

	// Description - free-text description of the behavior.
	Description string

	// IsPositive - whether the behavior helps or hurts.
	IsPositive bool

	// Frequency - how often the behavior shows up. Never regresses on merge.
	Frequency Frequency

	// Status - active or inactive.
	Status EntryStatus

	// OccurrenceCount - how many accepted observations matched this entry.
	OccurrenceCount int

	FirstDetectedAt time.Time
	LastDetectedAt  time.Time

	RelatedReportIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPatternParams contains parameters for creating a new pattern.
type NewPatternParams struct {
	ID          string
	StudentID   string
	Type        PatternType
	Description string
	IsPositive  bool
	Frequency   Frequency
	ReportID    string
	DetectedAt  time.Time
}

// NewPattern creates a pattern in its initial state with full validation.
func NewPattern(params NewPatternParams) (*Pattern, error) {
	if params.ID == "" {
		return nil, errors.New("pattern id is required")
	}
	if params.StudentID == "" {
		return nil, ErrInvalidStudentID
	}
	if !params.Type.IsValid() {
		return nil, ErrInvalidPatternType
	}
	if !validConceptLength(params.Description) {
		return nil, ErrInvalidConcept
	}
	if !params.Frequency.IsValid() {
		return nil, ErrInvalidFrequency
	}
	if params.ReportID == "" {
		return nil, ErrInvalidReportID
	}

	now := params.DetectedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &Pattern{
		ID:               params.ID,
		StudentID:        params.StudentID,
		Type:             params.Type,
		Description:      params.Description,
		IsPositive:       params.IsPositive,
		Frequency:        params.Frequency,
		Status:           EntryActive,
		OccurrenceCount:  1,
		FirstDetectedAt:  now,
		LastDetectedAt:   now,
		RelatedReportIDs: []string{params.ReportID},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Observe merges a new matching observation into the pattern.
func (p *Pattern) Observe(frequency Frequency, reportID string, now time.Time) ChangeType {
	p.Frequency = p.Frequency.Stronger(frequency)
	p.Status = EntryActive
	p.OccurrenceCount++
	p.RelatedReportIDs = appendUnique(p.RelatedReportIDs, reportID)
	p.LastDetectedAt = now
	p.UpdatedAt = now
	return ChangePatternChanged
}

// Snapshot returns a serializable view of the pattern for change events.
func (p *Pattern) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"id":                 p.ID,
		"student_id":         p.StudentID,
		"pattern_type":       string(p.Type),
		"description":        p.Description,
		"is_positive":        p.IsPositive,
		"frequency":          string(p.Frequency),
		"status":             string(p.Status),
		"occurrence_count":   p.OccurrenceCount,
		"first_detected_at":  p.FirstDetectedAt.Format(time.RFC3339),
		"last_detected_at":   p.LastDetectedAt.Format(time.RFC3339),
		"related_report_ids": append([]string(nil), p.RelatedReportIDs...),
	}
}

// Clone creates a deep copy of the pattern.
func (p *Pattern) Clone() *Pattern {
	if p == nil {
		return nil
	}
	clone := *p
	clone.RelatedReportIDs = append([]string(nil), p.RelatedReportIDs...)
	return &clone
}

// String returns a compact representation for logging.
func (p *Pattern) String() string {
	return fmt.Sprintf("Pattern{ID: %s, Type: %s, Description: %q, Frequency: %s}",
		p.ID, p.Type, p.Description, p.Frequency)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHANGE EVENT
// ══════════════════════════════════════════════════════════════════════════════

// ChangeEvent is one immutable audit record of a profile mutation.
// Every create or update of a weakness, strength or pattern produces exactly
// one change event in the same logical operation.
type ChangeEvent struct {
	ID        string
	StudentID string
	ReportID  string

	ChangeType    ChangeType
	AttributeType AttributeType

	// AttributeID - id of the weakness/strength/pattern that changed.
	AttributeID string

	// PreviousState - snapshot before the mutation; nil on creation.
	PreviousState map[string]interface{}

	// NewState - snapshot after the mutation.
	NewState map[string]interface{}

	// ChangedBy - who caused the mutation (ai for the engine).
	ChangedBy Actor

	// TeacherApproved - whether a teacher reviewed this change yet.
	TeacherApproved bool

	CreatedAt time.Time
}

// NewChangeEventParams contains parameters for creating a change event.
type NewChangeEventParams struct {
	ID            string
	StudentID     string
	ReportID      string
	ChangeType    ChangeType
	AttributeType AttributeType
	AttributeID   string
	PreviousState map[string]interface{}
	NewState      map[string]interface{}
	ChangedBy     Actor
	CreatedAt     time.Time
}

// NewChangeEvent creates a change event with full validation.
func NewChangeEvent(params NewChangeEventParams) (*ChangeEvent, error) {
	if params.ID == "" {
		return nil, errors.New("change event id is required")
	}
	if params.StudentID == "" {
		return nil, ErrInvalidStudentID
	}
	if !params.ChangeType.IsValid() {
		return nil, fmt.Errorf("invalid change type: %q", params.ChangeType)
	}
	if !params.AttributeType.IsValid() {
		return nil, fmt.Errorf("invalid attribute type: %q", params.AttributeType)
	}
	if params.AttributeID == "" {
		return nil, errors.New("attribute id is required")
	}
	if params.NewState == nil {
		return nil, errors.New("new state snapshot is required")
	}
	if !params.ChangedBy.IsValid() {
		return nil, fmt.Errorf("invalid actor: %q", params.ChangedBy)
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &ChangeEvent{
		ID:              params.ID,
		StudentID:       params.StudentID,
		ReportID:        params.ReportID,
		ChangeType:      params.ChangeType,
		AttributeType:   params.AttributeType,
		AttributeID:     params.AttributeID,
		PreviousState:   params.PreviousState,
		NewState:        params.NewState,
		ChangedBy:       params.ChangedBy,
		TeacherApproved: false,
		CreatedAt:       createdAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// validConceptLength bounds entry text. The segmenter already caps extracted
// concepts at 50 runes; composed names ("errorType (concepts...)") may be longer.
func validConceptLength(s string) bool {
	n := len([]rune(s))
	return n >= 2 && n <= 200
}

// appendUnique appends value to list only if it is not present yet.
func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
