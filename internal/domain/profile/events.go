package profile

import (
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// Published after profile mutations so the notification glue can react
// (e.g. alert a teacher when a resolved weakness recurs).
// ══════════════════════════════════════════════════════════════════════════════

// EntryChangedEvent is emitted for every applied profile mutation.
type EntryChangedEvent struct {
	shared.BaseEvent

	StudentID     string        `json:"student_id"`
	ReportID      string        `json:"report_id"`
	AttributeType AttributeType `json:"attribute_type"`
	AttributeID   string        `json:"attribute_id"`
	ChangeType    ChangeType    `json:"change_type"`
	Concept       string        `json:"concept"`
}

// Payload implements shared.Event.
func (e EntryChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"report_id":      e.ReportID,
		"attribute_type": string(e.AttributeType),
		"attribute_id":   e.AttributeID,
		"change_type":    string(e.ChangeType),
		"concept":        e.Concept,
	}
}

// eventTypeFor maps a change type onto the bus event type.
func eventTypeFor(changeType ChangeType) shared.EventType {
	switch changeType {
	case ChangeWeaknessAdded:
		return shared.EventWeaknessAdded
	case ChangeWeaknessUpdated:
		return shared.EventWeaknessUpdated
	case ChangeWeaknessRecurred:
		return shared.EventWeaknessRecurred
	case ChangeStrengthAdded:
		return shared.EventStrengthAdded
	case ChangeStrengthUpdated:
		return shared.EventStrengthUpdated
	case ChangePatternAdded:
		return shared.EventPatternAdded
	default:
		return shared.EventPatternChanged
	}
}

// NewEntryChangedEvent builds the bus event for one applied mutation.
func NewEntryChangedEvent(event *ChangeEvent, concept string) EntryChangedEvent {
	return EntryChangedEvent{
		BaseEvent:     shared.NewBaseEvent(eventTypeFor(event.ChangeType), event.StudentID),
		StudentID:     event.StudentID,
		ReportID:      event.ReportID,
		AttributeType: event.AttributeType,
		AttributeID:   event.AttributeID,
		ChangeType:    event.ChangeType,
		Concept:       concept,
	}
}

// ReportIngestedEvent is emitted once per completed ingestion.
type ReportIngestedEvent struct {
	shared.BaseEvent

	StudentID string `json:"student_id"`
	ReportID  string `json:"report_id"`
	Kind      string `json:"kind"`
	Applied   int    `json:"applied"`
	Failed    int    `json:"failed"`
}

// Payload implements shared.Event.
func (e ReportIngestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"report_id":  e.ReportID,
		"kind":       e.Kind,
		"applied":    e.Applied,
		"failed":     e.Failed,
	}
}

// NewReportIngestedEvent builds the completion event for one ingestion.
func NewReportIngestedEvent(studentID, reportID, kind string, applied, failed int) ReportIngestedEvent {
	eventType := shared.EventReportIngested
	if failed > 0 {
		eventType = shared.EventIngestFailed
	}
	return ReportIngestedEvent{
		BaseEvent: shared.NewBaseEvent(eventType, studentID),
		StudentID: studentID,
		ReportID:  reportID,
		Kind:      kind,
		Applied:   applied,
		Failed:    failed,
	}
}
