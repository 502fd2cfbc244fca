// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened to a student profile; the notification glue subscribes to these.
const (
	// Profile events
	EventWeaknessAdded    EventType = "profile.weakness_added"
	EventWeaknessUpdated  EventType = "profile.weakness_updated"
	EventWeaknessRecurred EventType = "profile.weakness_recurred"
	EventStrengthAdded    EventType = "profile.strength_added"
	EventStrengthUpdated  EventType = "profile.strength_updated"
	EventPatternAdded     EventType = "profile.pattern_added"
	EventPatternChanged   EventType = "profile.pattern_changed"

	// Ingest events
	EventReportIngested EventType = "ingest.report_ingested"
	EventIngestFailed   EventType = "ingest.report_failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single domain event.
type EventHandler func(ctx context.Context, event Event) error

// EventBus publishes domain events to subscribed handlers.
type EventBus interface {
	// Publish delivers the event to all handlers subscribed to its type.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler for the given event type.
	Subscribe(eventType EventType, handler EventHandler)

	// Close shuts the bus down and releases resources.
	Close() error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}
