package intake

import (
	"time"

	"github.com/agricred/intake/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventKind names a user input the wizard reacts to
type EventKind string

const (
	EventFieldChanged EventKind = "field.changed"
	EventRowAdded     EventKind = "row.added"
	EventRowDeleted   EventKind = "row.deleted"
	EventRowUpdated   EventKind = "row.updated"
	EventAssetUpdated EventKind = "asset.updated"
	EventNavigated    EventKind = "step.navigated"
)

// Event is one user input. Each event produces exactly one state
// transition of a session. Which fields are read depends on Kind.
type Event struct {
	Kind     EventKind      `json:"kind" yaml:"kind"`
	Step     string         `json:"step,omitempty" yaml:"step,omitempty"`
	Section  string         `json:"section,omitempty" yaml:"section,omitempty"`
	Record   RecordID       `json:"record,omitempty" yaml:"record,omitempty"`
	Category AssetCategory  `json:"category,omitempty" yaml:"category,omitempty"`
	Field    string         `json:"field,omitempty" yaml:"field,omitempty"`
	Value    any            `json:"value,omitempty" yaml:"value,omitempty"`
	Index    int            `json:"index,omitempty" yaml:"index,omitempty"`
	Defaults map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// FieldChanged sets one field of a single-record form
func FieldChanged(step, form, field string, value any) Event {
	return Event{Kind: EventFieldChanged, Step: step, Section: form, Field: field, Value: value}
}

// RowAdded appends a default record to a collection
func RowAdded(step, collection string, defaults map[string]any) Event {
	return Event{Kind: EventRowAdded, Step: step, Section: collection, Defaults: defaults}
}

// RowDeleted removes a record from a collection
func RowDeleted(step, collection string, id RecordID) Event {
	return Event{Kind: EventRowDeleted, Step: step, Section: collection, Record: id}
}

// RowUpdated sets one field of one collection record
func RowUpdated(step, collection string, id RecordID, field string, value any) Event {
	return Event{Kind: EventRowUpdated, Step: step, Section: collection, Record: id, Field: field, Value: value}
}

// AssetUpdated sets one field of an asset category
func AssetUpdated(step string, category AssetCategory, field string, value any) Event {
	return Event{Kind: EventAssetUpdated, Step: step, Category: category, Field: field, Value: value}
}

// Navigated jumps to the step at index
func Navigated(index int) Event {
	return Event{Kind: EventNavigated, Index: index}
}

// Domain event types raised by Session
const (
	AggregateTypeSession      = "IntakeSession"
	EventTypeSessionSubmitted = "intake.session.submitted"
)

// SessionSubmittedEvent is raised once a session has been submitted
type SessionSubmittedEvent struct {
	shared.BaseDomainEvent
	SubmittedBy     string          `json:"submitted_by"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	TotalAssetValue decimal.Decimal `json:"total_asset_value"`
}

// NewSessionSubmittedEvent creates the submission event for a session
func NewSessionSubmittedEvent(sessionID uuid.UUID, submittedBy string, at time.Time, total decimal.Decimal) *SessionSubmittedEvent {
	return &SessionSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionSubmitted, AggregateTypeSession, sessionID, at),
		SubmittedBy:     submittedBy,
		SubmittedAt:     at,
		TotalAssetValue: total,
	}
}
