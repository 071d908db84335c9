// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"casting_ops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Casting Domain Events
// =============================================================================

// OrderSubmitted is published once an order's bookings are written and its
// notification step has run.
type OrderSubmitted struct {
	BaseEvent
	BookingIDs   []uuid.UUID `json:"bookingIds"`
	ProjectID    string      `json:"projectId"`
	ProjectName  string      `json:"projectName"`
	Mode         string      `json:"mode"`
	ThreadTS     string      `json:"threadTs"`
	Additional   bool        `json:"additional"`
	Conflicts    int         `json:"conflicts"`
	CalendarHold int         `json:"calendarHolds"`
	ActorID      uuid.UUID   `json:"actorId"`
}

func (e OrderSubmitted) EventName() string { return "casting.order.submitted" }

// BookingStatusChanged is published after a status transition is persisted.
type BookingStatusChanged struct {
	BaseEvent
	BookingID  uuid.UUID `json:"bookingId"`
	CastID     uuid.UUID `json:"castId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Cost       *int64    `json:"cost,omitempty"`
	Note       string    `json:"note,omitempty"`
	ActorID    uuid.UUID `json:"actorId"`
}

func (e BookingStatusChanged) EventName() string { return "casting.booking.status_changed" }

// FieldChange is the before and after value of one edited field.
type FieldChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BookingFieldsEdited is published after date, time or project name edits.
type BookingFieldsEdited struct {
	BaseEvent
	BookingID uuid.UUID              `json:"bookingId"`
	Changes   map[string]FieldChange `json:"changes"`
	ActorID   uuid.UUID              `json:"actorId"`
}

func (e BookingFieldsEdited) EventName() string { return "casting.booking.fields_edited" }

// BookingDeleted is published when a booking is soft-deleted.
type BookingDeleted struct {
	BaseEvent
	BookingID  uuid.UUID `json:"bookingId"`
	FromStatus string    `json:"fromStatus"`
	ActorID    uuid.UUID `json:"actorId"`
}

func (e BookingDeleted) EventName() string { return "casting.booking.deleted" }

// =============================================================================
// Contact Domain Events
// =============================================================================

// ContactRecordCreated is published when a confirmed external booking gets
// its fulfillment record.
type ContactRecordCreated struct {
	BaseEvent
	ContactID   uuid.UUID `json:"contactId"`
	BookingID   uuid.UUID `json:"bookingId"`
	ProjectID   string    `json:"projectId"`
	ProjectName string    `json:"projectName"`
}

func (e ContactRecordCreated) EventName() string { return "contacts.record.created" }
