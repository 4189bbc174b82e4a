package events

import "time"

// Event is the contract for outbound system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "chat.session_started").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Chat lifecycle event codes consumed by external systems (CRM followup,
// staffing dashboards).
const (
	TypeHandoffRequested = "chat.handoff_requested"
	TypeSessionStarted   = "chat.session_started"
	TypeSessionEnded     = "chat.session_ended"
)
