// Package bus provides the event distribution system connecting the
// orchestrator's pipeline stages, the deferred-action subsystem, and the
// mouse listener without direct coupling between them.
package bus

import (
	"fmt"
	"sync/atomic"
	"time"
)

// EventType identifies the kind of event flowing through the bus.
type EventType string

const (
	// EventCommandStarted fires when the orchestrator begins processing a
	// command, after intent recognition but before a handler runs.
	EventCommandStarted EventType = "command_started"
	// EventCommandCompleted fires when a command's handler returns,
	// successfully or not.
	EventCommandCompleted EventType = "command_completed"
	// EventDeferredStateChanged fires on every deferred-action state
	// machine transition (§4.3).
	EventDeferredStateChanged EventType = "deferred_state_changed"
	// EventMouseClickObserved fires from the mouse listener's own
	// goroutine when a click settles; the deferred-action trigger path
	// subscribes to this to re-enter the orchestrator.
	EventMouseClickObserved EventType = "mouse_click_observed"
	// EventFeedbackRequested fires when a component wants the user
	// notified (spoken or displayed) without itself depending on the
	// Feedback collaborator.
	EventFeedbackRequested EventType = "feedback_requested"
)

// Event is a single occurrence published to the bus.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`

	// CommandID correlates an event back to the command that caused it.
	CommandID string `json:"command_id,omitempty"`

	// Phase names the deferred-action state a DeferredStateChanged event
	// transitioned into.
	Phase string `json:"phase,omitempty"`

	// PointX and PointY carry click coordinates for MouseClickObserved.
	PointX float64 `json:"point_x,omitempty"`
	PointY float64 `json:"point_y,omitempty"`

	// Message carries the text for FeedbackRequested.
	Message string `json:"message,omitempty"`

	// Success and Error describe the outcome of a CommandCompleted event.
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`

	// Operation names the handler module that ran (e.g. "gui",
	// "conversation", "deferred", "question") for CommandCompleted.
	Operation string `json:"operation,omitempty"`
	// Duration is how long the command took to run, for CommandCompleted.
	Duration time.Duration `json:"duration,omitempty"`
}

// eventIDCounter generates unique event IDs.
var eventIDCounter uint64

func generateEventID() string {
	n := atomic.AddUint64(&eventIDCounter, 1)
	return fmt.Sprintf("evt_%d_%d", time.Now().UnixNano(), n)
}

// NewEvent creates a new event of the given type with the current
// timestamp and a generated ID.
func NewEvent(eventType EventType) Event {
	return Event{
		ID:        generateEventID(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
	}
}

// CommandStarted builds a command_started event.
func CommandStarted(commandID string) Event {
	e := NewEvent(EventCommandStarted)
	e.CommandID = commandID
	return e
}

// CommandCompleted builds a command_completed event.
func CommandCompleted(commandID, operation string, duration time.Duration, success bool, err error) Event {
	e := NewEvent(EventCommandCompleted)
	e.CommandID = commandID
	e.Operation = operation
	e.Duration = duration
	e.Success = success
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// DeferredStateChanged builds a deferred_state_changed event.
func DeferredStateChanged(phase string) Event {
	e := NewEvent(EventDeferredStateChanged)
	e.Phase = phase
	return e
}

// MouseClickObserved builds a mouse_click_observed event.
func MouseClickObserved(x, y float64) Event {
	e := NewEvent(EventMouseClickObserved)
	e.PointX = x
	e.PointY = y
	return e
}

// FeedbackRequested builds a feedback_requested event.
func FeedbackRequested(message string) Event {
	e := NewEvent(EventFeedbackRequested)
	e.Message = message
	return e
}
