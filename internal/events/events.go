package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	// TypeTaskDeleted carries a TaskDeletedPayload.
	TypeTaskDeleted = "task.deleted"

	// TypeActivityRecorded carries the domain.Activity that was written.
	TypeActivityRecorded = "activity.recorded"
)

// Event is a domain event concerning one task.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	TaskID    uuid.UUID       `json:"task_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// TaskDeletedPayload describes a removed task and the blobs it left behind.
type TaskDeletedPayload struct {
	TaskID    uuid.UUID `json:"task_id"`
	DeletedBy string    `json:"deleted_by"`
	Filenames []string  `json:"filenames"`
}

// NewEvent creates an event with a JSON-encoded payload.
func NewEvent(eventType string, taskID uuid.UUID, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		TaskID:    taskID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event. Handlers ignore types they do
	// not care about.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
