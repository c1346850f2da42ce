package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/events"
)

// EventBridge pushes domain events to connected clients.
type EventBridge struct {
	hub    *Hub
	logger *slog.Logger
}

var _ events.EventHandler = (*EventBridge)(nil)

// NewEventBridge creates a bridge that broadcasts through hub.
func NewEventBridge(hub *Hub, logger *slog.Logger) *EventBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBridge{
		hub:    hub,
		logger: logger.With(slog.String("component", "relay_bridge")),
	}
}

// HandleEvent implements events.EventHandler. Event types the relay does not
// forward are ignored.
func (b *EventBridge) HandleEvent(ctx context.Context, event *events.Event) error {
	var (
		msg Message
		err error
	)

	switch event.Type {
	case events.TypeTaskDeleted:
		msg, err = NewMessage("", EventTaskDeleted, map[string]string{"id": event.TaskID.String()})

	case events.TypeActivityRecorded:
		var entry domain.Activity
		if err := event.UnmarshalPayload(&entry); err != nil {
			return fmt.Errorf("failed to decode activity payload: %w", err)
		}
		msg, err = NewMessage(RoomName(event.TaskID.String()), EventActivityAdd, entry)

	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to build %s message: %w", event.Type, err)
	}

	b.hub.Broadcast(ctx, msg)
	b.logger.Debug("domain event relayed",
		slog.String("event_type", event.Type),
		slog.String("task_id", event.TaskID.String()))
	return nil
}
