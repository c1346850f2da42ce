package relay

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Event names carried in envelopes.
const (
	EventJoinTask      = "join-task"
	EventLeaveTask     = "leave-task"
	EventTaskAdd       = "task:add"
	EventTaskUpdate    = "task:update"
	EventTaskUpdated   = "task:updated"
	EventTaskDeleted   = "task:deleted"
	EventCommentAdd    = "comment:add"
	EventAttachmentAdd = "attachment:add"
	EventActivityAdd   = "activity:add"
)

// Envelope is the frame exchanged with clients.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is a broadcast routed by the hub.
type Message struct {
	// Room limits delivery to one room. Empty means every client.
	Room string `json:"room,omitempty"`

	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`

	// Except names a local client that must not receive the message.
	Except string `json:"-"`
}

// frame encodes the envelope sent to clients.
func (m Message) frame() ([]byte, error) {
	return json.Marshal(Envelope{Event: m.Event, Data: m.Data})
}

// NewMessage builds a message with a JSON-encoded payload.
func NewMessage(room, event string, data interface{}) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Room: room, Event: event, Data: raw}, nil
}

// RoomName returns the room for a task.
func RoomName(taskID string) string {
	return "task-" + taskID
}

// taskStatusPayload is the data of task:update and task:updated.
type taskStatusPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// roomPayload is the inbound data of comment:add and attachment:add.
type roomPayload struct {
	TaskID     string          `json:"taskId"`
	Comment    json.RawMessage `json:"comment,omitempty"`
	Attachment json.RawMessage `json:"attachment,omitempty"`
}

// parseTaskID accepts a task ID in any case and returns its canonical form.
func parseTaskID(s string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
