package relay

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBridge_TaskDeleted(t *testing.T) {
	hub := startHub(t, nil)
	a := attach(t, hub, 4)
	b := attach(t, hub, 4)
	bridge := NewEventBridge(hub, quietLogger())

	taskID := uuid.New()
	event, err := events.NewEvent(events.TypeTaskDeleted, taskID, events.TaskDeletedPayload{TaskID: taskID})
	require.NoError(t, err)

	require.NoError(t, bridge.HandleEvent(context.Background(), event))

	for _, c := range []*Client{a, b} {
		env := receive(t, c)
		assert.Equal(t, EventTaskDeleted, env.Event)
		assert.JSONEq(t, `{"id":"`+taskID.String()+`"}`, string(env.Data))
	}
}

func TestEventBridge_ActivityGoesToRoom(t *testing.T) {
	hub := startHub(t, nil)
	member := attach(t, hub, 4)
	outsider := attach(t, hub, 4)
	bridge := NewEventBridge(hub, quietLogger())

	taskID := uuid.New()
	hub.joinRoom(member, RoomName(taskID.String()))

	entry, err := domain.NewActivity(taskID, "alice", domain.ActionCommented)
	require.NoError(t, err)
	event, err := events.NewEvent(events.TypeActivityRecorded, taskID, entry)
	require.NoError(t, err)

	require.NoError(t, bridge.HandleEvent(context.Background(), event))

	env := receive(t, member)
	assert.Equal(t, EventActivityAdd, env.Event)
	assert.Contains(t, string(env.Data), `"action":"commented"`)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
	assertNoFrame(t, outsider)
}

func TestEventBridge_IgnoresOtherEvents(t *testing.T) {
	hub := startHub(t, nil)
	c := attach(t, hub, 4)
	bridge := NewEventBridge(hub, nil)

	event, err := events.NewEvent("task.archived", uuid.New(), nil)
	require.NoError(t, err)

	require.NoError(t, bridge.HandleEvent(context.Background(), event))
	assertNoFrame(t, c)
}

func TestEventBridge_BadActivityPayload(t *testing.T) {
	hub := startHub(t, nil)
	bridge := NewEventBridge(hub, quietLogger())

	event, err := events.NewEvent(events.TypeActivityRecorded, uuid.New(), "not an activity")
	require.NoError(t, err)

	assert.Error(t, bridge.HandleEvent(context.Background(), event))
}
