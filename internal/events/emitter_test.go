package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func TestNewEvent(t *testing.T) {
	taskID := uuid.New()
	payload := TaskDeletedPayload{TaskID: taskID, DeletedBy: "alice", Filenames: []string{"a.txt"}}

	event, err := NewEvent(TypeTaskDeleted, taskID, payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeTaskDeleted, event.Type)
	assert.Equal(t, taskID, event.TaskID)

	var decoded TaskDeletedPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)

	_, err = NewEvent("bad", taskID, make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newEvent := func(t *testing.T) *Event {
		t.Helper()
		event, err := NewEvent(TypeActivityRecorded, uuid.New(), map[string]string{"action": "commented"})
		require.NoError(t, err)
		return event
	}

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("all handlers receive the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		event := newEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, []*Event{event}, h1.events)
		assert.Equal(t, []*Event{event}, h2.events)
	})

	t.Run("first error returned but later handlers still run", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		errFirst := errors.New("first")
		h1 := &recordingHandler{err: errFirst}
		h2 := &recordingHandler{err: errors.New("second")}
		h3 := &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)
		emitter.RegisterHandler(h3)

		err := emitter.EmitEvent(context.Background(), newEvent(t))
		assert.Equal(t, errFirst, err)
		assert.Len(t, h3.events, 1)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var got string
		emitter.RegisterHandler(EventHandlerFunc(func(_ context.Context, e *Event) error {
			got = e.Type
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
		assert.Equal(t, TypeActivityRecorded, got)
	})

	t.Run("concurrent registration and emission", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				emitter.RegisterHandler(&recordingHandler{})
			}()
			go func() {
				defer wg.Done()
				_ = emitter.EmitEvent(context.Background(), newEvent(t))
			}()
		}
		wg.Wait()
	})
}
