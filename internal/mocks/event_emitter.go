package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskmaster/internal/events"
)

// MockEventEmitter implements events.EventEmitter and records every event.
type MockEventEmitter struct {
	EmitEventFn func(ctx context.Context, event *events.Event) error

	// Err is returned when EmitEventFn is nil.
	Err error

	mu     sync.Mutex
	events []*events.Event
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()

	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return m.Err
}

// Events returns the emitted events in order.
func (m *MockEventEmitter) Events() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.Event(nil), m.events...)
}

// Types returns the types of the emitted events in order.
func (m *MockEventEmitter) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}
