package relay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T, backplane Backplane) *Hub {
	t.Helper()

	hub := NewHub(HubConfig{SendBuffer: 16, PingInterval: time.Second}, backplane, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- hub.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-stopped:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return hub
}

// attach registers a connectionless client whose frames can be read from
// its send channel.
func attach(t *testing.T, hub *Hub, buffer int) *Client {
	t.Helper()

	c := newClient(hub, nil, uuid.New(), "tester")
	c.send = make(chan []byte, buffer)
	require.True(t, hub.addClient(c))
	return c
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case frame, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Envelope{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()

	select {
	case frame, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected frame: %s", frame)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func mustMessage(t *testing.T, room, event string, data interface{}) Message {
	t.Helper()
	msg, err := NewMessage(room, event, data)
	require.NoError(t, err)
	return msg
}
