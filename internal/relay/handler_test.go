package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskmaster/internal/service/auth"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usernameValidator accepts any token except "bad" and uses it as the username.
type usernameValidator struct{}

func (usernameValidator) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if token == "bad" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: uuid.New(), Username: token}, nil
}

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()

	hub := startHub(t, nil)
	srv := httptest.NewServer(NewHandler(hub, usernameValidator{}, []string{"http://allowed.example"}, quietLogger()))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, wsURL, token string) *websocket.Conn {
	t.Helper()

	before := hub.Stats().Clients
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"/?token="+token, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Stats().Clients == before+1 },
		2*time.Second, 10*time.Millisecond, "client should register")
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	msg := mustMessage(t, "", event, data)
	require.NoError(t, conn.WriteJSON(Envelope{Event: msg.Event, Data: msg.Data}))
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", data)
}

func joinRoom(t *testing.T, hub *Hub, conn *websocket.Conn, taskID string) {
	t.Helper()
	room := RoomName(taskID)
	before := hub.Stats().Rooms[room]
	send(t, conn, EventJoinTask, taskID)
	require.Eventually(t, func() bool { return hub.Stats().Rooms[room] == before+1 },
		2*time.Second, 10*time.Millisecond, "client should join room")
}

func TestHandler_RejectsUnauthenticated(t *testing.T) {
	_, wsURL := startServer(t)
	httpURL := "http" + strings.TrimPrefix(wsURL, "ws")

	for _, url := range []string{httpURL + "/", httpURL + "/?token=bad"} {
		resp, err := http.Get(url)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, url)
	}
}

func TestHandler_AcceptsBearerHeader(t *testing.T) {
	hub, wsURL := startServer(t)

	header := http.Header{"Authorization": []string{"Bearer alice"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"/", header)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Stats().Clients == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	_, wsURL := startServer(t)

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/?token=alice", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"http://allowed.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"/?token=alice", header)
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = conn.Close()
}

func TestHandler_TaskAddReachesPeersOnly(t *testing.T) {
	hub, wsURL := startServer(t)
	alice := dial(t, hub, wsURL, "alice")
	bob := dial(t, hub, wsURL, "bob")

	send(t, alice, EventTaskAdd, map[string]string{"title": "Write docs"})

	env := read(t, bob)
	assert.Equal(t, EventTaskAdd, env.Event)
	assert.JSONEq(t, `{"title":"Write docs"}`, string(env.Data))
	expectSilence(t, alice)
}

func TestHandler_TaskUpdate(t *testing.T) {
	hub, wsURL := startServer(t)
	alice := dial(t, hub, wsURL, "alice")
	bob := dial(t, hub, wsURL, "bob")

	taskID := uuid.NewString()
	joinRoom(t, hub, alice, taskID)

	send(t, alice, EventTaskUpdate, map[string]string{"id": strings.ToUpper(taskID), "status": "Completed"})

	want := `{"id":"` + taskID + `","status":"Completed"}`

	env := read(t, bob)
	assert.Equal(t, EventTaskUpdate, env.Event)
	assert.JSONEq(t, want, string(env.Data))
	expectSilence(t, bob)

	env = read(t, alice)
	assert.Equal(t, EventTaskUpdated, env.Event, "room members including the sender get task:updated")
	assert.JSONEq(t, want, string(env.Data))
}

func TestHandler_CommentAndAttachmentStayInRoom(t *testing.T) {
	hub, wsURL := startServer(t)
	alice := dial(t, hub, wsURL, "alice")
	bob := dial(t, hub, wsURL, "bob")
	carol := dial(t, hub, wsURL, "carol")

	taskID := uuid.NewString()
	joinRoom(t, hub, alice, taskID)
	joinRoom(t, hub, bob, taskID)

	send(t, alice, EventCommentAdd, map[string]interface{}{
		"taskId":  taskID,
		"comment": map[string]string{"text": "looks good"},
	})
	env := read(t, bob)
	assert.Equal(t, EventCommentAdd, env.Event)
	assert.JSONEq(t, `{"text":"looks good"}`, string(env.Data))

	send(t, alice, EventAttachmentAdd, map[string]interface{}{
		"taskId":     taskID,
		"attachment": map[string]string{"filename": "1-2.pdf"},
	})
	env = read(t, bob)
	assert.Equal(t, EventAttachmentAdd, env.Event)
	assert.JSONEq(t, `{"filename":"1-2.pdf"}`, string(env.Data))

	expectSilence(t, alice)
	expectSilence(t, carol)
}

func TestHandler_LeaveTask(t *testing.T) {
	hub, wsURL := startServer(t)
	alice := dial(t, hub, wsURL, "alice")

	taskID := uuid.NewString()
	joinRoom(t, hub, alice, taskID)

	send(t, alice, EventLeaveTask, taskID)
	require.Eventually(t, func() bool {
		_, ok := hub.Stats().Rooms[RoomName(taskID)]
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_IgnoresBadFrames(t *testing.T) {
	hub, wsURL := startServer(t)
	alice := dial(t, hub, wsURL, "alice")
	bob := dial(t, hub, wsURL, "bob")

	before := testutil.ToFloat64(invalidFrames)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, alice, "task:explode", map[string]string{})
	send(t, alice, EventJoinTask, "not-a-uuid")
	send(t, alice, EventCommentAdd, map[string]string{"taskId": uuid.NewString()})

	require.Eventually(t, func() bool { return testutil.ToFloat64(invalidFrames) >= before+4 },
		2*time.Second, 10*time.Millisecond)

	// The connection survives.
	send(t, alice, EventTaskAdd, map[string]string{"title": "still here"})
	assert.Equal(t, EventTaskAdd, read(t, bob).Event)
}

func TestHandler_DisconnectLeavesRooms(t *testing.T) {
	hub, wsURL := startServer(t)
	alice := dial(t, hub, wsURL, "alice")

	taskID := uuid.NewString()
	joinRoom(t, hub, alice, taskID)

	require.NoError(t, alice.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = alice.Close()

	require.Eventually(t, func() bool {
		stats := hub.Stats()
		return stats.Clients == 0 && len(stats.Rooms) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil)
	assert.Equal(t, "abc", bearerToken(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "bearer xyz")
	assert.Equal(t, "xyz", bearerToken(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, bearerToken(r))
}

func TestWriteUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	writeUnauthorized(rec, "Invalid token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body["error"])
}
