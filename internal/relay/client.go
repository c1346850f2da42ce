package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client is one WebSocket connection attached to the hub.
type Client struct {
	id       string
	userID   uuid.UUID
	username string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, username string) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		userID:   userID,
		username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.cfg.SendBuffer),
		logger: hub.logger.With(
			slog.String("client_id", id),
			slog.String("user_id", userID.String()),
			slog.String("username", username),
		),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string {
	return c.id
}

// readPump reads frames until the connection fails, dispatching each one.
// It owns unregistration and closing the connection.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.removeClient(c)
		_ = c.conn.Close()
	}()

	pongWait := 2 * c.hub.cfg.PingInterval
	c.conn.SetReadLimit(c.hub.cfg.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		c.handleFrame(ctx, data)
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. It returns when the hub closes the channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("websocket ping failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

var errUnknownEvent = errors.New("unknown event")

// handleFrame decodes and routes one inbound frame. Bad frames are logged
// and ignored.
func (c *Client) handleFrame(ctx context.Context, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
		invalidFrames.Inc()
		c.logger.Debug("ignoring malformed frame")
		return
	}

	if err := c.dispatch(ctx, env); err != nil {
		invalidFrames.Inc()
		c.logger.Debug("ignoring frame",
			slog.String("event", env.Event),
			slog.String("reason", err.Error()))
	}
}

func (c *Client) dispatch(ctx context.Context, env Envelope) error {
	switch env.Event {
	case EventJoinTask, EventLeaveTask:
		var raw string
		if err := json.Unmarshal(env.Data, &raw); err != nil {
			return err
		}
		taskID, ok := parseTaskID(raw)
		if !ok {
			return errors.New("invalid task id")
		}
		if env.Event == EventJoinTask {
			c.hub.joinRoom(c, RoomName(taskID))
		} else {
			c.hub.leaveRoomAsync(c, RoomName(taskID))
		}
		return nil

	case EventTaskAdd:
		if len(env.Data) == 0 {
			return errors.New("missing task")
		}
		c.hub.Broadcast(ctx, Message{Event: EventTaskAdd, Data: env.Data, Except: c.id})
		return nil

	case EventTaskUpdate:
		var p taskStatusPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		taskID, ok := parseTaskID(p.ID)
		if !ok {
			return errors.New("invalid task id")
		}
		p.ID = taskID
		payload, err := json.Marshal(p)
		if err != nil {
			return err
		}
		c.hub.Broadcast(ctx, Message{Event: EventTaskUpdate, Data: payload, Except: c.id})
		c.hub.Broadcast(ctx, Message{Room: RoomName(taskID), Event: EventTaskUpdated, Data: payload})
		return nil

	case EventCommentAdd, EventAttachmentAdd:
		var p roomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		taskID, ok := parseTaskID(p.TaskID)
		if !ok {
			return errors.New("invalid task id")
		}
		body := p.Comment
		if env.Event == EventAttachmentAdd {
			body = p.Attachment
		}
		if len(body) == 0 {
			return errors.New("missing payload")
		}
		c.hub.Broadcast(ctx, Message{Room: RoomName(taskID), Event: env.Event, Data: body, Except: c.id})
		return nil
	}

	return errUnknownEvent
}
