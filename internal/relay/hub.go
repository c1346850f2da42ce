package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// HubConfig sizes per-client resources.
type HubConfig struct {
	// SendBuffer is the number of frames queued per client before drops.
	SendBuffer int

	// PingInterval is how often the server pings each client. A client that
	// does not answer within two intervals is disconnected.
	PingInterval time.Duration

	// MaxMessageBytes limits inbound frame size.
	MaxMessageBytes int64
}

// DefaultHubConfig returns a HubConfig with reasonable defaults
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBuffer:      64,
		PingInterval:    30 * time.Second,
		MaxMessageBytes: 64 << 10,
	}
}

type membership struct {
	client *Client
	room   string
}

// Hub owns every local client and room. All membership changes and
// deliveries happen on the goroutine running Run.
type Hub struct {
	cfg       HubConfig
	backplane Backplane
	logger    *slog.Logger

	// origin identifies this instance on the backplane.
	origin string

	clients map[*Client]map[string]struct{}
	rooms   map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	broadcast  chan Message
	inspect    chan func()

	done chan struct{}
}

// NewHub creates a hub. backplane may be nil for a single-instance relay.
func NewHub(cfg HubConfig, backplane Backplane, logger *slog.Logger) *Hub {
	defaults := DefaultHubConfig()
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = defaults.MaxMessageBytes
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		cfg:        cfg,
		backplane:  backplane,
		logger:     logger.With(slog.String("component", "relay_hub")),
		origin:     uuid.NewString(),
		clients:    make(map[*Client]map[string]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		broadcast:  make(chan Message, 256),
		inspect:    make(chan func()),
		done:       make(chan struct{}),
	}
}

// Run processes hub operations until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	var remote <-chan Message
	if h.backplane != nil {
		ch, err := h.backplane.Subscribe(ctx, h.origin)
		if err != nil {
			return err
		}
		remote = ch
	}

	h.logger.Info("relay hub started", slog.Bool("backplane", h.backplane != nil))

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return nil

		case c := <-h.register:
			h.clients[c] = make(map[string]struct{})
			connections.Inc()
			c.logger.Debug("client registered")

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.join:
			if _, ok := h.clients[m.client]; !ok {
				continue
			}
			members, ok := h.rooms[m.room]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[m.room] = members
			}
			members[m.client] = struct{}{}
			h.clients[m.client][m.room] = struct{}{}
			m.client.logger.Debug("joined room", slog.String("room", m.room))

		case m := <-h.leave:
			h.leaveRoom(m.client, m.room)

		case msg := <-h.broadcast:
			h.deliver(msg)

		case msg, ok := <-remote:
			if !ok {
				h.logger.Warn("backplane subscription closed")
				remote = nil
				continue
			}
			msg.Except = ""
			h.deliver(msg)

		case fn := <-h.inspect:
			fn()
		}
	}
}

// Broadcast queues msg for local delivery and shares it with the other
// instances. It never blocks on slow clients; if the hub itself is saturated
// or stopped the message is dropped.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
		return
	default:
		messagesDropped.WithLabelValues(msg.Event).Inc()
		h.logger.Warn("hub broadcast queue full, dropping message", slog.String("event", msg.Event))
	}

	if h.backplane != nil {
		if err := h.backplane.Publish(ctx, h.origin, msg); err != nil {
			backplaneErrors.WithLabelValues("publish").Inc()
			h.logger.Warn("failed to publish to backplane",
				slog.String("error", err.Error()),
				slog.String("event", msg.Event))
		}
	}
}

// deliver queues the frame on every target client without blocking.
func (h *Hub) deliver(msg Message) {
	frame, err := msg.frame()
	if err != nil {
		h.logger.Error("failed to encode frame",
			slog.String("error", err.Error()),
			slog.String("event", msg.Event))
		return
	}

	send := func(c *Client) {
		if c.id == msg.Except {
			return
		}
		select {
		case c.send <- frame:
			messagesRelayed.WithLabelValues(msg.Event).Inc()
		default:
			messagesDropped.WithLabelValues(msg.Event).Inc()
			c.logger.Warn("send buffer full, dropping message", slog.String("event", msg.Event))
		}
	}

	if msg.Room == "" {
		for c := range h.clients {
			send(c)
		}
		return
	}
	for c := range h.rooms[msg.Room] {
		send(c)
	}
}

func (h *Hub) leaveRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	if joined, ok := h.clients[c]; ok {
		delete(joined, room)
	}
	c.logger.Debug("left room", slog.String("room", room))
}

func (h *Hub) remove(c *Client) {
	joined, ok := h.clients[c]
	if !ok {
		return
	}
	for room := range joined {
		h.leaveRoom(c, room)
	}
	delete(h.clients, c)
	close(c.send)
	connections.Dec()
	c.logger.Debug("client unregistered")
}

func (h *Hub) shutdown() {
	for c := range h.clients {
		h.remove(c)
	}
	h.logger.Info("relay hub stopped")
}

// addClient hands a client to the hub. It reports false if the hub has stopped.
func (h *Hub) addClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) removeClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) joinRoom(c *Client, room string) {
	select {
	case h.join <- membership{client: c, room: room}:
	case <-h.done:
	}
}

func (h *Hub) leaveRoomAsync(c *Client, room string) {
	select {
	case h.leave <- membership{client: c, room: room}:
	case <-h.done:
	}
}

// Stats is a snapshot of hub membership.
type Stats struct {
	Clients int
	Rooms   map[string]int
}

// Stats returns the current client count and room sizes.
func (h *Hub) Stats() Stats {
	result := make(chan Stats, 1)
	fn := func() {
		s := Stats{Clients: len(h.clients), Rooms: make(map[string]int, len(h.rooms))}
		for room, members := range h.rooms {
			s.Rooms[room] = len(members)
		}
		result <- s
	}
	select {
	case h.inspect <- fn:
		return <-result
	case <-h.done:
		return Stats{Rooms: map[string]int{}}
	}
}
