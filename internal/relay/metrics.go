package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// connections is the number of open WebSocket clients on this instance.
	connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskmaster",
		Subsystem: "relay",
		Name:      "connections",
		Help:      "Open WebSocket connections",
	})

	// messagesRelayed counts frames queued for clients.
	// Labels: event
	messagesRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskmaster",
		Subsystem: "relay",
		Name:      "messages_relayed_total",
		Help:      "Frames queued for delivery by event",
	}, []string{"event"})

	// messagesDropped counts frames discarded because a client buffer was full.
	messagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskmaster",
		Subsystem: "relay",
		Name:      "messages_dropped_total",
		Help:      "Frames dropped because the client send buffer was full",
	}, []string{"event"})

	// invalidFrames counts inbound frames that were malformed or unknown.
	invalidFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskmaster",
		Subsystem: "relay",
		Name:      "invalid_frames_total",
		Help:      "Inbound frames ignored as malformed or unknown",
	})

	// backplaneErrors counts failures to publish or decode backplane messages.
	// Labels: op (publish, decode)
	backplaneErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskmaster",
		Subsystem: "relay",
		Name:      "backplane_errors_total",
		Help:      "Backplane failures by operation",
	}, []string{"op"})
)
