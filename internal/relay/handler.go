package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/service/auth"
)

// TokenValidator checks access tokens presented on connect.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// Handler upgrades authenticated requests to relay connections.
type Handler struct {
	hub       *Hub
	validator TokenValidator
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewHandler creates the WebSocket endpoint. allowedOrigins follows the CORS
// setting: "*" accepts any origin.
func NewHandler(hub *Hub, validator TokenValidator, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With(slog.String("component", "relay_handler")),
	}
}

// ServeHTTP authenticates the request, upgrades it and serves the connection
// until it closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	token := bearerToken(r)
	if token == "" {
		writeUnauthorized(w, "Authorization token required")
		return
	}
	claims, err := h.validator.ValidateToken(r.Context(), token)
	if err != nil {
		log.Debug("rejected websocket connection", slog.String("error", err.Error()))
		writeUnauthorized(w, "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		log.Warn("failed to upgrade websocket", slog.String("error", err.Error()))
		return
	}

	client := newClient(h.hub, conn, claims.UserID, claims.Username)
	if !h.hub.addClient(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	client.logger.Info("client connected")

	go client.writePump()
	client.readPump(r.Context())
	client.logger.Info("client disconnected")
}

// bearerToken reads the token query parameter, falling back to an
// Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		// Same-origin requests are always fine.
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
