package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

// Context keys for various values
const (
	// UserIDContextKey is the context key for the authenticated user's ID
	UserIDContextKey ContextKey = "userID"

	// UsernameContextKey is the context key for the authenticated username
	UsernameContextKey ContextKey = "username"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a new trace ID to the context.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 lowercase hex characters.
func generateTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithIdentity stores the authenticated user in the context.
func WithIdentity(ctx context.Context, userID uuid.UUID, username string) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, userID)
	return context.WithValue(ctx, UsernameContextKey, username)
}

// Identity returns the authenticated user stored by WithIdentity.
// ok is false when no valid identity is present.
func Identity(ctx context.Context) (userID uuid.UUID, username string, ok bool) {
	userID, ok = ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, "", false
	}
	username, _ = ctx.Value(UsernameContextKey).(string)
	return userID, username, true
}
