package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)
	traceID := GetTraceID(ctxWithTrace)
	assert.Len(t, traceID, 32, "Expected trace ID length to be 32 hex characters")

	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err, "Expected valid hex string")

	assert.Empty(t, GetTraceID(ctx), "Expected original context to remain unchanged")
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123) // Not a string
	assert.Empty(t, GetTraceID(ctx))
}

func TestGenerateTraceIDUniqueness(t *testing.T) {
	const iterations = 1000
	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		id := generateTraceID()
		require.False(t, seen[id], "Expected all trace IDs to be unique")
		seen[id] = true
	}
}

func TestIdentity(t *testing.T) {
	_, _, ok := Identity(context.Background())
	assert.False(t, ok)

	_, _, ok = Identity(WithIdentity(context.Background(), uuid.Nil, "alice"))
	assert.False(t, ok, "nil user ID is not an identity")

	id := uuid.New()
	userID, username, ok := Identity(WithIdentity(context.Background(), id, "alice"))
	require.True(t, ok)
	assert.Equal(t, id, userID)
	assert.Equal(t, "alice", username)
}
