// Package auth issues and validates the JWTs that authenticate API and relay
// clients, and verifies bcrypt password hashes.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID, username string) (string, error)

	// ValidateToken validates an access token and extracts its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a longer-lived refresh token for the user.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID, username string) (string, error)

	// ValidateRefreshToken validates a refresh token and extracts its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// AccessTokenLifetime reports how long issued access tokens stay valid.
	AccessTokenLifetime() time.Duration
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	Username  string    `json:"username,omitempty"`
	TokenType string    `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
