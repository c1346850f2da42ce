package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID, username string) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// GenerateRefreshTokenFn allows test cases to mock the GenerateRefreshToken behavior
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID, username string) (string, error)

	// ValidateRefreshTokenFn allows test cases to mock the ValidateRefreshToken behavior
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token         string
	RefreshToken  string
	Err           error
	ValidateErr   error
	Claims        *auth.Claims
	TokenLifetime time.Duration
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, username string) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID, username)
	}
	return m.Token, m.Err
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// GenerateRefreshToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID, username string) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID, username)
	}
	return m.RefreshToken, m.Err
}

// ValidateRefreshToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// AccessTokenLifetime implements the auth.JWTService interface
func (m *MockJWTService) AccessTokenLifetime() time.Duration {
	if m.TokenLifetime == 0 {
		return time.Hour
	}
	return m.TokenLifetime
}
