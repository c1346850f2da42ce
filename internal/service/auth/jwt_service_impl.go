package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
)

// DefaultClockSkew is the leeway applied to time-based claims.
const DefaultClockSkew = 2 * time.Minute

// hmacJWTService is an implementation of JWTService using HMAC-SHA signing.
type hmacJWTService struct {
	signingKey           []byte
	tokenLifetime        time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time // Injectable for testing
	clockSkew            time.Duration
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	Username  string    `json:"username"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// Ensure hmacJWTService implements JWTService interface
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA signing.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newHMACJWTService(cfg, time.Now)
}

func newHMACJWTService(cfg config.AuthConfig, timeFunc func() time.Time) (*hmacJWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.TokenLifetimeMinutes <= 0 || cfg.RefreshTokenLifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	return &hmacJWTService{
		signingKey:           []byte(cfg.JWTSecret),
		tokenLifetime:        time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshTokenLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:             timeFunc,
		clockSkew:            DefaultClockSkew,
	}, nil
}

// AccessTokenLifetime implements JWTService.
func (s *hmacJWTService) AccessTokenLifetime() time.Duration {
	return s.tokenLifetime
}

// GenerateToken creates a signed JWT access token with user claims.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, username string) (string, error) {
	return s.sign(ctx, userID, username, TokenTypeAccess, s.tokenLifetime)
}

// GenerateRefreshToken creates a signed JWT refresh token with user claims.
func (s *hmacJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID, username string) (string, error) {
	return s.sign(ctx, userID, username, TokenTypeRefresh, s.refreshTokenLifetime)
}

// ValidateToken validates a JWT access token and returns the claims if valid.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(ctx, tokenString, TokenTypeAccess)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, ErrWrongTokenType):
			return nil, ErrWrongTokenType
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken validates a JWT refresh token and returns the claims if valid.
func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(ctx, tokenString, TokenTypeRefresh)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredRefreshToken
		case errors.Is(err, ErrWrongTokenType):
			return nil, ErrWrongTokenType
		}
		return nil, ErrInvalidRefreshToken
	}
	return claims, nil
}

func (s *hmacJWTService) sign(
	ctx context.Context,
	userID uuid.UUID,
	username, tokenType string,
	lifetime time.Duration,
) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := jwtCustomClaims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign JWT",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("token_type", tokenType))
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", tokenType, err)
	}

	return signed, nil
}

// parse verifies signature, time claims and token type. Errors are the raw
// jwt errors or ErrWrongTokenType; callers translate them.
func (s *hmacJWTService) parse(ctx context.Context, tokenString, wantType string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		log.Debug("token validation failed",
			slog.String("error", err.Error()),
			slog.String("token_type", wantType))
		return nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims", slog.String("token_type", wantType))
		return nil, jwt.ErrTokenInvalidClaims
	}

	if claims.TokenType != wantType {
		log.Debug("token validation failed: wrong token type",
			slog.String("expected", wantType),
			slog.String("actual", claims.TokenType))
		return nil, ErrWrongTokenType
	}

	if claims.UserID == uuid.Nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &Claims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
