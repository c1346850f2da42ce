package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "  alice ", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp RegisterResponse
	decode(t, rr, &resp)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.Equal(t, resp.UserID, a.users.LastUserID)
}

func TestRegister_Errors(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice")

	tests := []struct {
		name    string
		body    interface{}
		status  int
		message string
	}{
		{
			name:    "duplicate username",
			body:    map[string]string{"username": "alice", "password": "secret123"},
			status:  http.StatusConflict,
			message: "User already exists",
		},
		{
			name:    "missing password",
			body:    map[string]string{"username": "bob"},
			status:  http.StatusBadRequest,
			message: "Invalid password: required field",
		},
		{
			name:    "short password",
			body:    map[string]string{"username": "bob", "password": "abc"},
			status:  http.StatusBadRequest,
			message: "password must be at least 6 characters long",
		},
		{
			name:    "bad username characters",
			body:    map[string]string{"username": "bob smith", "password": "secret123"},
			status:  http.StatusBadRequest,
			message: "username may only contain letters, numbers and underscores",
		},
		{
			name:    "malformed json",
			body:    `{"username":`,
			status:  http.StatusBadRequest,
			message: "Invalid request format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := a.do(t, http.MethodPost, "/api/auth/register", tc.body, "")
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.message, errorMessage(t, rr))
		})
	}
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)
	a.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "alice", "password": "secret123"}, "")

	before := time.Now()
	rr := a.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthResponse
	decode(t, rr, &resp)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := a.jwt.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(time.Hour), expiresAt, 5*time.Second)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice")

	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrong-password"},
		{"username": "nobody", "password": "secret123"},
	} {
		rr := a.do(t, http.MethodPost, "/api/auth/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", errorMessage(t, rr))
	}
}

func TestRefreshToken(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice")

	rr := a.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	var login AuthResponse
	decode(t, rr, &login)

	rr = a.do(t, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var refreshed AuthResponse
	decode(t, rr, &refreshed)
	assert.Equal(t, login.UserID, refreshed.UserID)
	_, err := a.jwt.ValidateToken(context.Background(), refreshed.AccessToken)
	assert.NoError(t, err)

	// An access token is not a refresh token.
	rr = a.do(t, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": login.AccessToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid refresh token", errorMessage(t, rr))
}

func TestRefreshToken_DeletedUser(t *testing.T) {
	a := newTestAPI(t)

	token, err := a.jwt.GenerateRefreshToken(context.Background(), uuid.New(), "ghost")
	require.NoError(t, err)

	rr := a.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": token}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/api/tasks", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Authorization header required", errorMessage(t, rr))

	rr = a.do(t, http.MethodGet, "/api/tasks", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid token", errorMessage(t, rr))

	refresh, err := a.jwt.GenerateRefreshToken(context.Background(), uuid.New(), "alice")
	require.NoError(t, err)
	rr = a.do(t, http.MethodGet, "/api/tasks", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "refresh tokens cannot authorize requests")
}

