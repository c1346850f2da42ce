package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
// Detailed username and password rules are enforced by the domain.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"user_id"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// AccessToken is the JWT used for API and WebSocket authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`

	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TaskRequest carries the task fields a client sent. Absent fields are nil.
type TaskRequest struct {
	Title    *string `json:"title"`
	Assignee *string `json:"assignee"`
	Deadline *string `json:"deadline"`
	Priority *string `json:"priority"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
}

func (r TaskRequest) toUpdate() domain.TaskUpdate {
	return domain.TaskUpdate{
		Title:    r.Title,
		Assignee: r.Assignee,
		Deadline: r.Deadline,
		Priority: r.Priority,
		Category: r.Category,
		Status:   r.Status,
	}
}

// CommentRequest is the body of a new comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// TaskResponse is the wire form of a task. Deadline is null when unset.
type TaskResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Assignee  string     `json:"assignee"`
	Deadline  *time.Time `json:"deadline"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	Category  string     `json:"category"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Assignee:  t.Assignee,
		Deadline:  t.Deadline,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		Category:  t.Category,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}
