package service

import "github.com/google/uuid"

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	UserID   uuid.UUID
	Username string
}
