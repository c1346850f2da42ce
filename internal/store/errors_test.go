package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("failed: %w", ErrNotFound), true},
		{"ErrTaskNotFound", ErrTaskNotFound, true},
		{"ErrUserNotFound", ErrUserNotFound, true},
		{"wrapped ErrAttachmentNotFound", fmt.Errorf("lookup: %w", ErrAttachmentNotFound), true},
		{"store error wrapping not found", NewStoreError("task", "get", "missing", ErrTaskNotFound), true},
		{"duplicate is not not-found", ErrUsernameExists, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrUsernameExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrTaskNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestEntityErrorMessages(t *testing.T) {
	assert.Equal(t, "entity not found: task", ErrTaskNotFound.Error())
	assert.Equal(t, "entity already exists: username", ErrUsernameExists.Error())
	assert.False(t, errors.Is(ErrTaskNotFound, ErrUserNotFound))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")

	err := NewStoreError("comment", "create", "failed to insert comment", cause)
	assert.Equal(t, "create operation on comment failed: failed to insert comment: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var storeErr *StoreError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
	assert.Equal(t, "comment", storeErr.Entity)

	bare := NewStoreError("task", "list", "bad filter", nil)
	assert.Equal(t, "list operation on task failed: bad filter", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
