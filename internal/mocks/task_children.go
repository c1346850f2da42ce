package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/store"
)

// MockCommentStore implements store.CommentStore for testing.
// Comments are kept in insertion order.
type MockCommentStore struct {
	CreateFn     func(ctx context.Context, comment *domain.Comment) error
	ListByTaskFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	Comments []*domain.Comment

	mu sync.Mutex
}

var _ store.CommentStore = (*MockCommentStore)(nil)

// Create implements store.CommentStore.
func (m *MockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, comment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Comments = append(m.Comments, comment)
	return nil
}

// ListByTask implements store.CommentStore.
func (m *MockCommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	comments := make([]*domain.Comment, 0)
	for _, c := range m.Comments {
		if c.TaskID == taskID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// WithTx returns the same mock.
func (m *MockCommentStore) WithTx(*sql.Tx) store.CommentStore {
	return m
}

// MockAttachmentStore implements store.AttachmentStore for testing.
// ListByTask returns the most recently created attachment first.
type MockAttachmentStore struct {
	CreateFn        func(ctx context.Context, attachment *domain.Attachment) error
	ListByTaskFn    func(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error)
	GetByFilenameFn func(ctx context.Context, filename string) (*domain.Attachment, error)

	Attachments []*domain.Attachment

	mu sync.Mutex
}

var _ store.AttachmentStore = (*MockAttachmentStore)(nil)

// Create implements store.AttachmentStore.
func (m *MockAttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, attachment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attachments = append(m.Attachments, attachment)
	return nil
}

// ListByTask implements store.AttachmentStore.
func (m *MockAttachmentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	attachments := make([]*domain.Attachment, 0)
	for i := len(m.Attachments) - 1; i >= 0; i-- {
		if m.Attachments[i].TaskID == taskID {
			attachments = append(attachments, m.Attachments[i])
		}
	}
	return attachments, nil
}

// GetByFilename implements store.AttachmentStore.
func (m *MockAttachmentStore) GetByFilename(ctx context.Context, filename string) (*domain.Attachment, error) {
	if m.GetByFilenameFn != nil {
		return m.GetByFilenameFn(ctx, filename)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Attachments {
		if a.Filename == filename {
			return a, nil
		}
	}
	return nil, store.ErrAttachmentNotFound
}

// WithTx returns the same mock.
func (m *MockAttachmentStore) WithTx(*sql.Tx) store.AttachmentStore {
	return m
}

// MockActivityStore implements store.ActivityStore for testing.
// ListByTask returns the most recent entry first.
type MockActivityStore struct {
	CreateFn     func(ctx context.Context, activity *domain.Activity) error
	ListByTaskFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error)

	Entries []*domain.Activity

	mu sync.Mutex
}

var _ store.ActivityStore = (*MockActivityStore)(nil)

// Create implements store.ActivityStore.
func (m *MockActivityStore) Create(ctx context.Context, activity *domain.Activity) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, activity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, activity)
	return nil
}

// ListByTask implements store.ActivityStore.
func (m *MockActivityStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]*domain.Activity, 0)
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].TaskID == taskID {
			entries = append(entries, m.Entries[i])
		}
	}
	return entries, nil
}

// Actions returns the recorded actions in insertion order.
func (m *MockActivityStore) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		actions[i] = e.Action
	}
	return actions
}

// WithTx returns the same mock.
func (m *MockActivityStore) WithTx(*sql.Tx) store.ActivityStore {
	return m
}
