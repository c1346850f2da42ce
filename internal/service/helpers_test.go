package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/mocks"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// fixture bundles the in-memory dependencies shared by the task services.
type fixture struct {
	tasks       *mocks.MockTaskStore
	comments    *mocks.MockCommentStore
	attachments *mocks.MockAttachmentStore
	activities  *mocks.MockActivityStore
	tx          *mocks.MockTransactor
	emitter     *mocks.MockEventEmitter
	blobs       *mocks.MockBlob
}

func newFixture() *fixture {
	return &fixture{
		tasks:       mocks.NewMockTaskStore(),
		comments:    &mocks.MockCommentStore{},
		attachments: &mocks.MockAttachmentStore{},
		activities:  &mocks.MockActivityStore{},
		tx:          &mocks.MockTransactor{},
		emitter:     &mocks.MockEventEmitter{},
		blobs:       mocks.NewMockBlob(),
	}
}

func (f *fixture) taskService(t *testing.T) TaskService {
	t.Helper()
	svc, err := NewTaskService(f.tasks, f.attachments, f.activities, f.tx, f.emitter, quietLogger())
	require.NoError(t, err)
	return svc
}

func (f *fixture) commentService(t *testing.T) CommentService {
	t.Helper()
	svc, err := NewCommentService(f.tasks, f.comments, f.activities, f.tx, f.emitter, quietLogger())
	require.NoError(t, err)
	return svc
}

func (f *fixture) attachmentService(t *testing.T) AttachmentService {
	t.Helper()
	svc, err := NewAttachmentService(f.tasks, f.attachments, f.activities, f.tx, f.blobs, f.emitter, quietLogger())
	require.NoError(t, err)
	return svc
}

// seedTask stores a task owned by owner and returns it.
func (f *fixture) seedTask(t *testing.T, owner Actor, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(owner.UserID, title)
	require.NoError(t, err)
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func newActor(username string) Actor {
	return Actor{UserID: uuid.New(), Username: username}
}
