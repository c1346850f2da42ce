package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentService_AddAttachment(t *testing.T) {
	ctx := context.Background()
	alice := newActor("alice")

	upload := func(body string) Upload {
		return Upload{OriginalName: "notes.txt", ContentType: "text/plain", Content: strings.NewReader(body)}
	}

	t.Run("stores blob and row", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(t)
		task := f.seedTask(t, alice, "Files")

		a, err := svc.AddAttachment(ctx, alice, task.ID, upload("hello"))
		require.NoError(t, err)

		assert.Equal(t, "blob-1", a.Filename)
		assert.Equal(t, "/uploads/blob-1", a.URL)
		assert.Equal(t, "notes.txt", a.OriginalName)
		assert.Equal(t, int64(5), a.Size)
		assert.Equal(t, storage.Checksum([]byte("hello")), a.Checksum)
		assert.Equal(t, "alice", a.UploadedBy)
		assert.True(t, f.blobs.Has("blob-1"))

		assert.Equal(t, []string{"uploaded file notes.txt"}, f.activities.Actions())
		assert.Len(t, f.emitter.Events(), 1)

		list, err := svc.ListAttachments(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)
	})

	t.Run("unknown task stores nothing", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(t)

		_, err := svc.AddAttachment(ctx, alice, uuid.New(), upload("hello"))
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.False(t, f.blobs.Has("blob-1"))
	})

	t.Run("database failure removes blob", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(t)
		task := f.seedTask(t, alice, "Files")
		f.attachments.CreateFn = func(context.Context, *domain.Attachment) error {
			return errors.New("insert failed")
		}

		_, err := svc.AddAttachment(ctx, alice, task.ID, upload("hello"))
		require.Error(t, err)
		assert.False(t, f.blobs.Has("blob-1"))
		assert.Equal(t, []string{"blob-1"}, f.blobs.Deleted())
		assert.Empty(t, f.emitter.Events())
	})

	t.Run("blob removed after request is cancelled", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(t)
		task := f.seedTask(t, alice, "Files")

		reqCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		f.attachments.CreateFn = func(context.Context, *domain.Attachment) error {
			cancel()
			return context.Canceled
		}
		deleteErr := errors.New("delete not called")
		f.blobs.DeleteFn = func(ctx context.Context, name string) error {
			deleteErr = ctx.Err()
			return nil
		}

		_, err := svc.AddAttachment(reqCtx, alice, task.ID, upload("hello"))
		require.Error(t, err)
		assert.NoError(t, deleteErr, "cleanup must not inherit the cancelled request context")
	})

	t.Run("blob failure", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(t)
		task := f.seedTask(t, alice, "Files")
		f.blobs.SaveFn = func(context.Context, string, string, io.Reader) (*storage.Object, error) {
			return nil, errors.New("disk full")
		}

		_, err := svc.AddAttachment(ctx, alice, task.ID, upload("hello"))
		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Empty(t, f.attachments.Attachments)
	})

	t.Run("missing original name", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(t)
		task := f.seedTask(t, alice, "Files")

		_, err := svc.AddAttachment(ctx, alice, task.ID, Upload{Content: strings.NewReader("x")})
		assert.ErrorIs(t, err, domain.ErrEmptyOriginalName)
		assert.Equal(t, []string{"blob-1"}, f.blobs.Deleted())
	})
}

func TestAttachmentService_OpenAttachment(t *testing.T) {
	ctx := context.Background()
	alice := newActor("alice")
	f := newFixture()
	svc := f.attachmentService(t)
	task := f.seedTask(t, alice, "Files")

	a, err := svc.AddAttachment(ctx, alice, task.ID, Upload{
		OriginalName: "pic.png", ContentType: "image/png", Content: strings.NewReader("png"),
	})
	require.NoError(t, err)

	got, rc, err := svc.OpenAttachment(ctx, a.Filename)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", got.ContentType)

	_, _, err = svc.OpenAttachment(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrAttachmentNotFound)

	_, _, err = svc.OpenAttachment(ctx, "unknown.txt")
	assert.ErrorIs(t, err, ErrAttachmentNotFound)

	require.NoError(t, f.blobs.Delete(ctx, a.Filename))
	_, _, err = svc.OpenAttachment(ctx, a.Filename)
	assert.ErrorIs(t, err, ErrAttachmentNotFound)
}
