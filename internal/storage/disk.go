package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/phrazzld/taskmaster/internal/platform/logger"
)

// DiskBlob stores blobs as files in a single directory.
type DiskBlob struct {
	dir    string
	logger *slog.Logger
}

var _ Blob = (*DiskBlob)(nil)

// NewDiskBlob creates dir if needed and returns a backend rooted there.
func NewDiskBlob(dir string, log *slog.Logger) (*DiskBlob, error) {
	if dir == "" {
		return nil, errors.New("storage directory cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskBlob{
		dir:    dir,
		logger: log.With(slog.String("component", "disk_blob")),
	}, nil
}

// Save implements Blob. Content is written to a temporary file and renamed
// into place once fully received.
func (b *DiskBlob) Save(ctx context.Context, originalName, _ string, r io.Reader) (*Object, error) {
	log := logger.FromContextOrDefault(ctx, b.logger)

	tmp, err := os.CreateTemp(b.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := newChecksumWriter()
	if _, err := io.Copy(io.MultiWriter(tmp, cw), r); err != nil {
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close blob: %w", err)
	}

	name := NewName(originalName, time.Now())
	if err := os.Rename(tmp.Name(), filepath.Join(b.dir, name)); err != nil {
		return nil, fmt.Errorf("failed to move blob into place: %w", err)
	}
	tmp = nil

	obj := cw.object(name)
	log.Debug("blob saved",
		slog.String("name", obj.Name),
		slog.Int64("size", obj.Size))
	return obj, nil
}

// Open implements Blob.
func (b *DiskBlob) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(b.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete implements Blob.
func (b *DiskBlob) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(b.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	logger.FromContextOrDefault(ctx, b.logger).Debug("blob deleted", slog.String("name", name))
	return nil
}

// Close implements Blob.
func (b *DiskBlob) Close() error {
	return nil
}
