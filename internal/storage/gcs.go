package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"google.golang.org/api/option"
)

// GCSBlob stores blobs as objects in a Google Cloud Storage bucket.
type GCSBlob struct {
	client *gcs.Client
	bucket string
	prefix string
	logger *slog.Logger
}

var _ Blob = (*GCSBlob)(nil)

// NewGCSBlob connects to Cloud Storage using cfg.GCSCredentialsFile, or the
// application default credentials when it is empty.
func NewGCSBlob(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*GCSBlob, error) {
	if cfg.GCSBucket == "" {
		return nil, errors.New("gcs bucket cannot be empty")
	}

	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return newGCSBlob(client, cfg.GCSBucket, cfg.GCSPrefix, log), nil
}

func newGCSBlob(client *gcs.Client, bucket, prefix string, log *slog.Logger) *GCSBlob {
	if log == nil {
		log = slog.Default()
	}
	return &GCSBlob{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: log.With(slog.String("component", "gcs_blob"), slog.String("bucket", bucket)),
	}
}

func (b *GCSBlob) objectName(name string) string {
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

// Save implements Blob.
func (b *GCSBlob) Save(ctx context.Context, originalName, contentType string, r io.Reader) (*Object, error) {
	log := logger.FromContextOrDefault(ctx, b.logger)

	name := NewName(originalName, time.Now())
	obj := b.client.Bucket(b.bucket).Object(b.objectName(name))

	// Close commits whatever was written; cancelling wctx first discards it.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Never overwrite an existing object.
	writer := obj.If(gcs.Conditions{DoesNotExist: true}).NewWriter(wctx)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	writer.ContentType = contentType

	cw := newChecksumWriter()
	if _, err := io.Copy(io.MultiWriter(writer, cw), r); err != nil {
		cancel()
		_ = writer.Close()
		log.Debug("upload aborted", slog.String("name", name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to copy upload to GCS object %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer for %s: %w", name, err)
	}

	stored := cw.object(name)
	log.Debug("blob saved",
		slog.String("name", stored.Name),
		slog.Int64("size", stored.Size))
	return stored, nil
}

// Open implements Blob.
func (b *GCSBlob) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	reader, err := b.client.Bucket(b.bucket).Object(b.objectName(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open GCS object %s: %w", name, err)
	}
	return reader, nil
}

// Delete implements Blob.
func (b *GCSBlob) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := b.client.Bucket(b.bucket).Object(b.objectName(name)).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %s: %w", name, err)
	}
	logger.FromContextOrDefault(ctx, b.logger).Debug("blob deleted", slog.String("name", name))
	return nil
}

// Close implements Blob.
func (b *GCSBlob) Close() error {
	return b.client.Close()
}
