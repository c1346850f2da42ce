package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/zeebo/blake3"
)

// Common errors returned by Blob implementations.
var (
	// ErrNotFound is returned when no blob exists under the given name.
	ErrNotFound = errors.New("blob not found")

	// ErrInvalidName is returned for names that could escape the storage root.
	ErrInvalidName = errors.New("invalid blob name")
)

// Object describes a stored blob.
type Object struct {
	Name     string
	Size     int64
	Checksum string
}

// Blob stores attachment content.
type Blob interface {
	// Save streams r into a new blob whose name keeps the extension of
	// originalName.
	Save(ctx context.Context, originalName, contentType string, r io.Reader) (*Object, error)

	// Open returns a reader for the named blob or ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the named blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Blob, error) {
	switch cfg.Backend {
	case "disk":
		return NewDiskBlob(cfg.Dir, logger)
	case "gcs":
		return NewGCSBlob(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

var extPattern = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,16}$`)

// NewName returns a stored name of the form <unix-millis>-<random><ext>.
// Extensions that are not short and alphanumeric are dropped.
func NewName(originalName string, now time.Time) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, `\`, "/")))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return fmt.Sprintf("%d-%d%s", now.UnixMilli(), rand.IntN(1_000_000_000), strings.ToLower(ext))
}

// ValidateName rejects names that are empty or contain path elements.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// checksumWriter counts and hashes everything written through it.
type checksumWriter struct {
	h    hash.Hash
	size int64
}

func newChecksumWriter() *checksumWriter {
	return &checksumWriter{h: blake3.New()}
}

func (w *checksumWriter) Write(p []byte) (int, error) {
	n, err := w.h.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *checksumWriter) object(name string) *Object {
	return &Object{
		Name:     name,
		Size:     w.size,
		Checksum: hex.EncodeToString(w.h.Sum(nil)),
	}
}

// Checksum returns the hex BLAKE3 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
