package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/phrazzld/taskmaster/internal/storage"
)

// MockBlob implements storage.Blob in memory.
type MockBlob struct {
	SaveFn   func(ctx context.Context, originalName, contentType string, r io.Reader) (*storage.Object, error)
	DeleteFn func(ctx context.Context, name string) error

	mu      sync.Mutex
	objects map[string][]byte
	seq     int
	deleted []string
}

var _ storage.Blob = (*MockBlob)(nil)

// NewMockBlob creates an empty in-memory blob store.
func NewMockBlob() *MockBlob {
	return &MockBlob{objects: make(map[string][]byte)}
}

// Put stores data under name directly.
func (m *MockBlob) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
}

// Save implements storage.Blob. Names are "blob-<n>" in save order.
func (m *MockBlob) Save(ctx context.Context, originalName, contentType string, r io.Reader) (*storage.Object, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, originalName, contentType, r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	name := fmt.Sprintf("blob-%d", m.seq)
	m.objects[name] = data
	return &storage.Object{
		Name:     name,
		Size:     int64(len(data)),
		Checksum: storage.Checksum(data),
	}, nil
}

// Open implements storage.Blob.
func (m *MockBlob) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete implements storage.Blob.
func (m *MockBlob) Delete(ctx context.Context, name string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	m.deleted = append(m.deleted, name)
	return nil
}

// Close implements storage.Blob.
func (m *MockBlob) Close() error { return nil }

// Has reports whether name is currently stored.
func (m *MockBlob) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[name]
	return ok
}

// Deleted returns the names passed to Delete in order.
func (m *MockBlob) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
