package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	gcs "cloud.google.com/go/storage"
	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const testBucket = "test-bucket"

// fakeGCS records completed uploads and deletes against the JSON API.
type fakeGCS struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	objects := "/b/" + testBucket + "/o"
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, objects):
		body, err := io.ReadAll(r.Body)
		if err != nil {
			// The client abandoned the request body.
			return
		}
		f.mu.Lock()
		f.uploads = append(f.uploads, string(body))
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"bucket":"`+testBucket+`","name":"uploaded","generation":"1"}`)

	case r.Method == http.MethodDelete && strings.Contains(r.URL.Path, objects+"/"):
		name := r.URL.Path[strings.Index(r.URL.Path, objects+"/")+len(objects)+1:]
		if strings.Contains(name, "missing") {
			notFound(w)
			return
		}
		f.mu.Lock()
		f.deletes = append(f.deletes, name)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		notFound(w)
	}
}

func (f *fakeGCS) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *fakeGCS) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Not Found"}}`)
}

func newTestGCSBlob(t *testing.T) (*GCSBlob, *fakeGCS) {
	t.Helper()

	fake := &fakeGCS{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := gcs.NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	blob := newGCSBlob(client, testBucket, "/attachments/", nil)
	t.Cleanup(func() { _ = blob.Close() })
	return blob, fake
}

func TestGCSBlob_Save(t *testing.T) {
	blob, fake := newTestGCSBlob(t)
	ctx := context.Background()

	content := "quarterly numbers"
	obj, err := blob.Save(ctx, "report.txt", "text/plain", strings.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(obj.Name, ".txt"))
	assert.Equal(t, int64(len(content)), obj.Size)
	assert.Equal(t, Checksum([]byte(content)), obj.Checksum)

	uploads := fake.Uploads()
	require.Len(t, uploads, 1)
	assert.Contains(t, uploads[0], content)
	assert.Contains(t, uploads[0], "attachments/"+obj.Name, "objects live under the prefix")
}

func TestGCSBlob_SaveAbortsOnReadError(t *testing.T) {
	blob, fake := newTestGCSBlob(t)

	body := io.MultiReader(
		strings.NewReader("first half of the file"),
		iotest.ErrReader(errors.New("client went away")),
	)
	_, err := blob.Save(context.Background(), "big.bin", "", body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client went away")

	assert.Empty(t, fake.Uploads(), "a failed copy must not commit a partial object")
}

func TestGCSBlob_SaveAbortsOnSizeLimit(t *testing.T) {
	blob, fake := newTestGCSBlob(t)

	rr := httptest.NewRecorder()
	body := http.MaxBytesReader(rr, io.NopCloser(strings.NewReader(strings.Repeat("x", 64))), 16)
	_, err := blob.Save(context.Background(), "big.bin", "", body)

	var tooLarge *http.MaxBytesError
	require.ErrorAs(t, err, &tooLarge)
	assert.Empty(t, fake.Uploads())
}

func TestGCSBlob_Delete(t *testing.T) {
	blob, fake := newTestGCSBlob(t)
	ctx := context.Background()

	require.NoError(t, blob.Delete(ctx, "1700000000000-abc.txt"))
	assert.Equal(t, []string{"attachments/1700000000000-abc.txt"}, fake.Deletes())

	assert.NoError(t, blob.Delete(ctx, "1700000000000-missing.txt"), "deleting a missing object is not an error")
	assert.ErrorIs(t, blob.Delete(ctx, "../escape.txt"), ErrInvalidName)
}

func TestNewGCSBlob_RequiresBucket(t *testing.T) {
	_, err := NewGCSBlob(context.Background(), config.StorageConfig{Backend: "gcs"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}
