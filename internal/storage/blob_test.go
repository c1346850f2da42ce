package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewName(t *testing.T) {
	now := time.UnixMilli(1718000000123)

	testCases := []struct {
		original string
		pattern  string
	}{
		{"report.pdf", `^1718000000123-\d+\.pdf$`},
		{"Photo.JPG", `^1718000000123-\d+\.jpg$`},
		{"archive.tar.gz", `^1718000000123-\d+\.gz$`},
		{"no-extension", `^1718000000123-\d+$`},
		{"../../etc/passwd", `^1718000000123-\d+$`},
		{`C:\docs\notes.txt`, `^1718000000123-\d+\.txt$`},
		{"weird.ext with space", `^1718000000123-\d+$`},
	}

	for _, tc := range testCases {
		t.Run(tc.original, func(t *testing.T) {
			name := NewName(tc.original, now)
			assert.Regexp(t, regexp.MustCompile(tc.pattern), name)
			assert.NoError(t, ValidateName(name))
		})
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "../x", "a\x00b"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, "name %q", name)
	}
	assert.NoError(t, ValidateName("1718000000123-42.txt"))
}

func TestChecksum(t *testing.T) {
	// BLAKE3 of the empty input.
	assert.Equal(t,
		"af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		Checksum(nil))

	cw := newChecksumWriter()
	_, err := cw.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = cw.Write([]byte("world"))
	require.NoError(t, err)

	obj := cw.object("x")
	assert.Equal(t, int64(11), obj.Size)
	assert.Equal(t, Checksum([]byte("hello world")), obj.Checksum)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	blob, err := New(ctx, config.StorageConfig{Backend: "disk", Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &DiskBlob{}, blob)

	_, err = New(ctx, config.StorageConfig{Backend: "s3"}, nil)
	assert.Error(t, err)

	_, err = New(ctx, config.StorageConfig{Backend: "gcs"}, nil)
	assert.Error(t, err, "gcs without a bucket should fail")
}

func TestGCSObjectName(t *testing.T) {
	assert.Equal(t, "a.txt", newGCSBlob(nil, "bucket", "", nil).objectName("a.txt"))
	assert.Equal(t, "attachments/a.txt", newGCSBlob(nil, "bucket", "/attachments/", nil).objectName("a.txt"))
}
