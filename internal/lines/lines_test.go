package lines

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpen_ReadsLinesInOrder(t *testing.T) {
	// Given: a file with three lines, the last without a newline
	path := writeFile(t, t.TempDir(), "in.txt", "first line\n\nthird")

	// When: iterating
	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	var got []string
	for r.Next() {
		got = append(got, r.Text())
	}

	// Then: every line is produced, including the empty one
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"first line", "", "third"}, got)
}

func TestOpen_MissingFileMatchesErrNotExist(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOpen_LineTooLong(t *testing.T) {
	// Given: a line longer than the configured maximum
	path := writeFile(t, t.TempDir(), "long.txt", strings.Repeat("x", 200)+"\n")

	r, err := Open(path, WithMaxLineBytes(64))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	// Then: iteration stops with ErrTooLong
	assert.False(t, r.Next())
	assert.ErrorIs(t, r.Err(), bufio.ErrTooLong)
}

func TestFileReader_CloseIsIdempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.txt", "a\nb\n")
	r, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.NoError(t, r.Close())
	assert.False(t, r.Next())
}

func TestOpener_ReturnsReader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.txt", "only\n")

	r, err := Opener()(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	require.True(t, r.Next())
	assert.Equal(t, "only", r.Text())
	assert.False(t, r.Next())
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	full := writeFile(t, dir, "full.txt", "content")
	empty := writeFile(t, dir, "empty.txt", "")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular non-empty", path: full, want: true},
		{name: "empty file", path: empty, want: false},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "nope"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Exists(tt.path))
		})
	}
}
