package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func collect(t *testing.T, opts Options) [][]string {
	t.Helper()
	var chunks [][]string
	err := Chunks(context.Background(), opts, func(chunk []string) error {
		chunks = append(chunks, append([]string(nil), chunk...))
		return nil
	})
	require.NoError(t, err)
	return chunks
}

func TestChunks_LexicalOrderAndFinalPartialChunk(t *testing.T) {
	// Given: five non-empty files written out of order
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"e.txt": "e", "b.txt": "b", "a.txt": "a", "d.txt": "d", "c.txt": "c",
	})

	// When: chunking by two
	chunks := collect(t, Options{Root: dir, ChunkSize: 2})

	// Then: chunks are full except the last, in lexical order
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, chunks[0])
	assert.Equal(t, []string{filepath.Join(dir, "c.txt"), filepath.Join(dir, "d.txt")}, chunks[1])
	assert.Equal(t, []string{filepath.Join(dir, "e.txt")}, chunks[2])
}

func TestChunks_SkipsDirectoriesAndEmptyFiles(t *testing.T) {
	// Given: a directory with a subdirectory and an empty file
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"keep.txt":   "words here",
		"empty.txt":  "",
		"sub/in.txt": "nested",
	})

	// When: listing non-recursively
	paths, err := List(context.Background(), Options{Root: dir})

	// Then: only the non-empty top-level file is listed
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "keep.txt")}, paths)
}

func TestChunks_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":       "a",
		"sub/b.txt":   "b",
		"sub/c/d.txt": "d",
		"z.txt":       "z",
	})

	paths, err := List(context.Background(), Options{Root: dir, Recursive: true})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.txt"),
		filepath.Join(dir, "sub", "c", "d.txt"),
		filepath.Join(dir, "z.txt"),
	}, paths)
}

func TestChunks_ExcludePatterns(t *testing.T) {
	tests := []struct {
		name      string
		recursive bool
		exclude   []string
		want      []string
	}{
		{
			name:    "exclude by extension",
			exclude: []string{"*.log"},
			want:    []string{"a.txt"},
		},
		{
			name:      "exclude directory when recursive",
			recursive: true,
			exclude:   []string{"skip"},
			want:      []string{"a.txt", "b.log"},
		},
		{
			name:      "no excludes",
			recursive: true,
			want:      []string{"a.txt", "b.log", filepath.Join("skip", "c.txt")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{
				"a.txt":      "a",
				"b.log":      "b",
				"skip/c.txt": "c",
			})

			paths, err := List(context.Background(), Options{Root: dir, Recursive: tt.recursive, Exclude: tt.exclude})
			require.NoError(t, err)

			want := make([]string, len(tt.want))
			for i, w := range tt.want {
				want[i] = filepath.Join(dir, w)
			}
			assert.Equal(t, want, paths)
		})
	}
}

func TestChunks_StopEndsEarlyWithoutError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a": "1", "b": "2", "c": "3"})

	calls := 0
	err := Chunks(context.Background(), Options{Root: dir, ChunkSize: 1}, func([]string) error {
		calls++
		return ErrStop
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestChunks_CallbackErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a": "1"})
	boom := assert.AnError

	err := Chunks(context.Background(), Options{Root: dir, ChunkSize: 5}, func([]string) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestChunks_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a": "1", "b": "2"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Chunks(ctx, Options{Root: dir, ChunkSize: 1}, func([]string) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunks_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing root", Options{ChunkSize: 1}},
		{"zero chunk size", Options{Root: "."}},
		{"bad pattern", Options{Root: ".", ChunkSize: 1, Exclude: []string{"["}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Chunks(context.Background(), tt.opts, func([]string) error { return nil })
			assert.Error(t, err)
		})
	}
}

func TestChunks_MissingRoot(t *testing.T) {
	err := Chunks(context.Background(), Options{Root: filepath.Join(t.TempDir(), "nope"), ChunkSize: 1},
		func([]string) error { return nil })

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestChunkInputs_MixesFilesAndDirectories(t *testing.T) {
	// Given: an explicit file, a missing file and a directory
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"one.txt":      "1",
		"corpus/a.txt": "a",
		"corpus/b.txt": "b",
	})
	missing := filepath.Join(dir, "missing.txt")
	inputs := []string{filepath.Join(dir, "one.txt"), missing, filepath.Join(dir, "corpus")}

	// When: chunking by two
	var chunks [][]string
	err := ChunkInputs(context.Background(), inputs, Options{ChunkSize: 2}, func(chunk []string) error {
		chunks = append(chunks, append([]string(nil), chunk...))
		return nil
	})

	// Then: explicit paths pass through, directory entries follow in order
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{filepath.Join(dir, "one.txt"), missing},
		{filepath.Join(dir, "corpus", "a.txt"), filepath.Join(dir, "corpus", "b.txt")},
	}, chunks)
}

func TestChunkInputs_RejectsZeroChunkSize(t *testing.T) {
	err := ChunkInputs(context.Background(), []string{"a"}, Options{}, func([]string) error { return nil })
	assert.Error(t, err)
}
