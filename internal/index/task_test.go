package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordindex/internal/aggregate"
	"github.com/Aman-CERP/wordindex/internal/lines"
)

func TestTask_Run_FoldsAcceptedWords(t *testing.T) {
	// Given: a file with mixed case and stop words
	path := writeFile(t, t.TempDir(), "a.txt", "The cat and THE Cat\nis a dog\n")
	idx := aggregate.New(0)

	// When: running the task
	res := NewTask(7, path, idx, lines.Opener()).Run(context.Background())

	// Then: result is ok and counts raw tokens including stop words
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "File processed successfully", res.Message)
	assert.Equal(t, 7, res.TaskID)
	assert.Equal(t, path, res.FileName)
	assert.Equal(t, 8, res.Processed)

	// And: only accepted words are indexed, lower-cased
	cat, ok := idx.Get("cat")
	require.True(t, ok)
	assert.Equal(t, uint64(2), cat.Count())
	assert.Equal(t, []string{path}, cat.Files())
	dog, ok := idx.Get("dog")
	require.True(t, ok)
	assert.Equal(t, uint64(1), dog.Count())
	for _, stop := range []string{"the", "and", "is", "a"} {
		_, found := idx.Get(stop)
		assert.False(t, found, stop)
	}
	assert.Equal(t, 2, idx.Len())
}

func TestTask_Run_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	res := NewTask(1, path, aggregate.New(0), lines.Opener()).Run(context.Background())

	assert.Equal(t, StatusFileNotFound, res.Status)
	assert.Equal(t, "File not exist", res.Message)
	assert.Zero(t, res.Processed)
}

func TestTask_Run_UnopenableFileIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"permission denied", fmt.Errorf("open x: %w", fs.ErrPermission)},
		{"is a directory", errors.New("read x: is a directory")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: an opener that fails for a reason other than absence
			open := func(string) (lines.Reader, error) { return nil, tt.err }
			idx := aggregate.New(0)

			// When: running
			res := NewTask(1, "x", idx, open).Run(context.Background())

			// Then: the file is reported as not existing, with nothing processed
			assert.Equal(t, StatusFileNotFound, res.Status)
			assert.Equal(t, "File not exist", res.Message)
			assert.Zero(t, res.Processed)
			assert.Zero(t, idx.Len())
		})
	}
}

func TestTask_Run_MidReadErrorKeepsPartialWork(t *testing.T) {
	// Given: a reader that fails after two lines
	r := &fakeReader{lines: []string{"alpha beta", "gamma"}, err: errors.New("disk went away")}
	idx := aggregate.New(0)

	// When: running
	res := NewTask(1, "f", idx, openReader(r)).Run(context.Background())

	// Then: the error is recorded, processed count and words survive, reader closed
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "disk went away", res.Message)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 3, idx.Len())
	assert.True(t, r.closed.Load())
}

func TestTask_Run_ObservesCancellationAtLineBoundary(t *testing.T) {
	// Given: a cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeReader{lines: []string{"one", "two"}}
	idx := aggregate.New(0)

	// When: running
	res := NewTask(1, "f", idx, openReader(r)).Run(ctx)

	// Then: nothing is folded and the reader is closed
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Equal(t, "Cancelled", res.Message)
	assert.Zero(t, res.Processed)
	assert.Zero(t, idx.Len())
	assert.True(t, r.closed.Load())
}

func TestTask_Run_ClosesReaderOnSuccess(t *testing.T) {
	r := &fakeReader{lines: []string{"word"}}

	res := NewTask(1, "f", aggregate.New(0), openReader(r)).Run(context.Background())

	assert.True(t, res.OK())
	assert.True(t, r.closed.Load())
}

func TestTask_Run_ClosesReaderOnPanic(t *testing.T) {
	// Given: an index that panics on update is simulated by a nil index
	r := &fakeReader{lines: []string{"word"}}
	task := NewTask(1, "f", nil, openReader(r))

	// When: the task panics
	assert.Panics(t, func() { task.Run(context.Background()) })

	// Then: the reader was still closed
	assert.True(t, r.closed.Load())
}

func TestStatus_StringAndMessage(t *testing.T) {
	tests := []struct {
		status  Status
		label   string
		message string
	}{
		{StatusOK, "ok", "File processed successfully"},
		{StatusFileNotFound, "file_not_found", "File not exist"},
		{StatusFailed, "failed", "Failed to process file"},
		{StatusCancelled, "cancelled", "Cancelled"},
		{Status(42), "unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, tt.status.String())
			assert.Equal(t, tt.message, tt.status.Message())
		})
	}
}
