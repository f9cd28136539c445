package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func burn() int {
	sum := 0
	for i := 0; i < 1000000; i++ {
		sum += i
	}
	return sum
}

func TestSession_WritesAllProfiles(t *testing.T) {
	// Given: every profile requested
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Mem:   filepath.Join(dir, "heap.prof"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	require.True(t, opts.Enabled())

	// When: a session runs some work
	s, err := Start(opts)
	require.NoError(t, err)
	_ = burn()
	require.NoError(t, s.Stop())

	// Then: each file exists and is non-empty
	for _, path := range []string{opts.CPU, opts.Mem, opts.Trace} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestSession_StopTwiceIsSafe(t *testing.T) {
	s, err := Start(Options{CPU: filepath.Join(t.TempDir(), "cpu.prof")})
	require.NoError(t, err)

	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}

func TestSession_NothingRequested(t *testing.T) {
	opts := Options{}
	assert.False(t, opts.Enabled())

	s, err := Start(opts)
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}

func TestStart_BadTracePathStopsCPU(t *testing.T) {
	// Given: a valid CPU path and an unwritable trace path
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")

	// When: starting
	_, err := Start(Options{CPU: cpu, Trace: filepath.Join(dir, "missing", "trace.out")})

	// Then: it fails and CPU profiling can be started again
	require.Error(t, err)
	s, err := Start(Options{CPU: cpu})
	require.NoError(t, err)
	require.NoError(t, s.Stop())
}

func TestWriteHeap_BadPath(t *testing.T) {
	err := WriteHeap(filepath.Join(t.TempDir(), "missing", "heap.prof"))
	assert.Error(t, err)
}

func TestHeapAlloc(t *testing.T) {
	assert.Greater(t, HeapAlloc(), uint64(0))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    uint64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.bytes))
		})
	}
}
