package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordindex/internal/lines"
	"github.com/Aman-CERP/wordindex/internal/ui"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fakeReader serves fixed lines, then optionally fails.
type fakeReader struct {
	lines  []string
	pos    int
	err    error
	block  <-chan struct{}
	closed atomic.Bool
}

func (f *fakeReader) Next() bool {
	if f.block != nil {
		<-f.block
		return false
	}
	if f.pos >= len(f.lines) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeReader) Text() string { return f.lines[f.pos-1] }

func (f *fakeReader) Err() error {
	if f.pos >= len(f.lines) {
		return f.err
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed.Store(true)
	return nil
}

func openReader(r lines.Reader) lines.OpenFunc {
	return func(string) (lines.Reader, error) { return r, nil }
}

func existsAlways(string) bool { return true }

// recordingRenderer keeps every event it receives.
type recordingRenderer struct {
	mu       sync.Mutex
	progress []ui.ProgressEvent
	errors   []ui.ErrorEvent
}

func (r *recordingRenderer) Start(context.Context) error { return nil }

func (r *recordingRenderer) UpdateProgress(e ui.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, e)
}

func (r *recordingRenderer) AddError(e ui.ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, e)
}

func (r *recordingRenderer) Complete(ui.CompletionStats) {}

func (r *recordingRenderer) Stop() error { return nil }

func (r *recordingRenderer) stages() map[ui.Stage]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[ui.Stage]int)
	for _, e := range r.progress {
		seen[e.Stage]++
	}
	return seen
}

func (r *recordingRenderer) warnings() []ui.ErrorEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ui.ErrorEvent(nil), r.errors...)
}
