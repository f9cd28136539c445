package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer writes one line per event, for CI logs and pipes.
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	tracker *ProgressTracker
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		tracker: NewProgressTracker(),
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
// Lines look like "[LOAD] 1/2 - input/1 (12 tokens)"; a message replaces the file.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.Update(event)

	msg := event.Message
	if msg == "" && event.CurrentFile != "" {
		msg = event.CurrentFile
		if event.Tokens > 0 {
			msg += fmt.Sprintf(" (%d tokens)", event.Tokens)
		}
	}

	switch {
	case event.Total > 0:
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, msg)
	case msg != "":
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.AddError(event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}
	if event.File != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.File, event.Err)
		return
	}
	_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.SetStage(StageComplete, 0)

	_, _ = fmt.Fprintf(r.out, "Complete: %d files, %d words (%d tokens) in %d batches, %s",
		stats.Files, stats.Words, stats.Tokens, stats.Batches, stats.Duration.Round(time.Millisecond))
	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}
	_, _ = fmt.Fprintln(r.out)
}

// Stats returns the progress seen so far.
func (r *PlainRenderer) Stats() ProgressStats {
	return r.tracker.Stats()
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}
