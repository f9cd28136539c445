package ui

import (
	"sync"
	"time"
)

// ProgressTracker accumulates load progress across every batch of a run.
// The stage counters reset per batch; file and token totals do not.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu    sync.RWMutex
	start time.Time

	stage       Stage
	current     int
	total       int
	currentFile string

	files    int
	tokens   int
	errors   int
	warnings int
	lastErr  ErrorEvent
}

// ProgressStats is a snapshot of a ProgressTracker.
type ProgressStats struct {
	Stage       Stage
	Current     int
	Total       int
	Progress    float64
	CurrentFile string

	// Files and Tokens are totals over all batches so far.
	Files        int
	Tokens       int
	TokensPerSec float64

	ErrorCount int
	WarnCount  int
	LastError  ErrorEvent
}

// NewProgressTracker creates a tracker whose clock starts now.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		stage: StageValidating,
		start: time.Now(),
	}
}

// SetStage moves to stage and resets the per-batch counters.
func (p *ProgressTracker) SetStage(stage Stage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stage = stage
	p.total = total
	p.current = 0
	p.currentFile = ""
}

// Update applies a progress event. Processing events count one finished file
// and add its tokens to the run totals.
func (p *ProgressTracker) Update(event ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Stage != p.stage {
		p.stage = event.Stage
		p.current = 0
		p.currentFile = ""
	}
	if event.Total > 0 {
		p.total = event.Total
	}
	if event.Current > p.current {
		p.current = event.Current
	}
	if event.CurrentFile != "" {
		p.currentFile = event.CurrentFile
	}
	if event.Stage == StageProcessing && event.CurrentFile != "" {
		p.files++
		p.tokens += event.Tokens
	}
}

// AddError records an error or warning.
func (p *ProgressTracker) AddError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings++
	} else {
		p.errors++
	}
	p.lastErr = event
}

// Progress returns the fraction of the current batch done, in [0, 1].
func (p *ProgressTracker) Progress() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.progressLocked()
}

func (p *ProgressTracker) progressLocked() float64 {
	if p.total == 0 {
		return 0
	}
	return min(float64(p.current)/float64(p.total), 1)
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return time.Since(p.start)
}

// Stats returns a snapshot.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var rate float64
	if secs := time.Since(p.start).Seconds(); secs > 0 {
		rate = float64(p.tokens) / secs
	}

	return ProgressStats{
		Stage:        p.stage,
		Current:      p.current,
		Total:        p.total,
		Progress:     p.progressLocked(),
		CurrentFile:  p.currentFile,
		Files:        p.files,
		Tokens:       p.tokens,
		TokensPerSec: rate,
		ErrorCount:   p.errors,
		WarnCount:    p.warnings,
		LastError:    p.lastErr,
	}
}
