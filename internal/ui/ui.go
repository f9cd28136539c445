// Package ui provides terminal UI components for batch load progress.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage represents a batch load stage.
type Stage int

const (
	// StageValidating is the input validation stage.
	StageValidating Stage = iota
	// StageDispatching is the task submission stage.
	StageDispatching
	// StageProcessing is the stage where tasks run and complete.
	StageProcessing
	// StageReporting is the per-task result reporting stage.
	StageReporting
	// StageComplete indicates the load is complete.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageValidating:
		return "Validating"
	case StageDispatching:
		return "Dispatching"
	case StageProcessing:
		return "Processing"
	case StageReporting:
		return "Reporting"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage icon for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageValidating:
		return "CHECK"
	case StageDispatching:
		return "DISPATCH"
	case StageProcessing:
		return "LOAD"
	case StageReporting:
		return "REPORT"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	Stage       Stage
	Current     int
	Total       int
	CurrentFile string
	Message     string
	Tokens      int // Raw tokens of CurrentFile, on processing events
}

// ErrorEvent represents an error during processing.
// Per-file task failures are reported as warnings since they do not fail the batch.
type ErrorEvent struct {
	File   string
	Err    error
	IsWarn bool
}

// CompletionStats contains final load statistics.
type CompletionStats struct {
	Batches  int
	Files    int
	Tokens   int
	Words    int
	Duration time.Duration
	Errors   int
	Warnings int
}

// Renderer defines the interface for progress display.
// Implementations must be safe for concurrent use; tasks report from worker goroutines.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete marks rendering as complete with summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	InputLabel string // Input directory or file list shown in the header
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithInputLabel sets the input label displayed in the header.
func WithInputLabel(label string) ConfigOption {
	return func(c *Config) {
		c.InputLabel = label
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output: output,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// NewRenderer creates an appropriate renderer based on config and environment.
// It returns a TUI renderer for interactive terminals, and a plain text
// renderer for CI environments, pipes, or when --plain is specified.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain {
		return NewPlainRenderer(cfg)
	}

	if !IsTTY(cfg.Output) {
		return NewPlainRenderer(cfg)
	}

	if DetectCI() {
		return NewPlainRenderer(cfg)
	}

	// Try TUI mode, fall back to plain on failure
	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}

	return tui
}

// NopRenderer discards all events.
type NopRenderer struct{}

// Start implements Renderer.
func (NopRenderer) Start(context.Context) error { return nil }

// UpdateProgress implements Renderer.
func (NopRenderer) UpdateProgress(ProgressEvent) {}

// AddError implements Renderer.
func (NopRenderer) AddError(ErrorEvent) {}

// Complete implements Renderer.
func (NopRenderer) Complete(CompletionStats) {}

// Stop implements Renderer.
func (NopRenderer) Stop() error { return nil }

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

var (
	_ Renderer = NopRenderer{}
	_ Renderer = (*PlainRenderer)(nil)
)
