// Package index runs batches of file tasks against a shared word index.
//
// A Coordinator validates the requested file names, dispatches one Task per
// file onto a bounded worker pool, and enforces a single deadline for the
// whole batch. Per-file failures are recorded in the task results; only
// validation, timeout and unexpected task failures fail the batch.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/Aman-CERP/wordindex/internal/aggregate"
	werrors "github.com/Aman-CERP/wordindex/internal/errors"
	"github.com/Aman-CERP/wordindex/internal/lines"
	"github.com/Aman-CERP/wordindex/internal/telemetry"
	"github.com/Aman-CERP/wordindex/internal/ui"
)

const (
	// DefaultMaxBatchSize is the default number of files per batch.
	DefaultMaxBatchSize = 2

	// DefaultTimeout bounds a whole batch.
	DefaultTimeout = 60 * time.Second
)

// Config configures a Coordinator.
type Config struct {
	// MaxBatchSize caps the worker pool and is the chunk size callers use
	// when paging a directory.
	MaxBatchSize int

	// Timeout is the deadline for one Load call, covering every file in it.
	Timeout time.Duration
}

// Dependencies holds the collaborators of a Coordinator.
type Dependencies struct {
	Index    *aggregate.Index   // Required
	Open     lines.OpenFunc     // Defaults to lines.Opener()
	Exists   func(string) bool  // Defaults to lines.Exists
	Renderer ui.Renderer        // Defaults to ui.NopRenderer
	Metrics  *telemetry.Metrics // Optional
}

// BatchReport summarizes a successful Load call.
type BatchReport struct {
	BatchID   string        `json:"batch_id"`
	Files     []string      `json:"files"`
	Results   []TaskResult  `json:"results"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration_ns"`
	Success   bool          `json:"success"`
}

// Coordinator dispatches batches of file tasks.
// It is safe for concurrent use; every Load gets its own pool.
type Coordinator struct {
	cfg      Config
	deps     Dependencies
	poolSize int
}

// NewCoordinator creates a coordinator. Zero config values take defaults.
func NewCoordinator(cfg Config, deps Dependencies) (*Coordinator, error) {
	if deps.Index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if cfg.MaxBatchSize < 0 {
		return nil, fmt.Errorf("max batch size must not be negative: %d", cfg.MaxBatchSize)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", cfg.Timeout)
	}

	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if deps.Open == nil {
		deps.Open = lines.Opener()
	}
	if deps.Exists == nil {
		deps.Exists = lines.Exists
	}
	if deps.Renderer == nil {
		deps.Renderer = ui.NopRenderer{}
	}

	c := &Coordinator{
		cfg:      cfg,
		deps:     deps,
		poolSize: PoolSize(cfg.MaxBatchSize),
	}

	slog.Debug("coordinator_created",
		slog.Int("max_batch_size", cfg.MaxBatchSize),
		slog.Int("pool_size", c.poolSize),
		slog.Duration("timeout", cfg.Timeout))

	return c, nil
}

// PoolSize returns min(maxBatchSize, 2*NumCPU). File reading is I/O bound,
// so two workers per core.
func PoolSize(maxBatchSize int) int {
	n := 2 * runtime.NumCPU()
	if maxBatchSize > 0 && maxBatchSize < n {
		return maxBatchSize
	}
	return n
}

// PoolSize returns the worker count used for each batch.
func (c *Coordinator) PoolSize() int {
	return c.poolSize
}

// MaxBatchSize returns the configured batch size.
func (c *Coordinator) MaxBatchSize() int {
	return c.cfg.MaxBatchSize
}

// Index returns the shared index the coordinator folds into.
func (c *Coordinator) Index() *aggregate.Index {
	return c.deps.Index
}

// Load processes fileNames as one batch.
//
// It fails with ErrEmptyInput when no names are given and with
// ErrFileNotFound when any name is missing, empty or not a regular file; in
// both cases nothing is dispatched. It fails with ErrBatchTimeout when the
// deadline expires before every task finished, and with ErrBatchFailed when
// a task panics or ctx is cancelled. Words folded by tasks that ran stay in
// the index whatever the outcome.
func (c *Coordinator) Load(ctx context.Context, fileNames ...string) (*BatchReport, error) {
	start := time.Now()
	batchID := uuid.NewString()

	if err := c.validate(fileNames); err != nil {
		slog.Warn("batch_rejected",
			slog.String("batch_id", batchID),
			slog.String("error", err.Error()))
		c.deps.Metrics.ObserveBatch(telemetry.OutcomeRejected, time.Since(start))
		return nil, err
	}

	slog.Info("batch_started",
		slog.String("batch_id", batchID),
		slog.Int("files", len(fileNames)),
		slog.Int("pool_size", c.poolSize),
		slog.Duration("timeout", c.cfg.Timeout))

	c.deps.Index.Bump()
	defer c.deps.Index.Bump()

	out := c.dispatch(ctx, fileNames)
	results := out.results

	c.report(batchID, results)

	report := &BatchReport{
		BatchID:  batchID,
		Files:    append([]string(nil), fileNames...),
		Results:  results,
		Duration: time.Since(start),
	}
	for _, r := range results {
		report.Processed += r.Processed
		if !r.OK() {
			report.Failed++
		}
	}

	c.deps.Metrics.SetWords(c.deps.Index.Len())

	if err := c.classify(ctx, fileNames, out); err != nil {
		outcome := telemetry.OutcomeFailed
		if werrors.GetCode(err) == werrors.ErrCodeBatchTimeout {
			outcome = telemetry.OutcomeTimeout
		}
		c.deps.Metrics.ObserveBatch(outcome, report.Duration)
		slog.Error("batch_failed",
			slog.String("batch_id", batchID),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", report.Duration.Milliseconds()))
		return nil, err
	}

	report.Success = true
	c.deps.Metrics.ObserveBatch(telemetry.OutcomeSuccess, report.Duration)

	slog.Info("batch_complete",
		slog.String("batch_id", batchID),
		slog.Int("files", len(fileNames)),
		slog.Int("processed", report.Processed),
		slog.Int("failed", report.Failed),
		slog.Int("words", c.deps.Index.Len()),
		slog.Int64("duration_ms", report.Duration.Milliseconds()))

	return report, nil
}

// validate rejects the whole batch before anything is dispatched.
func (c *Coordinator) validate(fileNames []string) error {
	c.deps.Renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageValidating,
		Message: fmt.Sprintf("checking %d files", len(fileNames)),
	})

	if len(fileNames) == 0 {
		return werrors.New(werrors.ErrCodeEmptyInput,
			fmt.Sprintf("no files supplied, provide up to %d file names per batch", c.cfg.MaxBatchSize), nil).
			WithSuggestion("Pass one or more files or directories with --input")
	}

	var missing []string
	for _, name := range fileNames {
		if !c.deps.Exists(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return werrors.New(werrors.ErrCodeFileNotFound,
			"file doesn't exist - "+strings.Join(missing, ","), nil).
			WithDetail("files", strings.Join(missing, ",")).
			WithSuggestion("Check that every input is a non-empty regular file")
	}

	return nil
}

// taskResults collects results written by workers. Stragglers may still
// write after the coordinator stopped waiting, so access is locked.
type taskResults struct {
	mu    sync.Mutex
	items []TaskResult
}

func (s *taskResults) set(i int, r TaskResult) {
	s.mu.Lock()
	s.items[i] = r
	s.mu.Unlock()
}

func (s *taskResults) snapshot() []TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TaskResult(nil), s.items...)
}

// dispatchOutcome is what dispatch observed once it stopped waiting.
type dispatchOutcome struct {
	results  []TaskResult
	panicErr error // First task panic, if any
	drained  bool  // Every worker exited within the drain budget
}

// dispatch runs one task per file on a fresh pool bounded by the batch deadline.
func (c *Coordinator) dispatch(ctx context.Context, fileNames []string) dispatchOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	total := len(fileNames)
	results := &taskResults{items: make([]TaskResult, total)}
	for i, name := range fileNames {
		// Stays cancelled unless the task runs to an outcome
		results.items[i] = TaskResult{
			TaskID:   i + 1,
			FileName: name,
			Status:   StatusCancelled,
			Message:  StatusCancelled.Message(),
		}
	}

	c.deps.Renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageDispatching,
		Total:   total,
		Message: fmt.Sprintf("submitting %d tasks to %d workers", total, c.poolSize),
	})

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(c.poolSize))
	var completed atomic.Int64

	for i, name := range fileNames {
		task := NewTask(i+1, name, c.deps.Index, c.deps.Open)
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			if gctx.Err() != nil {
				return nil
			}

			res, err := runTask(gctx, task)
			if err != nil {
				return err
			}
			results.set(i, res)

			n := completed.Add(1)
			c.deps.Renderer.UpdateProgress(ui.ProgressEvent{
				Stage:       ui.StageProcessing,
				Current:     int(n),
				Total:       total,
				CurrentFile: task.FileName,
				Tokens:      res.Processed,
			})
			if res.Finished() && !res.OK() {
				c.deps.Renderer.AddError(ui.ErrorEvent{
					File:   task.FileName,
					Err:    errors.New(res.Message),
					IsWarn: true,
				})
			}
			return nil
		})
	}

	done := make(chan struct{})
	var groupErr error
	go func() {
		groupErr = g.Wait()
		close(done)
	}()

	select {
	case <-done:
		return dispatchOutcome{results: results.snapshot(), panicErr: groupErr, drained: true}
	case <-ctx.Done():
	}

	// Deadline passed or caller cancelled: workers stop at their next line.
	// Give them at most one more timeout budget to exit.
	drain := time.NewTimer(c.cfg.Timeout)
	defer drain.Stop()

	select {
	case <-done:
		return dispatchOutcome{results: results.snapshot(), panicErr: groupErr, drained: true}
	case <-drain.C:
		slog.Warn("pool_drain_timeout",
			slog.Int("files", total),
			slog.Int64("completed", completed.Load()),
			slog.Duration("budget", c.cfg.Timeout))
		c.deps.Renderer.AddError(ui.ErrorEvent{
			Err:    fmt.Errorf("workers still running after %s", c.cfg.Timeout),
			IsWarn: true,
		})
		return dispatchOutcome{results: results.snapshot()}
	}
}

// runTask runs t and turns a panic into an error.
func runTask(ctx context.Context, t *Task) (result TaskResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d (%s) panicked: %v", t.ID, t.FileName, r)
		}
	}()
	return t.Run(ctx), nil
}

// report logs one record per task and feeds metrics.
func (c *Coordinator) report(batchID string, results []TaskResult) {
	c.deps.Renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageReporting,
		Message: fmt.Sprintf("%d task results", len(results)),
	})

	for _, r := range results {
		slog.Info("task_complete",
			slog.String("batch_id", batchID),
			slog.Int("task_id", r.TaskID),
			slog.String("file", r.FileName),
			slog.Int("processed", r.Processed),
			slog.String("status", r.Status.String()),
			slog.String("message", r.Message),
			slog.Int64("duration_ms", r.Duration.Milliseconds()))
		c.deps.Metrics.ObserveTask(r.Status.String(), r.Processed)
	}
}

// classify turns the batch outcome into the error returned by Load, if any.
func (c *Coordinator) classify(ctx context.Context, fileNames []string, out dispatchOutcome) error {
	joined := strings.Join(fileNames, ",")

	if out.panicErr != nil {
		return werrors.New(werrors.ErrCodeBatchFailed, "failed to process files - "+joined, out.panicErr).
			WithDetail("files", joined).
			WithSuggestion("Re-run with --debug for the underlying cause")
	}

	unfinished := !out.drained
	for _, r := range out.results {
		if !r.Finished() {
			unfinished = true
			break
		}
	}
	if !unfinished {
		return nil
	}

	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return werrors.New(werrors.ErrCodeBatchFailed, "failed to process files - "+joined, err).
			WithDetail("files", joined)
	}

	return werrors.New(werrors.ErrCodeBatchTimeout, "timed out to process files - "+joined, context.DeadlineExceeded).
		WithDetail("files", joined).
		WithDetail("timeout", c.cfg.Timeout.String()).
		WithSuggestion("Re-run with a larger --timeout")
}
