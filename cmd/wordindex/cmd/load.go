package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordindex/internal/aggregate"
	"github.com/Aman-CERP/wordindex/internal/config"
	"github.com/Aman-CERP/wordindex/internal/index"
	"github.com/Aman-CERP/wordindex/internal/lines"
	"github.com/Aman-CERP/wordindex/internal/profiling"
	"github.com/Aman-CERP/wordindex/internal/scanner"
	"github.com/Aman-CERP/wordindex/internal/telemetry"
	"github.com/Aman-CERP/wordindex/internal/ui"
)

// loadFlags are shared by every command that loads input files.
type loadFlags struct {
	inputs      []string
	timeout     time.Duration
	recursive   bool
	exclude     []string
	metricsFile string
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.inputs, "input", "i", nil, "File or directory to load (repeatable, taken verbatim)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Timeout per batch (default from config, 60s)")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Glob of file names to skip (repeatable)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
}

// apply folds the flags into cfg. Flags win over every config layer.
func (f *loadFlags) apply(cfg *config.Config) {
	if f.timeout > 0 {
		cfg.Batch.Timeout = f.timeout
	}
	if f.recursive {
		cfg.Scan.Recursive = true
	}
	cfg.Scan.Exclude = append(cfg.Scan.Exclude, f.exclude...)
	if f.metricsFile != "" {
		cfg.Metrics.Textfile = f.metricsFile
	}
}

// loadResult is what a load run leaves behind.
type loadResult struct {
	Index   *aggregate.Index
	Metrics *telemetry.Metrics
	Batches int
	Files   int
	Tokens  int
	Failed  int
	Elapsed time.Duration
}

// loadInputs pages through inputs in chunks of batch.max_batch_size and
// loads each chunk as one batch. The first failed batch stops the run.
func loadInputs(ctx context.Context, cmd *cobra.Command, cfg *config.Config, inputs []string) (*loadResult, error) {
	start := time.Now()
	res := &loadResult{
		Index:   aggregate.New(cfg.Index.Shards),
		Metrics: telemetry.NewMetrics(),
	}

	renderer := ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr(),
		ui.WithForcePlain(cfg.UI.Plain),
		ui.WithNoColor(cfg.UI.NoColor || ui.DetectNoColor()),
		ui.WithInputLabel(strings.Join(inputs, ",")),
	))
	if err := renderer.Start(ctx); err != nil {
		slog.Warn("renderer_start_failed", slog.String("error", err.Error()))
		renderer = ui.NewPlainRenderer(ui.NewConfig(cmd.ErrOrStderr(), ui.WithNoColor(true)))
	}
	defer func() { _ = renderer.Stop() }()

	coord, err := index.NewCoordinator(
		index.Config{MaxBatchSize: cfg.Batch.MaxBatchSize, Timeout: cfg.Batch.Timeout},
		index.Dependencies{
			Index:    res.Index,
			Open:     lines.Opener(lines.WithMaxLineBytes(cfg.Index.MaxLineBytes)),
			Renderer: renderer,
			Metrics:  res.Metrics,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	opts := scanner.Options{
		ChunkSize: coord.MaxBatchSize(),
		Recursive: cfg.Scan.Recursive,
		Exclude:   cfg.Scan.Exclude,
	}
	err = scanner.ChunkInputs(ctx, inputs, opts, func(chunk []string) error {
		report, err := coord.Load(ctx, slices.Clone(chunk)...)
		if err != nil {
			return err
		}
		res.Batches++
		res.Files += len(report.Files)
		res.Tokens += report.Processed
		res.Failed += report.Failed
		return nil
	})
	if err == nil && res.Batches == 0 {
		// Nothing to load: let the coordinator reject the empty batch
		_, err = coord.Load(ctx)
	}

	res.Elapsed = time.Since(start)
	finish(renderer, res, err)

	if cfg.Metrics.Textfile != "" {
		if werr := res.Metrics.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			slog.Warn("metrics_write_failed", slog.String("error", werr.Error()))
		}
	}

	slog.Info("load_complete",
		slog.Int("batches", res.Batches),
		slog.Int("files", res.Files),
		slog.Int("tokens", res.Tokens),
		slog.Int("words", res.Index.Len()),
		slog.Duration("elapsed", res.Elapsed),
		slog.String("heap_alloc", profiling.FormatBytes(profiling.HeapAlloc())))

	if err != nil {
		return nil, err
	}
	return res, nil
}

func finish(renderer ui.Renderer, res *loadResult, err error) {
	stats := ui.CompletionStats{
		Batches:  res.Batches,
		Files:    res.Files,
		Tokens:   res.Tokens,
		Words:    res.Index.Len(),
		Duration: res.Elapsed,
		Warnings: res.Failed,
	}
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		stats.Errors = 1
	}
	renderer.Complete(stats)
}
