// Package cmd provides the CLI commands for wordindex.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordindex/internal/config"
	ierrors "github.com/Aman-CERP/wordindex/internal/errors"
	"github.com/Aman-CERP/wordindex/internal/logging"
	"github.com/Aman-CERP/wordindex/internal/profiling"
	"github.com/Aman-CERP/wordindex/pkg/version"
)

// rootOptions holds the persistent flags and the state they set up.
type rootOptions struct {
	debug   bool
	plain   bool
	noColor bool
	profile profiling.Options

	cfg            *config.Config
	profiler       *profiling.Session
	loggingCleanup func()
	prevLogger     *slog.Logger
}

// NewRootCmd creates the root command for the wordindex CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wordindex",
		Short: "Concurrent word counter and inverted index",
		Long: `wordindex reads text files in parallel batches, counts every word
and records which files it occurs in.

Files are loaded in batches of batch.max_batch_size, each batch bounded by
a single timeout. Directories are listed in lexical order and paged through
batch by batch.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("wordindex version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.wordindex/logs/")
	cmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "Disable the interactive progress display")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&opts.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Mem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = opts.setup
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error { return opts.teardown() }

	cmd.AddCommand(newCountCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration, installs the logger and starts profiling.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	if o.plain {
		cfg.UI.Plain = true
	}
	if o.noColor {
		cfg.UI.NoColor = true
	}
	o.cfg = cfg

	o.prevLogger = slog.Default()
	if o.debug {
		logCfg := logging.DebugConfig()
		logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		logCfg.MaxFiles = cfg.Logging.MaxFiles
		logger, cleanup, err := logging.Setup(logCfg)
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		o.loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug_logging_enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Short()))
	} else {
		slog.SetDefault(logging.Console(cmd.ErrOrStderr(), cfg.Logging.Level))
	}

	if o.profile.Enabled() {
		s, err := profiling.Start(o.profile)
		if err != nil {
			o.teardownLogging()
			return err
		}
		o.profiler = s
	}
	return nil
}

// runE wraps a command body so setup state is torn down when it fails;
// cobra skips PersistentPostRunE after an error.
func (o *rootOptions) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			_ = o.teardown()
		}
		return err
	}
}

// teardown stops profiling and restores the previous logger.
func (o *rootOptions) teardown() error {
	var err error
	if o.profiler != nil {
		if stopErr := o.profiler.Stop(); stopErr != nil {
			err = fmt.Errorf("failed to write profiles: %w", stopErr)
		}
		o.profiler = nil
	}
	o.teardownLogging()
	return err
}

func (o *rootOptions) teardownLogging() {
	if o.loggingCleanup != nil {
		slog.Info("debug_logging_stopped")
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
	if o.prevLogger != nil {
		slog.SetDefault(o.prevLogger)
		o.prevLogger = nil
	}
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), ierrors.FormatForCLI(err))
	}
	return err
}
