package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordindex/internal/aggregate"
	"github.com/Aman-CERP/wordindex/internal/output"
)

func newCountCmd(root *rootOptions) *cobra.Command {
	var (
		flags    loadFlags
		format   string
		unsorted bool
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count words across input files",
		Long: `Load the input files and print every word with its occurrence count and
the files it appears in, followed by the number of distinct words.

Inputs may be files or directories. Directories are listed in lexical
order (use --recursive to descend) and empty files are skipped. Files are
loaded in batches of batch.max_batch_size; a batch that does not finish
within --timeout fails the run.

Lines are read whole. A line longer than index.max_line_bytes (1 MiB by
default, WORDINDEX_MAX_LINE_BYTES) fails the file it belongs to; raise the
limit for files with very long lines.`,
		Example: `  # Count words in two files
  wordindex count -i a.txt -i b.txt

  # Count a directory tree, JSON output
  wordindex count -i corpus/ --recursive --format json`,
		Args: cobra.NoArgs,
		RunE: root.runE(func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg := root.cfg
			flags.apply(cfg)

			res, err := loadInputs(ctx, cmd, cfg, flags.inputs)
			if err != nil {
				return err
			}

			report := output.WordReport{
				Sorted:  !unsorted,
				Batches: res.Batches,
				Files:   res.Files,
				Tokens:  uint64(res.Tokens),
				Elapsed: res.Elapsed,
			}
			if unsorted {
				report.Words = unorderedStats(res.Index)
			} else {
				report.Words = res.Index.Snapshot()
			}
			return output.New(cmd.OutOrStdout()).Words(report, f)
		}),
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&unsorted, "unsorted", false, "Print words in index order with files only")

	return cmd
}

// unorderedStats snapshots every entry in the index's own iteration order.
func unorderedStats(idx *aggregate.Index) []aggregate.Stat {
	stats := make([]aggregate.Stat, 0, idx.Len())
	idx.Range(func(word string, e *aggregate.Entry) bool {
		stats = append(stats, e.Snapshot(word))
		return true
	})
	return stats
}
