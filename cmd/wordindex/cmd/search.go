package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordindex/internal/output"
	"github.com/Aman-CERP/wordindex/internal/search"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		flags  loadFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Find files containing any word of a query",
		Long: `Load the input files, then print every file that contains at least one
word of the query.

The query is split on non-word characters and stop words are dropped.
Words are matched exactly as typed: indexed words are lower-cased, so a
capitalised query word matches nothing.`,
		Example: `  # Files mentioning either word
  wordindex search -i corpus/ computer science`,
		Args: cobra.MinimumNArgs(1),
		RunE: root.runE(func(cmd *cobra.Command, args []string) error {
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

			query := strings.Join(args, " ")
			engine := search.New(res.Index, cfg.Search.CacheSize, search.WithMetrics(res.Metrics))

			files := engine.Search(ctx, query)

			if cfg.Metrics.Textfile != "" {
				if err := res.Metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					slog.Warn("metrics_write_failed", slog.String("error", err.Error()))
				}
			}

			return output.New(cmd.OutOrStdout()).Matches(output.SearchReport{
				Query: query,
				Terms: search.Terms(query),
				Files: files,
			}, f)
		}),
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
