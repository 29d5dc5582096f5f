package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mydehq/metamatch"
	"github.com/mydehq/metamatch/internal/ui"
)

var (
	flagConfig  string
	flagCache   string
	flagEntries string
	flagOutput  string
	flagForce   bool
	flagDryRun  bool
	flagVerbose bool
	flagQuiet   bool

	logger *ui.Logger
)

var RootCmd = &cobra.Command{
	Use:   "metamatch",
	Short: "Enrich review entries with movie, TV and game metadata",
	Long: `metamatch reads locally authored review entries, looks each one up on
TMDB (movies, TV) or RAWG (games), adds a YouTube trailer when a key is set,
and writes the merged records. Provider payloads are cached on disk so later
runs work offline.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbosity(flagQuiet, flagVerbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrich(cmd.Context())
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error(err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Custom configuration file path")
	RootCmd.PersistentFlags().StringVar(&flagCache, "cache", "", "Override the cache file path")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
	RootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress output except errors")

	RootCmd.Flags().StringVarP(&flagEntries, "entries", "e", "", "Override the entries directory")
	RootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Override the output file path")
	RootCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Ignore cached data and refetch everything")
	RootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "d", false, "Enrich without writing the output file")

	// Default logger setup (before flags parse)
	logger = ui.NewLogger(os.Stderr)

	colorizeHelp(RootCmd)
}

// baseOptions holds the options shared by every subcommand
func baseOptions() []metamatch.Option {
	opts := []metamatch.Option{
		metamatch.WithConfig(flagConfig),
		metamatch.WithLogger(logger.Logger),
	}
	if flagCache != "" {
		opts = append(opts, metamatch.WithCache(flagCache))
	}
	return opts
}

func runEnrich(ctx context.Context) error {
	opts := baseOptions()

	if flagEntries != "" {
		opts = append(opts, metamatch.WithEntries(flagEntries))
	}
	if flagOutput != "" {
		opts = append(opts, metamatch.WithOutput(flagOutput))
	}
	if flagForce {
		opts = append(opts, metamatch.WithForce())
	}
	if flagDryRun {
		opts = append(opts, metamatch.WithDryRun())
	}

	report, err := metamatch.Run(ctx, opts...)
	if err != nil {
		return err
	}

	if flagQuiet {
		return nil
	}

	logger.Info("Summary",
		"cached", count(report, metamatch.OutcomeCacheHit),
		"fetched", count(report, metamatch.OutcomeFetched),
		"stale", count(report, metamatch.OutcomeStaleFallback),
		"local", count(report, metamatch.OutcomeLocalOnly),
		"skipped", ui.StyleDim.Render(fmt.Sprint(len(report.Skipped))),
		"took", report.Duration.Round(time.Millisecond),
	)

	if report.DryRun {
		logger.Info(ui.StyleFlag.Render("[DRY RUN]") + " output not written")
		return nil
	}
	logger.Success(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Wrote records"), ui.StylePath.Render(report.OutputPath)),
		"count", len(report.Results))
	return nil
}

func count(report *metamatch.Report, outcome metamatch.Outcome) string {
	return ui.OutcomeStyle(string(outcome)).Render(fmt.Sprint(report.Outcomes[outcome]))
}
