package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/germplasm-cli/internal/config"
	"github.com/sells-group/germplasm-cli/internal/extract"
	"github.com/sells-group/germplasm-cli/internal/inference"
	"github.com/sells-group/germplasm-cli/internal/metrics"
	"github.com/sells-group/germplasm-cli/internal/pipeline"
	"github.com/sells-group/germplasm-cli/internal/species"
	"github.com/sells-group/germplasm-cli/internal/store"
	"github.com/sells-group/germplasm-cli/internal/tabular"
	"github.com/sells-group/germplasm-cli/pkg/anthropic"
)

var (
	processOffline bool
	processDryRun  bool
)

var processCmd = &cobra.Command{
	Use:   "process <input> [output]",
	Short: "Normalize one shipment spreadsheet",
	Long: `Reads an .xlsx or .csv shipment spreadsheet and writes the normalized table.

The output path defaults to <dir>/<stem>_processed<ext> next to the input.

Examples:
  # Whole-row extraction with deterministic fallback
  germplasm process requests.xlsx

  # Deterministic parsing only, no API key needed
  germplasm process requests.xlsx out.xlsx --offline

  # Resolve and report counts without writing
  germplasm process requests.csv --dry-run`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("process"); err != nil {
			return err
		}

		in := args[0]
		out := tabular.OutputPath(in, cfg.Output.Suffix)
		if len(args) == 2 {
			out = args[1]
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "process: init store")
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if n, err := st.DeleteExpiredInference(ctx); err != nil {
				zap.L().Warn("process: prune inference cache failed", zap.Error(err))
			} else if n > 0 {
				zap.L().Debug("process: pruned inference cache", zap.Int("entries", n))
			}
		}

		inferer, available := newInferer(cfg, st, processOffline)
		if !available {
			zap.L().Info("process: inference unavailable, using deterministic parsing")
		}

		rec := metrics.New()
		strategy := extract.New(extract.Options{
			Inferer:   inferer,
			Species:   newSpeciesResolver(cfg, inferer, available),
			Retry:     cfg.Extract.Retry(),
			MaxTokens: cfg.Anthropic.MaxTokens,
		})

		proc := pipeline.NewProcessor(pipeline.Options{
			Resolver: strategy,
			Store:    st,
			Metrics:  rec,
			Sheet:    cfg.Output.Sheet,
			DryRun:   processDryRun,
		})

		result, runErr := proc.Run(ctx, in, out)

		if cfg.Metrics.Textfile != "" {
			if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				zap.L().Warn("process: write metrics textfile failed", zap.Error(err))
			}
		}

		if runErr != nil {
			zap.L().Error("process: run failed", zap.String("input", in), zap.Error(runErr))
			return eris.Wrap(runErr, "process")
		}

		if processDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "dry run: %d rows resolved from %s\n", result.Candidates-result.DuplicatesDropped, in)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", result.RowsWritten, out)
		return nil
	},
}

// newInferer builds the inference chain for a run. The second result is
// false when no API key is configured or offline is set; the returned
// Inferer then reports inference.ErrUnavailable.
func newInferer(c *config.Config, cache inference.Cache, offline bool) (inference.Inferer, bool) {
	if offline || c.Anthropic.Key == "" {
		return inference.Unavailable(), false
	}

	client := anthropic.NewClient(c.Anthropic.Key)
	var inf inference.Inferer = inference.NewAnthropic(client, c.Anthropic.Model, c.Anthropic.RequestsPerSecond, c.Anthropic.Burst)
	if cache != nil {
		inf = inference.WithCache(inf, cache, c.Anthropic.Model)
	}
	return inf, true
}

// newSpeciesResolver returns the static table, or the remote resolver with
// a static fallback when configured and inference is available.
func newSpeciesResolver(c *config.Config, inferer inference.Inferer, available bool) species.Resolver {
	static := species.NewStatic()
	if c.Species.Strategy != config.SpeciesRemote || !available {
		return static
	}
	remote := species.NewRemote(inference.WithRetry(inferer, c.Extract.Retry()), 0)
	return species.WithFallback(remote, static)
}

// store.Store satisfies inference.Cache.
var _ inference.Cache = (store.Store)(nil)

func init() {
	processCmd.Flags().BoolVar(&processOffline, "offline", false, "skip remote inference and parse deterministically")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "resolve rows without writing output")
	rootCmd.AddCommand(processCmd)
}
