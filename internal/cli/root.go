// Package cli wires the carbonledger commands: allocation, aggregation,
// scoring, report assembly, and the dashboard, all operating on JSON
// record snapshots.
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/filmops/carbonledger/internal/config"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

type ctxKey int

const configContextKey ctxKey = iota

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// configFromContext returns the config loaded by the root command.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configContextKey).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// NewRootCmd creates the root Cobra command for the carbonledger CLI.
// It loads configuration, sets up logging, and registers the allocate,
// summary, score, report, and dashboard subcommands.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "carbonledger",
		Short:   "Carbon accounting for film productions",
		Long:    "carbonledger: allocate operational emissions across productions and build certification-ready sustainability reports",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			setupLogging(cmd, cfg)
			ctx := context.WithValue(cmd.Context(), configContextKey, cfg)
			ctx = logger.WithContext(ctx)
			cmd.SetContext(ctx)

			logger.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (defaults to built-in reference data)")
	cmd.AddCommand(
		newAllocateCmd(),
		newSummaryCmd(),
		newScoreCmd(),
		newReportCmd(),
		newDashboardCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Split an operational emission record across productions by schedule length
  carbonledger allocate --data records.json --record np-001 --method duration --targets P1,P2,P3

  # Per-project and organization emission summaries
  carbonledger summary --data records.json

  # Competitiveness score for one production
  carbonledger score --data records.json --project P1

  # Assemble an albert-style report document
  carbonledger report --data records.json --project P1 --standard albert --out report.json

  # Browse project summaries interactively
  carbonledger dashboard --data records.json`
