package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/filmops/carbonledger/internal/ingest"
)

// printer formats numbers with English thousand separators for display.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// formatKg renders a kg CO2e amount for terminal output.
func formatKg(v float64) string {
	return printer.Sprintf("%.2f kg CO2e", v)
}

// loadDataset reads and materializes the snapshot named by --data.
func loadDataset(cmd *cobra.Command) (*ingest.Dataset, error) {
	path, _ := cmd.Flags().GetString("data")
	if path == "" {
		return nil, fmt.Errorf("--data is required")
	}

	ds, err := ingest.Load(path)
	if err != nil {
		return nil, err
	}

	cfg := configFromContext(cmd.Context())
	if err := ds.Materialize(cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("projects", len(ds.Projects)).
		Int("records", len(ds.ProjectRecords)).
		Msg("loaded dataset")

	return ds, nil
}

// writeJSONOutput writes v as indented JSON to path, or to the command's
// stdout when path is empty.
func writeJSONOutput(cmd *cobra.Command, path string, v any) error {
	if path == "" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("writing output %s: %w", path, err)
	}
	return nil
}
