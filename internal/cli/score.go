package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filmops/carbonledger/internal/engine"
)

// newScoreCmd builds the score subcommand: competitiveness scoring for a
// single production against the configured benchmarks.
func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a production's carbon intensity against industry benchmarks",
		RunE:  runScore,
	}

	cmd.Flags().String("data", "", "path to the JSON record snapshot")
	cmd.Flags().String("project", "", "project id to score")
	cmd.Flags().Bool("json", false, "emit the score as JSON")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	projectID, _ := cmd.Flags().GetString("project")
	if projectID == "" {
		return fmt.Errorf("--project is required")
	}
	project, ok := ds.ProjectMap()[projectID]
	if !ok {
		return fmt.Errorf("project %q not found in dataset", projectID)
	}

	result, err := engine.Aggregate(cmd.Context(),
		ds.ProjectRecords, ds.NonProjectRecords, ds.AllocationRecords, ds.Projects)
	if err != nil {
		return err
	}

	cfg := configFromContext(cmd.Context())
	score := engine.Score(cmd.Context(), project, result.PerProject[projectID], cfg.Benchmarks)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSONOutput(cmd, "", score)
	}

	cmd.Println(headerStyle.Render("Competitiveness: " + project.ID))
	cmd.Printf("  Carbon intensity: %.4f kg CO2e per budget unit (industry %.4f)\n",
		score.CarbonIntensity, score.IndustryAverage)
	cmd.Printf("  Percentile: %.1f  Level: %s\n", score.Percentile, score.Level)
	cmd.Println("  Recommendations:")
	for _, r := range score.Recommendations {
		cmd.Printf("    - %s\n", r)
	}
	cmd.Printf("  Suggested certifications: %v\n", score.CertificationSuggestions)
	return nil
}
