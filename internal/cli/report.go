package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filmops/carbonledger/internal/engine"
	"github.com/filmops/carbonledger/internal/report"
)

// newReportCmd builds the report subcommand: assembles a certification
// report document for one production. Rendering the document to HTML or
// PDF is a downstream concern; this command emits the data object.
func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Assemble a certification report document",
		RunE:  runReport,
	}

	cmd.Flags().String("data", "", "path to the JSON record snapshot")
	cmd.Flags().String("project", "", "project id to report on")
	cmd.Flags().String("standard", string(report.KindAlbert), "report standard: albert, adgreen, ghg-protocol")
	cmd.Flags().String("out", "", "write the report document to this file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
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

	if project.CrewSize == 0 {
		// The adgreen crew-day normalization needs a crew size; fall
		// back to the configured default rather than reporting zeros.
		cfg := configFromContext(cmd.Context())
		clone := *project
		clone.CrewSize = cfg.DefaultCrewSize
		project = &clone
	}

	var records []engine.ProjectEmissionRecord
	for _, r := range ds.ProjectRecords {
		if r.ProjectID == projectID {
			records = append(records, r)
		}
	}
	var allocations []engine.AllocationRecord
	for _, a := range ds.AllocationRecords {
		if a.ProjectID == projectID {
			allocations = append(allocations, a)
		}
	}

	standard, _ := cmd.Flags().GetString("standard")
	doc, err := report.Assemble(cmd.Context(), report.Kind(standard), report.Input{
		Project:     project,
		Records:     records,
		Allocations: allocations,
	})
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if err := writeJSONOutput(cmd, out, doc); err != nil {
		return err
	}
	if out != "" {
		cmd.Printf("Wrote %s report %s to %s\n", doc.Kind, doc.ID, out)
	}
	return nil
}
