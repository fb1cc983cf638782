package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/filmops/carbonledger/internal/engine"
)

var (
	//nolint:gochecknoglobals // Styles are constant lookup data.
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	//nolint:gochecknoglobals
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	//nolint:gochecknoglobals
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	//nolint:gochecknoglobals
	critStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// newSummaryCmd builds the summary subcommand: a full aggregation pass
// over the snapshot with per-project and organization totals.
func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate the snapshot into per-project and organization summaries",
		RunE:  runSummary,
	}

	cmd.Flags().String("data", "", "path to the JSON record snapshot")
	cmd.Flags().String("project", "", "limit output to one project id")
	cmd.Flags().Bool("json", false, "emit the full aggregation result as JSON")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	result, err := engine.Aggregate(cmd.Context(),
		ds.ProjectRecords, ds.NonProjectRecords, ds.AllocationRecords, ds.Projects)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSONOutput(cmd, "", result)
	}

	projectID, _ := cmd.Flags().GetString("project")
	if projectID != "" {
		summary, ok := result.PerProject[projectID]
		if !ok {
			return fmt.Errorf("project %q not found in dataset", projectID)
		}
		printProjectSummary(cmd, summary)
		return nil
	}

	for _, p := range ds.Projects {
		printProjectSummary(cmd, result.PerProject[p.ID])
		cmd.Println()
	}
	printOrgSummary(cmd, result.Organization, ds.Projects)
	return nil
}

func printProjectSummary(cmd *cobra.Command, s *engine.ProjectEmissionSummary) {
	cmd.Println(headerStyle.Render("Project " + s.ProjectID))
	cmd.Printf("  %s %s\n", labelStyle.Render("Direct:   "), formatKg(s.DirectEmissions))
	cmd.Printf("  %s %s\n", labelStyle.Render("Allocated:"), formatKg(s.AllocatedEmissions))
	cmd.Printf("  %s %s\n", labelStyle.Render("Total:    "), formatKg(s.TotalEmissions))
	cmd.Printf("  %s pre %s | prod %s | post %s\n",
		labelStyle.Render("By stage: "),
		formatKg(s.ByStage.PreProduction),
		formatKg(s.ByStage.Production),
		formatKg(s.ByStage.PostProduction))

	for _, status := range s.CarbonBudgetStatus {
		line := fmt.Sprintf("  %s %s: %.1f%% of %s",
			labelStyle.Render("Budget:   "),
			status.Stage, status.UtilizationPercent, formatKg(status.BudgetKg))
		switch status.Health {
		case engine.HealthWarning:
			line += " " + warnStyle.Render("[warning]")
		case engine.HealthCritical, engine.HealthExceeded:
			line += " " + critStyle.Render("["+string(status.Health)+"]")
		case engine.HealthOK:
		}
		cmd.Println(line)
	}
}

func printOrgSummary(cmd *cobra.Command, org *engine.OrgSummary, projects []*engine.Project) {
	cmd.Println(headerStyle.Render("Organization"))
	cmd.Printf("  %s %s across %d projects, %d records\n",
		labelStyle.Render("Total:      "),
		formatKg(org.TotalEmissions), org.ProjectCount, org.RecordCount)
	cmd.Printf("  %s %s direct, %s operational (%s unallocated)\n",
		labelStyle.Render("Breakdown:  "),
		formatKg(org.DirectEmissions), formatKg(org.OperationalEmissions),
		formatKg(org.UnallocatedEmissions))
	cmd.Printf("  %s 1: %s | 2: %s | 3: %s (stage-ratio heuristic)\n",
		labelStyle.Render("Scope split:"),
		formatKg(org.Scopes.Scope1), formatKg(org.Scopes.Scope2), formatKg(org.Scopes.Scope3))

	eff := engine.OrgEfficiency(org, projects)
	cmd.Printf("  %s %.4f kg/unit budget, %s per project day\n",
		labelStyle.Render("Efficiency: "),
		eff.CarbonPerBudget, formatKg(eff.AverageDailyEmissions))
}
