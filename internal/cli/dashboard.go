package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/filmops/carbonledger/internal/engine"
)

// newDashboardCmd builds the dashboard subcommand: an interactive table
// of per-project summaries. The model consumes engine summaries only;
// the engine stays unaware of the terminal.
func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Browse project emission summaries interactively",
		RunE:  runDashboard,
	}

	cmd.Flags().String("data", "", "path to the JSON record snapshot")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	result, err := engine.Aggregate(cmd.Context(),
		ds.ProjectRecords, ds.NonProjectRecords, ds.AllocationRecords, ds.Projects)
	if err != nil {
		return err
	}

	model := newDashboardModel(ds.Projects, result)
	program := tea.NewProgram(model, tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

type dashboardModel struct {
	table table.Model
	org   *engine.OrgSummary
}

func newDashboardModel(projects []*engine.Project, result *engine.AggregateResult) dashboardModel {
	columns := []table.Column{
		{Title: "Project", Width: 14},
		{Title: "Direct (kg)", Width: 14},
		{Title: "Allocated (kg)", Width: 14},
		{Title: "Total (kg)", Width: 14},
		{Title: "Records", Width: 8},
	}

	rows := make([]table.Row, 0, len(projects))
	for _, p := range projects {
		s := result.PerProject[p.ID]
		rows = append(rows, table.Row{
			p.ID,
			printer.Sprintf("%.1f", s.DirectEmissions),
			printer.Sprintf("%.1f", s.AllocatedEmissions),
			printer.Sprintf("%.1f", s.TotalEmissions),
			fmt.Sprintf("%d", s.RecordCount),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return dashboardModel{table: t, org: result.Organization}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	footer := labelStyle.Render(printer.Sprintf(
		"org total %.1f kg CO2e | %d projects | q to quit",
		m.org.TotalEmissions, m.org.ProjectCount))
	return m.table.View() + "\n" + footer + "\n"
}
