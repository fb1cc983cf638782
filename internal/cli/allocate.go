package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filmops/carbonledger/internal/engine"
)

// newAllocateCmd builds the allocate subcommand. It runs the allocation
// engine for one non-project record and prints or writes the resulting
// allocation records; persisting them back is the caller's job.
func newAllocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Distribute a non-project emission record across productions",
		RunE:  runAllocate,
	}

	cmd.Flags().String("data", "", "path to the JSON record snapshot")
	cmd.Flags().String("record", "", "id of the non-project record to allocate")
	cmd.Flags().String("method", "", "allocation method: equal, budget, duration, custom (defaults to the record's stored rule)")
	cmd.Flags().StringSlice("targets", nil, "target project ids (defaults to the record's stored rule)")
	cmd.Flags().StringToString("percentages", nil, "projectId=percentage pairs for the custom method")
	cmd.Flags().String("out", "", "write allocation records as JSON to this file instead of stdout")

	return cmd
}

func runAllocate(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	recordID, _ := cmd.Flags().GetString("record")
	if recordID == "" {
		return fmt.Errorf("--record is required")
	}
	record, ok := ds.NonProjectRecord(recordID)
	if !ok {
		return fmt.Errorf("non-project record %q not found in dataset", recordID)
	}

	rule, err := resolveRule(cmd, record)
	if err != nil {
		return err
	}

	allocations, err := engine.Allocate(cmd.Context(), record, rule, ds.ProjectMap())
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		if err := writeJSONOutput(cmd, out, allocations); err != nil {
			return err
		}
		cmd.Printf("Wrote %d allocation records to %s\n", len(allocations), out)
		return nil
	}

	cmd.Printf("Allocated %s of record %s (%s)\n", formatKg(record.Amount), record.ID, rule.Method)
	for _, a := range allocations {
		cmd.Printf("  %-12s %18s  %6.2f%%\n", a.ProjectID, formatKg(a.AllocatedAmount), a.Percentage)
	}
	return nil
}

// resolveRule builds the allocation rule from flags, falling back to the
// rule stored on the record.
func resolveRule(cmd *cobra.Command, record engine.NonProjectEmissionRecord) (engine.AllocationRule, error) {
	method, _ := cmd.Flags().GetString("method")
	targets, _ := cmd.Flags().GetStringSlice("targets")
	rawPercentages, _ := cmd.Flags().GetStringToString("percentages")

	if method == "" && len(targets) == 0 {
		if record.Rule == nil {
			return engine.AllocationRule{}, fmt.Errorf(
				"record %s has no stored allocation rule; pass --method and --targets", record.ID)
		}
		return *record.Rule, nil
	}

	rule := engine.AllocationRule{
		Method:         engine.Method(method),
		TargetProjects: targets,
	}
	if len(rawPercentages) > 0 {
		rule.CustomPercentages = make(map[string]float64, len(rawPercentages))
		for id, raw := range rawPercentages {
			var pct float64
			if _, err := fmt.Sscanf(raw, "%f", &pct); err != nil {
				return engine.AllocationRule{}, fmt.Errorf("invalid percentage %q for project %s", raw, id)
			}
			rule.CustomPercentages[id] = pct
		}
	}
	return rule, nil
}
