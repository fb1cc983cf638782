package engine

import (
	"context"

	"github.com/filmops/carbonledger/internal/logging"
)

// Aggregate folds a snapshot of records into per-project summaries and an
// organization-wide rollup.
//
// Aggregate is idempotent: identical inputs produce identical output, with
// no accumulation against prior state. Summaries are always built wholesale
// from the full record set, never patched, so a cached summary can only
// drift if the caller mutates it. Inputs are never modified.
//
// Every projectID referenced by a project record or an allocation record
// must resolve to an entry in projects; an unknown reference fails with a
// *ValidationError before any output is produced. Percentage fields use a
// zero-denominator guard and report 0 rather than NaN.
func Aggregate(
	ctx context.Context,
	projectRecords []ProjectEmissionRecord,
	nonProjectRecords []NonProjectEmissionRecord,
	allocationRecords []AllocationRecord,
	projects []*Project,
) (*AggregateResult, error) {
	logger := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "Aggregate").
		Logger()

	perProject := make(map[string]*ProjectEmissionSummary, len(projects))
	for _, p := range projects {
		if _, dup := perProject[p.ID]; dup {
			return nil, NewValidationError(ConstraintDuplicateProject,
				"project %q appears more than once in the snapshot", p.ID)
		}
		perProject[p.ID] = &ProjectEmissionSummary{ProjectID: p.ID}
	}

	for _, r := range projectRecords {
		summary, ok := perProject[r.ProjectID]
		if !ok {
			return nil, NewValidationError(ConstraintUnknownProject,
				"emission record %s references unknown project %q", r.ID, r.ProjectID)
		}
		summary.DirectEmissions += r.Amount
		summary.RecordCount++
		addStage(&summary.ByStage, r.Stage, r.Amount)
	}

	for _, a := range allocationRecords {
		summary, ok := perProject[a.ProjectID]
		if !ok {
			return nil, NewValidationError(ConstraintUnknownProject,
				"allocation record %s references unknown project %q", a.ID, a.ProjectID)
		}
		summary.AllocatedEmissions += a.AllocatedAmount
		summary.AllocationCount++
	}

	for _, p := range projects {
		summary := perProject[p.ID]
		summary.TotalEmissions = summary.DirectEmissions + summary.AllocatedEmissions
		summary.OperationalAllocation = summary.AllocatedEmissions
		summary.DirectSharePercent = safePercent(summary.DirectEmissions, summary.TotalEmissions)
		summary.AllocatedSharePercent = safePercent(summary.AllocatedEmissions, summary.TotalEmissions)
		summary.CarbonBudgetStatus = stageBudgetStatus(p, summary.ByStage)
	}

	org := buildOrgSummary(perProject, nonProjectRecords, projects, len(projectRecords))

	logger.Debug().
		Int("projects", len(projects)).
		Int("records", len(projectRecords)).
		Int("allocations", len(allocationRecords)).
		Float64("total_kg", org.TotalEmissions).
		Msg("aggregated emission snapshot")

	return &AggregateResult{
		PerProject:   perProject,
		Organization: org,
	}, nil
}

func addStage(b *StageBreakdown, stage Stage, amount float64) {
	switch stage {
	case StagePreProduction:
		b.PreProduction += amount
	case StageProduction:
		b.Production += amount
	case StagePostProduction:
		b.PostProduction += amount
	default:
		// Unstaged records count as production, the dominant phase.
		b.Production += amount
	}
}

// stageBudgetStatus reports utilization of each declared per-stage carbon
// budget. Projects without a carbon budget report no statuses.
func stageBudgetStatus(p *Project, byStage StageBreakdown) []StageBudgetStatus {
	if p.CarbonBudget == nil || len(p.CarbonBudget.ByStage) == 0 {
		return nil
	}

	stageAmount := map[Stage]float64{
		StagePreProduction:  byStage.PreProduction,
		StageProduction:     byStage.Production,
		StagePostProduction: byStage.PostProduction,
	}

	var statuses []StageBudgetStatus
	for _, stage := range []Stage{StagePreProduction, StageProduction, StagePostProduction} {
		budget, ok := p.CarbonBudget.ByStage[stage]
		if !ok {
			continue
		}
		used := stageAmount[stage]
		pct := safePercent(used, budget)
		statuses = append(statuses, StageBudgetStatus{
			Stage:              stage,
			BudgetKg:           budget,
			EmissionsKg:        used,
			UtilizationPercent: pct,
			Health:             HealthFromUtilization(pct),
		})
	}
	return statuses
}

// HealthFromUtilization classifies a carbon-budget utilization percentage.
//
// Thresholds:
//   - ok: below 80%
//   - warning: 80-89%
//   - critical: 90-99%
//   - exceeded: 100% and above
func HealthFromUtilization(percent float64) BudgetHealth {
	switch {
	case percent >= HealthThresholdExceeded:
		return HealthExceeded
	case percent >= HealthThresholdCritical:
		return HealthCritical
	case percent >= HealthThresholdWarning:
		return HealthWarning
	default:
		return HealthOK
	}
}

func buildOrgSummary(
	perProject map[string]*ProjectEmissionSummary,
	nonProjectRecords []NonProjectEmissionRecord,
	projects []*Project,
	recordCount int,
) *OrgSummary {
	org := &OrgSummary{
		ProjectCount:          len(projects),
		RecordCount:           recordCount,
		NonProjectRecordCount: len(nonProjectRecords),
	}

	first := true
	// Iterate projects (not the map) for deterministic min/max seeding.
	for _, p := range projects {
		summary := perProject[p.ID]
		org.DirectEmissions += summary.DirectEmissions
		org.AllocatedEmissions += summary.AllocatedEmissions
		org.ByStage.PreProduction += summary.ByStage.PreProduction
		org.ByStage.Production += summary.ByStage.Production
		org.ByStage.PostProduction += summary.ByStage.PostProduction

		if first {
			org.MinProjectTotal = summary.TotalEmissions
			org.MaxProjectTotal = summary.TotalEmissions
			first = false
			continue
		}
		if summary.TotalEmissions < org.MinProjectTotal {
			org.MinProjectTotal = summary.TotalEmissions
		}
		if summary.TotalEmissions > org.MaxProjectTotal {
			org.MaxProjectTotal = summary.TotalEmissions
		}
	}

	for _, r := range nonProjectRecords {
		org.OperationalEmissions += r.Amount
		if !r.IsAllocated {
			org.UnallocatedEmissions += r.Amount
		}
	}

	// Direct project activity plus all operational activity. Allocated
	// amounts are a redistribution of operational records, not new
	// emissions, so they are excluded here to avoid double counting.
	org.TotalEmissions = org.DirectEmissions + org.OperationalEmissions
	org.DirectSharePercent = safePercent(org.DirectEmissions, org.TotalEmissions)
	org.AllocatedSharePercent = safePercent(org.AllocatedEmissions, org.TotalEmissions)
	org.AverageProjectTotal = safeRatio(org.DirectEmissions+org.AllocatedEmissions, float64(len(projects)))
	org.Scopes = HeuristicScopeSplit(org.ByStage, org.TotalEmissions)

	return org
}

// HeuristicScopeSplit derives organization scope totals from stage totals:
// scope 1 is 30% of the production-stage total, scope 2 is 40% of the
// pre-production total, and scope 3 is the remainder.
//
// This is a legacy approximation kept for report compatibility, not a
// per-record classification: Classify tags individual records with real
// scopes, and certification reports use those tags. Only the
// organization-level inventory rollup uses this split. The two methods
// disagree by construction; Classify is canonical.
func HeuristicScopeSplit(byStage StageBreakdown, total float64) ScopeSplit {
	split := ScopeSplit{
		Scope1: byStage.Production * heuristicScope1ProductionShare,
		Scope2: byStage.PreProduction * heuristicScope2PreProdShare,
	}
	remainder := total - split.Scope1 - split.Scope2
	if remainder < 0 {
		remainder = 0
	}
	split.Scope3 = remainder
	return split
}
