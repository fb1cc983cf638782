// Package engine implements the carbon-accounting core: allocation of
// operational emissions across productions, scope and lifecycle-stage
// aggregation, and competitiveness scoring.
//
// All computations are synchronous pure functions over in-memory record
// sets. The engine never mutates its inputs and never performs I/O; callers
// snapshot a consistent record set, invoke the engine, and own persistence
// of the results.
package engine

import "time"

// Stage is a lifecycle phase of a film production.
type Stage string

const (
	StagePreProduction  Stage = "pre-production"
	StageProduction     Stage = "production"
	StagePostProduction Stage = "post-production"
)

// Scope is a GHG Protocol emission scope.
type Scope int

const (
	// ScopeUnknown marks records whose category carries no scope signal.
	ScopeUnknown Scope = 0
	// Scope1 covers direct emissions (fuel combustion, company vehicles).
	Scope1 Scope = 1
	// Scope2 covers purchased energy (electricity, heating).
	Scope2 Scope = 2
	// Scope3 covers all other indirect emissions.
	Scope3 Scope = 3
)

// Method identifies an allocation policy for distributing a non-project
// emission amount across target projects.
type Method string

const (
	MethodEqual    Method = "equal"
	MethodBudget   Method = "budget"
	MethodDuration Method = "duration"
	MethodCustom   Method = "custom"
)

// EmissionCategory is immutable reference data describing an activity
// category. Created at configuration time, never mutated by the engine.
type EmissionCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Stage       Stage  `json:"stage,omitempty"`
	Scope       Scope  `json:"scope,omitempty"`
	Operational bool   `json:"operational"`
}

// EmissionSource links a category to a unit and an emission factor
// (kg CO2e per unit). Sources are used upstream to materialize record
// amounts; the engine itself treats amounts as already computed.
type EmissionSource struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"category_id"`
	Unit        string  `json:"unit"`
	Factor      float64 `json:"factor"`
	Operational bool    `json:"operational"`
}

// ProjectEmissionRecord is a single emission entry owned by exactly one
// project. Records are immutable once aggregated; edits produce a new
// aggregation pass.
type ProjectEmissionRecord struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Stage      Stage     `json:"stage"`
	CategoryID string    `json:"category_id"`
	Quantity   float64   `json:"quantity,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	Location   string    `json:"location,omitempty"`
}

// NonProjectEmissionRecord is organization-wide operational activity not
// tied to a single production (office energy, corporate travel, ...).
// It is distributed across projects by the allocation engine.
type NonProjectEmissionRecord struct {
	ID          string             `json:"id"`
	CategoryID  string             `json:"category_id"`
	Amount      float64            `json:"amount"`
	Date        time.Time          `json:"date"`
	IsAllocated bool               `json:"is_allocated"`
	Rule        *AllocationRule    `json:"rule,omitempty"`
	Allocations []AllocationRecord `json:"allocations,omitempty"`
}

// AllocationRule describes how a non-project amount is split across
// target projects.
type AllocationRule struct {
	Method         Method   `json:"method"`
	TargetProjects []string `json:"target_projects"`
	// CustomPercentages maps project id to percentage. Required for
	// MethodCustom, where the values must cover every target and sum
	// to 100 within PercentageTolerance.
	CustomPercentages map[string]float64 `json:"custom_percentages,omitempty"`
	ParametersID      string             `json:"parameters_id,omitempty"`
}

// AllocationRecord is one project's share of an allocated non-project
// record. Derived data: regenerated whenever the parent record or its rule
// changes, never edited independently.
//
// Invariant: for a given parent record, the allocated amounts sum to the
// parent amount and the percentages sum to 100 (within tolerance).
type AllocationRecord struct {
	ID                 string    `json:"id"`
	NonProjectRecordID string    `json:"non_project_record_id"`
	ProjectID          string    `json:"project_id"`
	AllocatedAmount    float64   `json:"allocated_amount"`
	Percentage         float64   `json:"percentage"`
	Method             Method    `json:"method"`
	CreatedAt          time.Time `json:"created_at"`
}

// CarbonBudget is an optional per-stage emissions target for a project,
// in kg CO2e.
type CarbonBudget struct {
	Total   float64           `json:"total,omitempty"`
	ByStage map[Stage]float64 `json:"by_stage,omitempty"`
}

// Project is a film production. The engine reads budget, schedule, and crew
// data; it never writes back. Emission summaries are computed projections
// returned by Aggregate, not fields on the project.
type Project struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Budget       float64       `json:"budget"`
	CarbonBudget *CarbonBudget `json:"carbon_budget,omitempty"`
	Status       string        `json:"status,omitempty"`
	StartDate    *time.Time    `json:"start_date,omitempty"`
	EndDate      *time.Time    `json:"end_date,omitempty"`
	CrewSize     int           `json:"crew_size,omitempty"`
}

// DurationDays returns the project schedule length in whole days for
// allocation weighting. Missing bounds floor the weight to MinDurationDays
// so a scheduled-but-undated project still participates in duration splits.
func (p *Project) DurationDays() float64 {
	if p.StartDate == nil || p.EndDate == nil {
		return MinDurationDays
	}
	days := p.EndDate.Sub(*p.StartDate).Hours() / 24
	if days < MinDurationDays {
		return MinDurationDays
	}
	return days
}

// ScheduleDays returns the schedule length used for daily-emission
// averaging. Projects without both dates contribute
// DefaultProjectDurationDays.
func (p *Project) ScheduleDays() float64 {
	if p.StartDate == nil || p.EndDate == nil {
		return DefaultProjectDurationDays
	}
	days := p.EndDate.Sub(*p.StartDate).Hours() / 24
	if days < MinDurationDays {
		return MinDurationDays
	}
	return days
}

// StageBreakdown holds per-stage emission totals in kg CO2e.
type StageBreakdown struct {
	PreProduction  float64 `json:"pre_production"`
	Production     float64 `json:"production"`
	PostProduction float64 `json:"post_production"`
}

// Total returns the sum across stages.
func (b StageBreakdown) Total() float64 {
	return b.PreProduction + b.Production + b.PostProduction
}

// ScopeSplit holds scope 1/2/3 emission totals in kg CO2e.
type ScopeSplit struct {
	Scope1  float64 `json:"scope1"`
	Scope2  float64 `json:"scope2"`
	Scope3  float64 `json:"scope3"`
	Unknown float64 `json:"unknown,omitempty"`
}

// BudgetHealth classifies carbon-budget utilization.
type BudgetHealth string

const (
	HealthOK       BudgetHealth = "ok"
	HealthWarning  BudgetHealth = "warning"
	HealthCritical BudgetHealth = "critical"
	HealthExceeded BudgetHealth = "exceeded"
)

// StageBudgetStatus reports utilization of one stage's carbon budget.
type StageBudgetStatus struct {
	Stage              Stage        `json:"stage"`
	BudgetKg           float64      `json:"budget_kg"`
	EmissionsKg        float64      `json:"emissions_kg"`
	UtilizationPercent float64      `json:"utilization_percent"`
	Health             BudgetHealth `json:"health"`
}

// ProjectEmissionSummary is the computed emission projection for one
// project. It is replaced wholesale on every aggregation pass, never
// patched in place.
type ProjectEmissionSummary struct {
	ProjectID          string         `json:"project_id"`
	DirectEmissions    float64        `json:"direct_emissions"`
	AllocatedEmissions float64        `json:"allocated_emissions"`
	TotalEmissions     float64        `json:"total_emissions"`
	ByStage            StageBreakdown `json:"by_stage"`
	// OperationalAllocation tracks allocated operational amounts
	// separately from the stage breakdown: allocations carry no stage.
	OperationalAllocation float64             `json:"operational_allocation"`
	DirectSharePercent    float64             `json:"direct_share_percent"`
	AllocatedSharePercent float64             `json:"allocated_share_percent"`
	RecordCount           int                 `json:"record_count"`
	AllocationCount       int                 `json:"allocation_count"`
	CarbonBudgetStatus    []StageBudgetStatus `json:"carbon_budget_status,omitempty"`
}

// OrgSummary is the organization-wide rollup across all projects and
// operational activity.
type OrgSummary struct {
	TotalEmissions        float64        `json:"total_emissions"`
	DirectEmissions       float64        `json:"direct_emissions"`
	OperationalEmissions  float64        `json:"operational_emissions"`
	AllocatedEmissions    float64        `json:"allocated_emissions"`
	UnallocatedEmissions  float64        `json:"unallocated_emissions"`
	ByStage               StageBreakdown `json:"by_stage"`
	// Scopes is derived by HeuristicScopeSplit, not by per-record
	// classification. See that function for the compatibility caveat.
	Scopes                ScopeSplit `json:"scopes"`
	ProjectCount          int        `json:"project_count"`
	RecordCount           int        `json:"record_count"`
	NonProjectRecordCount int        `json:"non_project_record_count"`
	DirectSharePercent    float64    `json:"direct_share_percent"`
	AllocatedSharePercent float64    `json:"allocated_share_percent"`
	AverageProjectTotal   float64    `json:"average_project_total"`
	MinProjectTotal       float64    `json:"min_project_total"`
	MaxProjectTotal       float64    `json:"max_project_total"`
}

// AggregateResult bundles per-project summaries with the organization
// rollup. Both are freshly built on every call.
type AggregateResult struct {
	PerProject   map[string]*ProjectEmissionSummary `json:"per_project"`
	Organization *OrgSummary                        `json:"organization"`
}

// ScoreLevel is the qualitative competitiveness tier.
type ScoreLevel string

const (
	LevelExcellent        ScoreLevel = "excellent"
	LevelGood             ScoreLevel = "good"
	LevelAverage          ScoreLevel = "average"
	LevelNeedsImprovement ScoreLevel = "needs-improvement"
)

// CompetitivenessScore compares a project's carbon intensity against an
// industry benchmark. Pure function output; not a source of truth.
type CompetitivenessScore struct {
	ProjectID                string     `json:"project_id"`
	CarbonIntensity          float64    `json:"carbon_intensity"`
	IndustryAverage          float64    `json:"industry_average"`
	Percentile               float64    `json:"percentile"`
	Level                    ScoreLevel `json:"level"`
	Recommendations          []string   `json:"recommendations"`
	CertificationSuggestions []string   `json:"certification_suggestions"`
}

// EfficiencyMetrics are organization-wide intensity indicators.
type EfficiencyMetrics struct {
	CarbonPerBudget       float64 `json:"carbon_per_budget"`
	AverageDailyEmissions float64 `json:"average_daily_emissions"`
	TotalBudget           float64 `json:"total_budget"`
	TotalProjectDays      float64 `json:"total_project_days"`
}

// Benchmarks maps industry segment names to average carbon intensity
// (kg CO2e per currency unit). The "general" segment is consulted when a
// project has no segment-specific benchmark.
type Benchmarks map[string]float64
