package engine

// Tolerances for the allocation conservation invariants.
const (
	// AmountTolerance bounds the drift allowed between a non-project
	// amount and the sum of its allocation shares.
	AmountTolerance = 1e-6

	// PercentageTolerance bounds the drift allowed on percentage sums,
	// both for custom-rule validation and for the output invariant.
	PercentageTolerance = 0.01

	// ShareIncrement is the rounding increment for equal shares.
	// Equal splits round to two decimals and assign the remainder to the
	// first target so the shares sum exactly to the parent amount.
	ShareIncrement = 0.01
)

// Duration handling for allocation weighting and daily averages.
const (
	// MinDurationDays is the floor weight for projects missing a
	// schedule bound in duration-based allocation.
	MinDurationDays = 1.0

	// DefaultProjectDurationDays is the assumed schedule length for
	// undated projects in daily-emission averages.
	DefaultProjectDurationDays = 30.0
)

// Scoring constants.
const (
	// DefaultIndustryAverage is the general-segment carbon intensity
	// (kg CO2e per currency unit) used when no benchmark is supplied.
	DefaultIndustryAverage = 0.015

	// MinBudgetFloor replaces a zero or missing budget in the carbon
	// intensity denominator. A deliberate, documented approximation:
	// an unbudgeted project scores as if it had a budget of one unit.
	MinBudgetFloor = 1.0

	// PercentileSlope scales the intensity-to-benchmark ratio into the
	// percentile formula: 100 - ratio*PercentileSlope, clamped to [0,100].
	PercentileSlope = 50.0
)

// Carbon-budget utilization thresholds, in percent.
const (
	HealthThresholdWarning  = 80.0
	HealthThresholdCritical = 90.0
	HealthThresholdExceeded = 100.0
)

// Heuristic scope-split ratios. See HeuristicScopeSplit.
const (
	heuristicScope1ProductionShare = 0.30
	heuristicScope2PreProdShare    = 0.40
)

// GeneralBenchmarkSegment is the fallback key in a Benchmarks map.
const GeneralBenchmarkSegment = "general"
