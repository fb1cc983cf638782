package engine

import (
	"context"

	"github.com/filmops/carbonledger/internal/logging"
)

// tierData is the fixed guidance attached to a score level. These lists
// are data, not computed text: downstream report templates and
// compatibility tests depend on the exact strings.
type tierData struct {
	recommendations []string
	certifications  []string
}

var scoreTiers = map[ScoreLevel]tierData{
	LevelExcellent: {
		recommendations: []string{
			"Maintain current sustainability practices across all productions",
			"Publish your carbon performance to strengthen green procurement bids",
			"Mentor partner productions on low-carbon workflows",
		},
		certifications: []string{"albert", "adgreen", "carbon-trust"},
	},
	LevelGood: {
		recommendations: []string{
			"Switch remaining diesel generators to battery or grid power",
			"Consolidate crew transport with shared shuttles and rail travel",
			"Set per-stage carbon budgets to lock in current performance",
		},
		certifications: []string{"albert", "adgreen"},
	},
	LevelAverage: {
		recommendations: []string{
			"Audit energy use on set and move to renewable electricity tariffs",
			"Introduce a reuse policy for set materials and costumes",
			"Track catering emissions and increase plant-based menu options",
		},
		certifications: []string{"albert"},
	},
	LevelNeedsImprovement: {
		recommendations: []string{
			"Establish baseline emission tracking for every production stage",
			"Replace short-haul flights with rail for cast and crew travel",
			"Appoint a sustainability lead with authority over procurement",
		},
		certifications: []string{"albert"},
	},
}

// LevelForPercentile maps a percentile to its qualitative tier.
//
// Thresholds: excellent at 80 and above, good at 60, average at 40,
// needs-improvement below 40.
func LevelForPercentile(percentile float64) ScoreLevel {
	switch {
	case percentile >= 80:
		return LevelExcellent
	case percentile >= 60:
		return LevelGood
	case percentile >= 40:
		return LevelAverage
	default:
		return LevelNeedsImprovement
	}
}

// Recommendations returns the fixed guidance strings for a tier.
func Recommendations(level ScoreLevel) []string {
	tier := scoreTiers[level]
	out := make([]string, len(tier.recommendations))
	copy(out, tier.recommendations)
	return out
}

// CertificationSuggestions returns the fixed certification standards
// suggested for a tier.
func CertificationSuggestions(level ScoreLevel) []string {
	tier := scoreTiers[level]
	out := make([]string, len(tier.certifications))
	copy(out, tier.certifications)
	return out
}

// Score derives a competitiveness score for one project from its emission
// summary and the configured industry benchmarks.
//
// carbonIntensity is total emissions over the project budget, with a zero
// or missing budget floored to MinBudgetFloor. The percentile is
// 100 - (intensity / industryAverage) * PercentileSlope, clamped to
// [0, 100]; the industry average falls back to DefaultIndustryAverage when
// benchmarks carries no "general" entry.
func Score(
	ctx context.Context,
	project *Project,
	summary *ProjectEmissionSummary,
	benchmarks Benchmarks,
) *CompetitivenessScore {
	logger := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "Score").
		Str("project_id", project.ID).
		Logger()

	budget := project.Budget
	if budget < MinBudgetFloor {
		budget = MinBudgetFloor
	}
	intensity := summary.TotalEmissions / budget

	industryAverage := DefaultIndustryAverage
	if avg, ok := benchmarks[GeneralBenchmarkSegment]; ok && avg > 0 {
		industryAverage = avg
	}

	percentile := 100 - (intensity/industryAverage)*PercentileSlope
	percentile = clamp(percentile, 0, 100)

	level := LevelForPercentile(percentile)

	logger.Debug().
		Float64("carbon_intensity", intensity).
		Float64("percentile", percentile).
		Str("level", string(level)).
		Msg("scored project")

	return &CompetitivenessScore{
		ProjectID:                project.ID,
		CarbonIntensity:          intensity,
		IndustryAverage:          industryAverage,
		Percentile:               percentile,
		Level:                    level,
		Recommendations:          Recommendations(level),
		CertificationSuggestions: CertificationSuggestions(level),
	}
}

// OrgEfficiency computes organization-wide intensity analogues of the
// per-project score: emissions per unit of total budget and per project
// day. Undated projects contribute DefaultProjectDurationDays. Zero
// denominators yield 0.
func OrgEfficiency(org *OrgSummary, projects []*Project) *EfficiencyMetrics {
	var totalBudget, totalDays float64
	for _, p := range projects {
		totalBudget += p.Budget
		totalDays += p.ScheduleDays()
	}

	return &EfficiencyMetrics{
		CarbonPerBudget:       safeRatio(org.TotalEmissions, totalBudget),
		AverageDailyEmissions: safeRatio(org.TotalEmissions, totalDays),
		TotalBudget:           totalBudget,
		TotalProjectDays:      totalDays,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
