package engine

import (
	"context"
	"crypto/rand"
	"io"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/filmops/carbonledger/internal/logging"
)

// Allocator produces AllocationRecords for non-project emission records.
// The zero-value-adjacent NewAllocator configuration uses wall-clock time
// and crypto randomness for record ids; tests inject both for determinism.
type Allocator struct {
	now     func() time.Time
	entropy io.Reader
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithClock overrides the timestamp source for generated records.
func WithClock(now func() time.Time) AllocatorOption {
	return func(a *Allocator) { a.now = now }
}

// WithEntropy overrides the randomness source for ULID generation.
func WithEntropy(entropy io.Reader) AllocatorOption {
	return func(a *Allocator) { a.entropy = entropy }
}

// NewAllocator returns an Allocator with the given options applied.
func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{
		now:     time.Now,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate distributes record.Amount across the rule's target projects.
//
// The returned records are in targetProjects order, their amounts sum to
// record.Amount within AmountTolerance, and their percentages sum to 100
// within PercentageTolerance. Percentages are always recomputed from the
// shares, never copied from rule weights, so amounts and percentages stay
// mutually consistent.
//
// Allocate is a pure computation: it never persists anything and never
// mutates record, rule, or projects. It returns a *ValidationError when
// the rule violates its preconditions: empty target set, a target missing
// from projects, non-positive amount, unknown method, or custom
// percentages that do not cover every target and sum to 100.
func (a *Allocator) Allocate(
	ctx context.Context,
	record NonProjectEmissionRecord,
	rule AllocationRule,
	projects map[string]*Project,
) ([]AllocationRecord, error) {
	logger := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "Allocate").
		Str("record_id", record.ID).
		Logger()

	if record.Amount <= 0 {
		return nil, NewValidationError(ConstraintNonPositiveAmount,
			"record %s has amount %.4f; allocation requires a positive amount",
			record.ID, record.Amount)
	}
	if len(rule.TargetProjects) == 0 {
		return nil, NewValidationError(ConstraintEmptyTargets,
			"rule for record %s names no target projects", record.ID)
	}

	targets := make([]*Project, 0, len(rule.TargetProjects))
	seen := make(map[string]bool, len(rule.TargetProjects))
	for _, id := range rule.TargetProjects {
		p, ok := projects[id]
		if !ok {
			return nil, NewValidationError(ConstraintUnknownProject,
				"target project %q is not a known project", id)
		}
		if seen[id] {
			return nil, NewValidationError(ConstraintDuplicateProject,
				"target project %q appears more than once", id)
		}
		seen[id] = true
		targets = append(targets, p)
	}

	shares, err := computeShares(record.Amount, rule, targets)
	if err != nil {
		return nil, err
	}

	createdAt := a.now()
	records := make([]AllocationRecord, len(targets))
	for i, p := range targets {
		records[i] = AllocationRecord{
			ID:                 ulid.MustNew(ulid.Timestamp(createdAt), a.entropy).String(),
			NonProjectRecordID: record.ID,
			ProjectID:          p.ID,
			AllocatedAmount:    shares[i],
			Percentage:         safePercent(shares[i], record.Amount),
			Method:             rule.Method,
			CreatedAt:          createdAt,
		}
	}

	logger.Debug().
		Str("method", string(rule.Method)).
		Int("targets", len(records)).
		Float64("amount", record.Amount).
		Msg("allocated non-project record")

	return records, nil
}

// Allocate runs a default Allocator. See Allocator.Allocate.
func Allocate(
	ctx context.Context,
	record NonProjectEmissionRecord,
	rule AllocationRule,
	projects map[string]*Project,
) ([]AllocationRecord, error) {
	return NewAllocator().Allocate(ctx, record, rule, projects)
}

// computeShares resolves the per-target amounts for the rule's method.
func computeShares(amount float64, rule AllocationRule, targets []*Project) ([]float64, error) {
	switch rule.Method {
	case MethodEqual:
		return equalShares(amount, len(targets)), nil
	case MethodBudget:
		weights := make([]float64, len(targets))
		for i, p := range targets {
			if p.Budget > 0 {
				weights[i] = p.Budget
			}
		}
		return weightedShares(amount, weights), nil
	case MethodDuration:
		weights := make([]float64, len(targets))
		for i, p := range targets {
			weights[i] = p.DurationDays()
		}
		return weightedShares(amount, weights), nil
	case MethodCustom:
		return customShares(amount, rule, targets)
	default:
		return nil, NewValidationError(ConstraintUnknownMethod,
			"allocation method %q is not one of equal, budget, duration, custom",
			rule.Method)
	}
}

// equalShares splits amount evenly across n targets. Shares round to
// ShareIncrement and the rounding remainder lands on the first target so
// the shares sum exactly to amount.
func equalShares(amount float64, n int) []float64 {
	base := roundToIncrement(amount/float64(n), ShareIncrement)
	shares := make([]float64, n)
	for i := range shares {
		shares[i] = base
	}
	shares[0] += amount - base*float64(n)
	return shares
}

// weightedShares splits amount proportionally to weights. A zero weight
// sum falls back to an equal split: a rule that asks for budget or
// duration weighting across unweighted projects still allocates.
func weightedShares(amount float64, weights []float64) []float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return equalShares(amount, len(weights))
	}

	shares := make([]float64, len(weights))
	var assigned float64
	for i, w := range weights {
		shares[i] = amount * w / sum
		assigned += shares[i]
	}
	// Fold float drift into the first share to keep the sum exact.
	if drift := amount - assigned; math.Abs(drift) > 0 {
		shares[0] += drift
	}
	return shares
}

// customShares applies caller-specified percentages. The percentages must
// cover every target, name no other project, and sum to 100 within
// PercentageTolerance.
func customShares(amount float64, rule AllocationRule, targets []*Project) ([]float64, error) {
	if len(rule.CustomPercentages) != len(targets) {
		return nil, NewValidationError(ConstraintPercentageCoverage,
			"custom percentages cover %d projects but the rule targets %d",
			len(rule.CustomPercentages), len(targets))
	}

	var sum float64
	shares := make([]float64, len(targets))
	for i, p := range targets {
		pct, ok := rule.CustomPercentages[p.ID]
		if !ok {
			return nil, NewValidationError(ConstraintPercentageCoverage,
				"custom percentages missing target project %q", p.ID)
		}
		sum += pct
		shares[i] = amount * pct / 100
	}
	if math.Abs(sum-100) > PercentageTolerance {
		return nil, NewValidationError(ConstraintPercentageSum,
			"custom percentages sum to %.4f, expected 100 within %.2f",
			sum, PercentageTolerance)
	}
	return shares, nil
}
