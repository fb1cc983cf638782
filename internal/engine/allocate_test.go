package engine

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject(id string, budget float64, days int) *Project {
	p := &Project{ID: id, Name: id, Budget: budget}
	if days > 0 {
		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, days)
		p.StartDate = &start
		p.EndDate = &end
	}
	return p
}

func projectMap(projects ...*Project) map[string]*Project {
	m := make(map[string]*Project, len(projects))
	for _, p := range projects {
		m[p.ID] = p
	}
	return m
}

func testAllocator() *Allocator {
	fixed := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewAllocator(
		WithClock(func() time.Time { return fixed }),
		WithEntropy(rand.New(rand.NewSource(1))), //nolint:gosec // deterministic test ids
	)
}

func TestAllocate_Equal(t *testing.T) {
	record := NonProjectEmissionRecord{ID: "np-1", CategoryID: "office-electricity", Amount: 100}
	rule := AllocationRule{Method: MethodEqual, TargetProjects: []string{"A", "B", "C"}}
	projects := projectMap(testProject("A", 0, 0), testProject("B", 0, 0), testProject("C", 0, 0))

	got, err := testAllocator().Allocate(context.Background(), record, rule, projects)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Remainder lands on the first target so the sum is exact.
	assert.InDelta(t, 33.34, got[0].AllocatedAmount, 1e-9)
	assert.InDelta(t, 33.33, got[1].AllocatedAmount, 1e-9)
	assert.InDelta(t, 33.33, got[2].AllocatedAmount, 1e-9)

	var sum float64
	for _, a := range got {
		sum += a.AllocatedAmount
	}
	assert.InDelta(t, 100, sum, AmountTolerance)
}

func TestAllocate_DurationEndToEnd(t *testing.T) {
	record := NonProjectEmissionRecord{ID: "np-2", CategoryID: "office-heating", Amount: 900}
	rule := AllocationRule{Method: MethodDuration, TargetProjects: []string{"P1", "P2", "P3"}}
	projects := projectMap(
		testProject("P1", 0, 10),
		testProject("P2", 0, 20),
		testProject("P3", 0, 30),
	)

	got, err := testAllocator().Allocate(context.Background(), record, rule, projects)
	require.NoError(t, err)
	require.Len(t, got, 3)

	wantAmounts := []float64{150, 300, 450}
	wantPercents := []float64{16.67, 33.33, 50.00}
	for i, a := range got {
		assert.InDelta(t, wantAmounts[i], a.AllocatedAmount, 1e-6, "amount for %s", a.ProjectID)
		assert.InDelta(t, wantPercents[i], a.Percentage, PercentageTolerance, "percentage for %s", a.ProjectID)
	}

	// Output order follows targetProjects order.
	assert.Equal(t, "P1", got[0].ProjectID)
	assert.Equal(t, "P2", got[1].ProjectID)
	assert.Equal(t, "P3", got[2].ProjectID)
}

func TestAllocate_BudgetWeighted(t *testing.T) {
	record := NonProjectEmissionRecord{ID: "np-3", CategoryID: "hq-energy", Amount: 600}
	rule := AllocationRule{Method: MethodBudget, TargetProjects: []string{"A", "B"}}
	projects := projectMap(testProject("A", 100000, 0), testProject("B", 200000, 0))

	got, err := testAllocator().Allocate(context.Background(), record, rule, projects)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.InDelta(t, 200, got[0].AllocatedAmount, 1e-6)
	assert.InDelta(t, 400, got[1].AllocatedAmount, 1e-6)
	assert.InDelta(t, 33.33, got[0].Percentage, PercentageTolerance)
	assert.InDelta(t, 66.67, got[1].Percentage, PercentageTolerance)
}

func TestAllocate_ZeroBudgetFallsBackToEqual(t *testing.T) {
	record := NonProjectEmissionRecord{ID: "np-4", CategoryID: "hq-energy", Amount: 100}
	projects := projectMap(testProject("A", 0, 0), testProject("B", 0, 0))

	budgetRule := AllocationRule{Method: MethodBudget, TargetProjects: []string{"A", "B"}}
	equalRule := AllocationRule{Method: MethodEqual, TargetProjects: []string{"A", "B"}}

	gotBudget, err := testAllocator().Allocate(context.Background(), record, budgetRule, projects)
	require.NoError(t, err)
	gotEqual, err := testAllocator().Allocate(context.Background(), record, equalRule, projects)
	require.NoError(t, err)

	require.Len(t, gotBudget, len(gotEqual))
	for i := range gotBudget {
		assert.Equal(t, gotEqual[i].ProjectID, gotBudget[i].ProjectID)
		assert.InDelta(t, gotEqual[i].AllocatedAmount, gotBudget[i].AllocatedAmount, 1e-9)
		assert.InDelta(t, gotEqual[i].Percentage, gotBudget[i].Percentage, 1e-9)
	}
}

func TestAllocate_Custom(t *testing.T) {
	record := NonProjectEmissionRecord{ID: "np-5", CategoryID: "corporate-travel", Amount: 1000}
	rule := AllocationRule{
		Method:         MethodCustom,
		TargetProjects: []string{"A", "B"},
		CustomPercentages: map[string]float64{
			"A": 70,
			"B": 30,
		},
	}
	projects := projectMap(testProject("A", 0, 0), testProject("B", 0, 0))

	got, err := testAllocator().Allocate(context.Background(), record, rule, projects)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.InDelta(t, 700, got[0].AllocatedAmount, 1e-9)
	assert.InDelta(t, 300, got[1].AllocatedAmount, 1e-9)
	assert.InDelta(t, 70, got[0].Percentage, 1e-9)
	assert.InDelta(t, 30, got[1].Percentage, 1e-9)
}

func TestAllocate_ValidationErrors(t *testing.T) {
	projects := projectMap(testProject("A", 0, 0), testProject("B", 0, 0))

	tests := []struct {
		name           string
		record         NonProjectEmissionRecord
		rule           AllocationRule
		wantConstraint string
	}{
		{
			name:           "empty target set",
			record:         NonProjectEmissionRecord{ID: "r", Amount: 100},
			rule:           AllocationRule{Method: MethodEqual},
			wantConstraint: ConstraintEmptyTargets,
		},
		{
			name:           "unknown target project",
			record:         NonProjectEmissionRecord{ID: "r", Amount: 100},
			rule:           AllocationRule{Method: MethodEqual, TargetProjects: []string{"A", "ghost"}},
			wantConstraint: ConstraintUnknownProject,
		},
		{
			name:           "duplicate target project",
			record:         NonProjectEmissionRecord{ID: "r", Amount: 100},
			rule:           AllocationRule{Method: MethodEqual, TargetProjects: []string{"A", "A"}},
			wantConstraint: ConstraintDuplicateProject,
		},
		{
			name:           "zero amount",
			record:         NonProjectEmissionRecord{ID: "r", Amount: 0},
			rule:           AllocationRule{Method: MethodEqual, TargetProjects: []string{"A"}},
			wantConstraint: ConstraintNonPositiveAmount,
		},
		{
			name:           "negative amount",
			record:         NonProjectEmissionRecord{ID: "r", Amount: -5},
			rule:           AllocationRule{Method: MethodEqual, TargetProjects: []string{"A"}},
			wantConstraint: ConstraintNonPositiveAmount,
		},
		{
			name:           "unknown method",
			record:         NonProjectEmissionRecord{ID: "r", Amount: 100},
			rule:           AllocationRule{Method: "weighted", TargetProjects: []string{"A"}},
			wantConstraint: ConstraintUnknownMethod,
		},
		{
			name:   "custom percentages sum below 100",
			record: NonProjectEmissionRecord{ID: "r", Amount: 100},
			rule: AllocationRule{
				Method:            MethodCustom,
				TargetProjects:    []string{"A", "B"},
				CustomPercentages: map[string]float64{"A": 60, "B": 30},
			},
			wantConstraint: ConstraintPercentageSum,
		},
		{
			name:   "custom percentages missing a target",
			record: NonProjectEmissionRecord{ID: "r", Amount: 100},
			rule: AllocationRule{
				Method:            MethodCustom,
				TargetProjects:    []string{"A", "B"},
				CustomPercentages: map[string]float64{"A": 100},
			},
			wantConstraint: ConstraintPercentageCoverage,
		},
		{
			name:   "custom percentages name a non-target",
			record: NonProjectEmissionRecord{ID: "r", Amount: 100},
			rule: AllocationRule{
				Method:            MethodCustom,
				TargetProjects:    []string{"A"},
				CustomPercentages: map[string]float64{"A": 60, "B": 40},
			},
			wantConstraint: ConstraintPercentageCoverage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(context.Background(), tt.record, tt.rule, projects)

			require.Error(t, err)
			assert.Nil(t, got, "no partial output on validation failure")

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantConstraint, ve.Constraint)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestAllocate_Conservation(t *testing.T) {
	// Conservation holds for every method over awkward amounts.
	projects := projectMap(
		testProject("A", 120000, 12),
		testProject("B", 45000, 33),
		testProject("C", 0, 7),
	)
	rules := []AllocationRule{
		{Method: MethodEqual, TargetProjects: []string{"A", "B", "C"}},
		{Method: MethodBudget, TargetProjects: []string{"A", "B", "C"}},
		{Method: MethodDuration, TargetProjects: []string{"A", "B", "C"}},
		{
			Method:            MethodCustom,
			TargetProjects:    []string{"A", "B", "C"},
			CustomPercentages: map[string]float64{"A": 12.5, "B": 37.5, "C": 50},
		},
	}
	amounts := []float64{0.07, 1, 99.99, 1234.567, 1e6}

	for _, rule := range rules {
		for _, amount := range amounts {
			record := NonProjectEmissionRecord{ID: "np", CategoryID: "hq", Amount: amount}
			got, err := Allocate(context.Background(), record, rule, projects)
			require.NoError(t, err, "method=%s amount=%v", rule.Method, amount)

			var amountSum, pctSum float64
			for _, a := range got {
				amountSum += a.AllocatedAmount
				pctSum += a.Percentage
				assert.Equal(t, rule.Method, a.Method)
				assert.Equal(t, "np", a.NonProjectRecordID)
			}
			assert.InDelta(t, amount, amountSum, AmountTolerance,
				"method=%s amount=%v", rule.Method, amount)
			assert.InDelta(t, 100, pctSum, PercentageTolerance,
				"method=%s amount=%v", rule.Method, amount)
		}
	}
}

func TestAllocate_RecordMetadata(t *testing.T) {
	fixed := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	alloc := NewAllocator(
		WithClock(func() time.Time { return fixed }),
		WithEntropy(rand.New(rand.NewSource(42))), //nolint:gosec // deterministic test ids
	)

	record := NonProjectEmissionRecord{ID: "np-9", CategoryID: "hq-energy", Amount: 50}
	rule := AllocationRule{Method: MethodEqual, TargetProjects: []string{"A", "B"}}
	projects := projectMap(testProject("A", 0, 0), testProject("B", 0, 0))

	got, err := alloc.Allocate(context.Background(), record, rule, projects)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, a := range got {
		assert.NotEmpty(t, a.ID)
		assert.False(t, ids[a.ID], "allocation ids must be unique")
		ids[a.ID] = true
		assert.Equal(t, fixed, a.CreatedAt)
	}
}

func TestAllocate_DoesNotMutateInputs(t *testing.T) {
	record := NonProjectEmissionRecord{ID: "np-10", CategoryID: "hq", Amount: 100}
	rule := AllocationRule{Method: MethodEqual, TargetProjects: []string{"A", "B"}}
	projects := projectMap(testProject("A", 500, 0), testProject("B", 900, 0))

	_, err := Allocate(context.Background(), record, rule, projects)
	require.NoError(t, err)

	assert.Nil(t, record.Allocations)
	assert.False(t, record.IsAllocated)
	assert.InDelta(t, 500.0, projects["A"].Budget, 0)
	assert.InDelta(t, 900.0, projects["B"].Budget, 0)
}

func TestProject_DurationDays(t *testing.T) {
	assert.InDelta(t, MinDurationDays, testProject("x", 0, 0).DurationDays(), 0,
		"missing bounds floor to the minimum weight")
	assert.InDelta(t, 20, testProject("y", 0, 20).DurationDays(), 1e-9)

	// Inverted schedule still floors at the minimum.
	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -3)
	p := &Project{ID: "z", StartDate: &start, EndDate: &end}
	assert.InDelta(t, MinDurationDays, p.DurationDays(), 0)
}

func BenchmarkAllocate(b *testing.B) {
	record := NonProjectEmissionRecord{ID: "np", CategoryID: "hq", Amount: 900}
	rule := AllocationRule{Method: MethodDuration, TargetProjects: []string{"P1", "P2", "P3"}}
	projects := projectMap(
		testProject("P1", 0, 10),
		testProject("P2", 0, 20),
		testProject("P3", 0, 30),
	)
	alloc := NewAllocator()

	for i := 0; i < b.N; i++ {
		if _, err := alloc.Allocate(context.Background(), record, rule, projects); err != nil {
			b.Fatal(err)
		}
	}
}

func TestEqualShares_RemainderToFirst(t *testing.T) {
	shares := equalShares(100, 3)
	require.Len(t, shares, 3)
	assert.InDelta(t, 33.34, shares[0], 1e-9)
	assert.InDelta(t, 33.33, shares[1], 1e-9)
	assert.InDelta(t, 33.33, shares[2], 1e-9)
	assert.InDelta(t, 100, shares[0]+shares[1]+shares[2], AmountTolerance)

	// Evenly divisible amounts need no correction.
	shares = equalShares(90, 3)
	for _, s := range shares {
		assert.InDelta(t, 30, s, 1e-9)
	}
}

func TestWeightedShares_DriftFolding(t *testing.T) {
	shares := weightedShares(100, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
	var sum float64
	for _, s := range shares {
		sum += s
	}
	assert.True(t, math.Abs(sum-100) <= AmountTolerance)
}
