package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/filmops/carbonledger/internal/engine"
	"github.com/filmops/carbonledger/internal/logging"
)

// Input is the snapshot slice an assembler works from: one project, its
// direct records, and the allocation records pointing at it.
type Input struct {
	Project     *engine.Project
	Records     []engine.ProjectEmissionRecord
	Allocations []engine.AllocationRecord
}

// Assembler builds report documents. Identifier and timestamp sources are
// injectable for deterministic tests.
type Assembler struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the document timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDSource overrides document id generation.
func WithIDSource(newID func() string) Option {
	return func(a *Assembler) { a.newID = newID }
}

// NewAssembler returns an Assembler with the given options applied.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the report document for the given standard. An
// unrecognized kind fails with a *engine.ValidationError; everything else
// is a pure fold over the input snapshot.
func (a *Assembler) Assemble(ctx context.Context, kind Kind, in Input) (*Document, error) {
	logger := logging.FromContext(ctx).With().
		Str("component", "report").
		Str("operation", "Assemble").
		Str("standard", string(kind)).
		Str("project_id", in.Project.ID).
		Logger()

	doc := &Document{
		ID:          a.newID(),
		Kind:        kind,
		ProjectID:   in.Project.ID,
		ProjectName: in.Project.Name,
		GeneratedAt: a.now(),
	}

	switch kind {
	case KindAlbert:
		doc.Albert = buildAlbert(in)
	case KindAdGreen:
		doc.AdGreen = buildAdGreen(in)
	case KindGHGProtocol:
		doc.GHGProtocol = buildGHGProtocol(in)
	default:
		return nil, engine.NewValidationError(engine.ConstraintUnknownStandard,
			"report standard %q is not one of albert, adgreen, ghg-protocol", kind)
	}

	logger.Debug().Int("records", len(in.Records)).Msg("assembled report document")
	return doc, nil
}

// Assemble runs a default Assembler. See Assembler.Assemble.
func Assemble(ctx context.Context, kind Kind, in Input) (*Document, error) {
	return NewAssembler().Assemble(ctx, kind, in)
}

func directAndAllocated(in Input) (direct, allocated float64) {
	for _, r := range in.Records {
		direct += r.Amount
	}
	for _, a := range in.Allocations {
		allocated += a.AllocatedAmount
	}
	return direct, allocated
}

// buildAlbert sums per-scope totals from per-record classification and
// per-bucket totals from the overlapping tag set. Scope tagging here is
// the canonical per-record method, not the stage-ratio heuristic.
func buildAlbert(in Input) *AlbertReport {
	direct, allocated := directAndAllocated(in)

	var scopes engine.ScopeSplit
	bucketKg := make(map[engine.Bucket]float64)
	bucketCount := make(map[engine.Bucket]int)

	for _, r := range in.Records {
		c := engine.Classify(r.CategoryID)
		switch c.Scope {
		case engine.Scope1:
			scopes.Scope1 += r.Amount
		case engine.Scope2:
			scopes.Scope2 += r.Amount
		case engine.Scope3:
			scopes.Scope3 += r.Amount
		case engine.ScopeUnknown:
			scopes.Unknown += r.Amount
		}
		for _, tag := range c.Buckets {
			if tag == engine.BucketUnclassified {
				continue
			}
			bucketKg[tag] += r.Amount
			bucketCount[tag]++
		}
	}

	sources := make([]SourceTotal, 0, len(engine.SourceBuckets()))
	for _, b := range engine.SourceBuckets() {
		sources = append(sources, SourceTotal{
			Bucket:      b,
			EmissionsKg: bucketKg[b],
			RecordCount: bucketCount[b],
		})
	}

	return &AlbertReport{
		TotalEmissions:        direct + allocated,
		DirectEmissions:       direct,
		OperationalAllocation: allocated,
		ByScope:               scopes,
		Sources:               sources,
	}
}

// buildAdGreen derives shoot days from unique record dates, unique
// non-empty locations, and crew-days as shoot days times crew size.
func buildAdGreen(in Input) *AdGreenReport {
	direct, allocated := directAndAllocated(in)
	total := direct + allocated

	dates := make(map[string]bool)
	locationSet := make(map[string]bool)
	for _, r := range in.Records {
		if !r.Date.IsZero() {
			dates[r.Date.Format("2006-01-02")] = true
		}
		if r.Location != "" {
			locationSet[r.Location] = true
		}
	}

	locations := make([]string, 0, len(locationSet))
	for loc := range locationSet {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	shootDays := len(dates)
	crewDays := shootDays * in.Project.CrewSize

	perCrewDay := 0.0
	if crewDays > 0 {
		perCrewDay = total / float64(crewDays)
	}

	return &AdGreenReport{
		TotalEmissions:      total,
		ShootDays:           shootDays,
		Locations:           locations,
		CrewSize:            in.Project.CrewSize,
		CrewDays:            crewDays,
		EmissionsPerCrewDay: perCrewDay,
	}
}

// buildGHGProtocol produces the scope inventory both ways: per-record
// classification (canonical) and the legacy stage-ratio split, the latter
// explicitly flagged.
func buildGHGProtocol(in Input) *GHGProtocolReport {
	direct, allocated := directAndAllocated(in)
	total := direct + allocated

	var scopes engine.ScopeSplit
	var byStage engine.StageBreakdown
	for _, r := range in.Records {
		switch engine.Classify(r.CategoryID).Scope {
		case engine.Scope1:
			scopes.Scope1 += r.Amount
		case engine.Scope2:
			scopes.Scope2 += r.Amount
		case engine.Scope3:
			scopes.Scope3 += r.Amount
		case engine.ScopeUnknown:
			scopes.Unknown += r.Amount
		}
		switch r.Stage {
		case engine.StagePreProduction:
			byStage.PreProduction += r.Amount
		case engine.StageProduction, "":
			byStage.Production += r.Amount
		case engine.StagePostProduction:
			byStage.PostProduction += r.Amount
		}
	}

	return &GHGProtocolReport{
		TotalEmissions: total,
		ByScope:        scopes,
		ByStage:        byStage,
		LegacyScopeSplit: HeuristicSplit{
			Heuristic: true,
			Scopes:    engine.HeuristicScopeSplit(byStage, total),
		},
	}
}
