// Package report assembles certification report documents from aggregated
// emission data. Documents are plain data objects: HTML and PDF rendering
// is an external collaborator that consumes them.
package report

import (
	"time"

	"github.com/filmops/carbonledger/internal/engine"
)

// Kind discriminates the report variants. Exactly one payload field on a
// Document is non-nil, matching its Kind.
type Kind string

const (
	KindAlbert      Kind = "albert"
	KindAdGreen     Kind = "adgreen"
	KindGHGProtocol Kind = "ghg-protocol"
)

// Kinds lists the supported report standards.
func Kinds() []Kind {
	return []Kind{KindAlbert, KindAdGreen, KindGHGProtocol}
}

// Document is the assembled report for one project under one standard.
type Document struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Albert      *AlbertReport      `json:"albert,omitempty"`
	AdGreen     *AdGreenReport     `json:"adgreen,omitempty"`
	GHGProtocol *GHGProtocolReport `json:"ghg_protocol,omitempty"`
}

// SourceTotal is one source bucket's emission total. A record may count
// toward several buckets (air travel is both transport and travel), so
// bucket totals legally overlap and do not sum to the report total.
type SourceTotal struct {
	Bucket      engine.Bucket `json:"bucket"`
	EmissionsKg float64       `json:"emissions_kg"`
	RecordCount int           `json:"record_count"`
}

// AlbertReport is an albert-style certification breakdown: per-scope
// totals from per-record classification and overlapping source-bucket
// totals from substring matching on category ids.
type AlbertReport struct {
	TotalEmissions        float64          `json:"total_emissions"`
	DirectEmissions       float64          `json:"direct_emissions"`
	OperationalAllocation float64          `json:"operational_allocation"`
	ByScope               engine.ScopeSplit `json:"by_scope"`
	Sources               []SourceTotal    `json:"sources"`
}

// AdGreenReport is an adgreen-style production footprint normalized by
// crew labor.
type AdGreenReport struct {
	TotalEmissions      float64  `json:"total_emissions"`
	ShootDays           int      `json:"shoot_days"`
	Locations           []string `json:"locations"`
	CrewSize            int      `json:"crew_size"`
	CrewDays            int      `json:"crew_days"`
	EmissionsPerCrewDay float64  `json:"emissions_per_crew_day"`
}

// GHGProtocolReport is a GHG-Protocol/ISO-14064 style inventory. The
// per-record scope inventory is canonical; LegacyScopeSplit reproduces the
// historical stage-ratio approximation for output compatibility and is
// always flagged as heuristic.
type GHGProtocolReport struct {
	TotalEmissions  float64               `json:"total_emissions"`
	ByScope         engine.ScopeSplit     `json:"by_scope"`
	ByStage         engine.StageBreakdown `json:"by_stage"`
	LegacyScopeSplit HeuristicSplit       `json:"legacy_scope_split"`
}

// HeuristicSplit carries the stage-ratio scope approximation together
// with an explicit marker so consumers cannot mistake it for a
// per-record classification.
type HeuristicSplit struct {
	Heuristic bool              `json:"heuristic"`
	Scopes    engine.ScopeSplit `json:"scopes"`
}
