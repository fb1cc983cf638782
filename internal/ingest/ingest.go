// Package ingest loads emission record snapshots from JSON datasets. It is
// the read side of the persistence collaborator: it produces the in-memory
// arrays the engine consumes and performs referential validation before
// any computation runs.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/filmops/carbonledger/internal/config"
	"github.com/filmops/carbonledger/internal/engine"
)

// Dataset is one consistent snapshot of the record set. Callers load a
// dataset, hand its slices to the engine, and persist whatever the engine
// returns; the engine itself never touches storage.
type Dataset struct {
	Projects          []*engine.Project                 `json:"projects"`
	ProjectRecords    []engine.ProjectEmissionRecord    `json:"project_records"`
	NonProjectRecords []engine.NonProjectEmissionRecord `json:"non_project_records"`
	AllocationRecords []engine.AllocationRecord         `json:"allocation_records"`
}

// Load reads and validates a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return &ds, nil
}

// ProjectMap returns the dataset's projects keyed by id.
func (d *Dataset) ProjectMap() map[string]*engine.Project {
	m := make(map[string]*engine.Project, len(d.Projects))
	for _, p := range d.Projects {
		m[p.ID] = p
	}
	return m
}

// NonProjectRecord returns the non-project record with the given id.
func (d *Dataset) NonProjectRecord(id string) (engine.NonProjectEmissionRecord, bool) {
	for _, r := range d.NonProjectRecords {
		if r.ID == id {
			return r, true
		}
	}
	return engine.NonProjectEmissionRecord{}, false
}

// Validate checks referential integrity: unique project ids, records
// pointing at known projects, and allocations pointing at known
// non-project records.
func (d *Dataset) Validate() error {
	projects := make(map[string]bool, len(d.Projects))
	for _, p := range d.Projects {
		if p.ID == "" {
			return fmt.Errorf("project with empty id")
		}
		if projects[p.ID] {
			return fmt.Errorf("duplicate project id %q", p.ID)
		}
		projects[p.ID] = true
	}

	for _, r := range d.ProjectRecords {
		if !projects[r.ProjectID] {
			return fmt.Errorf("record %s references unknown project %q", r.ID, r.ProjectID)
		}
	}

	nonProject := make(map[string]bool, len(d.NonProjectRecords))
	for _, r := range d.NonProjectRecords {
		if r.ID == "" {
			return fmt.Errorf("non-project record with empty id")
		}
		if nonProject[r.ID] {
			return fmt.Errorf("duplicate non-project record id %q", r.ID)
		}
		nonProject[r.ID] = true
	}

	for _, a := range d.AllocationRecords {
		if !projects[a.ProjectID] {
			return fmt.Errorf("allocation %s references unknown project %q", a.ID, a.ProjectID)
		}
		if a.NonProjectRecordID != "" && !nonProject[a.NonProjectRecordID] {
			return fmt.Errorf("allocation %s references unknown non-project record %q",
				a.ID, a.NonProjectRecordID)
		}
	}

	return nil
}

// Materialize fills in missing record amounts from quantity and unit.
// Mass units (t, lb, g and CO2e variants) normalize straight to kg;
// activity units go through the configured emission factor table as
// amount = quantity * factor. Records that already carry an amount are
// left untouched. A quantity-bearing record with neither a mass unit nor
// a matching factor is an error: silently dropping activity would corrupt
// every downstream total.
func (d *Dataset) Materialize(cfg *config.Config) error {
	for i := range d.ProjectRecords {
		r := &d.ProjectRecords[i]
		if r.Amount != 0 || r.Quantity == 0 {
			continue
		}
		if engine.IsRecognizedUnit(r.Unit) {
			kg, err := engine.NormalizeToKg(r.Quantity, r.Unit)
			if err != nil {
				return fmt.Errorf("record %s: %w", r.ID, err)
			}
			r.Amount = kg
			continue
		}
		factor, ok := cfg.Factor(r.CategoryID, r.Unit)
		if !ok {
			return fmt.Errorf("record %s: no emission factor for category %q unit %q",
				r.ID, r.CategoryID, r.Unit)
		}
		r.Amount = r.Quantity * factor
	}
	return nil
}
