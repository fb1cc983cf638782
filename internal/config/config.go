// Package config loads the static reference data the engine consumes:
// emission factors, category definitions, industry benchmarks, and logging
// settings. Configuration is supplied at startup and treated as immutable
// by the engine.
package config

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/filmops/carbonledger/internal/engine"
)

// SupportedVersions is the semver constraint accepted for config files.
// Breaking config schema changes bump the major version.
const SupportedVersions = "^1.0"

// DefaultVersion is stamped on generated configs and assumed for files
// that omit the version field.
const DefaultVersion = "1.0.0"

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CategoryConfig defines one emission category in the reference table.
type CategoryConfig struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Stage       engine.Stage `yaml:"stage,omitempty"`
	Scope       engine.Scope `yaml:"scope,omitempty"`
	Operational bool         `yaml:"operational,omitempty"`
}

// Config is the full configuration surface.
type Config struct {
	Version string        `yaml:"version"`
	Logging LoggingConfig `yaml:"logging"`

	// EmissionFactors maps "categoryID/unit" or bare unit keys to
	// kg CO2e per unit, used to materialize amounts for records entered
	// as quantities.
	EmissionFactors map[string]float64 `yaml:"emission_factors"`

	// Categories is the emission category reference table.
	Categories []CategoryConfig `yaml:"categories"`

	// Benchmarks maps industry segments to average carbon intensity
	// (kg CO2e per currency unit).
	Benchmarks engine.Benchmarks `yaml:"benchmarks"`

	// DefaultCrewSize is assumed for projects that do not declare one.
	DefaultCrewSize int `yaml:"default_crew_size"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Version: DefaultVersion,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		EmissionFactors: map[string]float64{
			// kg CO2e per unit of activity.
			"litre-diesel": 2.68,
			"litre-petrol": 2.31,
			"kwh-grid":     0.21,
			"km-car":       0.17,
			"km-rail":      0.035,
			"km-flight":    0.15,
			"night-hotel":  20.0,
			"meal-catered": 3.5,
			"kg-waste":     0.45,
			"kg-material":  1.8,
		},
		Categories: []CategoryConfig{
			{ID: "scope1-fleet-vehicle", Name: "Fleet vehicles", Scope: engine.Scope1},
			{ID: "generator-fuel-diesel", Name: "Diesel generators", Scope: engine.Scope1, Stage: engine.StageProduction},
			{ID: "scope2-grid-electricity", Name: "Grid electricity", Scope: engine.Scope2},
			{ID: "office-electricity", Name: "Office electricity", Scope: engine.Scope2, Operational: true},
			{ID: "scope3-air-travel-transport", Name: "Air travel", Scope: engine.Scope3},
			{ID: "crew-hotel-stay", Name: "Crew accommodation", Scope: engine.Scope3},
			{ID: "catering-onset-meals", Name: "On-set catering", Scope: engine.Scope3, Stage: engine.StageProduction},
			{ID: "set-build-materials", Name: "Set construction materials", Scope: engine.Scope3, Stage: engine.StagePreProduction},
			{ID: "set-strike-waste", Name: "Set strike waste", Scope: engine.Scope3, Stage: engine.StagePostProduction},
			{ID: "corporate-travel", Name: "Corporate travel", Scope: engine.Scope3, Operational: true},
		},
		Benchmarks: engine.Benchmarks{
			engine.GeneralBenchmarkSegment: engine.DefaultIndustryAverage,
			"feature-film":                 0.018,
			"commercial":                   0.012,
			"documentary":                  0.009,
		},
		DefaultCrewSize: 30,
	}
}

// Load reads a yaml config file and overlays it on the defaults. A missing
// path returns the defaults unchanged. The file's version field is
// validated against SupportedVersions.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if err := validateVersion(cfg.Version); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func validateVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("config version %s is outside the supported range %s", version, SupportedVersions)
	}
	return nil
}

// Validate checks internal consistency of the loaded configuration.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("category with empty id")
		}
		if seen[cat.ID] {
			return fmt.Errorf("duplicate category id %q", cat.ID)
		}
		seen[cat.ID] = true
	}
	for key, factor := range c.EmissionFactors {
		if factor < 0 {
			return fmt.Errorf("emission factor %q is negative", key)
		}
	}
	for segment, avg := range c.Benchmarks {
		if avg < 0 {
			return fmt.Errorf("benchmark %q is negative", segment)
		}
	}
	if c.DefaultCrewSize < 0 {
		return fmt.Errorf("default_crew_size is negative")
	}
	return nil
}

// Category returns the category definition for id, if present.
func (c *Config) Category(id string) (CategoryConfig, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return CategoryConfig{}, false
}

// Factor looks up an emission factor, trying the category-scoped key
// "categoryID/unit" first and falling back to the bare unit key.
func (c *Config) Factor(categoryID, unit string) (float64, bool) {
	if f, ok := c.EmissionFactors[categoryID+"/"+unit]; ok {
		return f, true
	}
	f, ok := c.EmissionFactors[unit]
	return f, ok
}
