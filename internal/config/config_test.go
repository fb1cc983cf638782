package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmops/carbonledger/internal/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultVersion, cfg.Version)
	assert.NotEmpty(t, cfg.EmissionFactors)
	assert.NotEmpty(t, cfg.Categories)
	assert.InDelta(t, engine.DefaultIndustryAverage, cfg.Benchmarks[engine.GeneralBenchmarkSegment], 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Version, cfg.Version)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, cfg.Version)
}

func TestLoad_Overlay(t *testing.T) {
	path := writeConfig(t, `
version: "1.2.0"
logging:
  level: debug
  format: json
benchmarks:
  general: 0.02
  indie: 0.008
default_crew_size: 12
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", cfg.Version)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.InDelta(t, 0.02, cfg.Benchmarks["general"], 1e-9)
	assert.InDelta(t, 0.008, cfg.Benchmarks["indie"], 1e-9)
	assert.Equal(t, 12, cfg.DefaultCrewSize)

	// Untouched sections keep their defaults.
	assert.NotEmpty(t, cfg.EmissionFactors)
}

func TestLoad_VersionGate(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{name: "supported minor bump", version: "1.3.0", wantErr: false},
		{name: "unsupported major", version: "2.0.0", wantErr: true},
		{name: "garbage version", version: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "version: \""+tt.version+"\"\n")
			_, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "benchmarks: [not: a map\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Categories = append(cfg.Categories, CategoryConfig{ID: "scope1-fleet-vehicle"})
	assert.ErrorContains(t, cfg.Validate(), "duplicate category id")

	cfg = Default()
	cfg.EmissionFactors["bad"] = -1
	assert.ErrorContains(t, cfg.Validate(), "negative")

	cfg = Default()
	cfg.DefaultCrewSize = -3
	assert.ErrorContains(t, cfg.Validate(), "default_crew_size")
}

func TestFactor(t *testing.T) {
	cfg := Default()
	cfg.EmissionFactors["generator-fuel-diesel/litre-diesel"] = 3.1

	f, ok := cfg.Factor("generator-fuel-diesel", "litre-diesel")
	require.True(t, ok)
	assert.InDelta(t, 3.1, f, 1e-9, "category-scoped key wins")

	f, ok = cfg.Factor("other-category", "litre-diesel")
	require.True(t, ok)
	assert.InDelta(t, 2.68, f, 1e-9, "bare unit key is the fallback")

	_, ok = cfg.Factor("other-category", "parsec")
	assert.False(t, ok)
}

func TestCategory(t *testing.T) {
	cfg := Default()

	cat, ok := cfg.Category("office-electricity")
	require.True(t, ok)
	assert.True(t, cat.Operational)
	assert.Equal(t, engine.Scope2, cat.Scope)

	_, ok = cfg.Category("nope")
	assert.False(t, ok)
}
