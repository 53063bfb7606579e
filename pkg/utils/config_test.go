package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(cfg))

	assert.Equal(t, 30000, cfg.Synthesis.NSamples)
	assert.Nil(t, cfg.Synthesis.Seed)
	assert.Len(t, cfg.Grid.Radius.Values(), 165)
	assert.Len(t, cfg.Grid.Period.Values(), 630)
	assert.Equal(t, []string{"30m", "hwo"}, cfg.TelescopeNames())
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	seed := uint64(1234)
	cfg.Synthesis.Seed = &seed
	cfg.Synthesis.NSamples = 500
	cfg.Catalog.DistanceCutoff = 30
	cfg.Telescopes = map[string]TelescopeConfig{"custom": {ContrastFloor: 1e-9, IWA: 0.2}}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfigWith(viper.New(), path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Synthesis.Seed)
	assert.Equal(t, seed, *loaded.Synthesis.Seed)
	assert.Equal(t, 500, loaded.Synthesis.NSamples)
	assert.Equal(t, 30.0, loaded.Catalog.DistanceCutoff)
	assert.Equal(t, cfg.Grid, loaded.Grid)

	constraints, err := loaded.Constraints()
	require.NoError(t, err)
	require.Contains(t, constraints, "custom")
	assert.Equal(t, 0.2, constraints["custom"].IWA)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("synthesis:\n  n_samples: 10\n"), 0o644))

	t.Setenv("POPSYNTH_SYNTHESIS_N_SAMPLES", "77")
	t.Setenv("POPSYNTH_SYNTHESIS_SEED", "9")
	t.Setenv("POPSYNTH_GRID_RADIUS_STEP", "0.5")

	cfg, err := LoadConfigWith(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Synthesis.NSamples)
	require.NotNil(t, cfg.Synthesis.Seed)
	assert.Equal(t, uint64(9), *cfg.Synthesis.Seed)
	assert.Equal(t, 0.5, cfg.Grid.Radius.Step)
	assert.Equal(t, 7, cfg.Synthesis.MaxPerStar)
	assert.Contains(t, cfg.Telescopes, "hwo")
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfigWith(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative samples", func(c *Config) { c.Synthesis.NSamples = -1 }},
		{"inverted multiplicity", func(c *Config) { c.Synthesis.MinPerStar, c.Synthesis.MaxPerStar = 5, 2 }},
		{"phase angle", func(c *Config) { c.Synthesis.ReferencePhaseAngle = 200 }},
		{"negative workers", func(c *Config) { c.Synthesis.Workers = -2 }},
		{"empty axis", func(c *Config) { c.Grid.Period.Step = 0 }},
		{"negative cutoff", func(c *Config) { c.Catalog.DistanceCutoff = -1 }},
		{"telescope without aperture", func(c *Config) { c.Telescopes["broken"] = TelescopeConfig{ContrastFloor: 1e-10} }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, validateConfig(cfg), population.ErrInvalidConfig)
		})
	}
}

func TestConstraintsFromAperture(t *testing.T) {
	constraints, err := DefaultConfig().Constraints()
	require.NoError(t, err)
	assert.InDelta(t, 0.0515662, constraints["hwo"].IWA, 1e-6)
	assert.InDelta(t, 0.0103132, constraints["30m"].IWA, 1e-6)
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := LoadConfigWith(viper.New(), filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Synthesis.Seed)
	assert.Equal(t, 30.0, cfg.Catalog.DistanceCutoff)
	assert.Equal(t, []string{"30m", "hwo"}, cfg.TelescopeNames())
}
