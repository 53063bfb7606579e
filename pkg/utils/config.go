package utils

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/grid"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/multiplicity"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/observable"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/physical"
)

// EnvPrefix prefixes environment overrides, e.g. POPSYNTH_SYNTHESIS_N_SAMPLES
const EnvPrefix = "POPSYNTH"

// Config represents the synthesis configuration
type Config struct {
	Synthesis  SynthesisConfig            `yaml:"synthesis" mapstructure:"synthesis"`
	Grid       GridConfig                 `yaml:"grid" mapstructure:"grid"`
	Catalog    CatalogConfig              `yaml:"catalog" mapstructure:"catalog"`
	Output     OutputConfig               `yaml:"output" mapstructure:"output"`
	Telescopes map[string]TelescopeConfig `yaml:"telescopes" mapstructure:"telescopes"`
	Logging    LoggingConfig              `yaml:"logging" mapstructure:"logging"`
}

// SynthesisConfig contains the population synthesis parameters
type SynthesisConfig struct {
	NSamples               int     `yaml:"n_samples" mapstructure:"n_samples"`
	Seed                   *uint64 `yaml:"seed,omitempty" mapstructure:"seed"`
	MinPerStar             int     `yaml:"min_per_star" mapstructure:"min_per_star"`
	MaxPerStar             int     `yaml:"max_per_star" mapstructure:"max_per_star"`
	ExpectedPlanetsPerStar float64 `yaml:"expected_planets_per_star" mapstructure:"expected_planets_per_star"`
	ReferencePhaseAngle    float64 `yaml:"reference_phase_angle" mapstructure:"reference_phase_angle"`
	Workers                int     `yaml:"workers" mapstructure:"workers"`
}

// AxisConfig describes an evenly spaced grid axis [start, stop)
type AxisConfig struct {
	Start float64 `yaml:"start" mapstructure:"start"`
	Stop  float64 `yaml:"stop" mapstructure:"stop"`
	Step  float64 `yaml:"step" mapstructure:"step"`
}

// Values expands the axis
func (a AxisConfig) Values() []float64 {
	return grid.Arange(a.Start, a.Stop, a.Step)
}

// GridConfig locates the density grid and the axes used when the grid file
// carries weights only
type GridConfig struct {
	File   string     `yaml:"file" mapstructure:"file"`
	Radius AxisConfig `yaml:"radius" mapstructure:"radius"`
	Period AxisConfig `yaml:"period" mapstructure:"period"`
}

// CatalogConfig locates the star catalog and classification table
type CatalogConfig struct {
	Stars          string  `yaml:"stars" mapstructure:"stars"`
	Classification string  `yaml:"classification" mapstructure:"classification"`   // empty selects the built-in table
	DistanceCutoff float64 `yaml:"distance_cutoff" mapstructure:"distance_cutoff"` // parsecs, 0 disables
}

// OutputConfig contains output file locations
type OutputConfig struct {
	Planets  string `yaml:"planets" mapstructure:"planets"`
	Metadata string `yaml:"metadata" mapstructure:"metadata"`
	Metrics  string `yaml:"metrics" mapstructure:"metrics"` // Prometheus textfile, empty disables
}

// TelescopeConfig is a detection limit. IWA is used when set, otherwise it
// is derived from the aperture.
type TelescopeConfig struct {
	ContrastFloor float64 `yaml:"contrast_floor" mapstructure:"contrast_floor"`
	IWA           float64 `yaml:"iwa,omitempty" mapstructure:"iwa"` // arcseconds
	ApertureM     float64 `yaml:"aperture_m,omitempty" mapstructure:"aperture_m"`
	WavelengthNM  float64 `yaml:"wavelength_nm,omitempty" mapstructure:"wavelength_nm"`
	IWAFactor     float64 `yaml:"iwa_factor,omitempty" mapstructure:"iwa_factor"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	params := multiplicity.DefaultParams()
	return &Config{
		Synthesis: SynthesisConfig{
			NSamples:            30000,
			MinPerStar:          params.MinPerStar,
			MaxPerStar:          params.MaxPerStar,
			ReferencePhaseAngle: physical.DefaultPhaseAngle,
		},
		Grid: GridConfig{
			File:   "data/pdf_grid.csv",
			Radius: AxisConfig{Start: 0.67, Stop: 17.1, Step: 0.1},
			Period: AxisConfig{Start: 10, Stop: 640, Step: 1},
		},
		Catalog: CatalogConfig{
			Stars: "data/star_catalog.csv",
		},
		Output: OutputConfig{
			Planets:  "output/planets.csv",
			Metadata: "output/metadata.yaml",
		},
		Telescopes: map[string]TelescopeConfig{
			"hwo": {ContrastFloor: 1e-10, ApertureM: 6, WavelengthNM: 500, IWAFactor: observable.DefaultIWAFactor},
			"30m": {ContrastFloor: 1e-8, ApertureM: 30, WavelengthNM: 500, IWAFactor: observable.DefaultIWAFactor},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// setDefaults registers every default with viper so that environment
// overrides resolve for keys absent from the config file
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("synthesis.n_samples", d.Synthesis.NSamples)
	v.SetDefault("synthesis.min_per_star", d.Synthesis.MinPerStar)
	v.SetDefault("synthesis.max_per_star", d.Synthesis.MaxPerStar)
	v.SetDefault("synthesis.expected_planets_per_star", d.Synthesis.ExpectedPlanetsPerStar)
	v.SetDefault("synthesis.reference_phase_angle", d.Synthesis.ReferencePhaseAngle)
	v.SetDefault("synthesis.workers", d.Synthesis.Workers)
	v.SetDefault("grid.file", d.Grid.File)
	for name, axis := range map[string]AxisConfig{"radius": d.Grid.Radius, "period": d.Grid.Period} {
		v.SetDefault("grid."+name+".start", axis.Start)
		v.SetDefault("grid."+name+".stop", axis.Stop)
		v.SetDefault("grid."+name+".step", axis.Step)
	}
	v.SetDefault("catalog.stars", d.Catalog.Stars)
	v.SetDefault("catalog.classification", d.Catalog.Classification)
	v.SetDefault("catalog.distance_cutoff", d.Catalog.DistanceCutoff)
	v.SetDefault("output.planets", d.Output.Planets)
	v.SetDefault("output.metadata", d.Output.Metadata)
	v.SetDefault("output.metrics", d.Output.Metrics)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// LoadConfig loads configuration from path, or searches the default
// locations when path is empty. A missing config file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigWith(viper.GetViper(), path)
}

// LoadConfigWith loads configuration through v, which may already carry
// bound command-line flags
func LoadConfigWith(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".popsynth"))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// seed has no default, so it must be bound explicitly
	_ = v.BindEnv("synthesis.seed")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if len(config.Telescopes) == 0 {
		config.Telescopes = DefaultConfig().Telescopes
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// SaveConfig writes config as YAML to path, creating parent directories
func SaveConfig(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the path of the per-user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".popsynth", "config.yaml"), nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	s := config.Synthesis
	if s.NSamples < 0 {
		return errorsmod.Wrapf(population.ErrInvalidConfig, "n_samples must be non-negative, got %d", s.NSamples)
	}
	if err := config.MultiplicityParams().Validate(); err != nil {
		return err
	}
	if s.ReferencePhaseAngle < 0 || s.ReferencePhaseAngle > 180 {
		return errorsmod.Wrapf(population.ErrInvalidConfig,
			"reference_phase_angle must be in [0, 180] degrees, got %v", s.ReferencePhaseAngle)
	}
	if s.Workers < 0 {
		return errorsmod.Wrapf(population.ErrInvalidConfig, "workers must be non-negative, got %d", s.Workers)
	}

	for name, axis := range map[string]AxisConfig{"radius": config.Grid.Radius, "period": config.Grid.Period} {
		if axis.Step <= 0 || axis.Stop <= axis.Start {
			return errorsmod.Wrapf(population.ErrInvalidConfig,
				"grid %s axis needs start < stop and a positive step", name)
		}
	}

	if config.Catalog.DistanceCutoff < 0 || math.IsNaN(config.Catalog.DistanceCutoff) {
		return errorsmod.Wrapf(population.ErrInvalidConfig,
			"distance_cutoff must be non-negative, got %v", config.Catalog.DistanceCutoff)
	}

	if _, err := config.Constraints(); err != nil {
		return err
	}

	switch strings.ToLower(config.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errorsmod.Wrapf(population.ErrInvalidConfig, "invalid log level: %s", config.Logging.Level)
	}
	switch strings.ToLower(config.Logging.Format) {
	case "", "text", "json":
	default:
		return errorsmod.Wrapf(population.ErrInvalidConfig, "invalid log format: %s", config.Logging.Format)
	}
	return nil
}

// MultiplicityParams returns the per-star planet count bounds
func (c *Config) MultiplicityParams() multiplicity.Params {
	return multiplicity.Params{
		MinPerStar:      c.Synthesis.MinPerStar,
		MaxPerStar:      c.Synthesis.MaxPerStar,
		ExpectedPerStar: c.Synthesis.ExpectedPlanetsPerStar,
	}
}

// Constraints converts the telescope section into detection limits
func (c *Config) Constraints() (map[string]observable.Constraint, error) {
	out := make(map[string]observable.Constraint, len(c.Telescopes))
	for name, t := range c.Telescopes {
		var (
			constraint observable.Constraint
			err        error
		)
		if t.IWA > 0 {
			constraint = observable.Constraint{Name: name, ContrastFloor: t.ContrastFloor, IWA: t.IWA}
			err = constraint.Validate()
		} else {
			constraint, err = observable.NewConstraint(name, t.ContrastFloor, t.ApertureM, t.WavelengthNM*1e-9, t.IWAFactor)
		}
		if err != nil {
			return nil, err
		}
		out[name] = constraint
	}
	return out, nil
}

// TelescopeNames returns the configured telescope names in sorted order
func (c *Config) TelescopeNames() []string {
	names := make([]string, 0, len(c.Telescopes))
	for name := range c.Telescopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
