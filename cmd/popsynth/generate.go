package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oxygene76/exoplanet-popsynth/internal/logging"
	"github.com/oxygene76/exoplanet-popsynth/internal/metrics"
	"github.com/oxygene76/exoplanet-popsynth/pkg/catalog"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/assembler"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/observable"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/physical"
	"github.com/oxygene76/exoplanet-popsynth/pkg/utils"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize a planet population",
	Long: `
Synthesize a planet population around the stars of a catalog:

  1. draw n_samples (radius, period) pairs from the occurrence grid
  2. draw a Poisson planet count per star, clamped to [min, max], and hand
     out the shuffled planets until n_samples is reached
  3. derive orbit, class, albedo, contrast and angular separation per planet

When the per-star caps cannot absorb n_samples, the shortfall is logged and
recorded in the metadata file.

Examples:
  # Reference run
  popsynth generate --seed 42

  # Stars within 30 pc, custom classification table
  popsynth generate --distance-cutoff 30 --classification configs/classification.csv
`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.Int("n-samples", 30000, "Number of planets to draw from the grid")
	f.Uint64("seed", 0, "Random seed (default: derived from the clock)")
	f.Int("min-per-star", 1, "Minimum planets per star")
	f.Int("max-per-star", 7, "Maximum planets per star")
	f.Float64("expected-per-star", 0, "Poisson mean planets per star (0 derives it from the SAG13 rates)")
	f.Float64("phase-angle", physical.DefaultPhaseAngle, "Reference phase angle in degrees")
	f.Int("workers", 0, "Derivation workers (0 uses every CPU)")
	f.String("grid", "", "Occurrence grid file (csv, yaml or json)")
	f.String("stars", "", "Star catalog CSV")
	f.String("classification", "", "Classification table (csv, yaml or json; default built-in)")
	f.Float64("distance-cutoff", 0, "Keep stars within this distance in parsecs (0 keeps all)")
	f.StringP("output", "o", "", "Planet table output CSV")
	f.String("metadata", "", "Run metadata output YAML")
	f.String("metrics", "", "Prometheus textfile output")

	bindings := map[string]string{
		"synthesis.n_samples":                 "n-samples",
		"synthesis.min_per_star":              "min-per-star",
		"synthesis.max_per_star":              "max-per-star",
		"synthesis.expected_planets_per_star": "expected-per-star",
		"synthesis.reference_phase_angle":     "phase-angle",
		"synthesis.workers":                   "workers",
		"grid.file":                           "grid",
		"catalog.stars":                       "stars",
		"catalog.classification":              "classification",
		"catalog.distance_cutoff":             "distance-cutoff",
		"output.planets":                      "output",
		"output.metadata":                     "metadata",
		"output.metrics":                      "metrics",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// seed is optional, so it only overrides the config when given
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		config.Synthesis.Seed = &seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pop, err := generate(ctx, config, logger)
	if err != nil {
		return err
	}

	meta := pop.Metadata
	fmt.Printf("Run %s (seed %d)\n", meta.RunID, meta.Seed)
	fmt.Printf("  Stars:     %d\n", meta.Stars)
	fmt.Printf("  Requested: %d\n", meta.Requested)
	fmt.Printf("  Assigned:  %d\n", meta.Assigned)
	if meta.Shortfall > 0 {
		fmt.Printf("  Shortfall: %d (per-star caps limit capacity)\n", meta.Shortfall)
	}
	fmt.Printf("  Planets written to %s\n", config.Output.Planets)

	constraints, err := config.Constraints()
	if err != nil {
		return err
	}
	for _, name := range observable.Names(constraints) {
		fmt.Printf("  Observable earths (%s): %d\n", name, observable.Count(pop.Planets, constraints[name], "earths"))
	}
	return nil
}

// generate runs one synthesis from cfg and writes its outputs
func generate(ctx context.Context, cfg *utils.Config, log logging.Logger) (*assembler.Population, error) {
	rng, seed := population.NewRand(cfg.Synthesis.Seed)
	log = log.With(logging.Uint64("seed", seed))

	table := physical.DefaultTable()
	if cfg.Catalog.Classification != "" {
		t, err := catalog.LoadClassification(cfg.Catalog.Classification)
		if err != nil {
			return nil, fmt.Errorf("failed to load classification table: %w", err)
		}
		table = t
	}

	g, err := catalog.LoadGrid(cfg.Grid.File, cfg.Grid.Radius.Values(), cfg.Grid.Period.Values())
	if err != nil {
		return nil, fmt.Errorf("failed to load occurrence grid: %w", err)
	}
	rows, cols := g.Weights.Dims()
	log.Info(ctx, "loaded occurrence grid",
		logging.String("file", cfg.Grid.File), logging.Int("radius_bins", rows), logging.Int("period_bins", cols))

	// missing inclinations are drawn from the run generator before sampling
	load, err := catalog.LoadStars(cfg.Catalog.Stars, catalog.StarOptions{
		DistanceCutoff: cfg.Catalog.DistanceCutoff,
		Rand:           rng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load star catalog: %w", err)
	}
	log.Info(ctx, "loaded star catalog",
		logging.String("file", cfg.Catalog.Stars),
		logging.Int("stars", len(load.Stars)),
		logging.Int("incomplete", load.Incomplete),
		logging.Int("beyond_cutoff", load.BeyondCutoff),
		logging.Int("inclinations_drawn", load.Filled))

	model, err := physical.NewModel(table, cfg.Synthesis.ReferencePhaseAngle)
	if err != nil {
		return nil, err
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}

	asm, err := assembler.New(g, model, assembler.Options{
		Multiplicity: cfg.MultiplicityParams(),
		Workers:      cfg.Synthesis.Workers,
		Logger:       log,
		Recorder:     collector,
	})
	if err != nil {
		return nil, err
	}

	pop, err := asm.Run(ctx, load.Stars, cfg.Synthesis.NSamples, rng, seed)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := catalog.SavePlanets(cfg.Output.Planets, pop.Planets); err != nil {
		return nil, err
	}
	if cfg.Output.Metadata != "" {
		if err := catalog.SaveMetadata(cfg.Output.Metadata, pop.Metadata); err != nil {
			return nil, err
		}
	}
	if cfg.Output.Metrics != "" {
		if err := collector.WriteTextfile(cfg.Output.Metrics); err != nil {
			return nil, err
		}
	}
	log.Info(ctx, "wrote outputs",
		logging.String("planets", cfg.Output.Planets),
		logging.String("metadata", cfg.Output.Metadata),
		logging.Duration("elapsed", time.Since(start)))

	return pop, nil
}
