// Package assembler runs a complete synthesis: sample planets from the
// density grid, distribute them over the star catalog and derive every
// planet's physical state.
package assembler

import (
	"context"
	"fmt"
	"math"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/oxygene76/exoplanet-popsynth/internal/logging"
	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/compute"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/grid"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/multiplicity"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/physical"
)

// Pipeline stage names used for logging and metrics
const (
	StageSample = "sample"
	StageAssign = "assign"
	StageDerive = "derive"
)

// Recorder receives run statistics. internal/metrics.Collector implements it.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	AddSampled(n int)
	SetAssignment(assigned, shortfall int)
	ObservePlanet(p types.Planet)
}

// Options configures an Assembler
type Options struct {
	Multiplicity multiplicity.Params
	Workers      int // ≤ 0 uses runtime.NumCPU()
	Logger       logging.Logger
	Recorder     Recorder
}

// Assembler orchestrates sampling, assignment and derivation. The grid,
// table and model it holds are read-only, so one Assembler can serve
// several runs.
type Assembler struct {
	sampler *grid.Sampler
	model   *physical.Model
	params  multiplicity.Params
	workers int
	log     logging.Logger
	rec     Recorder
}

// New validates the inputs and builds an Assembler
func New(g *grid.DensityGrid, model *physical.Model, opts Options) (*Assembler, error) {
	if model == nil {
		return nil, errorsmod.Wrap(population.ErrInvalidConfig, "physical model is required")
	}
	sampler, err := grid.NewSampler(g)
	if err != nil {
		return nil, err
	}
	if err := opts.Multiplicity.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	return &Assembler{
		sampler: sampler,
		model:   model,
		params:  opts.Multiplicity,
		workers: opts.Workers,
		log:     log,
		rec:     opts.Recorder,
	}, nil
}

// Metadata describes a completed run
type Metadata struct {
	RunID          string        `yaml:"run_id"`
	Seed           uint64        `yaml:"seed"`
	Stars          int           `yaml:"stars"`
	Requested      int           `yaml:"requested"`
	Assigned       int           `yaml:"assigned"`
	Shortfall      int           `yaml:"shortfall"`
	RatePerStar    float64       `yaml:"rate_per_star"`
	MinPerStar     int           `yaml:"min_per_star"`
	MaxPerStar     int           `yaml:"max_per_star"`
	PhaseAngle     float64       `yaml:"reference_phase_angle"`
	Issues         IssueCounts   `yaml:"issues"`
	StageDurations StageDuration `yaml:"stage_durations"`
	StartedAt      time.Time     `yaml:"started_at"`
	Duration       time.Duration `yaml:"duration"`
}

// IssueCounts tallies per-planet issue flags
type IssueCounts struct {
	ClassificationMiss int `yaml:"classification_miss"`
	GeometricDomain    int `yaml:"geometric_domain"`
	InclinationRange   int `yaml:"inclination_range"`
}

// StageDuration holds wall time per stage
type StageDuration struct {
	Sample time.Duration `yaml:"sample"`
	Assign time.Duration `yaml:"assign"`
	Derive time.Duration `yaml:"derive"`
}

// Population is the output of one run. Planets are ordered by their index
// in the sampled pool and named Planet_1..Planet_n in that order; Host
// points into Stars.
type Population struct {
	Stars    []types.Star
	Planets  []types.Planet
	Metadata Metadata
}

// Run synthesizes a population of n planets around stars. rng is the single
// generator for the run and is consumed in a fixed order: grid draws,
// Poisson counts, pool permutation, then one albedo variate per assigned
// planet. seed is recorded in the metadata only.
func (a *Assembler) Run(ctx context.Context, stars []types.Star, n int, rng *rand.Rand, seed uint64) (*Population, error) {
	if n < 0 {
		return nil, errorsmod.Wrapf(population.ErrInvalidConfig, "n_samples must be non-negative, got %d", n)
	}
	if err := ValidateStars(stars); err != nil {
		return nil, err
	}

	start := time.Now()
	meta := Metadata{
		RunID:       uuid.NewString(),
		Seed:        seed,
		Stars:       len(stars),
		Requested:   n,
		RatePerStar: a.params.Rate(),
		MinPerStar:  a.params.MinPerStar,
		MaxPerStar:  a.params.MaxPerStar,
		PhaseAngle:  a.model.PhaseAngle(),
		StartedAt:   start,
	}
	log := a.log.With(logging.String("run_id", meta.RunID))

	// sampling
	t0 := time.Now()
	samples := a.sampler.Draw(rng, n)
	meta.StageDurations.Sample = time.Since(t0)
	a.observeStage(StageSample, meta.StageDurations.Sample)
	if a.rec != nil {
		a.rec.AddSampled(len(samples))
	}
	log.Info(ctx, "sampled planets from density grid",
		logging.Int("count", len(samples)), logging.Duration("elapsed", meta.StageDurations.Sample))

	if err := ctx.Err(); err != nil {
		return nil, errorsmod.Wrap(population.ErrCancelled, err.Error())
	}

	// assignment
	t0 = time.Now()
	assignment, err := multiplicity.Assign(rng, len(stars), n, a.params)
	if err != nil {
		return nil, err
	}
	meta.StageDurations.Assign = time.Since(t0)
	meta.Assigned = assignment.Assigned
	meta.Shortfall = assignment.Shortfall()
	a.observeStage(StageAssign, meta.StageDurations.Assign)
	if a.rec != nil {
		a.rec.SetAssignment(meta.Assigned, meta.Shortfall)
	}
	log.Info(ctx, "assigned planets to stars",
		logging.Int("stars", len(stars)),
		logging.Int("assigned", meta.Assigned),
		logging.Duration("elapsed", meta.StageDurations.Assign))
	if meta.Shortfall > 0 {
		log.Warn(ctx, "assignment shortfall: star caps limit total capacity",
			logging.Int("requested", n),
			logging.Int("assigned", meta.Assigned),
			logging.Int("shortfall", meta.Shortfall))
	}

	// derivation; inputs are fixed before the parallel stage so the worker
	// count cannot change the result
	hostStars := make([]types.Star, len(stars))
	copy(hostStars, stars)

	type job struct {
		sample grid.Sample
		host   int
		albedo float64
	}
	jobs := make([]job, 0, assignment.Assigned)
	for planet, host := range assignment.Hosts {
		if host < 0 {
			continue
		}
		jobs = append(jobs, job{sample: samples[planet], host: host, albedo: rng.Float64()})
	}

	t0 = time.Now()
	planets := make([]types.Planet, len(jobs))
	pool := compute.NewPool(a.workers)
	err = pool.Run(ctx, len(jobs), func(i int) {
		j := jobs[i]
		p := a.model.Derive(j.sample.Radius, j.sample.Period, &hostStars[j.host], j.albedo)
		p.Name = fmt.Sprintf("Planet_%d", i+1)
		planets[i] = p
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errorsmod.Wrap(population.ErrCancelled, ctxErr.Error())
		}
		return nil, fmt.Errorf("planet derivation failed: %w", err)
	}
	meta.StageDurations.Derive = time.Since(t0)
	a.observeStage(StageDerive, meta.StageDurations.Derive)

	for _, p := range planets {
		if p.Issues.Has(types.IssueClassificationMiss) {
			meta.Issues.ClassificationMiss++
		}
		if p.Issues.Has(types.IssueGeometricDomain) {
			meta.Issues.GeometricDomain++
		}
		if p.Issues.Has(types.IssueInclinationRange) {
			meta.Issues.InclinationRange++
		}
		if a.rec != nil {
			a.rec.ObservePlanet(p)
		}
	}
	meta.Duration = time.Since(start)

	log.Info(ctx, "derived planet properties",
		logging.Int("planets", len(planets)),
		logging.Int("workers", pool.Workers()),
		logging.Int("classification_miss", meta.Issues.ClassificationMiss),
		logging.Int("geometric_domain", meta.Issues.GeometricDomain),
		logging.Duration("elapsed", meta.StageDurations.Derive))

	return &Population{Stars: hostStars, Planets: planets, Metadata: meta}, nil
}

func (a *Assembler) observeStage(stage string, d time.Duration) {
	if a.rec != nil {
		a.rec.ObserveStage(stage, d)
	}
}

// ValidateStars rejects catalogs that cannot be synthesized: empty or
// duplicate IDs, non-positive distance or mass, non-finite values and
// inclinations outside [0, 180] degrees.
func ValidateStars(stars []types.Star) error {
	seen := make(map[string]bool, len(stars))
	for i, s := range stars {
		if s.ID == "" {
			return errorsmod.Wrapf(population.ErrMalformedCatalog, "star %d has no identifier", i)
		}
		if seen[s.ID] {
			return errorsmod.Wrapf(population.ErrMalformedCatalog, "duplicate star identifier %q", s.ID)
		}
		seen[s.ID] = true

		for _, v := range []float64{s.RA, s.Dec, s.Distance, s.Mass, s.Luminosity, s.Inclination} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errorsmod.Wrapf(population.ErrInputDomain, "star %s has a non-finite value", s.ID)
			}
		}
		if s.Distance <= 0 {
			return errorsmod.Wrapf(population.ErrInputDomain, "star %s has non-positive distance %v", s.ID, s.Distance)
		}
		if s.Mass <= 0 {
			return errorsmod.Wrapf(population.ErrInputDomain, "star %s has non-positive mass %v", s.ID, s.Mass)
		}
		if s.Inclination < 0 || s.Inclination > 180 {
			return errorsmod.Wrapf(population.ErrInputDomain,
				"star %s inclination %v is outside [0, 180] degrees", s.ID, s.Inclination)
		}
	}
	return nil
}
