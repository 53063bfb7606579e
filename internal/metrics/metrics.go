// Package metrics exposes Prometheus collectors describing a synthesis run.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
)

// Collector bundles the run metrics and satisfies assembler.Recorder
type Collector struct {
	gatherer prometheus.Gatherer

	planetsSampled  prometheus.Counter
	planetsAssigned prometheus.Counter
	shortfall       prometheus.Gauge
	planetTypes     *prometheus.CounterVec
	planetIssues    *prometheus.CounterVec
	stageDurations  *prometheus.HistogramVec
}

// NewCollector registers the run metrics against reg, defaulting to the
// global registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		planetsSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "popsynth_planets_sampled_total",
			Help: "Planets drawn from the occurrence-density grid.",
		}),
		planetsAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "popsynth_planets_assigned_total",
			Help: "Planets that received a host star.",
		}),
		shortfall: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "popsynth_assignment_shortfall",
			Help: "Requested planets left without a host in the last run.",
		}),
		planetTypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popsynth_planets_classified_total",
			Help: "Derived planets by classification label.",
		}, []string{"type"}),
		planetIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popsynth_planet_issues_total",
			Help: "Per-planet conditions that left derived fields undefined.",
		}, []string{"issue"}),
		stageDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "popsynth_stage_duration_seconds",
			Help:    "Wall time per pipeline stage.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"stage"}),
	}

	for _, col := range []prometheus.Collector{
		c.planetsSampled, c.planetsAssigned, c.shortfall,
		c.planetTypes, c.planetIssues, c.stageDurations,
	} {
		if err := reg.Register(col); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				return nil, fmt.Errorf("metrics already registered: %w", err)
			}
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return c, nil
}

// ObserveStage records the duration of a pipeline stage
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDurations.WithLabelValues(stage).Observe(d.Seconds())
}

// AddSampled counts drawn planets
func (c *Collector) AddSampled(n int) {
	c.planetsSampled.Add(float64(n))
}

// SetAssignment records the assigned count and shortfall of a run
func (c *Collector) SetAssignment(assigned, shortfall int) {
	c.planetsAssigned.Add(float64(assigned))
	c.shortfall.Set(float64(shortfall))
}

// ObservePlanet counts a derived planet by type and issue
func (c *Collector) ObservePlanet(p types.Planet) {
	label := "unclassified"
	if t, ok := p.Type.Get(); ok {
		label = t
	}
	c.planetTypes.WithLabelValues(label).Inc()
	for _, issue := range types.AllIssues {
		if p.Issues.Has(issue) {
			c.planetIssues.WithLabelValues(issue.String()).Inc()
		}
	}
}

// WriteTextfile writes the current metric values in the Prometheus text
// format, for node_exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
