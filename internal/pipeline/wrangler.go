package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/observability"
	"github.com/couchcryptid/squirrel-census/internal/spatial"
)

// ObservationSource reads census observations.
type ObservationSource interface {
	Observations(ctx context.Context) ([]domain.Observation, error)
}

// ZoneSource reads park zone polygons.
type ZoneSource interface {
	Zones(ctx context.Context) ([]domain.Zone, error)
}

// DatasetSink receives the merged dataset at the end of a run.
type DatasetSink interface {
	Name() string
	WriteDataset(ctx context.Context, ds *domain.Dataset, run domain.RunSummary) error
}

// Options tunes zone naming, point assignment and output geometry.
type Options struct {
	Table         domain.ZoneTable
	OverlapPolicy spatial.OverlapPolicy
	// CacheSize bounds the locator cache; zero disables it.
	CacheSize int
	Merge     domain.MergeOptions
}

// Wrangler joins census sightings to park zones and hands the merged dataset to its
// sinks. A run is synchronous and either completes or fails as a whole.
type Wrangler struct {
	observations ObservationSource
	zones        ZoneSource
	sinks        []DatasetSink
	opts         Options
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// New creates a Wrangler with the given sources, sinks and observability.
func New(obs ObservationSource, zones ZoneSource, sinks []DatasetSink, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Wrangler {
	return &Wrangler{
		observations: obs,
		zones:        zones,
		sinks:        sinks,
		opts:         opts,
		logger:       logger,
		metrics:      metrics,
	}
}

// Run reads both inputs, assigns every observation to a zone, aggregates, merges and
// writes to every sink in order. The first error aborts the run.
func (w *Wrangler) Run(ctx context.Context) (domain.RunSummary, error) {
	run := domain.StartRun()
	logger := w.logger.With("run_id", run.RunID)
	logger.Info("wrangle started", "overlap_policy", w.opts.OverlapPolicy, "sinks", len(w.sinks))

	zones, err := w.zones.Zones(ctx)
	if err != nil {
		return run, fmt.Errorf("load zones: %w", err)
	}
	zones, err = domain.ApplyOverrides(zones, w.opts.Table)
	if err != nil {
		return run, fmt.Errorf("name zones: %w", err)
	}
	locator, err := w.newLocator(zones)
	if err != nil {
		return run, fmt.Errorf("index zones: %w", err)
	}

	observations, err := w.observations.Observations(ctx)
	if err != nil {
		return run, fmt.Errorf("load observations: %w", err)
	}
	run.Observations = len(observations)
	w.metrics.ObservationsRead.Add(float64(len(observations)))

	if err := ctx.Err(); err != nil {
		return run, err
	}
	sightings := w.assign(logger, locator, observations, &run)

	aggs := domain.Aggregate(sightings, w.opts.Table)
	ds := domain.Merge(zones, aggs, w.opts.Merge)
	run.Zones = len(ds.Features)

	for _, sink := range w.sinks {
		if err := sink.WriteDataset(ctx, ds, run); err != nil {
			return run, fmt.Errorf("write %s: %w", sink.Name(), err)
		}
	}

	run.Finish()
	w.metrics.ZonesWritten.Set(float64(run.Zones))
	w.metrics.RunDuration.Observe(run.Duration().Seconds())
	logger.Info("wrangle complete",
		"observations", run.Observations,
		"matched", run.Matched,
		"unmatched", run.Unmatched,
		"overlaps", run.Overlaps,
		"zones", run.Zones,
		"duration", run.Duration(),
	)
	return run, nil
}

func (w *Wrangler) newLocator(zones []domain.Zone) (spatial.Locator, error) {
	index, err := spatial.NewIndex(zones, w.opts.OverlapPolicy)
	if err != nil {
		return nil, err
	}
	if w.opts.CacheSize <= 0 {
		return index, nil
	}
	return spatial.NewCachedLocator(index, w.opts.CacheSize, w.metrics.LocatorCache), nil
}

// assign pairs each observation with its zone. Observations outside every zone are
// dropped and counted.
func (w *Wrangler) assign(logger *slog.Logger, locator spatial.Locator, observations []domain.Observation, run *domain.RunSummary) []domain.Sighting {
	sightings := make([]domain.Sighting, 0, len(observations))
	for _, obs := range observations {
		m, ok := locator.Locate(obs.Position)
		if !ok {
			run.Unmatched++
			logger.Debug("observation outside every zone", "id", obs.ID, "lon", obs.Position.Lon(), "lat", obs.Position.Lat())
			continue
		}
		if m.Overlapping() {
			run.Overlaps++
			logger.Debug("observation in overlapping zones", "id", obs.ID, "zones", m.Containing, "assigned", m.Sitename)
		}
		sightings = append(sightings, domain.Sighting{Sitename: m.Sitename, Observation: obs})
	}
	run.Matched = len(sightings)

	w.metrics.ObservationsUnmatched.Add(float64(run.Unmatched))
	w.metrics.ZoneOverlaps.Add(float64(run.Overlaps))
	if run.Unmatched > 0 {
		logger.Warn("observations outside every zone dropped", "count", run.Unmatched)
	}
	if run.Overlaps > 0 {
		logger.Warn("observations inside overlapping zones", "count", run.Overlaps, "policy", w.opts.OverlapPolicy)
	}
	return sightings
}
