package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "squirrel_census"

// Metrics holds the Prometheus counters, histograms, and gauges for the wrangler and
// the dashboard.
type Metrics struct {
	// Wrangler metrics.
	ObservationsRead      prometheus.Counter
	ObservationsUnmatched prometheus.Counter
	ZoneOverlaps          prometheus.Counter
	ZonesWritten          prometheus.Gauge
	AggregatesPublished   prometheus.Counter
	RunDuration           prometheus.Histogram
	LocatorCache          *prometheus.CounterVec // labels: result={hit,miss}

	// Dashboard metrics.
	ChartRequests  *prometheus.CounterVec   // labels: endpoint={page,chart,spec,zones,snapshot}, outcome={success,bad_request,not_ready,error}
	RenderDuration *prometheus.HistogramVec // labels: endpoint
	DatasetReloads *prometheus.CounterVec   // labels: outcome={success,error}
	DatasetZones   prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ObservationsRead,
		m.ObservationsUnmatched,
		m.ZoneOverlaps,
		m.ZonesWritten,
		m.AggregatesPublished,
		m.RunDuration,
		m.LocatorCache,
		m.ChartRequests,
		m.RenderDuration,
		m.DatasetReloads,
		m.DatasetZones,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already registered"
// panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_read_total",
			Help:      "Total census observations parsed.",
		}),
		ObservationsUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_unmatched_total",
			Help:      "Observations outside every zone, dropped from the aggregates.",
		}),
		ZoneOverlaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zone_overlaps_total",
			Help:      "Observations contained by more than one zone.",
		}),
		ZonesWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zones_written",
			Help:      "Zones in the last merged dataset written.",
		}),
		AggregatesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregates_published_total",
			Help:      "Zone aggregates published to Kafka.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wrangle_duration_seconds",
			Help:      "Duration of a complete wrangler run.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LocatorCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locator_cache_total",
			Help:      "Zone locator cache lookups by result.",
		}, []string{"result"}),
		ChartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_requests_total",
			Help:      "Chart requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent composing a chart response.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"endpoint"}),
		DatasetReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Merged dataset reloads by outcome.",
		}, []string{"outcome"}),
		DatasetZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_zones",
			Help:      "Zones in the dataset currently served.",
		}),
	}
}
