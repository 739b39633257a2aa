// Command wrangle joins the squirrel census to the park zones and writes the merged
// dataset the dashboard serves.
//
// Usage:
//
//	go run ./cmd/wrangle \
//	  --observations data/squirrel_census.csv \
//	  --zones data/central_park_geo.geojson \
//	  --out data/squirrel_plots.json
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/squirrel-census/internal/adapter/census"
	"github.com/couchcryptid/squirrel-census/internal/adapter/geojson"
	"github.com/couchcryptid/squirrel-census/internal/adapter/kafka"
	"github.com/couchcryptid/squirrel-census/internal/adapter/summary"
	"github.com/couchcryptid/squirrel-census/internal/config"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/observability"
	"github.com/couchcryptid/squirrel-census/internal/pipeline"
	"github.com/couchcryptid/squirrel-census/internal/spatial"
)

// flags override the matching environment variables when set.
type flags struct {
	observations  string
	zones         string
	out           string
	summary       string
	zoneTable     string
	simplify      float64
	overlapPolicy string
	cacheSize     int
	kafka         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	rootCmd := &cobra.Command{
		Use:   "wrangle",
		Short: "Build the merged squirrel census dataset",
		Long: `wrangle assigns every census sighting to the park zone that contains it,
aggregates behavior counts and the AM-PM differential per zone, and writes the
merged GeoJSON dataset read by the dashboard.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if _, err := wrangle(ctx, cfg, logger, observability.NewMetrics()); err != nil {
				logger.Error("wrangle failed", "error", err)
				return err
			}
			return nil
		},
	}

	bindFlags(rootCmd, &f)
	rootCmd.AddCommand(newTableCmd(&f))
	return rootCmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	fs := cmd.Flags()
	fs.StringVar(&f.observations, "observations", "", "census CSV (OBSERVATIONS_PATH)")
	fs.StringVar(&f.zones, "zones", "", "zone GeoJSON (ZONES_PATH)")
	fs.StringVarP(&f.out, "out", "o", "", "merged dataset output (DATASET_PATH)")
	fs.StringVar(&f.summary, "summary", "", "optional summary CSV output (SUMMARY_PATH)")
	fs.Float64Var(&f.simplify, "simplify", 0, "Douglas-Peucker tolerance for zone geometry, 0 disables (SIMPLIFY_TOLERANCE)")
	fs.StringVar(&f.overlapPolicy, "overlap-policy", "", "zone choice for points in overlapping zones: first or smallest-area (OVERLAP_POLICY)")
	fs.IntVar(&f.cacheSize, "cache-size", 0, "locator cache entries (LOCATOR_CACHE_SIZE)")
	fs.BoolVar(&f.kafka, "kafka", false, "publish zone aggregates to Kafka (KAFKA_ENABLED)")

	cmd.PersistentFlags().StringVar(&f.zoneTable, "zone-table", "", "zone override and short-name table (ZONE_TABLE_PATH)")
}

// newTableCmd prints the zone table in effect, for checking a custom table file.
func newTableCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the zone override and short-name table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := f.zoneTable
			if !cmd.Flags().Changed("zone-table") {
				path = os.Getenv("ZONE_TABLE_PATH")
			}
			table, err := config.LoadZoneTable(path)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("observations") {
		cfg.ObservationsPath = f.observations
	}
	if fs.Changed("zones") {
		cfg.ZonesPath = f.zones
	}
	if fs.Changed("out") {
		cfg.DatasetPath = f.out
	}
	if fs.Changed("summary") {
		cfg.SummaryPath = f.summary
	}
	if fs.Changed("zone-table") {
		cfg.ZoneTablePath = f.zoneTable
	}
	if fs.Changed("simplify") {
		if f.simplify < 0 {
			return nil, fmt.Errorf("--simplify must not be negative")
		}
		cfg.SimplifyTolerance = f.simplify
	}
	if fs.Changed("overlap-policy") {
		policy, err := spatial.ParseOverlapPolicy(f.overlapPolicy)
		if err != nil {
			return nil, fmt.Errorf("--overlap-policy: %w", err)
		}
		cfg.OverlapPolicy = policy
	}
	if fs.Changed("cache-size") {
		cfg.LocatorCacheSize = f.cacheSize
	}
	if fs.Changed("kafka") {
		cfg.KafkaEnabled = f.kafka
	}
	return cfg, nil
}

// wrangle runs the pipeline once with the sinks cfg enables.
func wrangle(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.RunSummary, error) {
	table, err := config.LoadZoneTable(cfg.ZoneTablePath)
	if err != nil {
		return domain.RunSummary{}, err
	}

	sinks, closeSinks := buildSinks(cfg, logger, metrics)
	defer closeSinks()

	w := pipeline.New(
		census.NewReader(cfg.ObservationsPath, logger),
		geojson.NewZoneReader(cfg.ZonesPath, logger),
		sinks,
		pipeline.Options{
			Table:         table,
			OverlapPolicy: cfg.OverlapPolicy,
			CacheSize:     cfg.LocatorCacheSize,
			Merge:         domain.MergeOptions{SimplifyTolerance: cfg.SimplifyTolerance},
		},
		logger,
		metrics,
	)
	return w.Run(ctx)
}

// buildSinks returns the enabled sinks with the merged dataset file last, so a failing
// summary or Kafka sink aborts the run before the dataset on disk is replaced.
func buildSinks(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) ([]pipeline.DatasetSink, func()) {
	var sinks []pipeline.DatasetSink
	closeSinks := func() {}
	if cfg.SummaryPath != "" {
		sinks = append(sinks, summary.NewWriter(cfg.SummaryPath, logger))
	}
	if cfg.KafkaEnabled {
		publisher := kafka.NewPublisher(cfg, logger, metrics)
		closeSinks = func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		sinks = append(sinks, publisher)
	}
	sinks = append(sinks, geojson.NewDatasetWriter(cfg.DatasetPath, logger))
	return sinks, closeSinks
}

func printTable(out io.Writer, table domain.ZoneTable) {
	fmt.Fprintln(out, "Overrides:")
	for _, o := range table.Overrides {
		fmt.Fprintf(out, "  %-45s -> %s\n", o.Location, o.Sitename)
	}

	names := make([]string, 0, len(table.ShortNames))
	for name := range table.ShortNames {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "\nShort names (%d):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(out, "  %-45s -> %s\n", name, table.ShortNames[name])
	}
}
