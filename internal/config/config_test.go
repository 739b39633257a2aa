package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/squirrel_census.csv", cfg.ObservationsPath)
	assert.Equal(t, "data/central_park_geo.geojson", cfg.ZonesPath)
	assert.Equal(t, "data/squirrel_plots.json", cfg.DatasetPath)
	assert.Empty(t, cfg.SummaryPath)
	assert.Empty(t, cfg.ZoneTablePath)
	assert.Zero(t, cfg.SimplifyTolerance)
	assert.Equal(t, spatial.PolicyFirst, cfg.OverlapPolicy)
	assert.Equal(t, 4096, cfg.LocatorCacheSize)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.DatasetWatch)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, domain.RunningOrChasing, cfg.DefaultBehavior)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "squirrel-zone-aggregates", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("OBSERVATIONS_PATH", "/in/census.csv")
	t.Setenv("ZONES_PATH", "/in/zones.geojson")
	t.Setenv("DATASET_PATH", "/out/merged.json")
	t.Setenv("SUMMARY_PATH", "/out/summary.csv")
	t.Setenv("ZONE_TABLE_PATH", "/etc/zones.yaml")
	t.Setenv("SIMPLIFY_TOLERANCE", "0.00001")
	t.Setenv("OVERLAP_POLICY", "smallest-area")
	t.Setenv("LOCATOR_CACHE_SIZE", "64")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATASET_WATCH", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://census.example.org")
	t.Setenv("DEFAULT_BEHAVIOR", "Climbing")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "zones")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/in/census.csv", cfg.ObservationsPath)
	assert.Equal(t, "/in/zones.geojson", cfg.ZonesPath)
	assert.Equal(t, "/out/merged.json", cfg.DatasetPath)
	assert.Equal(t, "/out/summary.csv", cfg.SummaryPath)
	assert.Equal(t, "/etc/zones.yaml", cfg.ZoneTablePath)
	assert.InDelta(t, 0.00001, cfg.SimplifyTolerance, 1e-12)
	assert.Equal(t, spatial.PolicySmallestArea, cfg.OverlapPolicy)
	assert.Equal(t, 64, cfg.LocatorCacheSize)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.DatasetWatch)
	assert.Equal(t, []string{"http://localhost:3000", "https://census.example.org"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, domain.Climbing, cfg.DefaultBehavior)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "zones", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"tolerance not a number", "SIMPLIFY_TOLERANCE", "fine"},
		{"negative tolerance", "SIMPLIFY_TOLERANCE", "-0.1"},
		{"unknown overlap policy", "OVERLAP_POLICY", "largest"},
		{"cache size not a number", "LOCATOR_CACHE_SIZE", "many"},
		{"zero cache size", "LOCATOR_CACHE_SIZE", "0"},
		{"watch not a bool", "DATASET_WATCH", "sometimes"},
		{"unknown behavior", "DEFAULT_BEHAVIOR", "Sleeping"},
		{"kafka enabled not a bool", "KAFKA_ENABLED", "yes please"},
		{"unknown log format", "LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoadZoneTable_Default(t *testing.T) {
	table, err := LoadZoneTable("")
	require.NoError(t, err)

	assert.Len(t, table.Overrides, 4)
	assert.Len(t, table.ShortNames, 48)

	short, ok := table.ShortName("The Metropolitan Museum Of Art")
	assert.True(t, ok)
	assert.Equal(t, "The Met", short)

	short, ok = table.ShortName("Central Park West (Zone 2)")
	assert.True(t, ok)
	assert.Equal(t, "Central Park W (Z-2)", short)

	short, ok = table.ShortName("Great Lawn And Cleopatra's Needle")
	assert.True(t, ok)
	assert.Equal(t, "Great Lawn", short)
}

func TestLoadZoneTable_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
overrides:
  - location: "North End"
    sitename: "Lawn (North)"
short_names:
  "Lawn (North)": "N Lawn"
`), 0o600))

	table, err := LoadZoneTable(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ZoneOverride{{Location: "North End", Sitename: "Lawn (North)"}}, table.Overrides)
	assert.Equal(t, map[string]string{"Lawn (North)": "N Lawn"}, table.ShortNames)
}

func TestLoadZoneTable_Errors(t *testing.T) {
	_, err := LoadZoneTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read zone table")

	_, err = ParseZoneTable([]byte("overrides: [{location: a}]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sitename are required")

	_, err = ParseZoneTable([]byte("overrides:\n  - {location: a, sitename: b}\n  - {location: a, sitename: c}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listed twice")

	_, err = ParseZoneTable([]byte("short_names: [not, a, map]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode zone table")
}

func TestParseZoneTable_EmptyHasShortNameMap(t *testing.T) {
	table, err := ParseZoneTable(nil)
	require.NoError(t, err)
	assert.NotNil(t, table.ShortNames)
	assert.Empty(t, table.Overrides)
}
