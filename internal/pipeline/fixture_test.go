package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/squirrel-census/internal/adapter/census"
	"github.com/couchcryptid/squirrel-census/internal/adapter/geojson"
	"github.com/couchcryptid/squirrel-census/internal/adapter/summary"
	"github.com/couchcryptid/squirrel-census/internal/config"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixtureCensus = "testdata/census.csv"
	fixtureZones  = "testdata/zones.geojson"
)

func runFixture(t *testing.T, out string) domain.RunSummary {
	t.Helper()
	table, err := config.LoadZoneTable("")
	require.NoError(t, err)

	logger := discardLogger()
	sinks := []pipeline.DatasetSink{
		geojson.NewDatasetWriter(out, logger),
		summary.NewWriter(out+".csv", logger),
	}
	w := pipeline.New(
		census.NewReader(fixtureCensus, logger),
		geojson.NewZoneReader(fixtureZones, logger),
		sinks,
		pipeline.Options{Table: table, CacheSize: 16},
		logger,
		newTestMetrics(),
	)
	run, err := w.Run(context.Background())
	require.NoError(t, err)
	return run
}

func TestWrangler_Fixture_MatchesOracle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "squirrel_plots.json")
	run := runFixture(t, out)

	want := oracleCounts(t)
	ds, err := geojson.LoadDataset(out)
	require.NoError(t, err)

	got := map[string]int{}
	for _, a := range ds.Aggregates() {
		got[a.Sitename] = a.Count
	}
	assert.Equal(t, want, got)

	matched := 0
	for _, n := range want {
		matched += n
	}
	assert.Equal(t, matched, run.Matched)
	assert.Equal(t, run.Observations-matched, run.Unmatched)
	assert.Positive(t, run.Unmatched, "fixture includes sightings outside the park")
	assert.NotContains(t, got, "Empty Lawn")
}

func TestWrangler_Fixture_AppliesZoneTable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "squirrel_plots.json")
	runFixture(t, out)

	ds, err := geojson.LoadDataset(out)
	require.NoError(t, err)

	names := map[string]*string{}
	for _, a := range ds.Aggregates() {
		names[a.Sitename] = a.ShortName
	}
	require.Contains(t, names, "Central Park West (Zone 1)")
	require.Contains(t, names, "Central Park West (Zone 3)")
	require.NotNil(t, names["Central Park West (Zone 3)"])
	assert.Equal(t, "Central Park W (Z-3)", *names["Central Park West (Zone 3)"])
	assert.Equal(t, "The Ramble", *names["The Ramble"])
}

func TestWrangler_Fixture_Deterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	runFixture(t, first)
	runFixture(t, second)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	a, err = os.ReadFile(first + ".csv")
	require.NoError(t, err)
	b, err = os.ReadFile(second + ".csv")
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// --- oracle ---

// oracleCounts assigns each fixture sighting with a ray-casting test written against
// the raw GeoJSON coordinates, independent of the spatial package.
func oracleCounts(t *testing.T) map[string]int {
	t.Helper()
	table, err := config.LoadZoneTable("")
	require.NoError(t, err)
	renames := map[string]string{}
	for _, o := range table.Overrides {
		renames[o.Location] = o.Sitename
	}

	data, err := os.ReadFile(fixtureZones)
	require.NoError(t, err)
	var fc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
			Geometry   struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	type zone struct {
		name     string
		polygons [][][][2]float64
	}
	var zones []zone
	for _, f := range fc.Features {
		z := zone{name: f.Properties["sitename"].(string)}
		if renamed, ok := renames[f.Properties["location"].(string)]; ok {
			z.name = renamed
		}
		switch f.Geometry.Type {
		case "Polygon":
			var p [][][2]float64
			require.NoError(t, json.Unmarshal(f.Geometry.Coordinates, &p))
			z.polygons = [][][][2]float64{p}
		case "MultiPolygon":
			require.NoError(t, json.Unmarshal(f.Geometry.Coordinates, &z.polygons))
		}
		zones = append(zones, z)
	}

	f, err := os.Open(fixtureCensus)
	require.NoError(t, err)
	defer f.Close()
	obs, err := census.Decode(context.Background(), f)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, o := range obs {
		x, y := o.Position[0], o.Position[1]
		for _, z := range zones {
			if inAnyPolygon(z.polygons, x, y) {
				counts[z.name]++
				break
			}
		}
	}
	return counts
}

func inAnyPolygon(polygons [][][][2]float64, x, y float64) bool {
	for _, rings := range polygons {
		if !inRing(rings[0], x, y) {
			continue
		}
		inHole := false
		for _, hole := range rings[1:] {
			if inRing(hole, x, y) {
				inHole = true
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

func inRing(ring [][2]float64, x, y float64) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
