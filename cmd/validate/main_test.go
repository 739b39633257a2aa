package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/squirrel-census/internal/adapter/census"
	"github.com/couchcryptid/squirrel-census/internal/adapter/geojson"
	"github.com/couchcryptid/squirrel-census/internal/config"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/observability"
	"github.com/couchcryptid/squirrel-census/internal/pipeline"
)

var (
	fixtureCensus = filepath.Join("..", "..", "internal", "pipeline", "testdata", "census.csv")
	fixtureZones  = filepath.Join("..", "..", "internal", "pipeline", "testdata", "zones.geojson")
)

// wrangleFixture builds a merged dataset from the pipeline fixture.
func wrangleFixture(t *testing.T) string {
	t.Helper()
	table, err := config.LoadZoneTable("")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "squirrel_plots.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := pipeline.New(
		census.NewReader(fixtureCensus, logger),
		geojson.NewZoneReader(fixtureZones, logger),
		[]pipeline.DatasetSink{geojson.NewDatasetWriter(out, logger)},
		pipeline.Options{Table: table},
		logger,
		observability.NewMetricsForTesting(),
	)
	_, err = w.Run(context.Background())
	require.NoError(t, err)
	return out
}

// rewrite decodes the dataset file as plain JSON, applies edit, and writes it back.
func rewrite(t *testing.T, path string, edit func(features []any)) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fc map[string]any
	require.NoError(t, json.Unmarshal(data, &fc))
	edit(fc["features"].([]any))
	data, err = json.Marshal(fc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func props(feature any) map[string]any {
	return feature.(map[string]any)["properties"].(map[string]any)
}

func TestRun_WrangledFixturePasses(t *testing.T) {
	out := wrangleFixture(t)
	assert.Equal(t, 0, run(fixtureCensus, fixtureZones, out, ""))
}

func TestRun_TamperedDatasetFails(t *testing.T) {
	tests := []struct {
		name string
		edit func(features []any)
	}{
		{"count", func(fs []any) { props(fs[0])[domain.PropCount] = 1000.0 }},
		{"composite", func(fs []any) { props(fs[0])[domain.PropVocalizations] = 99.0 }},
		{"differential", func(fs []any) { props(fs[0])[domain.PropCountDiff] = 42.0 }},
		{"short name", func(fs []any) { props(fs[0])[domain.PropShortName] = "Nowhere" }},
		{"missing zone", func(fs []any) {
			last := len(fs) - 1
			fs[last] = fs[0]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := wrangleFixture(t)
			rewrite(t, out, tt.edit)
			assert.Equal(t, 1, run(fixtureCensus, fixtureZones, out, ""))
		})
	}
}

func TestRun_MissingInput(t *testing.T) {
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "missing.csv"), fixtureZones, "x.json", ""))
}

func TestRayCast(t *testing.T) {
	square := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	hole := orb.Ring{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}
	z := oracleZone{name: "donut", polygons: []orb.Polygon{{square, hole}}}

	assert.True(t, z.contains(orb.Point{0.5, 0.5}))
	assert.False(t, z.contains(orb.Point{2, 2}), "inside the hole")
	assert.False(t, z.contains(orb.Point{5, 2}))
	assert.False(t, z.contains(orb.Point{0, 2}), "outer edge")
	assert.False(t, z.contains(orb.Point{1, 2}), "hole edge")
}

func TestParsePoint(t *testing.T) {
	p, ok := parsePoint("POINT (-73.9561 40.7940)")
	require.True(t, ok)
	assert.Equal(t, orb.Point{-73.9561, 40.7940}, p)

	for _, s := range []string{"", "POINT ()", "LINESTRING (0 0, 1 1)", "POINT (a b)"} {
		_, ok := parsePoint(s)
		assert.False(t, ok, s)
	}
}

func TestValidateSchema_OrderAndDuplicates(t *testing.T) {
	feature := func(name string, count float64) datasetFeature {
		f := datasetFeature{Properties: map[string]any{domain.PropSitename: name, domain.PropCountDiff: nil}}
		for _, k := range integerProps {
			f.Properties[k] = 0.0
		}
		f.Properties[domain.PropCount] = count
		f.Geometry.Type = "Polygon"
		return f
	}

	ok := validateSchema([]datasetFeature{feature("A", 1), feature("B", 1), feature("C", 3)})
	assert.True(t, ok.passed(), ok.errors)

	bad := validateSchema([]datasetFeature{feature("B", 1), feature("A", 1), feature("A", 3)})
	assert.Len(t, bad.errors, 2, "A before B on a tie, then a duplicate")
}
