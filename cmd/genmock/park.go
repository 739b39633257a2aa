package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/squirrel-census/internal/domain"
)

// Zones are laid out on a grid inside the park; sightings are scattered over a
// slightly larger box so that some fall outside every zone.
var (
	zoneBounds  = orb.Bound{Min: orb.Point{-73.978, 40.768}, Max: orb.Point{-73.952, 40.797}}
	westStrip   = orb.Bound{Min: orb.Point{-73.981, 40.768}, Max: orb.Point{-73.978, 40.797}}
	censusBound = orb.Bound{Min: orb.Point{-73.983, 40.764}, Max: orb.Point{-73.949, 40.800}}
)

// censusHeader is the column layout of the 2018 census export.
var censusHeader = []string{
	"X", "Y", "Unique Squirrel ID", "Hectare", "Shift", "Date", "Hectare Squirrel Number",
	"Age", "Primary Fur Color", "Location", "Running", "Chasing", "Climbing", "Eating",
	"Foraging", "Other Activities", "Kuks", "Quaas", "Moans", "Tail flags", "Tail twitches",
	"Approaches", "Indifferent", "Runs from", "Other Interactions", "Lat/Long",
}

// flagRates is the probability each behavior column is true, in column order so the
// random stream is consumed the same way on every run.
var flagRates = []struct {
	column string
	rate   float64
}{
	{"Running", 0.24}, {"Chasing", 0.09}, {"Climbing", 0.22}, {"Eating", 0.23}, {"Foraging", 0.47},
	{"Kuks", 0.03}, {"Quaas", 0.02}, {"Moans", 0.01}, {"Tail flags", 0.05}, {"Tail twitches", 0.15},
	{"Approaches", 0.06}, {"Indifferent", 0.48}, {"Runs from", 0.22},
}

// generateZones builds n named zones on a grid plus one Central Park West strip per
// override in the table. Every fifth zone is a two-part MultiPolygon.
func generateZones(table domain.ZoneTable, n int) *geojson.FeatureCollection {
	overridden := make(map[string]bool, len(table.Overrides))
	for _, o := range table.Overrides {
		overridden[o.Sitename] = true
	}
	names := make([]string, 0, len(table.ShortNames))
	for name := range table.ShortNames {
		if !overridden[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	n = max(0, min(n, len(names)))

	fc := geojson.NewFeatureCollection()
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	if cols == 0 {
		cols = 1
	}
	rows := (n + cols - 1) / cols
	cellW := (zoneBounds.Max[0] - zoneBounds.Min[0]) / float64(cols)
	cellH := (zoneBounds.Max[1] - zoneBounds.Min[1]) / float64(max(rows, 1))

	for i := 0; i < n; i++ {
		minX := zoneBounds.Min[0] + float64(i%cols)*cellW
		minY := zoneBounds.Min[1] + float64(i/cols)*cellH

		var geom orb.Geometry = rect(minX, minY, minX+cellW, minY+cellH)
		if i%5 == 4 {
			// Leave a gap between the halves.
			half := cellW / 2
			geom = orb.MultiPolygon{
				rect(minX, minY, minX+half*0.9, minY+cellH),
				rect(minX+half*1.1, minY, minX+cellW, minY+cellH),
			}
		}
		fc.Append(zoneFeature(geom, names[i], names[i], i+1))
	}

	stripH := (westStrip.Max[1] - westStrip.Min[1]) / float64(max(len(table.Overrides), 1))
	for i, o := range table.Overrides {
		minY := westStrip.Min[1] + float64(i)*stripH
		geom := rect(westStrip.Min[0], minY, westStrip.Max[0], minY+stripH)
		fc.Append(zoneFeature(geom, "Central Park West", o.Location, n+i+1))
	}
	return fc
}

func zoneFeature(geom orb.Geometry, sitename, location string, id int) *geojson.Feature {
	f := geojson.NewFeature(geom)
	f.Properties["sitename"] = sitename
	f.Properties["location"] = location
	f.Properties["propid"] = "M010"
	f.Properties["zone_id"] = id
	return f
}

func rect(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}}
}

// generateCensus writes rows sightings in the census CSV layout.
func generateCensus(w io.Writer, rows int, rng *rand.Rand) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(censusHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < rows; i++ {
		if err := cw.Write(sightingRecord(i, rng)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func sightingRecord(i int, rng *rand.Rand) []string {
	x := censusBound.Min[0] + rng.Float64()*(censusBound.Max[0]-censusBound.Min[0])
	y := censusBound.Min[1] + rng.Float64()*(censusBound.Max[1]-censusBound.Min[1])
	lon := strconv.FormatFloat(x, 'f', 13, 64)
	lat := strconv.FormatFloat(y, 'f', 13, 64)

	hectare := fmt.Sprintf("%02d%c", 1+rng.IntN(42), 'A'+rune(rng.IntN(9)))
	shift := pick(rng, "AM", "PM")
	if rng.Float64() < 0.02 {
		shift = ""
	}
	date := fmt.Sprintf("10%02d2018", 6+rng.IntN(15))
	number := 1 + i%20
	idShift := shift
	if idShift == "" {
		idShift = "AM"
	}

	values := map[string]string{
		"X":                       lon,
		"Y":                       lat,
		"Unique Squirrel ID":      fmt.Sprintf("%s-%s-%s-%02d", hectare, idShift, date[:4], number),
		"Hectare":                 hectare,
		"Shift":                   shift,
		"Date":                    date,
		"Hectare Squirrel Number": strconv.Itoa(number),
		"Age":                     pick(rng, "Adult", "Adult", "Adult", "Juvenile", ""),
		"Primary Fur Color":       pick(rng, "Gray", "Gray", "Gray", "Cinnamon", "Black", ""),
		"Location":                pick(rng, "Ground Plane", "Ground Plane", "Above Ground", ""),
		"Lat/Long":                fmt.Sprintf("POINT (%s %s)", lon, lat),
	}
	for _, f := range flagRates {
		switch v := rng.Float64(); {
		case v < 0.01:
			values[f.column] = ""
		case v < f.rate:
			values[f.column] = "true"
		default:
			values[f.column] = "false"
		}
	}

	record := make([]string, len(censusHeader))
	for j, col := range censusHeader {
		record[j] = values[col]
	}
	return record
}

func pick(rng *rand.Rand, options ...string) string {
	return options[rng.IntN(len(options))]
}
