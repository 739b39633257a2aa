package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/squirrel-census/internal/domain"
)

type zoneNames = domain.ZoneTable

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	fields map[string]string
}

func loadCensus(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	rows := make([]csvRow, 0, len(all)-1)
	for _, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[strings.TrimSpace(h)] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{fields: fields})
	}
	return rows, nil
}

type oracleZone struct {
	name     string
	polygons []orb.Polygon
}

// loadZones reads the zone file in order and resolves each zone's name the way the
// wrangler does: the sitename property, else the location, then the override table.
func loadZones(path string, table zoneNames) ([]oracleZone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]string, len(table.Overrides))
	for _, o := range table.Overrides {
		overrides[o.Location] = o.Sitename
	}

	zones := make([]oracleZone, 0, len(fc.Features))
	for i, f := range fc.Features {
		location, _ := f.Properties["location"].(string)
		name, _ := f.Properties["sitename"].(string)
		if name == "" {
			name = location
		}
		if o, ok := overrides[location]; ok {
			name = o
		}

		z := oracleZone{name: name}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			z.polygons = []orb.Polygon{g}
		case orb.MultiPolygon:
			z.polygons = g
		default:
			return nil, fmt.Errorf("feature %d: unexpected geometry %T", i, f.Geometry)
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// datasetFeature is one merged dataset feature as plain JSON values.
type datasetFeature struct {
	Properties map[string]any `json:"properties"`
	Geometry   struct {
		Type string `json:"type"`
	} `json:"geometry"`
}

func loadDataset(path string) ([]datasetFeature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc struct {
		Type     string           `json:"type"`
		Features []datasetFeature `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("type %q: want FeatureCollection", fc.Type)
	}
	return fc.Features, nil
}

// ── Recompute ──

// zoneTotals holds the aggregate values recomputed from raw rows.
type zoneTotals struct {
	count, climbing, approaches, vocalizations int
	runningOrChasing, eatingOrForaging         int
	am, pm                                     int
}

// recompute assigns every sighting to the first zone whose polygon contains it and
// sums the behavior columns.
func recompute(rows []csvRow, zones []oracleZone) (map[string]*zoneTotals, int) {
	totals := map[string]*zoneTotals{}
	unmatched := 0
	for _, row := range rows {
		p, ok := parsePoint(row.fields["Lat/Long"])
		if !ok {
			unmatched++
			continue
		}
		zone := ""
		for _, z := range zones {
			if z.contains(p) {
				zone = z.name
				break
			}
		}
		if zone == "" {
			unmatched++
			continue
		}

		t := totals[zone]
		if t == nil {
			t = &zoneTotals{}
			totals[zone] = t
		}
		t.count++
		t.climbing += flagCount(row, "Climbing")
		t.approaches += flagCount(row, "Approaches")
		t.vocalizations += flagCount(row, "Kuks") + flagCount(row, "Quaas") + flagCount(row, "Moans")
		t.runningOrChasing += flagCount(row, "Running") + flagCount(row, "Chasing")
		t.eatingOrForaging += flagCount(row, "Eating") + flagCount(row, "Foraging")
		switch strings.ToUpper(row.fields["Shift"]) {
		case "AM":
			t.am++
		case "PM":
			t.pm++
		}
	}
	return totals, unmatched
}

func flagCount(row csvRow, col string) int {
	if strings.EqualFold(row.fields[col], "true") {
		return 1
	}
	return 0
}

// parsePoint reads "POINT (lon lat)".
func parsePoint(s string) (orb.Point, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "POINT") {
		return orb.Point{}, false
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "POINT"))
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return orb.Point{}, false
	}
	x, err1 := strconv.ParseFloat(parts[0], 64)
	y, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, false
	}
	return orb.Point{x, y}, true
}

// contains is strict: a point on any ring of the zone is outside it.
func (z oracleZone) contains(p orb.Point) bool {
	for _, poly := range z.polygons {
		for _, ring := range poly {
			if onRing(ring, p) {
				return false
			}
		}
	}
	for _, poly := range z.polygons {
		if len(poly) == 0 || !rayCast(poly[0], p) {
			continue
		}
		inHole := false
		for _, hole := range poly[1:] {
			if rayCast(hole, p) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// rayCast is the even-odd rule: count ring edges crossed by a ray going east of p.
func rayCast(ring orb.Ring, p orb.Point) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a[1] > p[1]) != (b[1] > p[1]) &&
			p[0] < (b[0]-a[0])*(p[1]-a[1])/(b[1]-a[1])+a[0] {
			inside = !inside
		}
	}
	return inside
}

func onRing(ring orb.Ring, p orb.Point) bool {
	for i := 1; i < len(ring); i++ {
		a, b := ring[i-1], ring[i]
		if (b[0]-a[0])*(p[1]-a[1]) != (b[1]-a[1])*(p[0]-a[0]) {
			continue
		}
		if (p[0]-a[0])*(p[0]-b[0]) <= 0 && (p[1]-a[1])*(p[1]-b[1]) <= 0 {
			return true
		}
	}
	return false
}
