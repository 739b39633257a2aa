package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
)

// Merged dataset property keys.
const (
	PropSitename         = "sitename"
	PropShortName        = "sitename_short"
	PropLocation         = "location"
	PropCount            = "Unique_Squirrel_ID"
	PropClimbing         = "Climbing"
	PropApproaches       = "Approaches"
	PropVocalizations    = "Vocalizations"
	PropRunningOrChasing = "Running_or_chasing"
	PropEatingOrForaging = "Eating_or_foraging"
	PropCountAM          = "Count_AM"
	PropCountPM          = "Count_PM"
	PropCountDiff        = "Count_diff (AM - PM)"
)

var aggregateProps = []string{
	PropSitename, PropShortName, PropCount, PropClimbing, PropApproaches,
	PropVocalizations, PropRunningOrChasing, PropEatingOrForaging,
	PropCountAM, PropCountPM, PropCountDiff,
}

// DatasetFeature is one zone of the merged dataset.
type DatasetFeature struct {
	Geometry   orb.Geometry
	Properties map[string]any // source zone properties, excluding aggregate keys
	Aggregate  ZoneAggregate
}

// Dataset is the merged zone geometry + aggregate collection handed from the
// wrangler to the dashboard. Features are ordered by count ascending.
type Dataset struct {
	Features []DatasetFeature
}

// MergeOptions tunes how zone geometry is written into the dataset.
type MergeOptions struct {
	// SimplifyTolerance enables Douglas-Peucker simplification when positive.
	SimplifyTolerance float64
}

// Merge inner-joins zones with aggregates on sitename: zones without sightings and
// aggregates without a zone are dropped. Features are sorted by count ascending,
// ties broken by sitename so that output is deterministic.
func Merge(zones []Zone, aggs []ZoneAggregate, opts MergeOptions) *Dataset {
	bySite := make(map[string]ZoneAggregate, len(aggs))
	for _, a := range aggs {
		bySite[a.Sitename] = a
	}

	ds := &Dataset{Features: make([]DatasetFeature, 0, len(aggs))}
	for _, z := range zones {
		agg, ok := bySite[z.Sitename]
		if !ok {
			continue
		}
		ds.Features = append(ds.Features, DatasetFeature{
			Geometry:   simplifyGeometry(z.Geometry, opts.SimplifyTolerance),
			Properties: sourceProperties(z.Properties),
			Aggregate:  agg,
		})
	}

	sortByCount(ds.Features)
	return ds
}

func sortByCount(features []DatasetFeature) {
	sort.SliceStable(features, func(i, j int) bool {
		a, b := features[i].Aggregate, features[j].Aggregate
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		return a.Sitename < b.Sitename
	})
}

// simplifyGeometry returns a simplified copy of g, or g itself when simplification is
// off or would collapse a ring.
func simplifyGeometry(g orb.Geometry, tolerance float64) orb.Geometry {
	if tolerance <= 0 {
		return g
	}
	s := simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(g))
	if ValidatePolygonal(s) != nil {
		return g
	}
	return s
}

func sourceProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	for _, k := range aggregateProps {
		delete(out, k)
	}
	return out
}

// Aggregates returns the zone aggregates in dataset order.
func (d *Dataset) Aggregates() []ZoneAggregate {
	out := make([]ZoneAggregate, len(d.Features))
	for i, f := range d.Features {
		out[i] = f.Aggregate
	}
	return out
}

// SortOrder returns zone short names ordered by count ascending. It re-sorts rather
// than trusting feature order. Zones without a short name are omitted.
func (d *Dataset) SortOrder() []string {
	features := make([]DatasetFeature, len(d.Features))
	copy(features, d.Features)
	sortByCount(features)

	order := make([]string, 0, len(features))
	for _, f := range features {
		if f.Aggregate.ShortName != nil {
			order = append(order, *f.Aggregate.ShortName)
		}
	}
	return order
}

// FeatureCollection converts the dataset to GeoJSON.
func (d *Dataset) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range d.Features {
		feat := geojson.NewFeature(f.Geometry)
		for k, v := range f.Properties {
			feat.Properties[k] = v
		}
		a := f.Aggregate
		feat.Properties[PropSitename] = a.Sitename
		if a.ShortName != nil {
			feat.Properties[PropShortName] = *a.ShortName
		}
		feat.Properties[PropCount] = a.Count
		feat.Properties[PropClimbing] = a.Climbing
		feat.Properties[PropApproaches] = a.Approaches
		feat.Properties[PropVocalizations] = a.Vocalizations
		feat.Properties[PropRunningOrChasing] = a.RunningOrChasing
		feat.Properties[PropEatingOrForaging] = a.EatingOrForaging
		feat.Properties[PropCountAM] = intOrNil(a.AMCount)
		feat.Properties[PropCountPM] = intOrNil(a.PMCount)
		feat.Properties[PropCountDiff] = intOrNil(a.CountDiff)
		fc.Append(feat)
	}
	return fc
}

// MarshalJSON encodes the dataset as a GeoJSON FeatureCollection. Property maps are
// encoded with sorted keys, so identical datasets produce identical bytes.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.FeatureCollection())
}

// DatasetFromFeatureCollection rebuilds a dataset from a merged GeoJSON collection.
func DatasetFromFeatureCollection(fc *geojson.FeatureCollection) (*Dataset, error) {
	ds := &Dataset{Features: make([]DatasetFeature, 0, len(fc.Features))}
	for i, feat := range fc.Features {
		if err := ValidatePolygonal(feat.Geometry); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		agg, err := aggregateFromProperties(feat.Properties)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		ds.Features = append(ds.Features, DatasetFeature{
			Geometry:   feat.Geometry,
			Properties: sourceProperties(feat.Properties),
			Aggregate:  agg,
		})
	}
	sortByCount(ds.Features)
	return ds, nil
}

func aggregateFromProperties(p geojson.Properties) (ZoneAggregate, error) {
	name, ok := p[PropSitename].(string)
	if !ok || name == "" {
		return ZoneAggregate{}, fmt.Errorf("property %q: missing", PropSitename)
	}
	agg := ZoneAggregate{Sitename: name}
	if s, ok := p[PropShortName].(string); ok {
		agg.ShortName = &s
	}

	required := []struct {
		key string
		dst *int
	}{
		{PropCount, &agg.Count},
		{PropClimbing, &agg.Climbing},
		{PropApproaches, &agg.Approaches},
		{PropVocalizations, &agg.Vocalizations},
		{PropRunningOrChasing, &agg.RunningOrChasing},
		{PropEatingOrForaging, &agg.EatingOrForaging},
	}
	for _, r := range required {
		v, err := intProperty(p, r.key)
		if err != nil {
			return ZoneAggregate{}, err
		}
		if v == nil {
			return ZoneAggregate{}, fmt.Errorf("property %q: missing", r.key)
		}
		*r.dst = *v
	}

	var err error
	if agg.AMCount, err = intProperty(p, PropCountAM); err != nil {
		return ZoneAggregate{}, err
	}
	if agg.PMCount, err = intProperty(p, PropCountPM); err != nil {
		return ZoneAggregate{}, err
	}
	if agg.CountDiff, err = intProperty(p, PropCountDiff); err != nil {
		return ZoneAggregate{}, err
	}
	return agg, nil
}

// intProperty reads an integral property. Absent and null values return nil.
func intProperty(p geojson.Properties, key string) (*int, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var n int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("property %q: %v is not an integer", key, v)
		}
		n = int(v)
	case int:
		n = v
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		n = int(i)
	default:
		return nil, fmt.Errorf("property %q: unexpected type %T", key, raw)
	}
	return &n, nil
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
