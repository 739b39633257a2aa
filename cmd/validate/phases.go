package main

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/squirrel-census/internal/domain"
)

var integerProps = []string{
	domain.PropCount, domain.PropClimbing, domain.PropApproaches, domain.PropVocalizations,
	domain.PropRunningOrChasing, domain.PropEatingOrForaging,
}

// ── Phase 1: Dataset schema ──

func validateSchema(features []datasetFeature) *phase {
	p := &phase{name: "Dataset schema"}
	seen := map[string]bool{}
	prevCount, prevName := -1, ""

	for i, f := range features {
		name, ok := f.Properties[domain.PropSitename].(string)
		if !ok || name == "" {
			p.errorf("feature %d: missing %q", i, domain.PropSitename)
			continue
		}
		if seen[name] {
			p.errorf("feature %d: duplicate zone %q", i, name)
		}
		seen[name] = true

		switch f.Geometry.Type {
		case "Polygon", "MultiPolygon":
		default:
			p.errorf("%s: geometry %q is not polygonal", name, f.Geometry.Type)
		}
		for _, key := range integerProps {
			if _, ok := intProp(f.Properties, key); !ok {
				p.errorf("%s: %q missing or not an integer", name, key)
			}
		}
		if _, present := f.Properties[domain.PropCountDiff]; !present {
			p.errorf("%s: %q absent (want integer or null)", name, domain.PropCountDiff)
		}

		count, _ := intProp(f.Properties, domain.PropCount)
		if count < prevCount || (count == prevCount && name < prevName) {
			p.errorf("%s: out of order (count %d after %d)", name, count, prevCount)
		}
		prevCount, prevName = count, name
	}
	return p
}

// ── Phase 2: Zone counts ──

func validateCounts(features []datasetFeature, expected map[string]*zoneTotals) *phase {
	p := &phase{name: "Zone counts (point-in-polygon oracle)"}
	got := map[string]bool{}
	for _, f := range features {
		name, _ := f.Properties[domain.PropSitename].(string)
		got[name] = true
		want, ok := expected[name]
		if !ok {
			p.errorf("%s: in dataset but no sighting falls inside it", name)
			continue
		}
		if count, _ := intProp(f.Properties, domain.PropCount); count != want.count {
			p.errorf("%s: count %d, oracle %d", name, count, want.count)
		}
	}

	var missing []string
	for name := range expected {
		if !got[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		p.errorf("%s: has %d sightings but is missing from the dataset", name, expected[name].count)
	}
	return p
}

// ── Phase 3: Behavior sums ──

func validateBehaviors(features []datasetFeature, expected map[string]*zoneTotals) *phase {
	p := &phase{name: "Behavior composites"}
	for _, f := range features {
		name, _ := f.Properties[domain.PropSitename].(string)
		want, ok := expected[name]
		if !ok {
			continue
		}
		checks := []struct {
			key  string
			want int
		}{
			{domain.PropClimbing, want.climbing},
			{domain.PropApproaches, want.approaches},
			{domain.PropVocalizations, want.vocalizations},
			{domain.PropRunningOrChasing, want.runningOrChasing},
			{domain.PropEatingOrForaging, want.eatingOrForaging},
		}
		for _, c := range checks {
			if got, _ := intProp(f.Properties, c.key); got != c.want {
				p.errorf("%s: %s %d, oracle %d", name, c.key, got, c.want)
			}
		}
	}
	return p
}

// ── Phase 4: Shift differential ──

func validateShifts(features []datasetFeature, expected map[string]*zoneTotals) *phase {
	p := &phase{name: "AM-PM differential"}
	for _, f := range features {
		name, _ := f.Properties[domain.PropSitename].(string)
		want, ok := expected[name]
		if !ok {
			continue
		}
		checkShiftCount(p, name, f.Properties, domain.PropCountAM, want.am)
		checkShiftCount(p, name, f.Properties, domain.PropCountPM, want.pm)

		diff, hasDiff := intProp(f.Properties, domain.PropCountDiff)
		switch {
		case want.am > 0 && want.pm > 0:
			if !hasDiff || diff != want.am-want.pm {
				p.errorf("%s: differential %s, oracle %d", name, describe(f.Properties[domain.PropCountDiff]), want.am-want.pm)
			}
		case f.Properties[domain.PropCountDiff] != nil:
			p.errorf("%s: differential %s, want null (AM %d, PM %d)", name, describe(f.Properties[domain.PropCountDiff]), want.am, want.pm)
		}
	}
	return p
}

// checkShiftCount expects null for a shift with no sightings.
func checkShiftCount(p *phase, name string, props map[string]any, key string, want int) {
	got, ok := intProp(props, key)
	switch {
	case want == 0 && props[key] != nil:
		p.errorf("%s: %s %s, want null", name, key, describe(props[key]))
	case want > 0 && (!ok || got != want):
		p.errorf("%s: %s %s, oracle %d", name, key, describe(props[key]), want)
	}
}

// ── Phase 5: Short names ──

func validateNames(features []datasetFeature, table zoneNames) *phase {
	p := &phase{name: "Short names"}
	for _, f := range features {
		name, _ := f.Properties[domain.PropSitename].(string)
		short, hasShort := f.Properties[domain.PropShortName]
		want, known := table.ShortNames[name]
		switch {
		case known && short != want:
			p.errorf("%s: short name %s, table %q", name, describe(short), want)
		case !known && hasShort:
			p.errorf("%s: short name %s set but zone is not in the table", name, describe(short))
		}
	}
	return p
}

// ── Helpers ──

func intProp(props map[string]any, key string) (int, bool) {
	v, ok := props[key].(float64)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}
