package domain

import "sort"

// Sighting is an observation assigned to the zone that contains it.
type Sighting struct {
	Sitename    string
	Observation Observation
}

// ZoneAggregate summarizes the sightings of one zone. AMCount and PMCount are nil when
// the zone has no sighting in that shift, and CountDiff is nil unless both are set.
type ZoneAggregate struct {
	Sitename         string  `json:"sitename"`
	ShortName        *string `json:"sitename_short,omitempty"`
	Count            int     `json:"count"`
	Climbing         int     `json:"climbing"`
	Approaches       int     `json:"approaches"`
	Vocalizations    int     `json:"vocalizations"`
	RunningOrChasing int     `json:"running_or_chasing"`
	EatingOrForaging int     `json:"eating_or_foraging"`
	AMCount          *int    `json:"am_count"`
	PMCount          *int    `json:"pm_count"`
	CountDiff        *int    `json:"count_diff"`
}

// zoneTotals accumulates raw component sums before they are folded into composites.
type zoneTotals struct {
	count      int
	running    int
	chasing    int
	climbing   int
	eating     int
	foraging   int
	kuks       int
	quaas      int
	moans      int
	approaches int
	am         int
	pm         int
}

func (t *zoneTotals) add(o Observation) {
	t.count++
	t.running += o.Running.Count()
	t.chasing += o.Chasing.Count()
	t.climbing += o.Climbing.Count()
	t.eating += o.Eating.Count()
	t.foraging += o.Foraging.Count()
	t.kuks += o.Kuks.Count()
	t.quaas += o.Quaas.Count()
	t.moans += o.Moans.Count()
	t.approaches += o.Approaches.Count()
	switch o.Shift {
	case ShiftAM:
		t.am++
	case ShiftPM:
		t.pm++
	}
}

// Aggregate groups sightings by zone name and derives the per-zone counts. Short names
// are attached from the table by exact match. The result is ordered by sitename.
func Aggregate(sightings []Sighting, table ZoneTable) []ZoneAggregate {
	totals := make(map[string]*zoneTotals)
	for _, s := range sightings {
		t, ok := totals[s.Sitename]
		if !ok {
			t = &zoneTotals{}
			totals[s.Sitename] = t
		}
		t.add(s.Observation)
	}

	out := make([]ZoneAggregate, 0, len(totals))
	for name, t := range totals {
		agg := ZoneAggregate{
			Sitename:         name,
			Count:            t.count,
			Climbing:         t.climbing,
			Approaches:       t.approaches,
			Vocalizations:    t.kuks + t.quaas + t.moans,
			RunningOrChasing: t.running + t.chasing,
			EatingOrForaging: t.eating + t.foraging,
			AMCount:          nonZero(t.am),
			PMCount:          nonZero(t.pm),
		}
		if agg.AMCount != nil && agg.PMCount != nil {
			diff := *agg.AMCount - *agg.PMCount
			agg.CountDiff = &diff
		}
		if short, ok := table.ShortName(name); ok {
			agg.ShortName = &short
		}
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Sitename < out[j].Sitename })
	return out
}

// nonZero returns nil for an absent shift so that it propagates as missing rather
// than as a zero count.
func nonZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
