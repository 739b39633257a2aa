// Package domain models the 2018 Central Park Squirrel Census and the park zones
// sightings are joined against.
//
// # Data Source
//
// Sightings come from the NYC OpenData "2018 Central Park Squirrel Census - Squirrel
// Data" export (one CSV row per sighting). Zone boundaries come from the NYC Parks
// "Parks Zones" GeoJSON, filtered to Central Park.
//
// # Census Conventions
//
// Position:
//
//	The "Lat/Long" column holds a WKT point in lon/lat order, e.g.
//	"POINT (-73.9561344937861 40.7940823884086)". X and Y repeat the same values.
//
// Shift:
//
//	"AM" or "PM". Sightings were recorded in two daily sessions; a blank shift is
//	kept as unknown and counted in the zone total but in neither shift.
//
// Behavior flags:
//
//	"true"/"false" (any case). Blank cells are unknown. Only true contributes to a
//	zone sum. Kuks, Quaas and Moans are vocalization sub-types and are reported as a
//	single Vocalizations count; Running+Chasing and Eating+Foraging are likewise
//	merged.
//
// Zone names:
//
//	A zone is named by its "sitename" property, falling back to its "location"
//	descriptor. Four Central Park West zones share a sitename in the source data and
//	are renamed by matching their location descriptor (see [ZoneTable]). Names must be
//	unique before aggregation because aggregates are keyed by name.
//
// # Merged Dataset
//
// The wrangler writes one GeoJSON feature per zone that has at least one sighting,
// ordered by total count ascending. Property keys follow the column names the
// dashboard front end has always used ("Unique_Squirrel_ID" holds the sighting count,
// "Count_diff (AM - PM)" the shift differential). See [Merge].
package domain
