// Command genmock generates a synthetic park for local runs and tests: a zone
// GeoJSON file named from the zone table and a census CSV in the 2018 Central Park
// Squirrel Census layout. Output is reproducible for a given seed. It uses the
// wrangler's own spatial index to print the zone counts a run should produce.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -zones-out data/mock/zones.geojson \
//	  -census-out data/mock/census.csv \
//	  -rows 3000 -seed 2018
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/couchcryptid/squirrel-census/internal/adapter/census"
	"github.com/couchcryptid/squirrel-census/internal/adapter/geojson"
	"github.com/couchcryptid/squirrel-census/internal/config"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/spatial"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	zonesOut := flag.String("zones-out", "", "output path for the zone GeoJSON")
	censusOut := flag.String("census-out", "", "output path for the census CSV")
	zoneTable := flag.String("zone-table", "", "zone table to name zones from (default: built-in)")
	zoneCount := flag.Int("zones", 12, "number of named zones besides the Central Park West strips")
	rows := flag.Int("rows", 3000, "number of sightings")
	seed := flag.Uint64("seed", 2018, "random seed")
	flag.Parse()

	if *zonesOut == "" || *censusOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -zones-out, -census-out")
	}

	table, err := config.LoadZoneTable(*zoneTable)
	if err != nil {
		return err
	}

	fc := generateZones(table, *zoneCount)
	zonesJSON, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode zones: %w", err)
	}
	if err := os.WriteFile(*zonesOut, zonesJSON, 0o644); err != nil {
		return fmt.Errorf("write zones: %w", err)
	}
	log.Printf("wrote %d zones: %s", len(fc.Features), *zonesOut)

	var buf bytes.Buffer
	rng := rand.New(rand.NewPCG(*seed, *seed))
	if err := generateCensus(&buf, *rows, rng); err != nil {
		return err
	}
	if err := os.WriteFile(*censusOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write census: %w", err)
	}
	log.Printf("wrote %d sightings: %s", *rows, *censusOut)

	return printStats(zonesJSON, buf.Bytes(), table)
}

// printStats locates every generated sighting with the wrangler's index, giving the
// expected per-zone counts for test assertions.
func printStats(zonesJSON, censusCSV []byte, table domain.ZoneTable) error {
	zones, err := geojson.DecodeZones(zonesJSON)
	if err != nil {
		return err
	}
	zones, err = domain.ApplyOverrides(zones, table)
	if err != nil {
		return err
	}
	ix, err := spatial.NewIndex(zones, spatial.PolicyFirst)
	if err != nil {
		return err
	}
	observations, err := census.Decode(context.Background(), bytes.NewReader(censusCSV))
	if err != nil {
		return err
	}

	counts := map[string]int{}
	unmatched := 0
	for _, obs := range observations {
		m, ok := ix.Locate(obs.Position)
		if !ok {
			unmatched++
			continue
		}
		counts[m.Sitename]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] < counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Sightings: %d (matched %d, unmatched %d)\n", len(observations), len(observations)-unmatched, unmatched)
	fmt.Printf("Zones with sightings (%d):\n", len(names))
	for _, name := range names {
		fmt.Printf("  %-45s %d\n", name, counts[name])
	}
	return nil
}
