// Command validate checks a merged dataset against the inputs it was built from. It
// recomputes every zone aggregate with its own CSV reading and ray-casting
// point-in-polygon test, sharing only the zone table and property keys with the wrangler.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -census data/squirrel_census.csv \
//	  -zones data/central_park_geo.geojson \
//	  -dataset data/squirrel_plots.json
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/squirrel-census/internal/config"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	censusPath := flag.String("census", "", "census CSV the dataset was built from")
	zonesPath := flag.String("zones", "", "zone GeoJSON the dataset was built from")
	datasetPath := flag.String("dataset", "", "merged dataset to check")
	zoneTable := flag.String("zone-table", "", "zone table used by the wrangler (default: built-in)")
	flag.Parse()

	if *censusPath == "" || *zonesPath == "" || *datasetPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*censusPath, *zonesPath, *datasetPath, *zoneTable); code != 0 {
		os.Exit(code)
	}
}

func run(censusPath, zonesPath, datasetPath, zoneTablePath string) int {
	fmt.Println("=== Squirrel Census Dataset Validation ===")
	fmt.Println()

	table, err := config.LoadZoneTable(zoneTablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load zone table: %v\n", err)
		return 1
	}
	rows, err := loadCensus(censusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load census: %v\n", err)
		return 1
	}
	zones, err := loadZones(zonesPath, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load zones: %v\n", err)
		return 1
	}
	features, err := loadDataset(datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	expected, unmatched := recompute(rows, zones)

	phases := validate(features, expected, table)

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d sightings (%d outside every zone), %d zones, %d dataset features\n",
		len(rows), unmatched, len(zones), len(features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(features []datasetFeature, expected map[string]*zoneTotals, table zoneNames) []*phase {
	return []*phase{
		validateSchema(features),
		validateCounts(features, expected),
		validateBehaviors(features, expected),
		validateShifts(features, expected),
		validateNames(features, table),
	}
}
