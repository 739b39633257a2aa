package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/couchcryptid/squirrel-census/internal/domain"
	"gopkg.in/yaml.v3"
)

// defaultZoneTable is the naming table for the 2018 Central Park census zones.
//
//go:embed zones.yaml
var defaultZoneTable []byte

// LoadZoneTable reads the zone naming table from path, or returns the built-in
// Central Park table when path is empty.
func LoadZoneTable(path string) (domain.ZoneTable, error) {
	data := defaultZoneTable
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return domain.ZoneTable{}, fmt.Errorf("read zone table: %w", err)
		}
	}
	return ParseZoneTable(data)
}

// ParseZoneTable decodes a YAML zone table. Overrides must name both a location and a
// sitename, and a location may be overridden only once.
func ParseZoneTable(data []byte) (domain.ZoneTable, error) {
	var table domain.ZoneTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return domain.ZoneTable{}, fmt.Errorf("decode zone table: %w", err)
	}
	seen := make(map[string]bool, len(table.Overrides))
	for i, o := range table.Overrides {
		if o.Location == "" || o.Sitename == "" {
			return domain.ZoneTable{}, fmt.Errorf("zone table override %d: location and sitename are required", i)
		}
		if seen[o.Location] {
			return domain.ZoneTable{}, fmt.Errorf("zone table override %d: location %q listed twice", i, o.Location)
		}
		seen[o.Location] = true
	}
	if table.ShortNames == nil {
		table.ShortNames = map[string]string{}
	}
	return table, nil
}
