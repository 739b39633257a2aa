package domain

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	// ErrInvalidGeometry is returned for zone features without a polygonal geometry.
	ErrInvalidGeometry = errors.New("invalid zone geometry")
	// ErrDuplicateZone is returned when two zones share a name after overrides.
	ErrDuplicateZone = errors.New("duplicate zone name")
)

// Zone is a named, polygon-bounded region of the park.
type Zone struct {
	Sitename string
	Location string
	Geometry orb.Geometry // orb.Polygon or orb.MultiPolygon

	// Properties are the source feature properties, carried into the merged dataset.
	Properties map[string]any
}

// ZoneOverride renames the zone whose location descriptor equals Location.
type ZoneOverride struct {
	Location string `yaml:"location"`
	Sitename string `yaml:"sitename"`
}

// ZoneTable is the curated naming configuration for zones: location overrides that
// make sitenames unique, and the short names used for compact axis labels.
type ZoneTable struct {
	Overrides  []ZoneOverride    `yaml:"overrides"`
	ShortNames map[string]string `yaml:"short_names"`
}

// ShortName looks up the short label for a sitename by exact match.
func (t ZoneTable) ShortName(sitename string) (string, bool) {
	s, ok := t.ShortNames[sitename]
	return s, ok
}

// ValidatePolygonal reports an error unless g is a non-empty Polygon or MultiPolygon.
func ValidatePolygonal(g orb.Geometry) error {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 || len(v[0]) < 4 {
			return fmt.Errorf("%w: polygon needs a closed outer ring", ErrInvalidGeometry)
		}
	case orb.MultiPolygon:
		if len(v) == 0 {
			return fmt.Errorf("%w: empty multipolygon", ErrInvalidGeometry)
		}
		for _, p := range v {
			if len(p) == 0 || len(p[0]) < 4 {
				return fmt.Errorf("%w: multipolygon member needs a closed outer ring", ErrInvalidGeometry)
			}
		}
	case nil:
		return fmt.Errorf("%w: missing geometry", ErrInvalidGeometry)
	default:
		return fmt.Errorf("%w: unsupported type %s", ErrInvalidGeometry, g.GeoJSONType())
	}
	return nil
}

// ApplyOverrides renames zones whose location matches an override and then verifies
// that every sitename is unique. The input slice is not modified.
func ApplyOverrides(zones []Zone, table ZoneTable) ([]Zone, error) {
	byLocation := make(map[string]string, len(table.Overrides))
	for _, o := range table.Overrides {
		byLocation[o.Location] = o.Sitename
	}

	out := make([]Zone, len(zones))
	seen := make(map[string]int, len(zones))
	for i, z := range zones {
		if name, ok := byLocation[z.Location]; ok {
			z.Sitename = name
		}
		if prev, dup := seen[z.Sitename]; dup {
			return nil, fmt.Errorf("%w: %q (zones %d and %d)", ErrDuplicateZone, z.Sitename, prev, i)
		}
		seen[z.Sitename] = i
		out[i] = z
	}
	return out, nil
}
