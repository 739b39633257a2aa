// Package geojson reads park zone polygons and reads and writes the merged dataset.
package geojson

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// ZoneReader loads park zones from a GeoJSON FeatureCollection.
type ZoneReader struct {
	path   string
	logger *slog.Logger
}

// NewZoneReader creates a reader for the file at path.
func NewZoneReader(path string, logger *slog.Logger) *ZoneReader {
	return &ZoneReader{path: path, logger: logger}
}

// Zones reads every feature as a zone, in file order.
func (r *ZoneReader) Zones(_ context.Context) ([]domain.Zone, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read zones: %w", err)
	}
	zones, err := DecodeZones(data)
	if err != nil {
		return nil, fmt.Errorf("zones %s: %w", r.path, err)
	}
	r.logger.Info("zones loaded", "path", r.path, "zones", len(zones))
	return zones, nil
}

// DecodeZones parses a zones FeatureCollection. Each feature needs a polygonal
// geometry and a location property; the zone name is the sitename property, or the
// location when sitename is absent.
func DecodeZones(data []byte) ([]domain.Zone, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	zones := make([]domain.Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		if err := domain.ValidatePolygonal(f.Geometry); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		location, ok := f.Properties[domain.PropLocation].(string)
		if !ok || location == "" {
			return nil, fmt.Errorf("feature %d: missing %q property", i, domain.PropLocation)
		}
		name := location
		if s, ok := f.Properties[domain.PropSitename].(string); ok && s != "" {
			name = s
		}
		zones = append(zones, domain.Zone{
			Sitename:   name,
			Location:   location,
			Geometry:   f.Geometry,
			Properties: map[string]any(f.Properties),
		})
	}
	return zones, nil
}
