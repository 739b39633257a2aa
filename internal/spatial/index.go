// Package spatial assigns census points to the park zone that contains them.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrUnknownPolicy is returned for an overlap policy name that is not recognized.
var ErrUnknownPolicy = errors.New("unknown overlap policy")

// OverlapPolicy decides which zone wins when a point lies in more than one.
type OverlapPolicy string

const (
	// PolicyFirst picks the first containing zone in source order.
	PolicyFirst OverlapPolicy = "first"
	// PolicySmallestArea picks the containing zone with the smallest planar area.
	PolicySmallestArea OverlapPolicy = "smallest-area"
)

// ParseOverlapPolicy validates a policy name. An empty name selects PolicyFirst.
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch OverlapPolicy(s) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicySmallestArea:
		return PolicySmallestArea, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Match is the result of locating a point.
type Match struct {
	Sitename string
	// Containing counts the zones containing the point. Above one means overlapping zones.
	Containing int
}

// Overlapping reports whether the point was inside more than one zone.
func (m Match) Overlapping() bool { return m.Containing > 1 }

// Locator finds the zone containing a point. ok is false when no zone contains it.
type Locator interface {
	Locate(p orb.Point) (m Match, ok bool)
}

type indexedZone struct {
	sitename string
	geom     orb.Geometry
	bound    orb.Bound
	area     float64
}

// Index is a linear scan over zone polygons with a bounding-box prefilter. A point must
// lie strictly inside a zone: points on any ring, hole rings included, are outside.
type Index struct {
	zones  []indexedZone
	policy OverlapPolicy
}

// NewIndex builds an index over zones, keeping their order.
func NewIndex(zones []domain.Zone, policy OverlapPolicy) (*Index, error) {
	if _, err := ParseOverlapPolicy(string(policy)); err != nil {
		return nil, err
	}
	ix := &Index{zones: make([]indexedZone, 0, len(zones)), policy: policy}
	if policy == "" {
		ix.policy = PolicyFirst
	}
	for _, z := range zones {
		if err := domain.ValidatePolygonal(z.Geometry); err != nil {
			return nil, fmt.Errorf("zone %q: %w", z.Sitename, err)
		}
		ix.zones = append(ix.zones, indexedZone{
			sitename: z.Sitename,
			geom:     z.Geometry,
			bound:    z.Geometry.Bound(),
			area:     math.Abs(planar.Area(z.Geometry)),
		})
	}
	return ix, nil
}

// Len returns the number of indexed zones.
func (ix *Index) Len() int { return len(ix.zones) }

// Locate tests every zone so that overlaps are always counted, then applies the policy.
func (ix *Index) Locate(p orb.Point) (Match, bool) {
	var m Match
	best := -1
	for i, z := range ix.zones {
		if !z.bound.Contains(p) || !contains(z.geom, p) {
			continue
		}
		m.Containing++
		if best < 0 || (ix.policy == PolicySmallestArea && z.area < ix.zones[best].area) {
			best = i
		}
	}
	if best < 0 {
		return Match{}, false
	}
	m.Sitename = ix.zones[best].sitename
	return m, true
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return !onPolygonBoundary(v, p) && planar.PolygonContains(v, p)
	case orb.MultiPolygon:
		for _, poly := range v {
			if onPolygonBoundary(poly, p) {
				return false
			}
		}
		return planar.MultiPolygonContains(v, p)
	default:
		return false
	}
}

func onPolygonBoundary(poly orb.Polygon, p orb.Point) bool {
	for _, ring := range poly {
		for i := 1; i < len(ring); i++ {
			if onSegment(ring[i-1], ring[i], p) {
				return true
			}
		}
	}
	return false
}

// onSegment reports whether p is collinear with a and b and within their bounds.
func onSegment(a, b, p orb.Point) bool {
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if cross != 0 {
		return false
	}
	return p[0] >= math.Min(a[0], b[0]) && p[0] <= math.Max(a[0], b[0]) &&
		p[1] >= math.Min(a[1], b[1]) && p[1] <= math.Max(a[1], b[1])
}
