package spatial

import (
	"testing"

	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {minX + size, minY}, {minX + size, minY + size}, {minX, minY + size}, {minX, minY},
	}}
}

// Big covers [0,10]x[0,10]; Small covers [2,4]x[2,4] and sits inside Big.
func overlappingZones() []domain.Zone {
	return []domain.Zone{
		{Sitename: "Big", Geometry: square(0, 0, 10)},
		{Sitename: "Small", Geometry: square(2, 2, 2)},
		{Sitename: "Islands", Geometry: orb.MultiPolygon{square(20, 0, 1), square(30, 0, 1)}},
	}
}

func TestParseOverlapPolicy(t *testing.T) {
	p, err := ParseOverlapPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirst, p)

	p, err = ParseOverlapPolicy("smallest-area")
	require.NoError(t, err)
	assert.Equal(t, PolicySmallestArea, p)

	_, err = ParseOverlapPolicy("largest")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestIndexLocate_FirstMatch(t *testing.T) {
	ix, err := NewIndex(overlappingZones(), PolicyFirst)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())

	m, ok := ix.Locate(orb.Point{3, 3})
	require.True(t, ok)
	assert.Equal(t, "Big", m.Sitename)
	assert.Equal(t, 2, m.Containing)
	assert.True(t, m.Overlapping())

	m, ok = ix.Locate(orb.Point{8, 8})
	require.True(t, ok)
	assert.Equal(t, "Big", m.Sitename)
	assert.False(t, m.Overlapping())
}

func TestIndexLocate_SmallestArea(t *testing.T) {
	ix, err := NewIndex(overlappingZones(), PolicySmallestArea)
	require.NoError(t, err)

	m, ok := ix.Locate(orb.Point{3, 3})
	require.True(t, ok)
	assert.Equal(t, "Small", m.Sitename)
	assert.Equal(t, 2, m.Containing, "overlaps are counted under every policy")
}

func TestIndexLocate_MultiPolygon(t *testing.T) {
	ix, err := NewIndex(overlappingZones(), PolicyFirst)
	require.NoError(t, err)

	m, ok := ix.Locate(orb.Point{30.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, "Islands", m.Sitename)

	_, ok = ix.Locate(orb.Point{25, 0.5})
	assert.False(t, ok, "gap between member polygons is outside")
}

func TestIndexLocate_Outside(t *testing.T) {
	ix, err := NewIndex(overlappingZones(), PolicyFirst)
	require.NoError(t, err)

	m, ok := ix.Locate(orb.Point{-73.97, 40.78})
	assert.False(t, ok)
	assert.Equal(t, Match{}, m)
}

func TestIndexLocate_Hole(t *testing.T) {
	donut := orb.Polygon{
		square(0, 0, 10)[0],
		orb.Ring{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}},
	}
	ix, err := NewIndex([]domain.Zone{{Sitename: "Donut", Geometry: donut}}, PolicyFirst)
	require.NoError(t, err)

	_, ok := ix.Locate(orb.Point{5, 5})
	assert.False(t, ok)
	_, ok = ix.Locate(orb.Point{1, 1})
	assert.True(t, ok)
}

func TestNewIndex_Errors(t *testing.T) {
	_, err := NewIndex([]domain.Zone{{Sitename: "Bad", Geometry: orb.LineString{{0, 0}, {1, 1}}}}, PolicyFirst)
	require.ErrorIs(t, err, domain.ErrInvalidGeometry)
	assert.Contains(t, err.Error(), "Bad")

	_, err = NewIndex(nil, OverlapPolicy("random"))
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestIndexLocate_BoundaryIsOutside(t *testing.T) {
	zones := []domain.Zone{
		{Sitename: "West", Geometry: square(0, 0, 1)},
		{Sitename: "East", Geometry: square(1, 0, 1)},
	}
	ix, err := NewIndex(zones, PolicyFirst)
	require.NoError(t, err)

	tests := []struct {
		name string
		p    orb.Point
	}{
		{"shared edge", orb.Point{1, 0.5}},
		{"outer edge", orb.Point{0, 0.5}},
		{"corner", orb.Point{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ix.Locate(tt.p)
			assert.False(t, ok)
			assert.Equal(t, 0, m.Containing, "a boundary point is not an overlap")
		})
	}

	m, ok := ix.Locate(orb.Point{1.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, Match{Sitename: "East", Containing: 1}, m)
}

func TestIndexLocate_HoleEdgeIsOutside(t *testing.T) {
	donut := orb.Polygon{
		square(0, 0, 10)[0],
		orb.Ring{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}},
	}
	ix, err := NewIndex([]domain.Zone{{Sitename: "Donut", Geometry: orb.MultiPolygon{donut}}}, PolicyFirst)
	require.NoError(t, err)

	_, ok := ix.Locate(orb.Point{4, 5})
	assert.False(t, ok)
	_, ok = ix.Locate(orb.Point{3, 5})
	assert.True(t, ok)
}
