package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {minX + size, minY}, {minX + size, minY + size}, {minX, minY + size}, {minX, minY},
	}}
}

func TestApplyOverrides(t *testing.T) {
	table := ZoneTable{Overrides: []ZoneOverride{
		{Location: "CPW, W 97 St, West Drive, W 100 St", Sitename: "Central Park West (Zone 1)"},
		{Location: "West Drive, CPW, 65 St Transverse", Sitename: "Central Park West (Zone 3)"},
	}}
	zones := []Zone{
		{Sitename: "Central Park West", Location: "CPW, W 97 St, West Drive, W 100 St"},
		{Sitename: "Central Park West", Location: "West Drive, CPW, 65 St Transverse"},
		{Sitename: "Sheep Meadow", Location: "Sheep Meadow"},
	}

	out, err := ApplyOverrides(zones, table)
	require.NoError(t, err)

	assert.Equal(t, "Central Park West (Zone 1)", out[0].Sitename)
	assert.Equal(t, "Central Park West (Zone 3)", out[1].Sitename)
	assert.Equal(t, "Sheep Meadow", out[2].Sitename)
	assert.Equal(t, "Central Park West", zones[0].Sitename, "input must not be modified")
}

func TestApplyOverrides_DuplicateAfterOverride(t *testing.T) {
	zones := []Zone{
		{Sitename: "Central Park West", Location: "a"},
		{Sitename: "Central Park West", Location: "b"},
	}

	_, err := ApplyOverrides(zones, ZoneTable{})
	require.ErrorIs(t, err, ErrDuplicateZone)
	assert.Contains(t, err.Error(), "Central Park West")
}

func TestZoneTableShortName(t *testing.T) {
	table := ZoneTable{ShortNames: map[string]string{"The Metropolitan Museum Of Art": "The Met"}}

	short, ok := table.ShortName("The Metropolitan Museum Of Art")
	assert.True(t, ok)
	assert.Equal(t, "The Met", short)

	_, ok = table.ShortName("the metropolitan museum of art")
	assert.False(t, ok, "lookup is exact match")
}

func TestValidatePolygonal(t *testing.T) {
	assert.NoError(t, ValidatePolygonal(square(0, 0, 1)))
	assert.NoError(t, ValidatePolygonal(orb.MultiPolygon{square(0, 0, 1), square(5, 5, 1)}))

	assert.ErrorIs(t, ValidatePolygonal(nil), ErrInvalidGeometry)
	assert.ErrorIs(t, ValidatePolygonal(orb.Point{1, 2}), ErrInvalidGeometry)
	assert.ErrorIs(t, ValidatePolygonal(orb.Polygon{}), ErrInvalidGeometry)
	assert.ErrorIs(t, ValidatePolygonal(orb.Polygon{orb.Ring{{0, 0}, {1, 1}}}), ErrInvalidGeometry)
	assert.ErrorIs(t, ValidatePolygonal(orb.MultiPolygon{}), ErrInvalidGeometry)
}
