package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBehaviorCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseBehaviorCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseBehaviorCategory("Sleeping")
	require.ErrorIs(t, err, ErrUnsupportedCategory)
	assert.Equal(t, "unsupported behavior category: Sleeping", err.Error())

	_, err = ParseBehaviorCategory("climbing")
	assert.ErrorIs(t, err, ErrUnsupportedCategory, "matching is case sensitive")
}

func TestBehaviorCategoryTitle(t *testing.T) {
	assert.Equal(t, "Running or chasing", RunningOrChasing.Title())
	assert.Equal(t, "Climbing", Climbing.Title())
	assert.Equal(t, "Eating or foraging", EatingOrForaging.Title())
}

func TestBehaviorCategoryValue(t *testing.T) {
	agg := ZoneAggregate{Climbing: 1, Approaches: 2, Vocalizations: 3, RunningOrChasing: 4, EatingOrForaging: 5}

	tests := []struct {
		category BehaviorCategory
		want     int
	}{
		{Climbing, 1},
		{Approaches, 2},
		{Vocalizations, 3},
		{RunningOrChasing, 4},
		{EatingOrForaging, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			got, err := tt.category.Value(agg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := BehaviorCategory("Indifferent").Value(agg)
	assert.ErrorIs(t, err, ErrUnsupportedCategory)
}

func TestDefaultCategoryIsListedFirst(t *testing.T) {
	assert.Equal(t, DefaultCategory, Categories()[0])
	assert.Equal(t, "Vocalizing", Vocalizations.Label())
}
