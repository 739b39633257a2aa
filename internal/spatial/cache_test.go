package spatial

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingLocator struct {
	calls int
	inner Locator
}

func (m *countingLocator) Locate(p orb.Point) (Match, bool) {
	m.calls++
	return m.inner.Locate(p)
}

func newCountingLocator(t *testing.T) *countingLocator {
	t.Helper()
	ix, err := NewIndex(overlappingZones(), PolicyFirst)
	require.NoError(t, err)
	return &countingLocator{inner: ix}
}

// --- CachedLocator tests ---

func TestCachedLocator_CacheHit(t *testing.T) {
	inner := newCountingLocator(t)
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "locator_cache_total"}, []string{"result"})
	cached := NewCachedLocator(inner, 10, lookups)

	m1, ok := cached.Locate(orb.Point{3, 3})
	require.True(t, ok)
	m2, ok := cached.Locate(orb.Point{3, 3})
	require.True(t, ok)

	assert.Equal(t, m1, m2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(lookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(lookups.WithLabelValues("miss")), 0)
}

func TestCachedLocator_CachesOutsidePoints(t *testing.T) {
	inner := newCountingLocator(t)
	cached := NewCachedLocator(inner, 10, nil)

	_, ok := cached.Locate(orb.Point{-5, -5})
	assert.False(t, ok)
	_, ok = cached.Locate(orb.Point{-5, -5})
	assert.False(t, ok)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedLocator_SameResultsAsIndex(t *testing.T) {
	ix, err := NewIndex(overlappingZones(), PolicySmallestArea)
	require.NoError(t, err)
	cached := NewCachedLocator(ix, 2, nil)

	points := []orb.Point{{3, 3}, {8, 8}, {3, 3}, {30.5, 0.5}, {-1, -1}, {8, 8}, {3, 3}}
	for _, p := range points {
		wantM, wantOK := ix.Locate(p)
		gotM, gotOK := cached.Locate(p)
		assert.Equal(t, wantOK, gotOK, "point %v", p)
		assert.Equal(t, wantM, gotM, "point %v", p)
	}
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put(orb.Point{1, 1}, located{match: Match{Sitename: "A"}, found: true})
	c.put(orb.Point{2, 2}, located{match: Match{Sitename: "B"}, found: true})

	result, ok := c.get(orb.Point{1, 1})
	assert.True(t, ok)
	assert.Equal(t, "A", result.match.Sitename)

	_, ok = c.get(orb.Point{9, 9})
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put(orb.Point{1, 1}, located{match: Match{Sitename: "A"}})
	c.put(orb.Point{2, 2}, located{match: Match{Sitename: "B"}})
	c.put(orb.Point{3, 3}, located{match: Match{Sitename: "C"}}) // evicts A

	_, ok := c.get(orb.Point{1, 1})
	assert.False(t, ok, "A should have been evicted")
	assert.Equal(t, 2, c.len())

	result, ok := c.get(orb.Point{3, 3})
	assert.True(t, ok)
	assert.Equal(t, "C", result.match.Sitename)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put(orb.Point{1, 1}, located{match: Match{Sitename: "A"}})
	c.put(orb.Point{2, 2}, located{match: Match{Sitename: "B"}})

	c.get(orb.Point{1, 1})

	// B is now least recently used.
	c.put(orb.Point{3, 3}, located{match: Match{Sitename: "C"}})

	_, ok := c.get(orb.Point{1, 1})
	assert.True(t, ok, "A was accessed recently, should not be evicted")

	_, ok = c.get(orb.Point{2, 2})
	assert.False(t, ok, "B should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put(orb.Point{1, 1}, located{match: Match{Sitename: "A1"}})
	c.put(orb.Point{1, 1}, located{match: Match{Sitename: "A2"}})

	result, ok := c.get(orb.Point{1, 1})
	assert.True(t, ok)
	assert.Equal(t, "A2", result.match.Sitename)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_ZeroCapacityHoldsOne(t *testing.T) {
	c := newLRUCache(0)
	c.put(orb.Point{1, 1}, located{})
	c.put(orb.Point{2, 2}, located{})
	assert.Equal(t, 1, c.len())
}
