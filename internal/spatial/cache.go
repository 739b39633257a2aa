package spatial

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
)

// CachedLocator wraps a Locator with an in-memory LRU cache keyed by coordinate.
// Census sightings repeat coordinates, so most lookups skip the polygon scan.
type CachedLocator struct {
	inner   Locator
	cache   *lruCache
	lookups *prometheus.CounterVec // labels: result={hit,miss}; may be nil
}

// NewCachedLocator creates a cache decorator around a locator.
func NewCachedLocator(inner Locator, maxEntries int, lookups *prometheus.CounterVec) *CachedLocator {
	return &CachedLocator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		lookups: lookups,
	}
}

// Locate returns the cached result for p, falling through to the inner locator on a
// miss. Misses outside every zone are cached too.
func (c *CachedLocator) Locate(p orb.Point) (Match, bool) {
	if r, ok := c.cache.get(p); ok {
		c.record("hit")
		return r.match, r.found
	}
	c.record("miss")
	m, found := c.inner.Locate(p)
	c.cache.put(p, located{match: m, found: found})
	return m, found
}

func (c *CachedLocator) record(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

type located struct {
	match Match
	found bool
}

// lruCache is a simple thread-safe LRU cache of locate results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[orb.Point]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   orb.Point
	value located
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[orb.Point]*entry),
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) get(key orb.Point) (located, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return located{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key orb.Point, value located) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
