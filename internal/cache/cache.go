// Package cache provides a TTL cache for pipeline results.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/newspulse/newspulse/internal/metrics"
	"github.com/newspulse/newspulse/internal/news"
)

type entry struct {
	result    news.Result
	expiresAt time.Time
}

// ResultCache stores completed pipeline results keyed by normalized query
// and period. Expired entries are evicted lazily on read.
type ResultCache struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	clock news.Clock
}

// New constructs a ResultCache with the given TTL.
func New(ttl time.Duration, clock news.Clock) *ResultCache {
	metrics.Init()
	return &ResultCache{
		items: make(map[string]entry),
		ttl:   ttl,
		clock: clock,
	}
}

// Key builds the cache key. Queries differing only in case or surrounding
// whitespace share an entry.
func Key(query string, period news.Period) string {
	return strings.ToLower(strings.TrimSpace(query)) + "|" + string(period)
}

// Get returns the cached result for the query/period pair if present and
// unexpired.
func (c *ResultCache) Get(query string, period news.Period) (news.Result, bool) {
	key := Key(query, period)

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		metrics.ObserveCacheLookup("miss")
		return news.Result{}, false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		metrics.ObserveCacheLookup("miss")
		return news.Result{}, false
	}
	metrics.ObserveCacheLookup("hit")
	return e.result, true
}

// Put stores a result under the query/period pair.
func (c *ResultCache) Put(query string, period news.Period, result news.Result) {
	key := Key(query, period)
	c.mu.Lock()
	c.items[key] = entry{
		result:    result,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
