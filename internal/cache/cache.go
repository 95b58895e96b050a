// Package cache holds recently parsed backtest artifacts so the list,
// stats, and detail handlers do not re-read and re-decode the same file on
// every request.
package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/bobmcallan/vire-research/internal/models"
)

// entry wraps a cached artifact with expiry and insertion order tracking.
type entry struct {
	data      *models.BacktestData
	expiry    time.Time
	insertIdx int64
}

// BacktestCache caches parsed backtest artifacts. Keys combine filename and
// file modification time, so a rewritten artifact misses naturally and
// stale entries age out by TTL. Thread-safe with sync.RWMutex.
type BacktestCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
}

// New creates a new BacktestCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *BacktestCache {
	return &BacktestCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// MakeKey builds a cache key from filename and modification time.
func MakeKey(filename string, modTime time.Time) string {
	return filename + ":" + strconv.FormatInt(modTime.UnixNano(), 10)
}

// Get returns a cached artifact if found and not expired.
func (c *BacktestCache) Get(key string) (*models.BacktestData, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && time.Now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.data, true
}

// Set stores an artifact in the cache. Evicts the oldest entry if at capacity.
func (c *BacktestCache) Set(key string, data *models.BacktestData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		data:      data,
		expiry:    time.Now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// evictOldest removes the entry with the lowest insertion index.
// Caller must hold the write lock.
func (c *BacktestCache) evictOldest() {
	var oldestKey string
	oldestIdx := int64(-1)
	for k, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = k
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// Len returns the number of cached entries, expired or not.
func (c *BacktestCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge removes all entries.
func (c *BacktestCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}
