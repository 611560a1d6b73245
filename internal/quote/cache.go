// Package quote fetches, caches, and normalizes single-symbol stock quotes.
package quote

import (
	"sync"
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
)

// DefaultCacheTTL is how long a fetched quote is served without hitting the
// upstream API again.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	stock     models.Stock
	fetchedAt time.Time
}

// Cache memoizes per-symbol quote fetches for a short TTL. It is owned by
// the quote service and constructor-injected so tests get isolated instances.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache with the given TTL; non-positive falls back to
// DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached stock for a symbol if it is still fresh. A hit
// rewrites LastUpdated to now: the UI treats a served quote as current even
// when the underlying values are up to TTL old. That is intentional, the
// cache saves fetch latency rather than guaranteeing data freshness.
func (c *Cache) Get(symbol string) (models.Stock, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[symbol]
	if !ok {
		return models.Stock{}, false
	}
	now := c.now()
	if now.Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, symbol)
		return models.Stock{}, false
	}

	stock := e.stock
	stock.LastUpdated = now
	return stock, true
}

// Put stores a freshly fetched stock
func (c *Cache) Put(stock models.Stock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[stock.Symbol] = cacheEntry{stock: stock, fetchedAt: c.now()}
}
