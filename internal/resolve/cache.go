package resolve

import (
	"sync"
	"time"

	"github.com/pricestream/relay/internal/model"
)

// DefaultTTL bounds how long a fetched price may serve further lookups.
const DefaultTTL = 5 * time.Second

type cacheEntry struct {
	point     model.PricePoint
	fetchedAt time.Time
}

// Cache holds externally fetched prices for a short TTL. Entries expire
// passively: staleness is checked on read and nothing is evicted early.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry

	now func() time.Time
}

// NewCache creates a cache with the given TTL. Non-positive TTLs fall back
// to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached point for the symbol if it is still within the TTL.
func (c *Cache) Get(symbol string) (model.PricePoint, bool) {
	sym := model.NormalizeSymbol(symbol)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[sym]
	if !ok {
		return model.PricePoint{}, false
	}
	if c.now().Sub(e.fetchedAt) > c.ttl {
		return model.PricePoint{}, false
	}
	return e.point, true
}

// Put stores a freshly fetched point, restarting its TTL window.
func (c *Cache) Put(pt model.PricePoint) {
	sym := model.NormalizeSymbol(pt.Symbol)
	if sym == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sym] = cacheEntry{point: pt, fetchedAt: c.now()}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
