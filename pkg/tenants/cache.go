package tenants

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so cache expiry is deterministic in tests.
type Clock func() time.Time

type cacheEntry struct {
	tenant     Tenant
	resolvedAt time.Time
}

// Cache is a process-local hostname -> tenant cache with a fixed TTL.
// Entries past their TTL are never served. Not shared across instances;
// cross-instance invalidation rides on the Invalidator.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     Clock
	entries map[string]cacheEntry
}

func NewCache(ttl time.Duration, now Clock) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, entries: map[string]cacheEntry{}}
}

func (c *Cache) Get(host string) (Tenant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[host]
	if !ok || c.now().Sub(e.resolvedAt) >= c.ttl {
		return Tenant{}, false
	}
	return e.tenant, true
}

func (c *Cache) Put(host string, t Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[host] = cacheEntry{tenant: t, resolvedAt: c.now()}
}

// ClearHost drops a single hostname entry.
func (c *Cache) ClearHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, host)
}

// Clear drops every entry; used for administrator-triggered invalidation.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
}
