package cache

import (
	"context"
	"sync"
	"time"
)

var _ RateCache = (*MemoryCache)(nil)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process RateCache backed by a map with lazy expiry.
// Expired entries are rejected at read time; an optional janitor goroutine
// reclaims memory without changing observable behavior.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
	stop    chan struct{}
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the entry for key if it exists and has not expired.
// The expiry check is strict: an entry is stale the instant its deadline hits.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found || !c.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key with the given TTL, overwriting unconditionally.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// StartJanitor launches a background goroutine that removes expired entries
// every interval. Call Stop to terminate it.
func (c *MemoryCache) StartJanitor(interval time.Duration) {
	if interval <= 0 || c.stop != nil {
		return
	}
	c.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.clearExpired()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop terminates the janitor goroutine if one is running.
func (c *MemoryCache) Stop() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *MemoryCache) clearExpired() {
	now := c.now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
