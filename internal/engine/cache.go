package engine

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a snapshot stays valid for a given symbol and
// candle count.
const DefaultCacheTTL = 5 * time.Minute

// SnapshotCache stores computed snapshots keyed by symbol and window length.
// Implementations must be safe for concurrent use. The cache is best-effort:
// a failing Get reads as a miss and a failing Set is dropped.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*PredictiveSnapshot, bool)
	Set(ctx context.Context, key string, snapshot *PredictiveSnapshot, ttl time.Duration)
}

type memoryCacheEntry struct {
	snapshot *PredictiveSnapshot
	expiry   time.Time
}

// MemoryCache is the in-process SnapshotCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryCacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached snapshot if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*PredictiveSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiry) {
		return nil, false
	}
	return entry.snapshot, true
}

// Set stores a snapshot, overwriting any previous entry for the key.
func (c *MemoryCache) Set(_ context.Context, key string, snapshot *PredictiveSnapshot, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryCacheEntry{
		snapshot: snapshot,
		expiry:   c.now().Add(ttl),
	}
}

// CleanupExpired drops expired entries and reports how many were removed.
func (c *MemoryCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryCacheEntry)
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
