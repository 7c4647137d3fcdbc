package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultTTL = 5 * time.Minute

// MemoryCache is an in-memory cache with TTL expiry and a soft size limit.
// Search responses are small, so eviction is coarse: expired entries are
// swept once a minute and arbitrary entries are dropped when the limit is hit.
type MemoryCache struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	maxBytes    int64
	currentSize int64
	stats       Stats
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

type entry struct {
	value  []byte
	expiry time.Time
	size   int64
}

// NewMemoryCache creates a memory cache bounded to maxSizeMB megabytes.
// A maxSizeMB of zero or less disables the size limit.
func NewMemoryCache(maxSizeMB int64) *MemoryCache {
	mc := &MemoryCache{
		entries:  make(map[string]*entry),
		maxBytes: maxSizeMB * 1024 * 1024,
		stopCh:   make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.sweepLoop()

	return mc
}

// Get retrieves a value from the cache. Expired entries are treated as misses.
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	mc.mu.RLock()
	e, ok := mc.entries[key]
	mc.mu.RUnlock()

	if !ok {
		atomic.AddInt64(&mc.stats.Misses, 1)
		return nil, false
	}
	if time.Now().After(e.expiry) {
		_ = mc.Delete(ctx, key)
		atomic.AddInt64(&mc.stats.Misses, 1)
		return nil, false
	}

	atomic.AddInt64(&mc.stats.Hits, 1)
	return e.value, true
}

// Set stores a value in the cache with a TTL.
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	size := int64(len(key) + len(value))
	mc.makeRoom(size)

	mc.mu.Lock()
	if old, ok := mc.entries[key]; ok {
		atomic.AddInt64(&mc.currentSize, -old.size)
	}
	mc.entries[key] = &entry{
		value:  value,
		expiry: time.Now().Add(ttl),
		size:   size,
	}
	atomic.AddInt64(&mc.currentSize, size)
	mc.mu.Unlock()

	atomic.AddInt64(&mc.stats.Sets, 1)
	return nil
}

// Delete removes a value from the cache.
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	if e, ok := mc.entries[key]; ok {
		delete(mc.entries, key)
		atomic.AddInt64(&mc.currentSize, -e.size)
	}
	mc.mu.Unlock()
	return nil
}

// Clear removes all values from the cache.
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	mc.entries = make(map[string]*entry)
	atomic.StoreInt64(&mc.currentSize, 0)
	mc.mu.Unlock()
	return nil
}

// Stats returns a snapshot of cache statistics.
func (mc *MemoryCache) Stats() Stats {
	stats := Stats{
		Hits:      atomic.LoadInt64(&mc.stats.Hits),
		Misses:    atomic.LoadInt64(&mc.stats.Misses),
		Sets:      atomic.LoadInt64(&mc.stats.Sets),
		Evictions: atomic.LoadInt64(&mc.stats.Evictions),
		Size:      atomic.LoadInt64(&mc.currentSize),
		MaxSize:   mc.maxBytes,
	}
	return stats
}

// Stop shuts down the background sweeper.
func (mc *MemoryCache) Stop() {
	close(mc.stopCh)
	mc.wg.Wait()
}

func (mc *MemoryCache) sweepLoop() {
	defer mc.wg.Done()
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.removeExpired()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) removeExpired() {
	now := time.Now()
	mc.mu.Lock()
	for key, e := range mc.entries {
		if now.After(e.expiry) {
			delete(mc.entries, key)
			atomic.AddInt64(&mc.currentSize, -e.size)
			atomic.AddInt64(&mc.stats.Evictions, 1)
		}
	}
	mc.mu.Unlock()
}

func (mc *MemoryCache) makeRoom(sizeNeeded int64) {
	if mc.maxBytes <= 0 || atomic.LoadInt64(&mc.currentSize)+sizeNeeded <= mc.maxBytes {
		return
	}

	mc.removeExpired()

	if atomic.LoadInt64(&mc.currentSize)+sizeNeeded > mc.maxBytes {
		mc.mu.Lock()
		target := mc.maxBytes - sizeNeeded
		for key, e := range mc.entries {
			if atomic.LoadInt64(&mc.currentSize) <= target {
				break
			}
			delete(mc.entries, key)
			atomic.AddInt64(&mc.currentSize, -e.size)
			atomic.AddInt64(&mc.stats.Evictions, 1)
		}
		mc.mu.Unlock()
	}
}
