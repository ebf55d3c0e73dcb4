package cache

import (
	"fmt"
	"sync"
	"sync/atomic"

	simplelru "github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/metrics"
	"github.com/DevMiloo/PhotoSift/internal/raster"
)

// entry pairs a cached raster with the generation it was stored under.
// An entry whose generation predates the cache's current one is dead: it
// still occupies a slot until the next touch or sweep removes it, but a
// lookup treats it as already reclaimed.
type entry struct {
	r          *raster.Raster
	generation uint64
}

// PreviewCache is a bounded, concurrency-safe store of preview rasters
// keyed by request. Rasters cross the cache boundary only as defensive
// copies, so callers and the cache never share pixel buffers.
//
// Retention is two-layered: an LRU bound caps the entry count, and a
// generation counter lets the memory monitor mark everything currently
// resident as reclaimable in one cheap operation. Dead entries are
// removed lazily on access and in the sweep that runs before inserting
// at capacity.
type PreviewCache struct {
	capacity   int
	generation atomic.Uint64

	mu        sync.Mutex
	lru       *simplelru.LRU[string, *entry]
	bytes     int64
	hits      uint64
	misses    uint64
	evictions uint64
	reclaimed uint64
	sweeping  bool
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Reclaimed  uint64
	Entries    int
	Bytes      int64
	Generation uint64
}

// New creates a preview cache bounded to capacity entries.
func New(capacity int) (*PreviewCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache: invalid capacity %d", capacity)
	}

	c := &PreviewCache{capacity: capacity}
	l, err := simplelru.NewLRU[string, *entry](capacity, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c.lru = l
	return c, nil
}

// onEvict runs under c.mu for every removal the LRU performs. The
// sweeping flag routes the bookkeeping: capacity evictions and dead-entry
// reclaims are different signals on the dashboard.
func (c *PreviewCache) onEvict(key string, e *entry) {
	c.bytes -= int64(e.r.Bytes())
	if c.sweeping {
		c.reclaimed++
		metrics.CacheReclaimedTotal.Inc()
	} else {
		c.evictions++
		metrics.CacheEvictions.Inc()
	}
}

// Get returns a copy of the raster stored under key. A dead entry is
// removed on the spot and reported as a miss; the caller decodes fresh,
// exactly as if the memory had already been reclaimed.
func (c *PreviewCache) Get(key string) (*raster.Raster, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		metrics.CacheMisses.Inc()
		return nil, false
	}

	if e.generation < c.generation.Load() {
		c.removeDead(key)
		c.misses++
		metrics.CacheMisses.Inc()
		return nil, false
	}

	c.hits++
	metrics.CacheHits.Inc()
	return e.r.Clone(), true
}

// Put stores a copy of r under key, replacing any existing entry (last
// write wins). Invalid rasters are rejected so a half-built decode can
// never become a cache hit. When the cache is full a sweep drops dead
// entries first; if every resident entry is live the LRU evicts the
// oldest to make room.
func (c *PreviewCache) Put(key string, r *raster.Raster) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("cache: refusing to store: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := &entry{r: r.Clone(), generation: c.generation.Load()}

	if old, ok := c.lru.Peek(key); ok {
		// In-place replacement skips the evict callback, so the
		// outgoing raster's bytes are settled here.
		c.bytes -= int64(old.r.Bytes())
	} else if c.lru.Len() >= c.capacity {
		c.sweepLocked()
	}

	c.lru.Add(key, stored)
	c.bytes += int64(stored.r.Bytes())
	return nil
}

// Sweep removes every dead entry and returns how many were dropped.
func (c *PreviewCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked()
}

func (c *PreviewCache) sweepLocked() int {
	gen := c.generation.Load()
	removed := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok || e.generation >= gen {
			continue
		}
		c.removeDead(key)
		removed++
	}
	if removed > 0 {
		logging.Debug("Preview cache sweep reclaimed %d dead entries", removed)
	}
	return removed
}

// removeDead drops one entry with the reclaim counters instead of the
// eviction counters. Caller holds c.mu.
func (c *PreviewCache) removeDead(key string) {
	c.sweeping = true
	c.lru.Remove(key)
	c.sweeping = false
}

// BumpGeneration marks every resident entry dead. The memory monitor
// registers this as its pressure hook; actual removal stays lazy so the
// hook returns immediately even with a full cache.
func (c *PreviewCache) BumpGeneration() {
	gen := c.generation.Add(1)
	logging.Info("Preview cache generation now %d; resident entries will be reclaimed lazily", gen)
}

// Len returns the number of resident entries, dead ones included until
// a touch or sweep removes them.
func (c *PreviewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Bytes returns the pixel bytes currently resident.
func (c *PreviewCache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Capacity returns the configured entry bound.
func (c *PreviewCache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache counters.
func (c *PreviewCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Reclaimed:  c.reclaimed,
		Entries:    c.lru.Len(),
		Bytes:      c.bytes,
		Generation: c.generation.Load(),
	}
}
