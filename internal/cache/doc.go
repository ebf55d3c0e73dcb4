// Package cache holds recently produced preview rasters so scrolling
// back through a directory does not decode the same files twice.
//
// # Retention Model
//
// The cache is a strict LRU bounded by entry count, with a generation
// counter layered on top to emulate weak retention. Each entry is
// stamped with the generation current at insert time. BumpGeneration,
// wired to the memory monitor's pressure hook, marks everything resident
// as dead in O(1); dead entries are then removed lazily, on the lookup
// that finds them or during the sweep that runs before inserting into a
// full cache. A lookup never returns a dead entry's raster; it reports a
// miss, exactly as if the memory had been reclaimed out from under the
// cache.
//
// # Copy Discipline
//
// Rasters are copied on the way in and on the way out. Callers may
// mutate or discard anything Get returns and anything they passed to
// Put; the resident copy is never shared. Concurrent Put calls for the
// same key are allowed and the last write wins.
//
// # Typical Wiring
//
//	pc, err := cache.New(cfg.CacheCapacity)
//	if err != nil {
//		return err
//	}
//	monitor.OnPressure(pc.BumpGeneration)
//
// Hits, misses, evictions and reclaims are counted on the photosift
// preview-cache metric families; entry and byte gauges are fed through
// the metrics collector's stats snapshot.
package cache
