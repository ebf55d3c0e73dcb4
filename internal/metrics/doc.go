// Package metrics provides Prometheus instrumentation for PhotoSift.
//
// This package defines and exposes various metrics that can be scraped by
// Prometheus to monitor the health, performance, and behavior of the image
// pipeline. All metrics are prefixed with "photosift_" to avoid naming
// collisions with other applications.
//
// # Metric Categories
//
// The metrics are organized into the following categories:
//
// ## Load Metrics
//
// Track end to end image load requests through the loader facade:
//   - LoadsTotal: Counter of loads by profile and terminal status
//   - LoadDuration: Histogram of load duration by profile
//   - LoadsInFlight: Gauge of loads being processed right now
//   - LoadRetriesTotal: Counter of whole-chain retries after transient failures
//
// ## Decode Metrics
//
// Monitor the decode strategy chain:
//   - DecodeAttemptsTotal: Counter of attempts by strategy and outcome
//   - DecodeDuration: Histogram of per-strategy decode time
//   - ProbesTotal: Counter of dimension probes by status
//   - ProbeDuration: Histogram of probe time
//
// ## Preview Cache Metrics
//
// Monitor the bounded preview cache:
//   - CacheHits / CacheMisses: Counters of lookups
//   - CacheEvictions: Counter of capacity evictions
//   - CacheReclaimedTotal: Counter of entries dropped after a pressure sweep
//   - CacheEntries / CacheBytes: Gauges of resident entries and pixel bytes
//
// ## Prefetch Metrics
//
// Track the scroll-ahead worker pool:
//   - PrefetchEnqueuedTotal / PrefetchDroppedTotal: Counters of queue admissions
//   - PrefetchTotal: Counter of finished jobs by result
//   - PrefetchQueueDepth / PrefetchWorkers: Gauges of queue and pool size
//
// ## Memory Metrics
//
// Monitor Go runtime memory and pressure:
//   - GoMemLimit: Gauge of configured GOMEMLIMIT
//   - GoMemAllocBytes: Gauge of current heap allocation
//   - GoMemSysBytes: Gauge of total memory from OS
//   - GoGCRuns: Counter of completed GC cycles
//   - MemoryUsageRatio: Gauge of memory usage as ratio of limit (0.0-1.0)
//   - MemoryPaused: Gauge indicating if decoding is paused due to memory pressure
//   - MemoryGCPauses: Counter of times decoding was paused for memory
//   - MemoryPressureEvents: Counter of critical pressure transitions
//
// ## Application Info
//
// Expose build information:
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on your
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Recording Metrics
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	import "github.com/DevMiloo/PhotoSift/internal/metrics"
//
//	// Increment a counter
//	metrics.CacheHits.Inc()
//
//	// Observe a histogram value
//	metrics.LoadDuration.WithLabelValues("preview").Observe(0.123)
//
//	// Set a gauge value
//	metrics.PrefetchQueueDepth.Set(12)
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers
// statistics from a [StatsProvider] and updates the corresponding gauges,
// along with Go runtime memory statistics:
//
//	collector := metrics.NewCollector(loader, 30*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Example PromQL queries for common use cases:
//
// Preview cache hit rate:
//
//	rate(photosift_preview_cache_hits_total[5m]) /
//	(rate(photosift_preview_cache_hits_total[5m]) + rate(photosift_preview_cache_misses_total[5m]))
//
// P95 load latency by profile:
//
//	histogram_quantile(0.95, sum(rate(photosift_load_duration_seconds_bucket[5m])) by (le, profile))
//
// Decode fallback pressure (non-first-strategy successes):
//
//	sum(rate(photosift_decode_attempts_total{strategy!="vips",outcome="success"}[5m]))
//
// Memory pressure events:
//
//	rate(photosift_memory_pressure_events_total[1h])
package metrics
