package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load metrics
var (
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photosift_loads_total",
			Help: "Total number of image load requests",
		},
		[]string{"profile", "status"},
	)

	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photosift_load_duration_seconds",
			Help:    "End to end image load duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"profile"},
	)

	LoadsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_loads_in_flight",
			Help: "Number of image loads currently being processed",
		},
	)

	LoadRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_load_retries_total",
			Help: "Total number of whole-chain retries after a transient decode failure",
		},
	)
)

// Decode metrics
var (
	DecodeAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photosift_decode_attempts_total",
			Help: "Total number of decode strategy attempts",
		},
		[]string{"strategy", "outcome"},
	)

	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photosift_decode_duration_seconds",
			Help:    "Single strategy decode duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photosift_probes_total",
			Help: "Total number of dimension probes",
		},
		[]string{"status"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photosift_probe_duration_seconds",
			Help:    "Dimension probe duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)
)

// Preview cache metrics
var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_preview_cache_hits_total",
			Help: "Total number of preview cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_preview_cache_misses_total",
			Help: "Total number of preview cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_preview_cache_evictions_total",
			Help: "Total number of entries evicted to keep the cache at capacity",
		},
	)

	CacheReclaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_preview_cache_reclaimed_total",
			Help: "Total number of entries dropped because their generation was reclaimed",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_preview_cache_entries",
			Help: "Number of rasters resident in the preview cache",
		},
	)

	CacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_preview_cache_bytes",
			Help: "Total size of pixel data resident in the preview cache in bytes",
		},
	)
)

// Prefetch metrics
var (
	PrefetchEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_prefetch_enqueued_total",
			Help: "Total number of paths accepted onto the prefetch queue",
		},
	)

	PrefetchDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_prefetch_dropped_total",
			Help: "Total number of prefetch hints dropped because the queue was full",
		},
	)

	PrefetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photosift_prefetch_total",
			Help: "Total number of prefetch jobs finished, by result",
		},
		[]string{"status"},
	)

	PrefetchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_prefetch_queue_depth",
			Help: "Number of paths waiting on the prefetch queue",
		},
	)

	PrefetchWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_prefetch_workers",
			Help: "Number of prefetch workers running",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_memory_usage_ratio",
			Help: "Memory usage as a ratio of the configured limit (0.0-1.0)",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_memory_paused",
			Help: "Whether background decoding is paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_memory_gc_pauses_total",
			Help: "Total number of times background decoding was paused for memory",
		},
	)

	MemoryPressureEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_memory_pressure_events_total",
			Help: "Total number of critical memory pressure transitions",
		},
	)

	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_go_mem_limit_bytes",
			Help: "Configured soft memory limit in bytes",
		},
	)

	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_go_mem_alloc_bytes",
			Help: "Current heap allocation in bytes",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photosift_go_mem_sys_bytes",
			Help: "Total memory obtained from the OS in bytes",
		},
	)

	GoGCRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photosift_go_gc_runs_total",
			Help: "Total number of completed GC cycles observed",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photosift_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
