package metrics

import (
	"runtime"
	"time"

	"github.com/DevMiloo/PhotoSift/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current pipeline statistics
type Stats struct {
	CacheEntries       int
	CacheBytes         int64
	PrefetchQueueDepth int
	PrefetchWorkers    int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	lastNumGC     uint32
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	GoMemAllocBytes.Set(float64(m.Alloc))
	GoMemSysBytes.Set(float64(m.Sys))
	if m.NumGC > c.lastNumGC {
		GoGCRuns.Add(float64(m.NumGC - c.lastNumGC))
		c.lastNumGC = m.NumGC
	}

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CacheEntries.Set(float64(stats.CacheEntries))
	CacheBytes.Set(float64(stats.CacheBytes))
	PrefetchQueueDepth.Set(float64(stats.PrefetchQueueDepth))
	PrefetchWorkers.Set(float64(stats.PrefetchWorkers))

	logging.Debug("Metrics collected: cache_entries=%d, cache_bytes=%d, queue_depth=%d",
		stats.CacheEntries, stats.CacheBytes, stats.PrefetchQueueDepth)
}
