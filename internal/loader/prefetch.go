package loader

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/memory"
	"github.com/DevMiloo/PhotoSift/internal/metrics"
	"github.com/DevMiloo/PhotoSift/internal/workers"
)

const (
	// defaultQueueDepth bounds the prefetch queue when the caller does
	// not size it. Scroll-ahead hints beyond this are dropped, not
	// queued; stale hints are worthless by the time a deep queue would
	// reach them.
	defaultQueueDepth = 256

	// maxPrefetchWorkers caps the pool even on very wide machines.
	// Each worker can hold a full native-resolution raster, so the cap
	// is a memory bound as much as a CPU one.
	maxPrefetchWorkers = 8
)

// Prefetcher decodes previews ahead of the user's scroll position with a
// small fixed pool of workers. Results land in the preview cache through
// the shared loader; nothing is returned to the hinting caller.
type Prefetcher struct {
	loader      *Loader
	monitor     *memory.Monitor
	workerCount int

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	completed atomic.Int64
	failed    atomic.Int64
	canceled  atomic.Int64
	dropped   atomic.Int64
}

// NewPrefetcher creates a prefetcher over the given loader. workerCount
// and queueDepth fall back to defaults when zero or negative; the memory
// monitor is optional and gates workers under pressure when present.
func NewPrefetcher(l *Loader, monitor *memory.Monitor, workerCount, queueDepth int) *Prefetcher {
	if workerCount <= 0 {
		workerCount = workers.ForMixed(maxPrefetchWorkers)
	}
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Prefetcher{
		loader:      l,
		monitor:     monitor,
		workerCount: workerCount,
		jobs:        make(chan string, queueDepth),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker pool.
func (p *Prefetcher) Start() {
	logging.Info("Starting prefetcher with %d workers (queue depth %d)", p.workerCount, cap(p.jobs))
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Prefetcher) worker(id int) {
	defer p.wg.Done()

	logging.Debug("Prefetch worker %d started", id)

	for {
		if p.ctx.Err() != nil {
			logging.Debug("Prefetch worker %d canceled", id)
			return
		}

		select {
		case <-p.ctx.Done():
			logging.Debug("Prefetch worker %d canceled", id)
			return
		case path, ok := <-p.jobs:
			if !ok {
				logging.Debug("Prefetch worker %d finished", id)
				return
			}
			p.process(path)
		}
	}
}

func (p *Prefetcher) process(path string) {
	// Under memory pressure the whole pool parks here until the monitor
	// reopens the gate; the interactive load path is never gated.
	if p.monitor != nil && !p.monitor.WaitIfPaused() {
		p.canceled.Add(1)
		metrics.PrefetchTotal.WithLabelValues("canceled").Inc()
		return
	}

	_, err := p.loader.Load(p.ctx, ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	switch {
	case err == nil:
		p.completed.Add(1)
		metrics.PrefetchTotal.WithLabelValues("completed").Inc()
	case errors.Is(err, context.Canceled):
		p.canceled.Add(1)
		metrics.PrefetchTotal.WithLabelValues("canceled").Inc()
	default:
		p.failed.Add(1)
		metrics.PrefetchTotal.WithLabelValues("failed").Inc()
		logging.Debug("Prefetch failed for %s: %v", path, err)
	}
}

// Enqueue hints that path will likely be wanted soon. Non-blocking: when
// the queue is full the hint is dropped and false returned, because by
// the time a backed-up queue got to it the user would have scrolled
// somewhere else. Unsupported extensions are rejected without queueing.
func (p *Prefetcher) Enqueue(path string) bool {
	if !IsSupportedExtension(path) {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}

	select {
	case p.jobs <- path:
		metrics.PrefetchEnqueuedTotal.Inc()
		return true
	default:
		p.dropped.Add(1)
		metrics.PrefetchDroppedTotal.Inc()
		return false
	}
}

// WarmDirectory walks dir and queues every supported image for preview
// decoding. Unlike Enqueue it blocks when the queue is full so nothing
// is skipped; hidden files and directories are ignored. Returns how many
// paths were queued.
//
// Do not run WarmDirectory concurrently with Drain.
func (p *Prefetcher) WarmDirectory(dir string) (int, error) {
	enqueued := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-p.ctx.Done():
			return fs.SkipAll
		default:
		}

		if walkErr != nil {
			logging.Warn("Error accessing path %s: %v", path, walkErr)
			return nil
		}

		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !IsSupportedExtension(path) {
			return nil
		}

		select {
		case p.jobs <- path:
			enqueued++
			metrics.PrefetchEnqueuedTotal.Inc()
		case <-p.ctx.Done():
			return fs.SkipAll
		}
		return nil
	})
	return enqueued, err
}

// Drain closes the queue and blocks until the workers have finished
// everything already on it. No Enqueue or WarmDirectory may run once
// Drain begins; batch warming calls this after all paths are queued.
func (p *Prefetcher) Drain() {
	p.mu.Lock()
	alreadyClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	if !alreadyClosed {
		close(p.jobs)
	}
	p.wg.Wait()
}

// Stop abandons queued work and waits only for in-flight decodes. The
// queue channel is left open: a WarmDirectory walk racing Stop bails out
// through the canceled context instead of hitting a closed channel.
func (p *Prefetcher) Stop() {
	p.cancel()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}

// WorkerCount returns the size of the pool.
func (p *Prefetcher) WorkerCount() int {
	return p.workerCount
}

// QueueDepth returns the number of paths currently waiting.
func (p *Prefetcher) QueueDepth() int {
	return len(p.jobs)
}

// Stats returns the prefetch progress counters.
func (p *Prefetcher) Stats() (completed, failed, canceled, dropped int64) {
	return p.completed.Load(), p.failed.Load(), p.canceled.Load(), p.dropped.Load()
}

// GetStats implements metrics.StatsProvider so the collector can export
// queue and cache gauges.
func (p *Prefetcher) GetStats() metrics.Stats {
	s := metrics.Stats{
		PrefetchQueueDepth: len(p.jobs),
		PrefetchWorkers:    p.workerCount,
	}
	if p.loader.cache != nil {
		s.CacheEntries = p.loader.cache.Len()
		s.CacheBytes = p.loader.cache.Bytes()
	}
	return s
}
