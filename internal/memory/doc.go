// Package memory provides memory management utilities for controlling Go's
// runtime memory usage in containerized environments.
//
// # Overview
//
// When running in Kubernetes or other container orchestrators, Go applications
// can be OOM-killed if they exceed their memory limits. Unlike GOMAXPROCS,
// which Go automatically detects from cgroup CPU limits, GOMEMLIMIT must be
// configured explicitly. Decoded rasters are large, so PhotoSift treats the
// memory limit as a first-class input to its scheduling.
//
// This package provides utilities to:
//   - Configure GOMEMLIMIT from Kubernetes Downward API environment variables
//   - Reserve memory for non-heap allocations (FFmpeg, libvips via CGO)
//   - Monitor memory usage and provide backpressure signals
//   - Notify interested components (the preview cache) when pressure turns
//     critical
//
// # Configuration
//
// The simplest way to use this package is to call [ConfigureFromEnv] early in
// your main function, before any significant allocations occur:
//
//	func main() {
//	    memory.ConfigureFromEnv()
//	    // ... rest of application
//	}
//
// # Environment Variables
//
// The following environment variables control memory configuration:
//
//   - GOMEMLIMIT: Standard Go environment variable. If set, takes precedence
//     over all other configuration. Accepts values like "400MiB" or "1GiB".
//
//   - MEMORY_LIMIT: Container memory limit in bytes. Typically set via
//     Kubernetes Downward API. This is the raw value from which GOMEMLIMIT
//     is calculated.
//
//   - MEMORY_RATIO: Percentage of MEMORY_LIMIT to use for Go heap, expressed
//     as a decimal between 0.0 and 1.0. Default is 0.85 (85%). Lower this
//     value if your application spawns memory-intensive subprocesses or
//     uses significant CGO/mmap memory.
//
// # Memory Monitoring
//
// For runtime monitoring and backpressure, use the [Monitor] type:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	// In prefetch workers:
//	if !monitor.WaitIfPaused() {
//	    return // shutdown signal received
//	}
//	// ... decode the next image
//
// The monitor provides:
//
//   - Automatic pausing of background decoding above the critical threshold
//   - Throttling signals above the high water mark
//   - Periodic memory usage tracking exported through the metrics package
//
// # Pressure Hooks
//
// Components holding discardable memory can register for critical pressure
// transitions with [Monitor.OnPressure]. The preview cache registers its
// generation bump here, which marks every resident raster as reclaimable;
// cache lookups then lazily drop the stale entries. Hooks fire once per
// transition into the critical zone, not once per check.
//
//	monitor.OnPressure(cache.BumpGeneration)
//
// # How GOMEMLIMIT Works
//
// GOMEMLIMIT (introduced in Go 1.19) sets a soft memory limit for the Go
// runtime. When heap allocations approach this limit, the garbage collector
// runs more aggressively to try to stay under the limit.
//
// Important notes:
//
//   - GOMEMLIMIT is a soft limit, not a hard limit. Go may temporarily exceed
//     it if the GC cannot free memory fast enough.
//
//   - GOMEMLIMIT only affects Go heap allocations. It does not limit memory
//     used by CGO (libvips pixel buffers), mmap, or FFmpeg child processes,
//     which is why the default MEMORY_RATIO reserves 15% headroom.
//
// # References
//
//   - Go 1.19 Release Notes (GOMEMLIMIT): https://go.dev/doc/go1.19
//   - GC Guide: https://go.dev/doc/gc-guide
//   - Kubernetes Downward API: https://kubernetes.io/docs/concepts/workloads/pods/downward-api/
package memory
