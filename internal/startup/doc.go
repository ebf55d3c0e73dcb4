// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - PHOTOS_DIR: Default photo directory for warming runs (default: .)
//   - PREVIEW_CACHE_CAPACITY: Maximum preview cache entries (default: 512)
//   - PREFETCH_WORKERS: Prefetch pool size, 0 sizes from GOMAXPROCS (default: 0)
//   - PREFETCH_QUEUE: Prefetch queue depth before drops (default: 256)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics listener (default: false)
//   - VIPS_ENABLED: Enable the libvips decode backend (default: true)
//   - FFMPEG_ENABLED: Enable the FFmpeg decode backend (default: true)
//   - PHOTOSIFT_WORKERS: Explicit worker count override (see internal/workers)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - MEMORY_LIMIT: Container memory limit for automatic GOMEMLIMIT configuration
//   - MEMORY_RATIO: Percentage of MEMORY_LIMIT for Go heap (default: 0.85)
//   - GOMEMLIMIT: Direct override for Go's memory limit
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogMemoryConfig]: Memory limit configuration
//   - [LogCacheInit]: Preview cache setup
//   - [LogDecoderInit]: Decode backend availability and FFmpeg check
//   - [LogPrefetcherInit]: Prefetch pool configuration
//   - [LogMetricsRoutes]: Registered metrics routes (debug level)
//   - [LogPipelineStarted]: Endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
//
// # Example Usage
//
//	memResult := memory.ConfigureFromEnv()
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogMemoryConfig(memResult)
//
//	// Initialize components...
//	startup.LogCacheInit(config.CacheCapacity)
//	startup.LogDecoderInit(config.VipsEnabled, config.FFmpegEnabled)
//
//	// Start the pipeline...
//	startup.LogPipelineStarted(startup.PipelineConfig{
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    WorkerCount:     workerCount,
//	    StartupDuration: time.Since(startTime),
//	})
//
//	// On shutdown...
//	startup.LogShutdownInitiated("SIGTERM")
//	// ... cleanup ...
//	startup.LogShutdownComplete()
package startup
