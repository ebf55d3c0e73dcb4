// Package main provides the entry point for the PhotoSift preview
// pipeline service.
//
// PhotoSift decodes photo libraries into bounded-size rasters for a
// review workflow: small previews for the grid the user scrolls, larger
// finals for the image under active inspection. The service keeps a
// preview cache warm ahead of the user and exposes Prometheus metrics
// for everything it does.
//
// # Application Lifecycle
//
// The service follows a structured initialization sequence:
//
//  1. Memory Configuration: Sets GOMEMLIMIT from environment or container limits
//  2. Configuration Loading: Reads environment variables and validates directories
//  3. Decoder Initialization: Starts libvips and checks FFmpeg availability
//  4. Component Initialization:
//     - Preview Cache: Bounded raster cache with pressure-driven reclamation
//     - Memory Monitor: Tracks heap usage against the configured limit
//     - Loader: Composes the decode chain, scaler and cache
//     - Prefetcher: Worker pool decoding previews ahead of demand
//     - Metrics Collector: Gathers cache and queue gauges every minute
//  5. Metrics Server Setup: Optional HTTP listener for Prometheus scrapes
//  6. Directory Warm: Queues the photo library for preview decoding
//  7. Graceful Shutdown: Handles SIGINT/SIGTERM, stops all components cleanly
//
// # Background Services
//
// Several goroutines run throughout the service lifecycle:
//
//   - Prefetch workers: Decode queued previews into the cache
//   - Memory monitor: Checks heap usage and pauses prefetching under pressure
//   - Metrics collector: Updates Prometheus gauges every minute
//   - Metrics server: Serves /metrics and /healthz when enabled
//
// # Memory Management
//
// Decoding photographs is memory-hungry; a single native-resolution
// raster from a modern camera runs past 100 MB. The service implements
// several tiers of defense:
//
//   - Container-aware GOMEMLIMIT configuration (80% of cgroup limit)
//   - Memory monitor that pauses prefetch workers under pressure
//   - Preview cache generations reclaimed on critical pressure
//   - Pixel budget rejecting decompression bombs before allocation
//
// # Metrics Server
//
// When METRICS_ENABLED is set, a second HTTP listener (default port
// 9090) serves:
//
//   - /metrics: Prometheus metrics endpoint
//   - /healthz: Health check endpoint (GET and HEAD)
//
// # Environment Variables
//
// Configuration is entirely through environment variables:
//
//   - PHOTOS_DIR: Root directory containing photos (default: .)
//   - PREVIEW_CACHE_CAPACITY: Max previews held in memory (default: 512)
//   - PREFETCH_WORKERS: Prefetch pool size (default: sized from GOMAXPROCS)
//   - PREFETCH_QUEUE: Prefetch queue depth (default: 256)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: false)
//   - VIPS_ENABLED: Use the libvips decode backend (default: true)
//   - FFMPEG_ENABLED: Use the FFmpeg decode backend (default: true)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - GOMEMLIMIT: Memory limit (derived from MEMORY_LIMIT if not set)
//
// # Graceful Shutdown
//
// The service handles SIGINT and SIGTERM signals gracefully:
//
//  1. Stop prefetch workers (in-flight decodes complete, queue abandoned)
//  2. Stop metrics collector
//  3. Stop memory monitor
//  4. Shutdown metrics server (30s timeout)
//  5. Shutdown libvips
//
// # Build Requirements
//
// The service requires CGO for libvips:
//
//   - libvips 8.10+: Fast decoding of HEIC, AVIF, RAW and the common formats
//   - FFmpeg (runtime, optional): Fallback for formats libvips was built without
//
// Neither is mandatory: without both, the pure Go software decoder still
// handles JPEG, PNG, GIF, BMP, TIFF and WebP.
//
// # Related Packages
//
//   - [github.com/DevMiloo/PhotoSift/internal/loader]: Pipeline facade and prefetcher
//   - [github.com/DevMiloo/PhotoSift/internal/decode]: Decode strategy chain
//   - [github.com/DevMiloo/PhotoSift/internal/scale]: Profile-aware scaling and cropping
//   - [github.com/DevMiloo/PhotoSift/internal/cache]: Preview cache
//   - [github.com/DevMiloo/PhotoSift/internal/memory]: GOMEMLIMIT and pressure monitoring
//   - [github.com/DevMiloo/PhotoSift/internal/startup]: Configuration and initialization
package main
