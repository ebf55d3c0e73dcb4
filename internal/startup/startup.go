package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/memory"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Default configuration values.
const (
	DefaultCacheCapacity      = 512
	DefaultPrefetchQueueDepth = 256
)

// Config holds all application configuration
type Config struct {
	PhotosDir          string
	CacheCapacity      int
	PrefetchWorkers    int // 0 means size from GOMAXPROCS
	PrefetchQueueDepth int
	MetricsPort        string
	MetricsEnabled     bool
	VipsEnabled        bool
	FFmpegEnabled      bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	photosDir := getEnv("PHOTOS_DIR", ".")
	cacheCapacity := getEnvInt("PREVIEW_CACHE_CAPACITY", DefaultCacheCapacity)
	prefetchWorkers := getEnvInt("PREFETCH_WORKERS", 0)
	prefetchQueueDepth := getEnvInt("PREFETCH_QUEUE", DefaultPrefetchQueueDepth)
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", false)
	vipsEnabled := getEnvBool("VIPS_ENABLED", true)
	ffmpegEnabled := getEnvBool("FFMPEG_ENABLED", true)

	logging.Info("  PHOTOS_DIR:             %s", photosDir)
	logging.Info("  PREVIEW_CACHE_CAPACITY: %d", cacheCapacity)
	if prefetchWorkers > 0 {
		logging.Info("  PREFETCH_WORKERS:       %d", prefetchWorkers)
	} else {
		logging.Info("  PREFETCH_WORKERS:       auto (GOMAXPROCS-based)")
	}
	logging.Info("  PREFETCH_QUEUE:         %d", prefetchQueueDepth)
	logging.Info("  METRICS_PORT:           %s", metricsPort)
	logging.Info("  METRICS_ENABLED:        %v", metricsEnabled)
	logging.Info("  VIPS_ENABLED:           %v", vipsEnabled)
	logging.Info("  FFMPEG_ENABLED:         %v", ffmpegEnabled)
	logging.Info("  LOG_LEVEL:              %s", logging.GetLevel())

	if cacheCapacity < 1 {
		logging.Warn("  Invalid PREVIEW_CACHE_CAPACITY, using default: %d", DefaultCacheCapacity)
		cacheCapacity = DefaultCacheCapacity
	}
	if prefetchWorkers < 0 {
		logging.Warn("  Invalid PREFETCH_WORKERS, using automatic sizing")
		prefetchWorkers = 0
	}
	if prefetchQueueDepth < 1 {
		logging.Warn("  Invalid PREFETCH_QUEUE, using default: %d", DefaultPrefetchQueueDepth)
		prefetchQueueDepth = DefaultPrefetchQueueDepth
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	photosDir, err := filepath.Abs(photosDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photos directory path: %w", err)
	}
	logging.Info("  Photos directory (absolute): %s", photosDir)

	// Check the photos directory (warning only; the CLI takes explicit
	// paths too, so a missing default dir is not fatal)
	if err := checkDirectory(photosDir, "photos"); err != nil {
		logging.Warn("  Photos directory issue: %v", err)
	}

	config := &Config{
		PhotosDir:          photosDir,
		CacheCapacity:      cacheCapacity,
		PrefetchWorkers:    prefetchWorkers,
		PrefetchQueueDepth: prefetchQueueDepth,
		MetricsPort:        metricsPort,
		MetricsEnabled:     metricsEnabled,
		VipsEnabled:        vipsEnabled,
		FFmpegEnabled:      ffmpegEnabled,
	}

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    libvips decode: %s", enabledString(config.VipsEnabled))
	logging.Info("    FFmpeg decode:  %s", enabledString(config.FFmpegEnabled))
	logging.Info("    Metrics:        %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogCacheInit logs preview cache initialization
func LogCacheInit(capacity int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PREVIEW CACHE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Preview cache ready (capacity: %d entries)", capacity)
}

// LogDecoderInit logs decode backend availability and checks FFmpeg
func LogDecoderInit(vipsEnabled, ffmpegEnabled bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DECODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if vipsEnabled {
		logging.Info("  [OK] libvips backend enabled")
	} else {
		logging.Warn("  libvips backend disabled")
		logging.Warn("  RAW and HEIC files will rely on FFmpeg")
	}

	if !ffmpegEnabled {
		logging.Warn("  FFmpeg backend disabled")
		logging.Warn("  Formats libvips cannot read will use the software decoder only")
		return
	}

	if err := checkFFmpeg(); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Exotic formats may fail to decode")
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}
}

// LogPrefetcherInit logs prefetcher initialization
func LogPrefetcherInit(workerCount, queueDepth int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PREFETCHER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Workers:     %d", workerCount)
	logging.Info("  Queue depth: %d", queueDepth)
	logging.Info("  Starting prefetcher...")
}

// LogPrefetcherStarted logs successful prefetcher start
func LogPrefetcherStarted() {
	logging.Info("  [OK] Prefetcher started")
}

// MemoryConfig is the memory configuration outcome reported by
// memory.ConfigureFromEnv.
type MemoryConfig = memory.ConfigResult

// LogMemoryConfig logs the GOMEMLIMIT configuration outcome
func LogMemoryConfig(mc MemoryConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	if !mc.Configured {
		logging.Info("  GOMEMLIMIT not configured (no MEMORY_LIMIT or GOMEMLIMIT set)")
		logging.Info("  The Go runtime will grow the heap without a soft limit")
		return
	}

	switch mc.Source {
	case "GOMEMLIMIT":
		logging.Info("  GOMEMLIMIT set via environment: %s", formatBytesStartup(mc.GoMemLimit))
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %s", formatBytesStartup(mc.ContainerLimit))
		logging.Info("  GOMEMLIMIT:      %s (%.0f%% of container limit)", formatBytesStartup(mc.GoMemLimit), mc.Ratio*100)
	default:
		logging.Info("  GOMEMLIMIT: %s", formatBytesStartup(mc.GoMemLimit))
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogMetricsRoutes logs the routes registered on the metrics listener
func LogMetricsRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("METRICS SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		// Sort group keys
		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		// Print routes by group
		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Get first segment
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	return parts[0]
}

// PipelineConfig holds configuration for the pipeline startup log
type PipelineConfig struct {
	MetricsPort     string
	MetricsEnabled  bool
	WorkerCount     int
	StartupDuration time.Duration
}

// LogPipelineStarted logs successful pipeline start with endpoint information
func LogPipelineStarted(config PipelineConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PIPELINE STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  Decode workers:  %d", config.WorkerCount)
	if config.MetricsEnabled {
		logging.Info("")
		logging.Info("  Endpoints:")
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
		logging.Info("    Health:        http://localhost:%s/healthz", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __       _____ _ ______
   / __ \/ /_  ____  / /_____ / ___/(_) __/ /_
  / /_/ / __ \/ __ \/ __/ __ \\__ \/ / /_/ __/
 / ____/ / / / /_/ / /_/ /_/ /__/ / / __/ /_
/_/   /_/ /_/\____/\__/\____/____/_/_/  \__/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist")
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if name == "photos" && logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount := 0
			dirCount := 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}

	return nil
}

func checkFFmpeg() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH")
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", "-version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func formatBytesStartup(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
