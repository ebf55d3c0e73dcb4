package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DevMiloo/PhotoSift/internal/cache"
	"github.com/DevMiloo/PhotoSift/internal/decode"
	"github.com/DevMiloo/PhotoSift/internal/loader"
	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/memory"
	"github.com/DevMiloo/PhotoSift/internal/metrics"
	"github.com/DevMiloo/PhotoSift/internal/middleware"
	"github.com/DevMiloo/PhotoSift/internal/startup"
)

func main() {
	startTime := time.Now()

	// Configure GOMEMLIMIT before anything allocates in earnest
	memoryConfig := memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memoryConfig)

	// Initialize decode backends
	if config.VipsEnabled {
		if err := decode.InitVips(); err != nil {
			logging.Warn("libvips initialization failed, falling back: %v", err)
			config.VipsEnabled = false
		}
	}
	startup.LogDecoderInit(config.VipsEnabled, config.FFmpegEnabled)

	chain := decode.NewDefaultChain(decode.Config{
		VipsEnabled:   config.VipsEnabled,
		FFmpegEnabled: config.FFmpegEnabled,
	}, metrics.NewDecodeObserver())

	// Initialize preview cache
	previewCache, err := cache.New(config.CacheCapacity)
	if err != nil {
		startup.LogFatal("Failed to initialize preview cache: %v", err)
	}
	startup.LogCacheInit(config.CacheCapacity)

	// Initialize memory monitor; pressure reclaims the preview cache
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.OnPressure(previewCache.BumpGeneration)
	monitor.Start()

	// Initialize loader and prefetcher
	ldr := loader.New(chain, previewCache)
	prefetcher := loader.NewPrefetcher(ldr, monitor, config.PrefetchWorkers, config.PrefetchQueueDepth)
	startup.LogPrefetcherInit(prefetcher.WorkerCount(), config.PrefetchQueueDepth)
	prefetcher.Start()
	startup.LogPrefetcherStarted()

	// Initialize metrics collection
	collector := metrics.NewCollector(prefetcher, 1*time.Minute)
	collector.Start()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	// Optional metrics listener
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		router := metricsRouter()
		startup.LogMetricsRoutes(router)

		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Warm the photos directory in the background (non-blocking)
	go func() {
		queued, err := prefetcher.WarmDirectory(config.PhotosDir)
		if err != nil {
			logging.Warn("Initial warm of %s aborted: %v", config.PhotosDir, err)
			return
		}
		logging.Info("Initial warm queued %d previews from %s", queued, config.PhotosDir)
	}()

	startup.LogPipelineStarted(startup.PipelineConfig{
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		WorkerCount:     prefetcher.WorkerCount(),
		StartupDuration: time.Since(startTime),
	})

	// Block until asked to stop
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	shutdown(sig.String(), prefetcher, collector, monitor, metricsSrv)
}

func metricsRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(middleware.DefaultConfig()))
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", healthzHandler).Methods("GET", "HEAD")
	return r
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	resp := map[string]string{
		"status":  "ok",
		"version": startup.Version,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Warn("Failed to encode health response: %v", err)
	}
}

func shutdown(signal string, prefetcher *loader.Prefetcher, collector *metrics.Collector, monitor *memory.Monitor, metricsSrv *http.Server) {
	startup.LogShutdownInitiated(signal)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping prefetcher")
	prefetcher.Stop()
	startup.LogShutdownStepComplete("Prefetcher stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down libvips")
	decode.ShutdownVips()
	startup.LogShutdownStepComplete("libvips shut down")

	startup.LogShutdownComplete()
}
