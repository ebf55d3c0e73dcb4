package decode

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"path/filepath"
	"sync"

	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/raster"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// InitVips initializes the libvips library.
// This should be called once at startup. govips cannot be restarted after
// Shutdown, so init and shutdown bracket the whole process lifetime.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Configure vips logging BEFORE Startup() so early messages already
	// respect LOG_LEVEL.
	vipsLevel := vips.LogLevelWarning
	if logging.IsDebugEnabled() {
		vipsLevel = vips.LogLevelInfo
	}
	vips.LoggingSettings(vipsLog, vipsLevel)

	// Conservative memory settings: decoded rasters dominate this
	// process's footprint, so the vips operation cache stays small.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,                // one image at a time keeps peak memory predictable
		MaxCacheMem:      50 * 1024 * 1024, // 50MB operation cache
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

func vipsLog(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// ShutdownVips cleans up libvips resources
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// VipsStrategy decodes through libvips. It is the fastest backend and
// covers the widest format set (HEIC, AVIF, JXL, most RAW flavors when
// built with libheif/libraw), so it runs first.
type VipsStrategy struct{}

// NewVipsStrategy returns the libvips-backed strategy. InitVips must have
// run for Available to report true.
func NewVipsStrategy() *VipsStrategy {
	return &VipsStrategy{}
}

// Name implements Strategy.
func (v *VipsStrategy) Name() string { return "vips" }

// Available implements Strategy.
func (v *VipsStrategy) Available() bool { return IsVipsAvailable() }

// Decode implements Strategy. The raster comes out at native resolution;
// decode-time shrinking is deliberately not used here because the scaler
// owns all resizing decisions.
func (v *VipsStrategy) Decode(ctx context.Context, path string) (*raster.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("%w: libvips not initialized", ErrUnsupported)
	}

	// Default import params include auto-orientation.
	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	width := ref.Width()
	height := ref.Height()
	logging.Debug("Vips loaded %s: %dx%d, %d bands", filepath.Base(path), width, height, ref.Bands())

	// Fast path: interleaved 8-bit sRGB maps straight onto a raster.
	if ref.BandFormat() == vips.BandFormatUchar &&
		ref.Interpretation() == vips.InterpretationSRGB &&
		(ref.Bands() == 3 || ref.Bands() == 4) {
		if pix, err := ref.ToBytes(); err == nil {
			layout := raster.RGB24
			if ref.Bands() == 4 {
				layout = raster.RGBA32
			}
			if r, rerr := raster.FromBytes(pix, width, height, layout); rerr == nil {
				return r, nil
			}
		}
		// Fall through to the export path on any mismatch.
	}

	// Everything else (grayscale, CMYK, 16-bit TIFF) goes through a
	// lossless export and the standard decoder.
	pngBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode vips output: %w", err)
	}

	return raster.FromImage(img)
}

// vipsProbe reads dimensions from the container header. libvips loads
// lazily, so no pixel data is decoded.
func vipsProbe(path string) (Dimensions, error) {
	if !IsVipsAvailable() {
		return Dimensions{}, fmt.Errorf("%w: libvips not initialized", ErrUnsupported)
	}

	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return Dimensions{}, fmt.Errorf("vips failed to read header: %w", err)
	}
	defer ref.Close()

	return Dimensions{Width: ref.Width(), Height: ref.Height()}, nil
}
