package decode

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/raster"

	"github.com/disintegration/imaging"
)

// MaxImagePixels caps the geometry the pure-Go decoders will inflate.
// 268 megapixels clears any stitched panorama while refusing PNG
// decompression bombs that declare absurd dimensions in the header.
const MaxImagePixels = 1 << 28

// SoftwareStrategy decodes with the pure-Go image packages. It needs no
// external libraries or binaries, so it is the chain's guaranteed last
// resort, and the only strategy whose failures can confirm corruption:
// when the sniffer says the container is one we implement and the stream
// still fails, the bytes are bad.
type SoftwareStrategy struct{}

// NewSoftwareStrategy returns the pure-Go decoder strategy.
func NewSoftwareStrategy() *SoftwareStrategy {
	return &SoftwareStrategy{}
}

// Name implements Strategy.
func (s *SoftwareStrategy) Name() string { return "software" }

// Available implements Strategy. The software decoders are compiled in,
// so this is always true.
func (s *SoftwareStrategy) Available() bool { return true }

// Decode implements Strategy.
func (s *SoftwareStrategy) Decode(ctx context.Context, path string) (*raster.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Header-only pass first so a decompression bomb is rejected before
	// any pixel allocation happens.
	if cfg, err := decodeConfig(path); err == nil {
		if pixels := cfg.Width * cfg.Height; pixels > MaxImagePixels {
			return nil, fmt.Errorf("%w: %dx%d (%d pixels) exceeds decode budget",
				ErrUnsupported, cfg.Width, cfg.Height, pixels)
		}
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, s.classifyOpenError(path, err)
	}

	return raster.FromImage(img)
}

// classifyOpenError turns an imaging.Open failure into a sentinel-tagged
// error. I/O trouble is transient; a recognized container that still
// refuses to decode is corrupt; everything else is an exotic format for
// an earlier strategy to have handled.
func (s *SoftwareStrategy) classifyOpenError(path string, err error) error {
	if isTransientIO(err) {
		return classified(ErrTransient, err)
	}

	format, sniffErr := imagetypes.DetectFormat(path)
	if sniffErr == nil && imagetypes.SoftwareDecodable(format) {
		return fmt.Errorf("%w: %s stream rejected: %v", ErrCorrupt, format, err)
	}

	return classified(ErrUnsupported, err)
}

// decodeConfig reads only the image header. Registered decoders populate
// width, height and color model without touching pixel data.
func decodeConfig(path string) (image.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logging.Warn("Failed to close %s after header read: %v", filepath.Base(path), cerr)
		}
	}()

	cfg, _, err := image.DecodeConfig(file)
	return cfg, err
}
