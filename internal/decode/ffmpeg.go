package decode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/raster"
)

// ffmpegDecodeTimeout bounds a single extraction. A stuck subprocess must
// not wedge a prefetch worker forever.
const ffmpegDecodeTimeout = 30 * time.Second

// FFmpegStrategy shells out to ffmpeg and grabs the first frame as PNG.
// It handles the formats libvips builds often miss (camera RAW variants,
// animated containers) at subprocess cost, so it runs after vips and
// before the pure-Go decoders.
type FFmpegStrategy struct {
	binPath string
}

// NewFFmpegStrategy locates the ffmpeg binary on PATH. When the binary is
// missing the strategy stays constructed but reports unavailable, so the
// chain skips it without error.
func NewFFmpegStrategy() *FFmpegStrategy {
	binPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		logging.Debug("ffmpeg not found on PATH, strategy disabled: %v", err)
		return &FFmpegStrategy{}
	}
	return &FFmpegStrategy{binPath: binPath}
}

// Name implements Strategy.
func (f *FFmpegStrategy) Name() string { return "ffmpeg" }

// Available implements Strategy.
func (f *FFmpegStrategy) Available() bool { return f.binPath != "" }

// Decode implements Strategy. ffmpeg writes a single PNG frame to stdout;
// any refusal is reported as unsupported because ffmpeg's error output
// does not distinguish corrupt data from formats it was built without.
func (f *FFmpegStrategy) Decode(ctx context.Context, path string) (*raster.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.binPath == "" {
		return nil, fmt.Errorf("%w: ffmpeg not available", ErrUnsupported)
	}

	ctx, cancel := context.WithTimeout(ctx, ffmpegDecodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.binPath,
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-pix_fmt", "rgb24",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: ffmpeg failed: %v, stderr: %s", ErrUnsupported, err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no output for %s", ErrUnsupported, filepath.Base(path))
	}

	logging.Debug("FFmpeg image output size: %d bytes for %s", stdout.Len(), filepath.Base(path))

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode ffmpeg output: %v", ErrUnsupported, err)
	}

	return raster.FromImage(img)
}
