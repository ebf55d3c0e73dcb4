package decode

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/raster"
)

// Strategy is one decode backend in the fallback chain. Implementations
// must be safe for concurrent use: the chain shares them across requests
// and never serializes calls.
type Strategy interface {
	// Name is the stable identifier used in logs and metrics.
	Name() string

	// Available reports whether the backend can run in this process.
	// Unavailable strategies are skipped without an attempt record.
	Available() bool

	// Decode produces a raster at native source resolution or fails.
	// Resizing happens downstream; this layer never scales.
	Decode(ctx context.Context, path string) (*raster.Raster, error)
}

// Config selects which backends participate in the chain. The software
// strategy always participates so a plain JPEG decodes even on a host
// with neither libvips nor FFmpeg.
type Config struct {
	VipsEnabled   bool
	FFmpegEnabled bool
}

// DefaultConfig enables every backend.
func DefaultConfig() Config {
	return Config{VipsEnabled: true, FFmpegEnabled: true}
}

// Chain tries decode strategies in a fixed priority order and classifies
// their failures centrally. It holds no per-request state: any number of
// Decode calls may run concurrently.
type Chain struct {
	strategies []Strategy
	observer   Observer
}

// NewChain builds a chain over an explicit strategy list. Order matters:
// strategies are tried first to last.
func NewChain(strategies []Strategy, observer Observer) *Chain {
	return &Chain{strategies: strategies, observer: observer}
}

// NewDefaultChain assembles the production order: libvips for speed,
// FFmpeg for coverage, the pure Go registry as the guaranteed last resort.
func NewDefaultChain(cfg Config, observer Observer) *Chain {
	strategies := make([]Strategy, 0, 3)
	if cfg.VipsEnabled {
		strategies = append(strategies, NewVipsStrategy())
	}
	if cfg.FFmpegEnabled {
		strategies = append(strategies, NewFFmpegStrategy())
	}
	strategies = append(strategies, NewSoftwareStrategy())
	return NewChain(strategies, observer)
}

// Decode runs the chain for path. The outcome is always terminal:
// individual strategy failures are absorbed here and only the final
// classification escapes to the caller.
//
// The first Success wins and stops the chain. A Fatal classification
// (confirmed corruption) also stops it immediately. Everything else
// falls through to the next strategy, and the terminal status prefers
// Transient over Unsupported so the caller's retry gets its chance.
func (c *Chain) Decode(ctx context.Context, path string) Outcome {
	if _, err := os.Stat(path); err != nil {
		// The move pool may have relocated the file between enqueue and
		// decode. No strategy can do better than stat did.
		return Outcome{
			Status: StatusTransient,
			Err:    classified(ErrTransient, fmt.Errorf("stat %s: %w", path, err)),
		}
	}

	attempts := make([]Attempt, 0, len(c.strategies))

	for _, strategy := range c.strategies {
		if !strategy.Available() {
			logging.Debug("Decode strategy %s unavailable, skipping for %s", strategy.Name(), path)
			continue
		}

		if err := ctx.Err(); err != nil {
			return Outcome{
				Status:   StatusTransient,
				Err:      classified(ErrTransient, err),
				Attempts: attempts,
			}
		}

		start := time.Now()
		r, err := runStrategy(ctx, strategy, path)
		elapsed := time.Since(start)

		if err == nil && !validRaster(r) {
			// A decoder that reports success with a bad raster is a
			// backend bug, not proof of a bad file. Move on.
			err = fmt.Errorf("%w: strategy %s produced an invalid raster", ErrUnsupported, strategy.Name())
			r = nil
		}

		if err == nil {
			attempts = append(attempts, Attempt{Strategy: strategy.Name(), Status: StatusSuccess, Duration: elapsed})
			c.observe(strategy.Name(), StatusSuccess, elapsed)
			logging.Debug("Decoded %s with %s in %v (%dx%d)", path, strategy.Name(), elapsed, r.Width, r.Height)
			return Outcome{Raster: r, Strategy: strategy.Name(), Status: StatusSuccess, Attempts: attempts}
		}

		status := Classify(err)
		attempts = append(attempts, Attempt{Strategy: strategy.Name(), Status: status, Err: err, Duration: elapsed})
		c.observe(strategy.Name(), status, elapsed)
		logging.Debug("Decode strategy %s failed for %s (%s): %v", strategy.Name(), path, status, err)

		if status == StatusFatal {
			return Outcome{
				Status:   StatusFatal,
				Err:      classified(ErrCorrupt, err),
				Attempts: attempts,
			}
		}
	}

	return terminal(path, attempts)
}

// runStrategy isolates a panicking backend. Decoders chew on untrusted
// bytes; a panic is treated as confirmed bad data rather than allowed to
// kill the worker goroutine.
func runStrategy(ctx context.Context, s Strategy, path string) (r *raster.Raster, err error) {
	defer func() {
		if p := recover(); p != nil {
			r = nil
			err = fmt.Errorf("%w: %s decoder panic: %v", ErrCorrupt, s.Name(), p)
		}
	}()
	return s.Decode(ctx, path)
}

func validRaster(r *raster.Raster) bool {
	return r != nil && r.Validate() == nil
}

// terminal picks the chain's final classification after every strategy
// has had its turn without success.
func terminal(path string, attempts []Attempt) Outcome {
	var transientErr error
	for _, a := range attempts {
		if a.Status == StatusTransient {
			transientErr = a.Err
		}
	}

	if transientErr != nil {
		return Outcome{
			Status:   StatusTransient,
			Err:      classified(ErrTransient, transientErr),
			Attempts: attempts,
		}
	}

	if len(attempts) == 0 {
		return Outcome{
			Status: StatusUnsupported,
			Err:    fmt.Errorf("%w: no decode backends available for %s", ErrUnsupported, path),
		}
	}

	last := attempts[len(attempts)-1]
	return Outcome{
		Status:   StatusUnsupported,
		Err:      fmt.Errorf("%w: %d strategies tried for %s, last: %v", ErrUnsupported, len(attempts), path, last.Err),
		Attempts: attempts,
	}
}

func (c *Chain) observe(strategy string, status Status, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveAttempt(strategy, status.String(), elapsed.Seconds())
}
