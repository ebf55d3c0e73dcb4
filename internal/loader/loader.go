package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/DevMiloo/PhotoSift/internal/cache"
	"github.com/DevMiloo/PhotoSift/internal/decode"
	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/metrics"
	"github.com/DevMiloo/PhotoSift/internal/raster"
	"github.com/DevMiloo/PhotoSift/internal/scale"
)

// retryDelay spaces the single whole-chain retry out from the transient
// failure that triggered it. Move-pool races usually resolve within this
// window; anything slower is not worth blocking a worker for.
const retryDelay = 50 * time.Millisecond

// Loader orchestrates the pipeline: cache lookup, size resolution,
// decode chain, scaling, cache population. It holds no per-request
// state; any number of Load calls may run concurrently.
type Loader struct {
	chain *decode.Chain
	cache *cache.PreviewCache
	retry retrypolicy.RetryPolicy[decode.Outcome]
}

// New builds a loader over a decode chain and a preview cache. The cache
// may be nil, in which case every load decodes fresh; the chain must not
// be.
func New(chain *decode.Chain, previewCache *cache.PreviewCache) *Loader {
	return &Loader{
		chain: chain,
		cache: previewCache,
		retry: retrypolicy.Builder[decode.Outcome]().
			HandleIf(func(outcome decode.Outcome, _ error) bool {
				return outcome.Status == decode.StatusTransient
			}).
			WithMaxRetries(1).
			WithDelay(retryDelay).
			OnRetry(func(event failsafe.ExecutionEvent[decode.Outcome]) {
				metrics.LoadRetriesTotal.Inc()
				logging.Debug("Retrying decode chain after transient failure (attempt %d)", event.Attempts())
			}).
			ReturnLastFailure().
			Build(),
	}
}

// Load produces a raster for the request or a *LoadError carrying the
// terminal classification. The returned raster is always the caller's to
// mutate or discard; it never aliases a cache entry.
//
// Preview requests consult the cache first and populate it on success.
// Final requests bypass the cache entirely: the image under review is
// decoded at full fidelity every time.
func (l *Loader) Load(ctx context.Context, req ImageRequest) (*raster.Raster, error) {
	start := time.Now()
	metrics.LoadsInFlight.Inc()
	defer metrics.LoadsInFlight.Dec()

	if req.Path == "" {
		err := &LoadError{Path: req.Path, Status: decode.StatusUnsupported,
			Err: fmt.Errorf("%w: empty path", decode.ErrUnsupported)}
		l.observe(req.Profile, "unsupported", start)
		return nil, err
	}

	key := req.CacheKey()
	usesCache := l.cache != nil && req.Profile == imagetypes.ProfilePreview

	if usesCache {
		if r, ok := l.cache.Get(key); ok {
			l.observe(req.Profile, "success", start)
			return r, nil
		}
	}

	target := req.ResolveTargetDimension()

	outcome := l.decodeWithRetry(ctx, req.Path)
	if outcome.Status != decode.StatusSuccess {
		err := &LoadError{Path: req.Path, Status: outcome.Status, Attempts: outcome.Attempts, Err: outcome.Err}
		l.observe(req.Profile, terminalLabel(outcome), start)
		return nil, err
	}

	scaled, scaleErr := scale.Fit(outcome.Raster, target, req.Profile)
	if scaleErr != nil {
		// A raster that cannot be scaled to a positive geometry is as
		// unusable as a corrupt stream.
		err := &LoadError{Path: req.Path, Status: decode.StatusFatal, Attempts: outcome.Attempts,
			Err: fmt.Errorf("%w: %w", decode.ErrCorrupt, scaleErr)}
		l.observe(req.Profile, "corrupt", start)
		return nil, err
	}

	if usesCache {
		if err := l.cache.Put(key, scaled); err != nil {
			// A full or failing cache never fails the load itself.
			logging.Warn("Preview cache rejected %s: %v", req.Path, err)
		}
	}

	l.observe(req.Profile, "success", start)
	return scaled, nil
}

// decodeWithRetry runs the chain with at most one whole-chain retry on a
// transient outcome. Unsupported and fatal outcomes never retry.
func (l *Loader) decodeWithRetry(ctx context.Context, path string) decode.Outcome {
	outcome, err := failsafe.NewExecutor[decode.Outcome](l.retry).
		WithContext(ctx).
		Get(func() (decode.Outcome, error) {
			return l.chain.Decode(ctx, path), nil
		})
	if err != nil {
		// The executor only errors when the context dies between
		// attempts; fold that into the transient taxonomy.
		return decode.Outcome{
			Status: decode.StatusTransient,
			Err:    fmt.Errorf("%w: %w", decode.ErrTransient, err),
		}
	}
	return outcome
}

// terminalLabel maps a failed outcome onto the load status vocabulary.
// Cancellation is worth its own label: a user scrolling past an image is
// not a failure worth alerting on.
func terminalLabel(outcome decode.Outcome) string {
	switch outcome.Status {
	case decode.StatusUnsupported:
		return "unsupported"
	case decode.StatusFatal:
		return "corrupt"
	case decode.StatusTransient:
		if errors.Is(outcome.Err, context.Canceled) || errors.Is(outcome.Err, context.DeadlineExceeded) {
			return "canceled"
		}
		return "transient"
	default:
		return "unsupported"
	}
}

func (l *Loader) observe(profile imagetypes.Profile, status string, start time.Time) {
	metrics.LoadsTotal.WithLabelValues(string(profile), status).Inc()
	metrics.LoadDuration.WithLabelValues(string(profile)).Observe(time.Since(start).Seconds())
}

// CacheStats exposes the preview cache counters for status displays.
// Returns zeros when the loader runs uncached.
func (l *Loader) CacheStats() cache.Stats {
	if l.cache == nil {
		return cache.Stats{}
	}
	return l.cache.Stats()
}
