package loader

import (
	"fmt"
	"time"

	"github.com/DevMiloo/PhotoSift/internal/decode"
	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/metrics"
)

// ImageRequest describes one load call: which file, how large, and at
// what quality. Immutable; build a new one per call.
type ImageRequest struct {
	// Path is the source image file.
	Path string

	// MaxDimension bounds the long edge of the result. Zero means
	// "use the profile's default bound"; explicit values win over the
	// profile.
	MaxDimension int

	// Profile selects the speed/fidelity trade.
	Profile imagetypes.Profile
}

// ResolveTargetDimension maps the request onto a concrete pixel bound.
// An explicit MaxDimension is authoritative regardless of profile;
// otherwise the profile default applies. Unbounded results are never
// produced: a final-profile request without an explicit bound still gets
// the comfortable-display default rather than a full-resolution decode.
func (r ImageRequest) ResolveTargetDimension() int {
	if r.MaxDimension > 0 {
		return r.MaxDimension
	}
	return r.Profile.DefaultDimension()
}

// CacheKey derives the preview-cache key. The resolved dimension is part
// of the key, so a request with an explicit 256 and a preview-default
// request land on the same entry, while distinct sizes or profiles for
// one path stay distinct entries.
func (r ImageRequest) CacheKey() string {
	return fmt.Sprintf("%s|%d|%s", r.Path, r.ResolveTargetDimension(), r.Profile)
}

// IsSupportedExtension reports whether path is worth handing to the
// decode chain at all. Pure string inspection; listing code calls this
// per directory entry before enqueueing prefetches.
func IsSupportedExtension(path string) bool {
	return imagetypes.IsSupportedExtension(path)
}

// ProbeDimensions reads the image geometry from the file header without
// producing a raster. Independent of the decode chain; sorters use it to
// annotate listings cheaply.
func ProbeDimensions(path string) (decode.Dimensions, error) {
	start := time.Now()
	dims, err := decode.Probe(path)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		return decode.Dimensions{}, &LoadError{Path: path, Status: decode.Classify(err), Err: err}
	}

	metrics.ProbesTotal.WithLabelValues("success").Inc()
	return dims, nil
}
