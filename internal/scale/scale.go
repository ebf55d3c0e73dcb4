package scale

import (
	"fmt"
	"image"
	"math"

	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/logging"
	"github.com/DevMiloo/PhotoSift/internal/raster"

	"github.com/disintegration/imaging"
)

const (
	// largeSourceMultiple is how far past the target a source's long edge
	// must be before the preview path crops ahead of resampling.
	largeSourceMultiple = 3

	// cropMultiple sizes the centered pre-crop relative to the target.
	// Twice the target keeps enough context for the filter while cutting
	// the pixel count the resampler has to walk.
	cropMultiple = 2
)

// Fit returns a copy of r scaled so its long edge is at most targetMaxDim.
// Sources already within the target come back as a format-normalized copy
// at original geometry; enlargement never happens. The result is always
// RGBA32 and never aliases the input buffer.
//
// Preview work uses bilinear resampling and, for sources more than
// largeSourceMultiple times the target, a centered crop first; thumbnails
// of 40MP originals should not pay for resampling the full frame. Final
// work always resamples the whole frame with Catmull-Rom.
func Fit(r *raster.Raster, targetMaxDim int, profile imagetypes.Profile) (*raster.Raster, error) {
	if targetMaxDim <= 0 {
		return nil, fmt.Errorf("scale: invalid target dimension %d", targetMaxDim)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	longEdge := r.LongEdge()
	if longEdge <= targetMaxDim {
		return r.Convert(raster.RGBA32), nil
	}

	view, err := r.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	var src image.Image = view
	if profile == imagetypes.ProfilePreview && longEdge > largeSourceMultiple*targetMaxDim {
		cropW, cropH := fitDims(r.Width, r.Height, cropMultiple*targetMaxDim)
		logging.Debug("Pre-cropping %dx%d to %dx%d for preview target %d", r.Width, r.Height, cropW, cropH, targetMaxDim)
		src = imaging.CropCenter(view, cropW, cropH)
	}

	bounds := src.Bounds()
	outW, outH := fitDims(bounds.Dx(), bounds.Dy(), targetMaxDim)

	resized := imaging.Resize(src, outW, outH, filterFor(profile))
	out, err := raster.FromImage(resized)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	return out, nil
}

// fitDims computes the geometry whose long edge equals target with the
// aspect ratio preserved. The short edge is floored and kept at one
// pixel minimum so extreme panoramas cannot collapse to zero height.
func fitDims(width, height, target int) (int, int) {
	if width >= height {
		if width <= target {
			return width, height
		}
		h := int(math.Floor(float64(height) * float64(target) / float64(width)))
		if h < 1 {
			h = 1
		}
		return target, h
	}
	if height <= target {
		return width, height
	}
	w := int(math.Floor(float64(width) * float64(target) / float64(height)))
	if w < 1 {
		w = 1
	}
	return w, target
}

// filterFor maps a profile onto a resampling filter. Preview trades
// quality for speed; final does the reverse.
func filterFor(profile imagetypes.Profile) imaging.ResampleFilter {
	if profile == imagetypes.ProfileFinal {
		return imaging.CatmullRom
	}
	return imaging.Linear
}
