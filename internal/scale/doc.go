// Package scale resizes decoded rasters to their profile targets.
//
// The decode chain hands over rasters at native resolution; this package
// owns every resizing decision. Fit bounds the long edge, preserves
// aspect ratio, and never enlarges: a source already within the target
// comes back as a format-normalized copy at original geometry.
//
// The two profiles resample differently. Preview uses bilinear, trading
// edge quality nobody inspects in a 256px grid cell for speed across a
// whole directory of prefetches. Final uses Catmull-Rom for the image
// actually under review. Preview additionally pre-crops sources whose
// long edge exceeds three times the target, so thumbnailing a 48MP frame
// does not resample pixels the grid cell cannot show.
//
// Outputs are always RGBA32 and never alias the input buffer, matching
// the copy discipline the preview cache expects.
package scale
