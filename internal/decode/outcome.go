package decode

import (
	"time"

	"github.com/DevMiloo/PhotoSift/internal/raster"
)

// Status classifies the result of a decode attempt or a whole chain run.
type Status int

const (
	// StatusSuccess means a strategy produced a valid raster.
	StatusSuccess Status = iota

	// StatusUnsupported means the backend does not understand the
	// container. The chain moves on to the next strategy.
	StatusUnsupported

	// StatusTransient means an environmental failure (file locked, I/O
	// error, vanished path). The chain moves on; the caller may retry
	// the whole chain once.
	StatusTransient

	// StatusFatal means confirmed corrupt data. The chain stops
	// immediately; no further strategy is tried.
	StatusFatal
)

// String returns the metric label for the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnsupported:
		return "unsupported"
	case StatusTransient:
		return "transient"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Attempt records one strategy's classified result for diagnostics. The
// chain accumulates attempts in strategy order; callers get the full log
// on failure so "why won't this file open" is answerable from the error.
type Attempt struct {
	Strategy string
	Status   Status
	Err      error
	Duration time.Duration
}

// Outcome is a chain run's terminal result. Exactly one of Raster and Err
// is meaningful: Raster on StatusSuccess, Err otherwise. Strategy names
// the backend that produced the raster.
type Outcome struct {
	Raster   *raster.Raster
	Strategy string
	Status   Status
	Err      error
	Attempts []Attempt
}

// Observer receives one callback per strategy attempt. The metrics
// package implements it; keeping the interface here keeps this package
// free of metric imports.
type Observer interface {
	ObserveAttempt(strategy string, outcome string, durationSeconds float64)
}
