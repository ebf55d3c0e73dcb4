package loader

import (
	"fmt"

	"github.com/DevMiloo/PhotoSift/internal/decode"
)

// LoadError is the single error type the loader surfaces. It carries the
// path, the terminal classification, and the per-strategy attempt log so
// a caller (or a log line) can answer "why won't this file open" without
// digging through wrapped strings.
type LoadError struct {
	Path     string
	Status   decode.Status
	Attempts []decode.Attempt
	Err      error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Path, e.Status)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Status, e.Err)
}

// Is allows for error checking with errors.Is().
func (e *LoadError) Is(target error) bool {
	_, ok := target.(*LoadError)
	return ok
}

// Unwrap exposes the classified cause, so errors.Is reaches the decode
// sentinels (decode.ErrCorrupt and friends) through a LoadError.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure was transient. The loader has
// already spent its one whole-chain retry by the time a caller sees
// this; it exists for callers that re-enqueue work on their own clock.
func (e *LoadError) IsRetryable() bool {
	return e.Status == decode.StatusTransient
}
