package decode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Classification sentinels. Strategy errors wrap one of these (or get
// classified by Classify) so the chain and its callers can discriminate
// failures with errors.Is.
var (
	// ErrUnsupported means no decode backend understands the container.
	// Terminal: the caller shows a placeholder instead of a raster.
	ErrUnsupported = errors.New("unsupported image format")

	// ErrTransient means the environment, not the image, caused the
	// failure. Eligible for exactly one whole-chain retry.
	ErrTransient = errors.New("transient decode failure")

	// ErrCorrupt means the most capable decoder for the container
	// confirmed bad data. Terminal, never retried.
	ErrCorrupt = errors.New("corrupt image data")
)

// Classify maps a strategy error to a chain status. Corruption outranks
// environment trouble, which outranks plain format ignorance: a backend
// that errors without classifying most likely does not understand the
// container, and only the software registry gets to confirm corruption.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrCorrupt):
		return StatusFatal
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusTransient
	case errors.Is(err, ErrTransient), isTransientIO(err):
		return StatusTransient
	default:
		return StatusUnsupported
	}
}

// classified guarantees err carries sentinel in its chain without double
// wrapping, so errors.Is works on both the sentinel and the original cause.
func classified(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// isTransientIO reports whether err looks environmental: the kind of
// failure a moved, locked, or NFS-stale file produces. The organizer's
// move/copy pool relocates files while decodes are in flight, so a
// vanished path is frequently a race rather than a terminal condition.
func isTransientIO(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.EBUSY, syscall.EINTR, syscall.EIO,
			syscall.ESTALE, syscall.EMFILE, syscall.ENFILE:
			return true
		}
	}

	return false
}
