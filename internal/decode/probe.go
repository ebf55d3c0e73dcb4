package decode

import (
	"fmt"
)

// Dimensions is an image geometry read from a container header.
type Dimensions struct {
	Width  int
	Height int
}

// String formats the geometry for log lines.
func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// LongEdge returns the larger of width and height.
func (d Dimensions) LongEdge() int {
	if d.Width > d.Height {
		return d.Width
	}
	return d.Height
}

// Probe reads image dimensions from the file header without decoding
// pixel data. It is independent of the strategy chain: sorters use it to
// annotate long listings where full decodes would be wasted.
//
// The pure-Go header parsers run first; containers they do not implement
// (HEIC, AVIF, RAW) fall through to a lazy libvips load when available.
func Probe(path string) (Dimensions, error) {
	cfg, err := decodeConfig(path)
	if err == nil {
		return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
	}

	if isTransientIO(err) {
		return Dimensions{}, classified(ErrTransient, err)
	}

	if IsVipsAvailable() {
		if dims, verr := vipsProbe(path); verr == nil {
			return dims, nil
		}
	}

	return Dimensions{}, classified(ErrUnsupported, fmt.Errorf("cannot read header of %s: %w", path, err))
}
