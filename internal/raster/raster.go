package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Layout describes the channel order and width of a pixel buffer.
type Layout int

const (
	// RGB24 is interleaved 8-bit R, G, B. Three bytes per pixel.
	RGB24 Layout = iota
	// RGBA32 is interleaved 8-bit R, G, B, A (non-premultiplied).
	// Four bytes per pixel.
	RGBA32
)

// Channels returns the number of bytes one pixel occupies.
func (l Layout) Channels() int {
	if l == RGB24 {
		return 3
	}
	return 4
}

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case RGB24:
		return "rgb24"
	case RGBA32:
		return "rgba32"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Raster is a decoded image: a contiguous interleaved pixel buffer plus
// its geometry. Row stride is always Width*Layout.Channels(); there is no
// padding. A Raster owns its buffer, and code handing a Raster across an
// ownership boundary (into or out of the cache, back to a caller) must
// hand a copy, never a shared buffer.
type Raster struct {
	Pix    []byte
	Width  int
	Height int
	Layout Layout
}

// New allocates a zeroed raster of the given geometry.
func New(width, height int, layout Layout) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid dimensions %dx%d", width, height)
	}
	return &Raster{
		Pix:    make([]byte, width*height*layout.Channels()),
		Width:  width,
		Height: height,
		Layout: layout,
	}, nil
}

// FromBytes wraps an existing pixel buffer without copying. The caller
// transfers ownership of pix to the returned raster.
func FromBytes(pix []byte, width, height int, layout Layout) (*Raster, error) {
	r := &Raster{Pix: pix, Width: width, Height: height, Layout: layout}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// FromImage converts any image.Image into an RGBA32 raster. The pixel
// data is always copied, so the raster does not alias the source image.
func FromImage(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("raster: nil image")
	}
	// imaging.Clone flattens every source type into a fresh, contiguous
	// NRGBA with stride = 4*width.
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	r := &Raster{
		Pix:    nrgba.Pix,
		Width:  b.Dx(),
		Height: b.Dy(),
		Layout: RGBA32,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that the geometry is positive and the buffer length
// matches it exactly.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("raster: nil raster")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("raster: invalid dimensions %dx%d", r.Width, r.Height)
	}
	want := r.Width * r.Height * r.Layout.Channels()
	if len(r.Pix) != want {
		return fmt.Errorf("raster: buffer length %d does not match %dx%d %s (want %d)",
			len(r.Pix), r.Width, r.Height, r.Layout, want)
	}
	return nil
}

// Clone returns a deep copy. Mutating the copy never disturbs the
// original; this is the defensive copy the cache relies on.
func (r *Raster) Clone() *Raster {
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{
		Pix:    pix,
		Width:  r.Width,
		Height: r.Height,
		Layout: r.Layout,
	}
}

// Bytes returns the size of the pixel buffer in bytes.
func (r *Raster) Bytes() int {
	return len(r.Pix)
}

// LongEdge returns the larger of width and height.
func (r *Raster) LongEdge() int {
	if r.Width > r.Height {
		return r.Width
	}
	return r.Height
}
