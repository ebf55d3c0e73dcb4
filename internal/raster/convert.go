package raster

import (
	"fmt"
	"image"
)

// Convert returns a copy of r in the requested layout. Same-layout
// conversion is equivalent to Clone. RGB24 to RGBA32 fills alpha with
// 0xFF; RGBA32 to RGB24 drops the alpha channel without compositing.
func (r *Raster) Convert(layout Layout) *Raster {
	if r.Layout == layout {
		return r.Clone()
	}

	out := &Raster{
		Pix:    make([]byte, r.Width*r.Height*layout.Channels()),
		Width:  r.Width,
		Height: r.Height,
		Layout: layout,
	}

	n := r.Width * r.Height
	if layout == RGBA32 {
		for i := 0; i < n; i++ {
			si, di := i*3, i*4
			out.Pix[di+0] = r.Pix[si+0]
			out.Pix[di+1] = r.Pix[si+1]
			out.Pix[di+2] = r.Pix[si+2]
			out.Pix[di+3] = 0xFF
		}
	} else {
		for i := 0; i < n; i++ {
			si, di := i*4, i*3
			out.Pix[di+0] = r.Pix[si+0]
			out.Pix[di+1] = r.Pix[si+1]
			out.Pix[di+2] = r.Pix[si+2]
		}
	}
	return out
}

// NRGBA exposes the raster as an *image.NRGBA for the resampling code.
// For RGBA32 rasters the returned image aliases the pixel buffer (no
// copy); treat it as read-only. RGB24 rasters are expanded into a fresh
// buffer first.
func (r *Raster) NRGBA() (*image.NRGBA, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	rgba := r
	if r.Layout != RGBA32 {
		rgba = r.Convert(RGBA32)
	}
	return &image.NRGBA{
		Pix:    rgba.Pix,
		Stride: rgba.Width * 4,
		Rect:   image.Rect(0, 0, rgba.Width, rgba.Height),
	}, nil
}

// String describes the raster geometry for log lines.
func (r *Raster) String() string {
	if r == nil {
		return "raster(nil)"
	}
	return fmt.Sprintf("%dx%d %s (%d bytes)", r.Width, r.Height, r.Layout, len(r.Pix))
}
