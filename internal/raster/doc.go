// Package raster defines the pixel buffer type the decode and scale
// layers exchange.
//
// A Raster is a plain contiguous byte slice with geometry attached, in
// one of two interleaved layouts (RGB24, RGBA32). Decoders that produce
// raw bytes wrap them with FromBytes; decoders that produce an
// image.Image normalize through FromImage. Clone gives the defensive
// copies the preview cache depends on, and NRGBA bridges back into the
// image ecosystem for resampling.
package raster
