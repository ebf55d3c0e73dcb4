// Package imagetypes provides shared type definitions and utilities for
// image file handling across PhotoSift.
//
// This package exists as a dependency-free foundation that can be imported
// by other packages without creating import cycles. It contains primitive
// types, constants, and pure utility functions with no external dependencies
// beyond the standard library.
//
// # Quality Profiles
//
// The Profile enum names the two speed/fidelity trades the pipeline makes:
//
//	imagetypes.ProfilePreview // fast decode and scale, scroll-ahead work
//	imagetypes.ProfileFinal   // high fidelity, the image under review
//
// Each profile carries a default long-edge target (PreviewMaxDimension,
// FinalMaxDimension) applied when a request does not name one.
//
// # Extension Detection
//
// Use IsSupportedExtension as a cheap pre-filter before handing a path to
// the decode chain:
//
//	if imagetypes.IsSupportedExtension(name) {
//	    // worth decoding
//	}
//
// # Container Sniffing
//
// DetectFormat identifies a container by magic bytes rather than extension.
// The decode chain uses it to tell "unrecognized container" apart from
// "recognized container with a corrupt bitstream":
//
//	format, err := imagetypes.DetectFormat(path)
//	if imagetypes.SoftwareDecodable(format) {
//	    // a pure-Go decoder exists for this container
//	}
package imagetypes
