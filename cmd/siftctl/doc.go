// Command siftctl provides a CLI utility for exercising the PhotoSift
// decode pipeline outside the long-running service.
//
// It supports the following operations:
//   - probe: Read image dimensions from file headers
//   - render: Decode one image and write it out as a JPEG
//   - warm: Decode previews for every image under a directory
//
// Usage:
//
//	siftctl <command> [options]
//
// Commands:
//
//	probe   Print the pixel geometry of one or more image files without
//	        decoding them. Common containers are parsed in pure Go;
//	        HEIC, AVIF and RAW headers go through libvips when it is
//	        available.
//
//	render  Run one file through the full decode chain and save the
//	        result as a JPEG. The -profile flag picks the preview or
//	        final size bound and -max overrides it outright, so this is
//	        the quickest way to check what the pipeline produces for a
//	        problem file.
//
//	warm    Walk a directory and decode a preview for every supported
//	        image, using the same worker pool the service prefetches
//	        with. Exits non-zero when any file fails, which makes it
//	        usable as a corpus health check.
//
// Environment:
//
//	LOG_LEVEL - debug, info, warn or error (default: warn)
//
// Notes:
//
// siftctl links the same decode strategies as the service binary, so a
// build without libvips falls back to the pure-Go decoders and prints a
// warning. Piped output stays machine-readable: progress lines are only
// drawn when stdout is a terminal.
package main
