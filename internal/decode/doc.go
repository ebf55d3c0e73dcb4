// Package decode turns image files into rasters by running an ordered
// chain of decoder backends.
//
// # The Strategy Chain
//
// Three backends are tried in fixed order:
//
//   - vips: libvips via govips. Fastest, widest format coverage
//     (HEIC/AVIF/JXL/RAW depending on the build), needs CGO.
//   - ffmpeg: first-frame extraction through an ffmpeg subprocess.
//     Catches formats the local libvips build lacks.
//   - software: the pure-Go image decoders (JPEG, PNG, GIF, WebP, BMP,
//     TIFF). Always compiled in, always last.
//
// A strategy that reports unavailable is skipped without recording an
// attempt. The first successful decode wins and later strategies never
// run. Every backend returns the raster at native resolution; scaling is
// a separate concern owned by the scale package.
//
// # Outcome Classification
//
// Chain.Decode never returns a raw backend error. Each attempt is
// classified into one of four statuses:
//
//   - StatusSuccess: a valid raster was produced.
//   - StatusUnsupported: the backend does not implement the format.
//     The chain moves on to the next strategy.
//   - StatusTransient: an environmental failure (file vanished mid-read,
//     EAGAIN, permission flap). The chain moves on; callers may retry
//     the whole chain later.
//   - StatusFatal: the file is corrupt. The chain stops immediately;
//     retrying cannot help and no later strategy is consulted.
//
// When every strategy fails, transient beats unsupported in the terminal
// outcome so that callers retry when at least one backend thought the
// problem was environmental.
//
// A panicking backend is contained by the chain and classified as fatal;
// a panic during decode means the bitstream drove the decoder somewhere
// it should never go.
//
// # Usage
//
//	chain := decode.NewDefaultChain(decode.DefaultConfig(), metrics.NewDecodeObserver())
//	outcome := chain.Decode(ctx, "/photos/IMG_0042.heic")
//	if outcome.Status != decode.StatusSuccess {
//		return outcome.Err
//	}
//	use(outcome.Raster)
//
// Chains are stateless and safe for concurrent use from every prefetch
// worker at once.
//
// # libvips Lifecycle
//
// InitVips must run once before the vips strategy reports available and
// ShutdownVips once at process exit. govips cannot be restarted after
// shutdown. When init is skipped or fails, the chain degrades to
// ffmpeg + software.
package decode
