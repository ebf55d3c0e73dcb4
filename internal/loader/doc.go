// Package loader is the front door of the image pipeline. It composes
// the decode chain, the scaler and the preview cache behind a single
// Load call, so callers ask for "this path at this profile" and never
// touch the stages directly.
//
// # Load Semantics
//
// A Load resolves the target dimension from the request (an explicit
// maximum wins, otherwise the profile default), consults the preview
// cache when the request is cacheable, and otherwise runs the decode
// chain followed by the scaler. Preview results are cached; Final
// results are not, they are too large to be worth holding. A decode
// that fails with a transient classification is retried once across
// the whole chain before the failure is reported.
//
// Failures come back as *LoadError carrying the path, the terminal
// classification and the per-strategy attempt log, and unwrap to the
// decode sentinels so errors.Is works throughout.
//
// # Prefetching
//
// Prefetcher runs a fixed pool of workers that push preview decodes
// through the same loader ahead of the user's scroll position. Enqueue
// is a non-blocking hint that drops when the queue is full;
// WarmDirectory queues a whole directory tree and blocks instead of
// dropping. Workers park under memory pressure when a monitor is
// attached, and Stop abandons the queue without corrupting the cache.
package loader
