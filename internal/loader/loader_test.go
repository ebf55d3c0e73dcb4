package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DevMiloo/PhotoSift/internal/cache"
	"github.com/DevMiloo/PhotoSift/internal/decode"
	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/raster"
)

// writeTestPNG writes a width x height PNG named name under dir and
// returns its path.
func writeTestPNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(x * 7)
			img.Pix[i+1] = uint8(y * 13)
			img.Pix[i+2] = 128
			img.Pix[i+3] = 255
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

// scriptStrategy runs a scripted Decode and counts invocations. The
// request path still has to exist on disk because the chain stats it
// before any strategy runs.
type scriptStrategy struct {
	name      string
	available bool
	calls     atomic.Int32
	fn        func(ctx context.Context, path string) (*raster.Raster, error)
}

func (s *scriptStrategy) Name() string    { return s.name }
func (s *scriptStrategy) Available() bool { return s.available }

func (s *scriptStrategy) Decode(ctx context.Context, path string) (*raster.Raster, error) {
	s.calls.Add(1)
	return s.fn(ctx, path)
}

func nativeRaster(t *testing.T, width, height int) *raster.Raster {
	t.Helper()
	r, err := raster.New(width, height, raster.RGBA32)
	if err != nil {
		t.Fatalf("raster.New(%d, %d): %v", width, height, err)
	}
	for i := range r.Pix {
		r.Pix[i] = uint8(i % 97)
	}
	return r
}

func succeedingScript(t *testing.T, name string, width, height int) *scriptStrategy {
	return &scriptStrategy{name: name, available: true,
		fn: func(context.Context, string) (*raster.Raster, error) {
			return nativeRaster(t, width, height), nil
		}}
}

func failingScript(name string, sentinel error) *scriptStrategy {
	return &scriptStrategy{name: name, available: true,
		fn: func(_ context.Context, path string) (*raster.Raster, error) {
			return nil, fmt.Errorf("%w: scripted refusal for %s", sentinel, path)
		}}
}

func mustCache(t *testing.T, capacity int) *cache.PreviewCache {
	t.Helper()
	pc, err := cache.New(capacity)
	if err != nil {
		t.Fatalf("cache.New(%d): %v", capacity, err)
	}
	return pc
}

func newScriptedLoader(t *testing.T, capacity int, strategies ...decode.Strategy) (*Loader, *cache.PreviewCache) {
	t.Helper()
	pc := mustCache(t, capacity)
	return New(decode.NewChain(strategies, nil), pc), pc
}

func newSoftwareLoader(t *testing.T, capacity int) (*Loader, *cache.PreviewCache) {
	t.Helper()
	pc := mustCache(t, capacity)
	chain := decode.NewChain([]decode.Strategy{decode.NewSoftwareStrategy()}, nil)
	return New(chain, pc), pc
}

func TestLoadPreviewDownscales(t *testing.T) {
	l, _ := newSoftwareLoader(t, 8)
	path := writeTestPNG(t, t.TempDir(), "photo.png", 640, 480)

	r, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Width != 256 || r.Height != 192 {
		t.Errorf("got %dx%d, want 256x192", r.Width, r.Height)
	}
	if r.Layout != raster.RGBA32 {
		t.Errorf("Layout = %v, want %v", r.Layout, raster.RGBA32)
	}
}

func TestLoadFinalKeepsSmallSource(t *testing.T) {
	l, _ := newSoftwareLoader(t, 8)
	path := writeTestPNG(t, t.TempDir(), "small.png", 400, 300)

	r, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfileFinal})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// 400x300 is already inside the final bound; no enlargement.
	if r.Width != 400 || r.Height != 300 {
		t.Errorf("got %dx%d, want 400x300", r.Width, r.Height)
	}
	if r.Layout != raster.RGBA32 {
		t.Errorf("Layout = %v, want %v", r.Layout, raster.RGBA32)
	}
}

func TestLoadExplicitDimensionWins(t *testing.T) {
	l, _ := newSoftwareLoader(t, 8)
	path := writeTestPNG(t, t.TempDir(), "photo.png", 640, 480)

	r, err := l.Load(context.Background(), ImageRequest{
		Path:         path,
		MaxDimension: 64,
		Profile:      imagetypes.ProfileFinal,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Width != 64 || r.Height != 48 {
		t.Errorf("got %dx%d, want 64x48 (explicit bound beats the profile default)", r.Width, r.Height)
	}
}

func TestLoadPreviewCacheRoundTrip(t *testing.T) {
	s := succeedingScript(t, "vips", 600, 400)
	l, pc := newScriptedLoader(t, 8, s)
	path := writeTestPNG(t, t.TempDir(), "cached.png", 4, 4)

	req := ImageRequest{Path: path, Profile: imagetypes.ProfilePreview}
	first, err := l.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := l.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}

	if got := s.calls.Load(); got != 1 {
		t.Errorf("decode ran %d times, want 1 (second load must hit the cache)", got)
	}
	if first.Width != 256 || first.Height != 171 {
		t.Errorf("got %dx%d, want 256x171", first.Width, first.Height)
	}
	if first.Width != second.Width || first.Height != second.Height || first.Layout != second.Layout {
		t.Errorf("geometry changed across the cache hit: %dx%d vs %dx%d",
			first.Width, first.Height, second.Width, second.Height)
	}
	if &first.Pix[0] == &second.Pix[0] {
		t.Error("cache hit aliases the first result's buffer")
	}
	if pc.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", pc.Len())
	}

	stats := l.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("cache stats = %+v, want exactly 1 hit and 1 miss", stats)
	}
}

func TestLoadFinalBypassesCache(t *testing.T) {
	s := succeedingScript(t, "vips", 600, 400)
	l, pc := newScriptedLoader(t, 8, s)
	path := writeTestPNG(t, t.TempDir(), "review.png", 4, 4)

	req := ImageRequest{Path: path, Profile: imagetypes.ProfileFinal}
	for i := 0; i < 2; i++ {
		if _, err := l.Load(context.Background(), req); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}

	if got := s.calls.Load(); got != 2 {
		t.Errorf("decode ran %d times, want 2 (final requests never hit the cache)", got)
	}
	if pc.Len() != 0 {
		t.Errorf("cache holds %d entries after final loads, want 0", pc.Len())
	}
}

func TestLoadFallsThroughChain(t *testing.T) {
	v := failingScript("vips", decode.ErrUnsupported)
	f := failingScript("ffmpeg", decode.ErrUnsupported)
	sw := succeedingScript(t, "software", 300, 200)
	l, _ := newScriptedLoader(t, 8, v, f, sw)
	path := writeTestPNG(t, t.TempDir(), "exotic.png", 4, 4)

	r, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.calls.Load() != 1 || f.calls.Load() != 1 || sw.calls.Load() != 1 {
		t.Errorf("calls = %d/%d/%d, want one attempt per strategy",
			v.calls.Load(), f.calls.Load(), sw.calls.Load())
	}
	if r.Width != 256 || r.Height != 171 {
		t.Errorf("got %dx%d, want 256x171", r.Width, r.Height)
	}
}

func TestLoadTransientRetriesOnce(t *testing.T) {
	var pass atomic.Int32
	flaky := &scriptStrategy{name: "vips", available: true,
		fn: func(context.Context, string) (*raster.Raster, error) {
			if pass.Add(1) == 1 {
				return nil, fmt.Errorf("%w: file busy on first pass", decode.ErrTransient)
			}
			return nativeRaster(t, 100, 80), nil
		}}
	l, _ := newScriptedLoader(t, 8, flaky)
	path := writeTestPNG(t, t.TempDir(), "flaky.png", 4, 4)

	r, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	if err != nil {
		t.Fatalf("Load: %v (the single retry should have recovered)", err)
	}
	if got := flaky.calls.Load(); got != 2 {
		t.Errorf("decode ran %d times, want 2 (one transient failure, one retry)", got)
	}
	if r.Width != 100 || r.Height != 80 {
		t.Errorf("got %dx%d, want 100x80", r.Width, r.Height)
	}
}

func TestLoadTransientExhaustsRetry(t *testing.T) {
	always := failingScript("vips", decode.ErrTransient)
	l, pc := newScriptedLoader(t, 8, always)
	path := writeTestPNG(t, t.TempDir(), "busy.png", 4, 4)

	_, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Status != decode.StatusTransient {
		t.Errorf("Status = %v, want %v", le.Status, decode.StatusTransient)
	}
	if !le.IsRetryable() {
		t.Error("IsRetryable() = false for a transient failure")
	}
	if !errors.Is(err, decode.ErrTransient) {
		t.Errorf("err %v does not unwrap to ErrTransient", err)
	}
	if got := always.calls.Load(); got != 2 {
		t.Errorf("decode ran %d times, want 2 (initial attempt plus one retry)", got)
	}
	if pc.Len() != 0 {
		t.Errorf("cache holds %d entries after a failed load, want 0", pc.Len())
	}
}

func TestLoadCorruptNeverCachedNeverRetried(t *testing.T) {
	corrupt := failingScript("software", decode.ErrCorrupt)
	l, pc := newScriptedLoader(t, 8, corrupt)
	path := writeTestPNG(t, t.TempDir(), "torn.png", 4, 4)

	_, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Status != decode.StatusFatal {
		t.Errorf("Status = %v, want %v", le.Status, decode.StatusFatal)
	}
	if le.IsRetryable() {
		t.Error("IsRetryable() = true for a corrupt file")
	}
	if !errors.Is(err, decode.ErrCorrupt) {
		t.Errorf("err %v does not unwrap to ErrCorrupt", err)
	}
	if got := corrupt.calls.Load(); got != 1 {
		t.Errorf("decode ran %d times, want 1 (fatal outcomes never retry)", got)
	}
	if len(le.Attempts) != 1 || le.Attempts[0].Strategy != "software" {
		t.Errorf("Attempts = %+v, want the single software attempt", le.Attempts)
	}
	if pc.Len() != 0 {
		t.Errorf("cache holds %d entries after a corrupt load, want 0", pc.Len())
	}
}

func TestLoadUnsupportedEverywhere(t *testing.T) {
	v := failingScript("vips", decode.ErrUnsupported)
	sw := failingScript("software", decode.ErrUnsupported)
	l, pc := newScriptedLoader(t, 8, v, sw)
	path := writeTestPNG(t, t.TempDir(), "exotic.png", 4, 4)

	_, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Status != decode.StatusUnsupported {
		t.Errorf("Status = %v, want %v", le.Status, decode.StatusUnsupported)
	}
	if !errors.Is(err, decode.ErrUnsupported) {
		t.Errorf("err %v does not unwrap to ErrUnsupported", err)
	}
	if len(le.Attempts) != 2 {
		t.Errorf("Attempts = %+v, want one per strategy", le.Attempts)
	}
	if v.calls.Load() != 1 || sw.calls.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1 (unsupported outcomes never retry)",
			v.calls.Load(), sw.calls.Load())
	}
	if pc.Len() != 0 {
		t.Errorf("cache holds %d entries, want 0", pc.Len())
	}
}

func TestLoadEmptyPath(t *testing.T) {
	l, _ := newSoftwareLoader(t, 8)

	_, err := l.Load(context.Background(), ImageRequest{Profile: imagetypes.ProfilePreview})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Status != decode.StatusUnsupported {
		t.Errorf("Status = %v, want %v", le.Status, decode.StatusUnsupported)
	}
	if !errors.Is(err, decode.ErrUnsupported) {
		t.Errorf("err %v does not unwrap to ErrUnsupported", err)
	}
}

func TestLoadMissingFileIsRetryable(t *testing.T) {
	l, _ := newSoftwareLoader(t, 8)
	path := filepath.Join(t.TempDir(), "moved-away.jpg")

	_, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Status != decode.StatusTransient {
		t.Errorf("Status = %v, want %v", le.Status, decode.StatusTransient)
	}
	if !le.IsRetryable() {
		t.Error("a vanished file should be retryable; it may land back any moment")
	}
}

func TestLoadContextCanceled(t *testing.T) {
	s := succeedingScript(t, "vips", 50, 50)
	l, _ := newScriptedLoader(t, 8, s)
	path := writeTestPNG(t, t.TempDir(), "skipped.png", 4, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Status != decode.StatusTransient {
		t.Errorf("Status = %v, want %v", le.Status, decode.StatusTransient)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err %v does not unwrap to context.Canceled", err)
	}
}

func TestLoadWithoutCache(t *testing.T) {
	s := succeedingScript(t, "vips", 600, 400)
	l := New(decode.NewChain([]decode.Strategy{s}, nil), nil)
	path := writeTestPNG(t, t.TempDir(), "uncached.png", 4, 4)

	req := ImageRequest{Path: path, Profile: imagetypes.ProfilePreview}
	for i := 0; i < 2; i++ {
		if _, err := l.Load(context.Background(), req); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}

	if got := s.calls.Load(); got != 2 {
		t.Errorf("decode ran %d times, want 2 (no cache to hit)", got)
	}
	if stats := l.CacheStats(); stats != (cache.Stats{}) {
		t.Errorf("CacheStats() = %+v for an uncached loader, want zeros", stats)
	}
}

func TestLoadConcurrentSameImage(t *testing.T) {
	l, pc := newSoftwareLoader(t, 8)
	path := writeTestPNG(t, t.TempDir(), "hot.png", 320, 240)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := l.Load(context.Background(), ImageRequest{Path: path, Profile: imagetypes.ProfilePreview})
			if err != nil {
				errs <- err
				return
			}
			if r.Width != 256 || r.Height != 192 {
				errs <- fmt.Errorf("got %dx%d, want 256x192", r.Width, r.Height)
				return
			}
			// The result is ours to scribble on.
			for j := range r.Pix {
				r.Pix[j] = 0
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if pc.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", pc.Len())
	}
	if r, ok := pc.Get(path + "|256|preview"); !ok {
		t.Error("expected the preview to be resident after the stampede")
	} else if r.Pix[0] == 0 && r.Pix[1] == 0 && r.Pix[2] == 0 && r.Pix[3] == 0 {
		t.Error("a caller's scribble reached the cached entry")
	}
}
