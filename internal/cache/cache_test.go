package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/DevMiloo/PhotoSift/internal/raster"
)

func testRaster(t *testing.T, width, height int) *raster.Raster {
	t.Helper()
	r, err := raster.New(width, height, raster.RGBA32)
	if err != nil {
		t.Fatalf("raster.New() error: %v", err)
	}
	for i := range r.Pix {
		r.Pix[i] = byte(i % 251)
	}
	return r
}

func mustNew(t *testing.T, capacity int) *PreviewCache {
	t.Helper()
	c, err := New(capacity)
	if err != nil {
		t.Fatalf("New(%d) error: %v", capacity, err)
	}
	return c
}

func TestNewInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := New(capacity); err == nil {
			t.Errorf("New(%d) should return an error", capacity)
		}
	}
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c := mustNew(t, 4)
	if _, ok := c.Get("preview|256|a.jpg"); ok {
		t.Error("Get() on an empty cache reported a hit")
	}
	if stats := c.Stats(); stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := mustNew(t, 4)
	src := testRaster(t, 10, 8)

	if err := c.Put("k", src); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get() missed a freshly stored entry")
	}
	if got.Width != 10 || got.Height != 8 {
		t.Errorf("dimensions = %dx%d, want 10x8", got.Width, got.Height)
	}

	if stats := c.Stats(); stats.Hits != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 entry", stats)
	}
}

func TestCopyDiscipline(t *testing.T) {
	c := mustNew(t, 4)
	src := testRaster(t, 4, 4)

	if err := c.Put("k", src); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	// Mutating the caller's raster after Put must not reach the cache.
	src.Pix[0] = ^src.Pix[0]

	first, ok := c.Get("k")
	if !ok {
		t.Fatal("Get() missed")
	}
	if first.Pix[0] == src.Pix[0] {
		t.Error("cache shares the caller's buffer on Put")
	}

	// Mutating a returned raster must not corrupt later hits.
	first.Pix[0] = ^first.Pix[0]

	second, ok := c.Get("k")
	if !ok {
		t.Fatal("Get() missed")
	}
	if second.Pix[0] == first.Pix[0] {
		t.Error("cache shares its buffer with callers on Get")
	}
	if &second.Pix[0] == &first.Pix[0] {
		t.Error("two hits alias the same buffer")
	}
}

func TestPutRejectsInvalidRaster(t *testing.T) {
	c := mustNew(t, 4)
	bad := &raster.Raster{Pix: []byte{1, 2, 3}, Width: 10, Height: 10, Layout: raster.RGBA32}

	if err := c.Put("k", bad); err == nil {
		t.Fatal("Put() accepted a raster with a mismatched buffer")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after a rejected Put", c.Len())
	}
}

func TestLastWriteWins(t *testing.T) {
	c := mustNew(t, 4)

	if err := c.Put("k", testRaster(t, 10, 10)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := c.Put("k", testRaster(t, 20, 20)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get() missed")
	}
	if got.Width != 20 || got.Height != 20 {
		t.Errorf("dimensions = %dx%d, want the later write's 20x20", got.Width, got.Height)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if want := int64(20 * 20 * 4); c.Bytes() != want {
		t.Errorf("Bytes() = %d, want %d; replacement must settle the old raster's bytes", c.Bytes(), want)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	c := mustNew(t, 2)

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Put(key, testRaster(t, 4, 4)); err != nil {
			t.Fatalf("Put(%q) error: %v", key, err)
		}
	}

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry survived an over-capacity insert")
	}
	for _, key := range []string{"b", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %q missing after eviction of the oldest", key)
		}
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	if stats.Reclaimed != 0 {
		t.Errorf("Reclaimed = %d, want 0; live evictions are not reclaims", stats.Reclaimed)
	}
}

func TestGenerationBumpKillsResidentEntries(t *testing.T) {
	c := mustNew(t, 4)
	if err := c.Put("old", testRaster(t, 4, 4)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	c.BumpGeneration()

	if _, ok := c.Get("old"); ok {
		t.Fatal("Get() returned an entry from a dead generation")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0; the dead entry should be removed on touch", c.Len())
	}
	if c.Bytes() != 0 {
		t.Errorf("Bytes() = %d, want 0", c.Bytes())
	}

	// Entries stored after the bump are live.
	if err := c.Put("new", testRaster(t, 4, 4)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("entry stored after the bump reported as dead")
	}

	stats := c.Stats()
	if stats.Reclaimed != 1 {
		t.Errorf("Reclaimed = %d, want 1", stats.Reclaimed)
	}
	if stats.Evictions != 0 {
		t.Errorf("Evictions = %d, want 0", stats.Evictions)
	}
}

func TestSweepRemovesOnlyDeadEntries(t *testing.T) {
	c := mustNew(t, 8)
	for i := 0; i < 3; i++ {
		if err := c.Put(fmt.Sprintf("dead-%d", i), testRaster(t, 4, 4)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}
	c.BumpGeneration()
	if err := c.Put("live", testRaster(t, 4, 4)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	if removed := c.Sweep(); removed != 3 {
		t.Errorf("Sweep() = %d, want 3", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get("live"); !ok {
		t.Error("live entry removed by the sweep")
	}
}

func TestSweepRunsBeforeEvictionAtCapacity(t *testing.T) {
	c := mustNew(t, 2)
	if err := c.Put("a", testRaster(t, 4, 4)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := c.Put("b", testRaster(t, 4, 4)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	c.BumpGeneration()

	// The cache is full but everything resident is dead: the insert
	// must reclaim, not evict.
	if err := c.Put("c", testRaster(t, 4, 4)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	stats := c.Stats()
	if stats.Reclaimed != 2 {
		t.Errorf("Reclaimed = %d, want 2", stats.Reclaimed)
	}
	if stats.Evictions != 0 {
		t.Errorf("Evictions = %d, want 0; dead entries must go before live eviction", stats.Evictions)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("entry inserted during the sweep is missing")
	}
}

func TestLenNeverExceedsCapacity(t *testing.T) {
	c := mustNew(t, 3)
	for i := 0; i < 20; i++ {
		if err := c.Put(fmt.Sprintf("k-%d", i), testRaster(t, 4, 4)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		if c.Len() > 3 {
			t.Fatalf("Len() = %d after %d inserts, capacity is 3", c.Len(), i+1)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := mustNew(t, 16)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k-%d", (g+i)%24)
				switch i % 4 {
				case 0:
					if err := c.Put(key, testRaster(t, 4, 4)); err != nil {
						t.Errorf("Put() error: %v", err)
					}
				case 1, 2:
					if r, ok := c.Get(key); ok {
						r.Pix[0] = 0 // returned copies are ours to mutate
					}
				case 3:
					c.Sweep()
				}
				if i == 50 && g == 0 {
					c.BumpGeneration()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > c.Capacity() {
		t.Errorf("Len() = %d exceeds capacity %d", c.Len(), c.Capacity())
	}
}

func BenchmarkCacheGetHit(b *testing.B) {
	c, err := New(64)
	if err != nil {
		b.Fatalf("New() error: %v", err)
	}
	r, err := raster.New(256, 192, raster.RGBA32)
	if err != nil {
		b.Fatalf("raster.New() error: %v", err)
	}
	if err := c.Put("k", r); err != nil {
		b.Fatalf("Put() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := c.Get("k"); !ok {
			b.Fatal("unexpected miss")
		}
	}
}

func BenchmarkCachePut(b *testing.B) {
	c, err := New(64)
	if err != nil {
		b.Fatalf("New() error: %v", err)
	}
	r, err := raster.New(256, 192, raster.RGBA32)
	if err != nil {
		b.Fatalf("raster.New() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Put(fmt.Sprintf("k-%d", i%128), r); err != nil {
			b.Fatalf("Put() error: %v", err)
		}
	}
}
