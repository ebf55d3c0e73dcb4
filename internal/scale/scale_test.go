package scale

import (
	"image"
	"image/color"
	"testing"

	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/raster"
)

func solidRaster(t *testing.T, width, height int, c color.NRGBA) *raster.Raster {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	r, err := raster.FromImage(img)
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	return r
}

// centerMarked builds a black frame with a white rectangle of the given
// size centered in it. Useful for telling a center crop apart from a
// full-frame resample.
func centerMarked(t *testing.T, width, height, markW, markH int) *raster.Raster {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	x0 := (width - markW) / 2
	y0 := (height - markH) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{A: 255}
			if x >= x0 && x < x0+markW && y >= y0 && y < y0+markH {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	r, err := raster.FromImage(img)
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	return r
}

func TestFitDownscale(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		target     int
		profile    imagetypes.Profile
		wantWidth  int
		wantHeight int
	}{
		{
			name:    "Landscape preview",
			width:   4000, height: 3000,
			target:  256,
			profile: imagetypes.ProfilePreview,
			wantWidth: 256, wantHeight: 192,
		},
		{
			name:    "Portrait preview",
			width:   3000, height: 4000,
			target:  256,
			profile: imagetypes.ProfilePreview,
			wantWidth: 192, wantHeight: 256,
		},
		{
			name:    "Landscape final",
			width:   4000, height: 3000,
			target:  2048,
			profile: imagetypes.ProfileFinal,
			wantWidth: 2048, wantHeight: 1536,
		},
		{
			name:    "Square",
			width:   1024, height: 1024,
			target:  256,
			profile: imagetypes.ProfilePreview,
			wantWidth: 256, wantHeight: 256,
		},
		{
			name:    "Extreme panorama keeps a nonzero short edge",
			width:   5000, height: 10,
			target:  64,
			profile: imagetypes.ProfilePreview,
			wantWidth: 64, wantHeight: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solidRaster(t, tt.width, tt.height, color.NRGBA{R: 120, G: 90, B: 60, A: 255})
			got, err := Fit(src, tt.target, tt.profile)
			if err != nil {
				t.Fatalf("Fit() error: %v", err)
			}
			if got.Width != tt.wantWidth || got.Height != tt.wantHeight {
				t.Errorf("dimensions = %dx%d, want %dx%d", got.Width, got.Height, tt.wantWidth, tt.wantHeight)
			}
			if got.Layout != raster.RGBA32 {
				t.Errorf("Layout = %v, want %v", got.Layout, raster.RGBA32)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestFitNeverEnlarges(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		target int
	}{
		{name: "Smaller than target", width: 400, height: 300, target: 2048},
		{name: "Exactly at target", width: 256, height: 192, target: 256},
		{name: "Tiny source", width: 2, height: 2, target: 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solidRaster(t, tt.width, tt.height, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
			got, err := Fit(src, tt.target, imagetypes.ProfileFinal)
			if err != nil {
				t.Fatalf("Fit() error: %v", err)
			}
			if got.Width != tt.width || got.Height != tt.height {
				t.Errorf("dimensions = %dx%d, want unchanged %dx%d", got.Width, got.Height, tt.width, tt.height)
			}
		})
	}
}

func TestFitNoEnlargeReturnsIndependentCopy(t *testing.T) {
	src := solidRaster(t, 100, 80, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	got, err := Fit(src, 256, imagetypes.ProfilePreview)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}

	got.Pix[0] = ^got.Pix[0]
	if src.Pix[0] == got.Pix[0] {
		t.Error("mutating the result changed the source; buffers are shared")
	}
}

func TestFitNormalizesLayout(t *testing.T) {
	src, err := raster.FromBytes(make([]byte, 10*10*3), 10, 10, raster.RGB24)
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}

	got, err := Fit(src, 256, imagetypes.ProfilePreview)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if got.Layout != raster.RGBA32 {
		t.Errorf("Layout = %v, want %v; within-target sources still get normalized", got.Layout, raster.RGBA32)
	}
	if got.Width != 10 || got.Height != 10 {
		t.Errorf("dimensions = %dx%d, want unchanged 10x10", got.Width, got.Height)
	}
}

func TestFitPreviewCropsLargeSources(t *testing.T) {
	// 640x480 against a target of 64 is 10x over, well past the crop
	// threshold. The white center mark covers exactly the 128x96 crop
	// window, so a cropped preview is pure white while a full-frame
	// resample keeps black corners.
	src := centerMarked(t, 640, 480, 128, 96)

	preview, err := Fit(src, 64, imagetypes.ProfilePreview)
	if err != nil {
		t.Fatalf("Fit(preview) error: %v", err)
	}
	if preview.Width != 64 || preview.Height != 48 {
		t.Fatalf("preview dimensions = %dx%d, want 64x48", preview.Width, preview.Height)
	}
	if corner := preview.Pix[0]; corner < 200 {
		t.Errorf("preview corner = %d, want near-white: large sources should be center-cropped first", corner)
	}

	final, err := Fit(src, 64, imagetypes.ProfileFinal)
	if err != nil {
		t.Fatalf("Fit(final) error: %v", err)
	}
	if corner := final.Pix[0]; corner > 50 {
		t.Errorf("final corner = %d, want near-black: final output must resample the whole frame", corner)
	}
}

func TestFitPreviewSkipsCropNearTarget(t *testing.T) {
	// 2.5x over the target: under the crop threshold, so the whole frame
	// survives into the preview.
	src := centerMarked(t, 160, 120, 32, 24)

	preview, err := Fit(src, 64, imagetypes.ProfilePreview)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if preview.Width != 64 || preview.Height != 48 {
		t.Fatalf("dimensions = %dx%d, want 64x48", preview.Width, preview.Height)
	}
	if corner := preview.Pix[0]; corner > 50 {
		t.Errorf("corner = %d, want near-black: sources near the target must not be cropped", corner)
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	valid := solidRaster(t, 10, 10, color.NRGBA{A: 255})

	t.Run("Zero target", func(t *testing.T) {
		if _, err := Fit(valid, 0, imagetypes.ProfilePreview); err == nil {
			t.Error("Fit() accepted a zero target")
		}
	})

	t.Run("Negative target", func(t *testing.T) {
		if _, err := Fit(valid, -64, imagetypes.ProfilePreview); err == nil {
			t.Error("Fit() accepted a negative target")
		}
	})

	t.Run("Nil raster", func(t *testing.T) {
		if _, err := Fit(nil, 256, imagetypes.ProfilePreview); err == nil {
			t.Error("Fit() accepted a nil raster")
		}
	})

	t.Run("Invalid raster", func(t *testing.T) {
		bad := &raster.Raster{Pix: []byte{1}, Width: 4, Height: 4, Layout: raster.RGBA32}
		if _, err := Fit(bad, 256, imagetypes.ProfilePreview); err == nil {
			t.Error("Fit() accepted a raster with a mismatched buffer")
		}
	})
}

func TestFitDims(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		target int
		wantW  int
		wantH  int
	}{
		{name: "Landscape", width: 640, height: 480, target: 64, wantW: 64, wantH: 48},
		{name: "Portrait", width: 480, height: 640, target: 64, wantW: 48, wantH: 64},
		{name: "Within target", width: 50, height: 40, target: 64, wantW: 50, wantH: 40},
		{name: "Rounding", width: 1000, height: 333, target: 100, wantW: 100, wantH: 33},
		{name: "Short edge floor", width: 10000, height: 3, target: 100, wantW: 100, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitDims(tt.width, tt.height, tt.target)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitDims(%d, %d, %d) = %dx%d, want %dx%d",
					tt.width, tt.height, tt.target, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func BenchmarkFitPreview(b *testing.B) {
	img := image.NewNRGBA(image.Rect(0, 0, 2000, 1500))
	src, err := raster.FromImage(img)
	if err != nil {
		b.Fatalf("FromImage() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fit(src, 256, imagetypes.ProfilePreview); err != nil {
			b.Fatalf("Fit() error: %v", err)
		}
	}
}

func BenchmarkFitFinal(b *testing.B) {
	img := image.NewNRGBA(image.Rect(0, 0, 4000, 3000))
	src, err := raster.FromImage(img)
	if err != nil {
		b.Fatalf("FromImage() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fit(src, 2048, imagetypes.ProfileFinal); err != nil {
			b.Fatalf("Fit() error: %v", err)
		}
	}
}
