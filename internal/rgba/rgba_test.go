package rgba

import (
	"math/rand"
	"testing"

	"github.com/gamecodec/gcif/internal/bitio"
	"github.com/gamecodec/gcif/internal/filters"
)

func noMask(x, y int) bool { return false }

func roundTrip(t *testing.T, raster []uint8, width, height int, masked MaskFunc, maskColor uint32, knobs Knobs) {
	t.Helper()
	w, code := NewWriter(raster, width, height, masked, knobs)
	if code != InitOK {
		t.Fatalf("init: %v", code)
	}

	bw := bitio.NewWriter(4096)
	w.WriteTables(bw)
	w.WritePixels(bw)
	body := bw.Finish()

	br := bitio.NewReader(body)
	r, err := NewReader(br, width, height, func(x, y int) bool { return masked(x, y) }, maskColor, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := r.ReadPixels(br)

	for i := range raster {
		if got[i] != raster[i] {
			t.Fatalf("byte %d: got %d, want %d (pixel %d)", i, got[i], raster[i], i/4)
		}
	}
}

func randomRaster(width, height int, seed int64) []uint8 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]uint8, width*height*4)
	for i := range out {
		out[i] = uint8(rng.Intn(256))
	}
	return out
}

func TestRoundTrip_Noise(t *testing.T) {
	roundTrip(t, randomRaster(37, 22, 1), 37, 22, noMask, 0, DefaultKnobs())
}

func TestRoundTrip_Smooth(t *testing.T) {
	const width, height = 40, 40
	raster := make([]uint8, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			raster[i] = uint8(x * 6)
			raster[i+1] = uint8(y * 6)
			raster[i+2] = uint8((x + y) * 3)
			raster[i+3] = 255
		}
	}
	roundTrip(t, raster, width, height, noMask, 0, DefaultKnobs())
}

func TestRoundTrip_WithMask(t *testing.T) {
	const width, height = 24, 24
	raster := randomRaster(width, height, 2)
	maskBits := make([]bool, width*height)
	rng := rand.New(rand.NewSource(3))
	const maskColor = 0x00000000
	for i := range maskBits {
		if rng.Intn(3) == 0 {
			maskBits[i] = true
			// Masked pixels hold the mask color in the raw raster.
			raster[i*4], raster[i*4+1], raster[i*4+2], raster[i*4+3] = 0, 0, 0, 0
		}
	}
	masked := func(x, y int) bool { return maskBits[y*width+x] }
	roundTrip(t, raster, width, height, masked, maskColor, DefaultKnobs())
}

func TestRoundTrip_TileBitsVariants(t *testing.T) {
	raster := randomRaster(33, 18, 4)
	for _, bits := range []int{1, 2, 3, 4} {
		k := DefaultKnobs()
		k.TileBits = bits
		roundTrip(t, raster, 33, 18, noMask, 0, k)
	}
}

func TestRoundTrip_EntropyDisabled(t *testing.T) {
	k := DefaultKnobs()
	k.DisableEntropy = true
	roundTrip(t, randomRaster(20, 20, 5), 20, 20, noMask, 0, k)
}

func TestRoundTrip_RevisitBounds(t *testing.T) {
	for _, revisit := range []int{0, 1, 7} {
		k := DefaultKnobs()
		k.RevisitCount = revisit
		roundTrip(t, randomRaster(21, 13, 6), 21, 13, noMask, 0, k)
	}
}

func TestInitErrors(t *testing.T) {
	if _, code := NewWriter(nil, -1, 4, noMask, DefaultKnobs()); code != InitBadDims {
		t.Fatalf("negative width: got %v", code)
	}
	k := DefaultKnobs()
	k.FilterSelectFuzz = 0
	if _, code := NewWriter(nil, 4, 4, noMask, k); code != InitBadParams {
		t.Fatalf("zero fuzz: got %v", code)
	}
	k.DisableEntropy = true
	raster := make([]uint8, 4*4*4)
	if _, code := NewWriter(raster, 4, 4, noMask, k); code != InitOK {
		t.Fatalf("fuzz ignored when entropy disabled: got %v", code)
	}
}

func TestMaskTileInvariant(t *testing.T) {
	// sf and cf agree on masked tiles, and designed tiles carry
	// in-range filter indices.
	const width, height = 16, 16
	raster := randomRaster(width, height, 7)
	masked := func(x, y int) bool { return x < 4 && y < 4 } // one full tile
	w, code := NewWriter(raster, width, height, masked, DefaultKnobs())
	if code != InitOK {
		t.Fatal(code)
	}
	for i := range w.sfTiles {
		if (w.sfTiles[i] == MaskTile) != (w.cfTiles[i] == MaskTile) {
			t.Fatalf("tile %d: sf/cf mask state disagrees", i)
		}
		if w.sfTiles[i] != MaskTile {
			if int(w.sfTiles[i]) >= w.sfCount || int(w.cfTiles[i]) >= filters.CFCount {
				t.Fatalf("tile %d: filter out of range (%d, %d)", i, w.sfTiles[i], w.cfTiles[i])
			}
		}
	}
	if w.sfTiles[0] != MaskTile {
		t.Fatal("fully masked tile not marked")
	}
}

func TestFilterCoverage(t *testing.T) {
	// After design, the selected filter set holds at least the fixed
	// filters and at most MaxFilters, and lists no filter twice.
	raster := randomRaster(64, 64, 8)
	w, code := NewWriter(raster, 64, 64, noMask, DefaultKnobs())
	if code != InitOK {
		t.Fatal(code)
	}
	if w.sfCount < filters.SFFixed || w.sfCount > filters.MaxFilters {
		t.Fatalf("sf count out of range: %d", w.sfCount)
	}
	seen := make(map[int]bool)
	for _, idx := range w.sfIndices {
		if seen[idx] {
			t.Fatalf("duplicate filter index %d", idx)
		}
		seen[idx] = true
	}
}
