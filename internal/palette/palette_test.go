package palette

import (
	"math/rand"
	"testing"

	"github.com/gamecodec/gcif/internal/bitio"
)

func noMask(x, y int) bool { return false }

func roundTrip(t *testing.T, raster []uint8, width, height int, masked MaskFunc, maskEnabled bool, maskColor uint32, huffThresh int) *Writer {
	t.Helper()
	w, ok := NewWriter(raster, width, height, masked, maskEnabled, maskColor, huffThresh)
	if !ok {
		t.Fatal("palette writer must engage")
	}

	bw := bitio.NewWriter(1024)
	w.Write(bw)
	body := bw.Finish()

	br := bitio.NewReader(body)
	r := NewReader(br, width, height, huffThresh)
	got := r.ReadPixels(br, masked, maskColor)

	for i := 0; i < width*height; i++ {
		if masked(i%width, i/width) {
			continue // masked pixels recover via the mask coder
		}
		for c := 0; c < 4; c++ {
			if got[i*4+c] != raster[i*4+c] {
				t.Fatalf("pixel %d channel %d: got %d, want %d", i, c, got[i*4+c], raster[i*4+c])
			}
		}
	}
	return w
}

func TestRoundTrip_FewColors(t *testing.T) {
	const width, height = 20, 20
	colors := [][4]uint8{
		{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 128}, {10, 20, 30, 0},
	}
	rng := rand.New(rand.NewSource(41))
	raster := make([]uint8, width*height*4)
	for i := 0; i < width*height; i++ {
		c := colors[rng.Intn(len(colors))]
		copy(raster[i*4:], c[:])
	}
	w := roundTrip(t, raster, width, height, noMask, false, 0, 16)
	if w.Size() != len(colors) {
		t.Fatalf("palette size: got %d, want %d", w.Size(), len(colors))
	}
}

func TestRoundTrip_FilteredTable(t *testing.T) {
	// More colors than the literal threshold: the table itself goes
	// through the color filter and entropy coder.
	const width, height = 32, 16
	raster := make([]uint8, width*height*4)
	for i := 0; i < width*height; i++ {
		v := uint8(i % 64)
		raster[i*4] = v * 4
		raster[i*4+1] = v*4 + 1
		raster[i*4+2] = v * 2
		raster[i*4+3] = 255
	}
	w := roundTrip(t, raster, width, height, noMask, false, 0, 16)
	if w.Size() != 64 {
		t.Fatalf("palette size: got %d, want 64", w.Size())
	}
}

func TestSingleColor(t *testing.T) {
	raster := []uint8{0xFF, 0, 0, 0xFF}
	w := roundTrip(t, raster, 1, 1, noMask, false, 0, 16)
	if w.Size() != 1 || w.MaskedIndex() != 0 {
		t.Fatalf("size=%d maskedIndex=%d", w.Size(), w.MaskedIndex())
	}
}

func TestMostCommonFirst(t *testing.T) {
	// Index 0 must be the most frequent color.
	const width = 10
	raster := make([]uint8, width*4)
	for i := 0; i < width; i++ {
		if i == 0 {
			raster[i*4] = 1 // rare color first in scan order
		} else {
			raster[i*4] = 2
		}
		raster[i*4+3] = 255
	}
	w, ok := NewWriter(raster, width, 1, noMask, false, 0, 16)
	if !ok {
		t.Fatal("init failed")
	}
	if w.colors[0] != 0x020000FF {
		t.Fatalf("most common color not first: %08x", w.colors[0])
	}
}

func TestTooManyColors(t *testing.T) {
	const width, height = 32, 32
	raster := make([]uint8, width*height*4)
	for i := 0; i < width*height; i++ {
		raster[i*4] = uint8(i)
		raster[i*4+1] = uint8(i >> 8)
		raster[i*4+3] = 255
	}
	if _, ok := NewWriter(raster, width, height, noMask, false, 0, 16); ok {
		t.Fatal("1024 distinct colors must refuse palette mode")
	}
}

func TestMaskColorIndex(t *testing.T) {
	// When the mask color is not in the palette, masked pixels take the
	// most common color's index; the decoder still recovers them from
	// the mask coder.
	const width, height = 8, 8
	raster := make([]uint8, width*height*4)
	for i := 8; i < width*height; i++ {
		raster[i*4] = 7
		raster[i*4+3] = 255
	}
	masked := func(x, y int) bool { return y == 0 }
	w, ok := NewWriter(raster, width, height, masked, true, 0x00000000, 16)
	if !ok {
		t.Fatal("init failed")
	}
	// Mask color 00000000 never appears unmasked, so it is not in the
	// palette; the most common color stands in.
	if w.MaskedIndex() != 0 {
		t.Fatalf("masked index: got %d", w.MaskedIndex())
	}
}
