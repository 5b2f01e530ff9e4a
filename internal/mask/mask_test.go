package mask

import (
	"math/rand"
	"testing"

	"github.com/gamecodec/gcif/internal/bitio"
)

func TestRoundTrip(t *testing.T) {
	const width, height = 50, 33
	rng := rand.New(rand.NewSource(31))
	rgba := make([]uint8, width*height*4)
	for i := 0; i < width*height; i++ {
		if rng.Intn(3) == 0 {
			// Fully transparent black: maskable.
			continue
		}
		rgba[i*4] = uint8(rng.Intn(256))
		rgba[i*4+1] = uint8(rng.Intn(256))
		rgba[i*4+2] = uint8(rng.Intn(256))
		rgba[i*4+3] = 255
	}

	w := NewWriter(rgba, width, height)
	if !w.Enabled() {
		t.Fatal("mask must engage on transparent pixels")
	}

	bw := bitio.NewWriter(1024)
	if err := w.Write(bw); err != nil {
		t.Fatal(err)
	}
	body := bw.Finish()

	r, err := NewReader(bitio.NewReader(body), width, height)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Enabled() || r.Color() != w.Color() {
		t.Fatalf("header mismatch: enabled=%v color=%08x", r.Enabled(), r.Color())
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if r.Masked(x, y) != w.Masked(x, y) {
				t.Fatalf("masked(%d,%d) disagrees", x, y)
			}
		}
	}
}

func TestDisabledWhenOpaque(t *testing.T) {
	rgba := make([]uint8, 8*8*4)
	for i := 0; i < 64; i++ {
		rgba[i*4+3] = 255
	}
	w := NewWriter(rgba, 8, 8)
	if w.Enabled() {
		t.Fatal("opaque image must not enable the mask")
	}

	bw := bitio.NewWriter(64)
	if err := w.Write(bw); err != nil {
		t.Fatal(err)
	}
	body := bw.Finish()

	r, err := NewReader(bitio.NewReader(body), 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if r.Enabled() || r.Masked(3, 3) {
		t.Fatal("reader must see a disabled mask")
	}
}

func TestTransparentNonBlackNotMasked(t *testing.T) {
	// Alpha zero but nonzero RGB is not the mask color; those pixels
	// stay with the residual coder so their RGB survives losslessly.
	rgba := []uint8{9, 9, 9, 0, 0, 0, 0, 0}
	w := NewWriter(rgba, 2, 1)
	if w.Masked(0, 0) {
		t.Fatal("non-mask-color pixel reported masked")
	}
	if !w.Masked(1, 0) {
		t.Fatal("mask-color pixel not masked")
	}
}
