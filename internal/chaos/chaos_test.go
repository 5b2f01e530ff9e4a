package chaos

import (
	"math/rand"
	"testing"
)

func TestEncoderDecoderAgreement(t *testing.T) {
	// Two independent states fed the same store/zero sequence must
	// produce identical bins at every pixel, for every level count.
	const width, height = 37, 23
	rng := rand.New(rand.NewSource(5))

	type pixel struct {
		masked  bool
		y, u, v uint8
	}
	seq := make([]pixel, width*height)
	for i := range seq {
		seq[i] = pixel{
			masked: rng.Intn(4) == 0,
			y:      uint8(rng.Intn(256)),
			u:      uint8(rng.Intn(256)),
			v:      uint8(rng.Intn(256)),
		}
	}

	for levels := 1; levels <= MaxLevels; levels++ {
		enc := New(levels, width)
		dec := New(levels, width)
		enc.Start()
		dec.Start()

		for y := 0; y < height; y++ {
			enc.StartRow()
			dec.StartRow()
			for x := 0; x < width; x++ {
				p := seq[y*width+x]
				if p.masked {
					enc.Zero(x)
					dec.Zero(x)
					continue
				}
				if enc.BinY(x) != dec.BinY(x) || enc.BinU(x) != dec.BinU(x) || enc.BinV(x) != dec.BinV(x) {
					t.Fatalf("levels=%d (%d,%d): bins disagree", levels, x, y)
				}
				if int(enc.BinY(x)) >= levels {
					t.Fatalf("levels=%d: bin %d out of range", levels, enc.BinY(x))
				}
				enc.Store(x, p.y, p.u, p.v, 0)
				dec.Store(x, p.y, p.u, p.v, 0)
			}
		}
	}
}

func TestSingleLevelAlwaysZero(t *testing.T) {
	s := New(1, 8)
	s.Start()
	s.StartRow()
	s.Store(0, 255, 128, 7, 0)
	if s.BinY(1) != 0 || s.BinU(1) != 0 || s.BinV(1) != 0 {
		t.Fatal("one-level state must always bin to zero")
	}
}

func TestZeroResetsContext(t *testing.T) {
	s := New(8, 8)
	s.Start()
	s.StartRow()
	s.Store(0, 200, 200, 200, 0)
	s.Zero(1)
	// After a zero at (1), the left contribution at (2) is zero and
	// the first row has no up contribution.
	if s.BinY(2) != 0 {
		t.Fatalf("bin after zero: got %d, want 0", s.BinY(2))
	}
}

func TestStartRowClearsLeft(t *testing.T) {
	s := New(8, 4)
	s.Start()
	s.StartRow()
	s.Store(3, 99, 99, 99, 0)
	s.StartRow()
	// New row: left is cleared, but column 3 keeps its up value.
	if s.BinY(0) != 0 {
		t.Fatal("left neighbor leaked across rows")
	}
	if s.BinY(3) == 0 {
		t.Fatal("up neighbor lost across rows")
	}
}
