package filters

import (
	"math/rand"
	"testing"
)

func TestColorFilters_ExactInverse(t *testing.T) {
	// Corner values on every channel plus a dense pseudo-random sweep.
	corners := []uint8{0, 1, 127, 128, 254, 255}
	for cf := 0; cf < CFCount; cf++ {
		for _, r := range corners {
			for _, g := range corners {
				for _, b := range corners {
					in := [3]uint8{r, g, b}
					if got := YUV2RGB[cf](RGB2YUV[cf](in)); got != in {
						t.Fatalf("cf %d: %v -> %v", cf, in, got)
					}
				}
			}
		}
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200000; i++ {
		in := [3]uint8{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		for cf := 0; cf < CFCount; cf++ {
			if got := YUV2RGB[cf](RGB2YUV[cf](in)); got != in {
				t.Fatalf("cf %d: %v -> %v", cf, in, got)
			}
		}
	}
}

func TestColorFilters_Distinct(t *testing.T) {
	// No two filters may map a probe set identically, or a designed
	// index would be wasted.
	probes := [][3]uint8{{10, 200, 77}, {255, 0, 128}, {3, 5, 9}, {100, 101, 102}}
	for a := 0; a < CFCount; a++ {
		for b := a + 1; b < CFCount; b++ {
			same := true
			for _, p := range probes {
				if RGB2YUV[a](p) != RGB2YUV[b](p) {
					same = false
					break
				}
			}
			if same {
				t.Fatalf("cf %d and %d agree on all probes", a, b)
			}
		}
	}
}

func TestScorer_GetTopStableTies(t *testing.T) {
	s := NewScorer(5)
	s.Add(3, 10)
	s.Add(1, 10)
	s.Add(0, 4)

	top := s.GetTop(3, true)
	if top[0].Index != 1 || top[1].Index != 3 || top[2].Index != 0 {
		t.Fatalf("descending order wrong: %+v", top)
	}

	s.Reset()
	s.Add(2, 7)
	low := s.GetTop(2, false)
	// Four zero-score entries tie; lowest index wins.
	if low[0].Index != 0 || low[1].Index != 1 {
		t.Fatalf("ascending tie-break wrong: %+v", low)
	}
}

func TestResidualScore_Monotone(t *testing.T) {
	if ResidualScore(0) != 0 {
		t.Fatal("zero residual must score zero")
	}
	if ResidualScore(1) != ResidualScore(255) {
		t.Fatal("signed wrap not symmetric")
	}
	if ResidualScore(127) <= ResidualScore(3) {
		t.Fatal("score not monotone in magnitude")
	}
}

func TestFetchNeighborhood_Edges(t *testing.T) {
	// 2x2 raster with distinct channel bytes per pixel.
	rgba := []uint8{
		10, 11, 12, 255, 20, 21, 22, 255,
		30, 31, 32, 255, 40, 41, 42, 255,
	}
	var n Neighborhood

	FetchNeighborhood(rgba, 2, 0, 0, &n)
	if n.L != [3]uint8{} || n.U != [3]uint8{} || n.UL != [3]uint8{} || n.UR != [3]uint8{} {
		t.Fatalf("top-left corner must read all-zero: %+v", n)
	}

	FetchNeighborhood(rgba, 2, 1, 1, &n)
	if n.L != [3]uint8{30, 31, 32} || n.U != [3]uint8{20, 21, 22} || n.UL != [3]uint8{10, 11, 12} {
		t.Fatalf("interior fetch wrong: %+v", n)
	}
	// Right edge: UR falls back to U.
	if n.UR != n.U {
		t.Fatalf("right-edge UR must equal U: %+v", n)
	}
}

func TestCatalog_FixedFiltersFirst(t *testing.T) {
	if SFFixed < 4 || SFCount < 17 {
		t.Fatalf("catalog shape: fixed=%d count=%d", SFFixed, SFCount)
	}
	// Zero neighborhood: the zero filter predicts zero; left predicts
	// the (zero) left pixel.
	var n Neighborhood
	for i := 0; i < SFCount; i++ {
		if got := Catalog[i].Pred(&n); got != [3]uint8{} {
			t.Fatalf("filter %d must predict zero on zero neighborhood, got %v", i, got)
		}
	}
}
