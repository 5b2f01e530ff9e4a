// Package filters holds the fixed spatial-predictor and color-transform
// catalogs used by the RGBA coder, plus the scoring helpers that drive
// filter selection.
//
// Both catalogs are immutable program data, shared by reference across
// all writer and reader instances.
package filters

// Neighborhood carries the RGB bytes of the four causal neighbors of a
// pixel: left, up, up-left and up-right. The fetch helpers below define
// edge behavior, so predictor functions never see out-of-bounds data.
type Neighborhood struct {
	L, U, UL, UR [3]uint8
}

// PredFunc predicts the RGB bytes of a pixel from its neighborhood.
type PredFunc func(n *Neighborhood) [3]uint8

// SpatialFilter wraps one catalog predictor; its position in Catalog is
// its index.
type SpatialFilter struct {
	Pred PredFunc
}

const (
	// SFCount is the size of the spatial filter catalog.
	SFCount = 17
	// SFFixed filters are always available; the rest are designed
	// per image.
	SFFixed = 4
	// MaxFilters caps how many filters one image may select.
	MaxFilters = 32
)

// avg2 averages two bytes without overflow.
func avg2(a, b uint8) uint8 {
	return uint8((uint16(a) + uint16(b)) >> 1)
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// sfSelect picks up or left per the smaller gradient distance, summed
// over the three color components.
func sfSelect(n *Neighborhood) [3]uint8 {
	d := 0
	for i := 0; i < 3; i++ {
		uc := int(n.U[i]) - int(n.UL[i])
		lc := int(n.L[i]) - int(n.UL[i])
		d += abs(lc) - abs(uc)
	}
	if d <= 0 {
		return n.U
	}
	return n.L
}

// sfPaeth is the classic Paeth predictor applied per component.
func sfPaeth(n *Neighborhood) [3]uint8 {
	var out [3]uint8
	for i := 0; i < 3; i++ {
		l, u, ul := int(n.L[i]), int(n.U[i]), int(n.UL[i])
		p := l + u - ul
		pl, pu, pul := abs(p-l), abs(p-u), abs(p-ul)
		switch {
		case pl <= pu && pl <= pul:
			out[i] = uint8(l)
		case pu <= pul:
			out[i] = uint8(u)
		default:
			out[i] = uint8(ul)
		}
	}
	return out
}

// Catalog is the full spatial filter set. The first SFFixed entries are
// the fixed filters.
var Catalog = [SFCount]SpatialFilter{
	// Fixed filters.
	{Pred: func(n *Neighborhood) [3]uint8 { return [3]uint8{} }},  // 0: zero
	{Pred: func(n *Neighborhood) [3]uint8 { return n.L }},         // 1: left
	{Pred: func(n *Neighborhood) [3]uint8 { return n.U }},         // 2: up
	{Pred: func(n *Neighborhood) [3]uint8 { // 3: (L+U)/2
		return [3]uint8{avg2(n.L[0], n.U[0]), avg2(n.L[1], n.U[1]), avg2(n.L[2], n.U[2])}
	}},
	// Designed filters.
	{Pred: func(n *Neighborhood) [3]uint8 { return n.UL }}, // 4: up-left
	{Pred: func(n *Neighborhood) [3]uint8 { return n.UR }}, // 5: up-right
	{Pred: func(n *Neighborhood) [3]uint8 { // 6: clamp(L+U-UL)
		var out [3]uint8
		for i := 0; i < 3; i++ {
			out[i] = clampByte(int(n.L[i]) + int(n.U[i]) - int(n.UL[i]))
		}
		return out
	}},
	{Pred: sfSelect}, // 7: select
	{Pred: func(n *Neighborhood) [3]uint8 { // 8: (L+UL)/2
		return [3]uint8{avg2(n.L[0], n.UL[0]), avg2(n.L[1], n.UL[1]), avg2(n.L[2], n.UL[2])}
	}},
	{Pred: func(n *Neighborhood) [3]uint8 { // 9: (U+UL)/2
		return [3]uint8{avg2(n.U[0], n.UL[0]), avg2(n.U[1], n.UL[1]), avg2(n.U[2], n.UL[2])}
	}},
	{Pred: func(n *Neighborhood) [3]uint8 { // 10: (U+UR)/2
		return [3]uint8{avg2(n.U[0], n.UR[0]), avg2(n.U[1], n.UR[1]), avg2(n.U[2], n.UR[2])}
	}},
	{Pred: func(n *Neighborhood) [3]uint8 { // 11: ((L+UL)/2 + U)/2
		var out [3]uint8
		for i := 0; i < 3; i++ {
			out[i] = avg2(avg2(n.L[i], n.UL[i]), n.U[i])
		}
		return out
	}},
	{Pred: func(n *Neighborhood) [3]uint8 { // 12: avg4(L, U, UL, UR)
		var out [3]uint8
		for i := 0; i < 3; i++ {
			out[i] = avg2(avg2(n.L[i], n.U[i]), avg2(n.UL[i], n.UR[i]))
		}
		return out
	}},
	{Pred: func(n *Neighborhood) [3]uint8 { // 13: L+U-UL mod 256
		return [3]uint8{n.L[0] + n.U[0] - n.UL[0], n.L[1] + n.U[1] - n.UL[1], n.L[2] + n.U[2] - n.UL[2]}
	}},
	{Pred: sfPaeth}, // 14: paeth
	{Pred: func(n *Neighborhood) [3]uint8 { // 15: (L+UR)/2
		return [3]uint8{avg2(n.L[0], n.UR[0]), avg2(n.L[1], n.UR[1]), avg2(n.L[2], n.UR[2])}
	}},
	{Pred: func(n *Neighborhood) [3]uint8 { // 16: clamp(2L-UL)
		var out [3]uint8
		for i := 0; i < 3; i++ {
			out[i] = clampByte(2*int(n.L[i]) - int(n.UL[i]))
		}
		return out
	}},
}

// FetchNeighborhood fills n with the causal neighbors of (x, y) from a
// row-major RGBA raster, defining the safe edge behavior: neighbors
// outside the image read as zero, except the up-right neighbor on the
// right edge, which falls back to up.
func FetchNeighborhood(rgba []uint8, width, x, y int, n *Neighborhood) {
	*n = Neighborhood{}
	idx := (y*width + x) * 4
	if x > 0 {
		copy(n.L[:], rgba[idx-4:idx-1])
	}
	if y > 0 {
		up := idx - width*4
		copy(n.U[:], rgba[up:up+3])
		if x > 0 {
			copy(n.UL[:], rgba[up-4:up-1])
		}
		if x+1 < width {
			copy(n.UR[:], rgba[up+4:up+7])
		} else {
			n.UR = n.U
		}
	}
}
