package filters

// Color filters map a residual RGB triple into a YUV triple in mod-256
// arithmetic. Every filter has an exact inverse: CFInv(CF(x)) == x for
// all 2^24 inputs. The transforms are built from channel permutations
// and wrap-around subtractions, in the spirit of the subtract-green
// family of lossless transforms.

// CFCount is the size of the color filter catalog.
const CFCount = 17

// ColorFunc maps one RGB (or YUV) triple to another, mod 256.
type ColorFunc func(in [3]uint8) [3]uint8

// ColorFilter pairs a forward RGB→YUV transform with its exact inverse.
type ColorFilter struct {
	Fwd ColorFunc // RGB → YUV
	Inv ColorFunc // YUV → RGB
}

// RGB2YUV is the forward catalog; YUV2RGB the matching inverses.
// Index i of one inverts index i of the other.
var RGB2YUV = [CFCount]ColorFunc{}
var YUV2RGB = [CFCount]ColorFunc{}

// CFCatalog lists forward/inverse pairs. in is (R, G, B) for Fwd and
// (Y, U, V) for Inv.
var CFCatalog = [CFCount]ColorFilter{
	0: { // Y=B, U=G-B, V=G-R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[2], c[1] - c[2], c[1] - c[0]} },
		Inv: func(c [3]uint8) [3]uint8 {
			b := c[0]
			g := c[1] + b
			r := g - c[2]
			return [3]uint8{r, g, b}
		},
	},
	1: { // Y=G, U=G-B, V=G-R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[1] - c[2], c[1] - c[0]} },
		Inv: func(c [3]uint8) [3]uint8 {
			g := c[0]
			return [3]uint8{g - c[2], g, g - c[1]}
		},
	},
	2: { // subtract green: Y=G, U=B-G, V=R-G
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[2] - c[1], c[0] - c[1]} },
		Inv: func(c [3]uint8) [3]uint8 {
			g := c[0]
			return [3]uint8{c[2] + g, g, c[1] + g}
		},
	},
	3: { // Y=R, U=G-R, V=B-R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[0], c[1] - c[0], c[2] - c[0]} },
		Inv: func(c [3]uint8) [3]uint8 {
			r := c[0]
			return [3]uint8{r, c[1] + r, c[2] + r}
		},
	},
	4: { // Y=B, U=G-B, V=R-B
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[2], c[1] - c[2], c[0] - c[2]} },
		Inv: func(c [3]uint8) [3]uint8 {
			b := c[0]
			return [3]uint8{c[2] + b, c[1] + b, b}
		},
	},
	5: { // Y=G, U=B-G, V=R-B
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[2] - c[1], c[0] - c[2]} },
		Inv: func(c [3]uint8) [3]uint8 {
			g := c[0]
			b := c[1] + g
			return [3]uint8{c[2] + b, g, b}
		},
	},
	6: { // Y=G, U=R-G, V=B-R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[0] - c[1], c[2] - c[0]} },
		Inv: func(c [3]uint8) [3]uint8 {
			g := c[0]
			r := c[1] + g
			return [3]uint8{r, g, c[2] + r}
		},
	},
	7: { // Y=R, U=B-R, V=G-B
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[0], c[2] - c[0], c[1] - c[2]} },
		Inv: func(c [3]uint8) [3]uint8 {
			r := c[0]
			b := c[1] + r
			return [3]uint8{r, c[2] + b, b}
		},
	},
	8: { // Y=R, U=G, V=B-G
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[0], c[1], c[2] - c[1]} },
		Inv: func(c [3]uint8) [3]uint8 { return [3]uint8{c[0], c[1], c[2] + c[1]} },
	},
	9: { // Y=R, U=B, V=G-R-B
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[0], c[2], c[1] - c[0] - c[2]} },
		Inv: func(c [3]uint8) [3]uint8 { return [3]uint8{c[0], c[2] + c[0] + c[1], c[1]} },
	},
	10: { // Y=B, U=R, V=G-R-B
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[2], c[0], c[1] - c[0] - c[2]} },
		Inv: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[2] + c[1] + c[0], c[0]} },
	},
	11: { // Y=G, U=R, V=B-G-R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[0], c[2] - c[1] - c[0]} },
		Inv: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[0], c[2] + c[0] + c[1]} },
	},
	12: { // identity
		Fwd: func(c [3]uint8) [3]uint8 { return c },
		Inv: func(c [3]uint8) [3]uint8 { return c },
	},
	13: { // reverse: Y=B, U=G, V=R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[2], c[1], c[0]} },
		Inv: func(c [3]uint8) [3]uint8 { return [3]uint8{c[2], c[1], c[0]} },
	},
	14: { // rotate: Y=G, U=B, V=R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[1], c[2], c[0]} },
		Inv: func(c [3]uint8) [3]uint8 { return [3]uint8{c[2], c[0], c[1]} },
	},
	15: { // Y=R-G, U=G-B, V=B
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[0] - c[1], c[1] - c[2], c[2]} },
		Inv: func(c [3]uint8) [3]uint8 {
			b := c[2]
			g := c[1] + b
			return [3]uint8{c[0] + g, g, b}
		},
	},
	16: { // Y=B-G, U=G-R, V=R
		Fwd: func(c [3]uint8) [3]uint8 { return [3]uint8{c[2] - c[1], c[1] - c[0], c[0]} },
		Inv: func(c [3]uint8) [3]uint8 {
			r := c[2]
			g := c[1] + r
			return [3]uint8{r, g, c[0] + g}
		},
	},
}

func init() {
	for i := range CFCatalog {
		RGB2YUV[i] = CFCatalog[i].Fwd
		YUV2RGB[i] = CFCatalog[i].Inv
	}
}
