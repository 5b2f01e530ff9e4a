// Package lz finds repeated rectangular pixel regions in an RGBA
// raster so later instances can be encoded as copies of earlier ones.
//
// The finder works on 8x8 pixel blocks. A pre-scan hashes every block
// position into a table, walking from the bottom-right to the top-left
// so the surviving entry per bucket is the upper-left-most occurrence.
// The forward scan then walks top-left to bottom-right one pixel per
// step, verifies candidates byte for byte, and expands each verified
// match up to 256 pixels on each axis.
package lz

const (
	// Zone is the match block edge in pixels.
	Zone = 8
	// MaxMatchExtent is the largest match width or height.
	MaxMatchExtent = 256
	// MinMatchPixels rejects matches too small to pay for their
	// 10-byte record.
	MinMatchPixels = Zone * Zone

	hashBits = 18
	hashSize = 1 << hashBits
	hashMult = 0xc6a4a7935bd1e995

	// MaxMatches bounds the match count to the 16-bit count field.
	MaxMatches = 0xffff
)

// Match is one rectangular copy record. Width and height are stored
// minus one in the bitstream; here they are the real extents.
type Match struct {
	SrcX, SrcY uint16
	DstX, DstY uint16
	W, H       int
}

// Matcher scans an image once at construction and exposes the accepted
// matches plus the Visited predicate consumed by the RGBA coder mask.
type Matcher struct {
	rgba    []uint8
	width   int
	height  int
	matches []Match
	visited []bool // per pixel, covered by an accepted match destination
	locked  []bool // per 8x8 block
	blocksX int
	table   []int32 // block hash -> packed y*width+x of upper-left-most block
}

// hashPixels folds two packed pixels through the mix constant and
// returns the top hashBits bits.
func hashPixels(a, b uint32) uint32 {
	return uint32((uint64(a)<<32 | uint64(b)) * hashMult >> (64 - hashBits))
}

// hashBlock folds all 64 pixels of the 8x8 block at (x, y), seeding
// each step with the two-pixel hash of the current pair.
func (m *Matcher) hashBlock(x, y int) uint32 {
	h := uint32(hashSize - 1)
	for dy := 0; dy < Zone; dy++ {
		row := ((y+dy)*m.width + x) * 4
		for dx := 0; dx < Zone; dx += 2 {
			a := packPixel(m.rgba, row+dx*4)
			b := packPixel(m.rgba, row+dx*4+4)
			h = h*5 + hashPixels(a, b)
		}
	}
	return h & (hashSize - 1)
}

func packPixel(rgba []uint8, idx int) uint32 {
	return uint32(rgba[idx])<<24 | uint32(rgba[idx+1])<<16 | uint32(rgba[idx+2])<<8 | uint32(rgba[idx+3])
}

// New scans the raster and collects matches. A nil return never
// happens; an image smaller than one zone yields zero matches.
func New(rgba []uint8, width, height int) *Matcher {
	m := &Matcher{
		rgba:    rgba,
		width:   width,
		height:  height,
		visited: make([]bool, width*height),
		blocksX: (width + Zone - 1) / Zone,
	}
	m.locked = make([]bool, m.blocksX*((height+Zone-1)/Zone))
	if width >= Zone && height >= Zone {
		m.scan()
	}
	return m
}

// scan runs the pre-scan and the forward match scan.
func (m *Matcher) scan() {
	m.table = make([]int32, hashSize)
	for i := range m.table {
		m.table[i] = -1
	}

	// Pre-scan bottom-right to top-left: the last write per bucket is
	// the upper-left-most block, biasing matches toward short leftward
	// back-references.
	for y := m.height - Zone; y >= 0; y-- {
		for x := m.width - Zone; x >= 0; x-- {
			m.table[m.hashBlock(x, y)] = int32(y*m.width + x)
		}
	}

	// Forward scan, one pixel per step.
	for y := 0; y+Zone <= m.height; y++ {
		for x := 0; x+Zone <= m.width; x++ {
			if len(m.matches) >= MaxMatches {
				return
			}
			cand := m.table[m.hashBlock(x, y)]
			if cand < 0 {
				continue
			}
			sx, sy := int(cand)%m.width, int(cand)/m.width
			// Source must precede destination in scan order.
			if sy > y || (sy == y && sx >= x) {
				continue
			}
			if !m.blocksEqual(sx, sy, x, y) {
				continue
			}
			m.tryMatch(sx, sy, x, y)
		}
	}
}

// blocksEqual verifies an 8x8 candidate byte for byte.
func (m *Matcher) blocksEqual(sx, sy, dx, dy int) bool {
	for row := 0; row < Zone; row++ {
		s := ((sy+row)*m.width + sx) * 4
		d := ((dy+row)*m.width + dx) * 4
		for i := 0; i < Zone*4; i++ {
			if m.rgba[s+i] != m.rgba[d+i] {
				return false
			}
		}
	}
	return true
}

// tryMatch expands a verified seed block in all four directions, then
// applies the overlap rules and records the match if it survives.
func (m *Matcher) tryMatch(sx, sy, dx, dy int) {
	w, h := Zone, Zone

	// Expand right.
	for w < MaxMatchExtent && dx+w < m.width && sx+w < m.width &&
		m.colsEqual(sx+w, sy, dx+w, dy, h) {
		w++
	}
	// Expand down.
	for h < MaxMatchExtent && dy+h < m.height && sy+h < m.height &&
		m.rowsEqual(sx, sy+h, dx, dy+h, w) {
		h++
	}
	// Expand left.
	for w < MaxMatchExtent && dx > 0 && sx > 0 &&
		m.colsEqual(sx-1, sy, dx-1, dy, h) {
		sx--
		dx--
		w++
	}
	// Expand up.
	for h < MaxMatchExtent && dy > 0 && sy > 0 &&
		m.rowsEqual(sx, sy-1, dx, dy-1, w) {
		sy--
		dy--
		h++
	}

	if w*h < MinMatchPixels {
		return
	}
	// Source and destination regions must not overlap.
	if rectsOverlap(sx, sy, dx, dy, w, h) {
		return
	}
	// Source must still precede destination after expansion.
	if sy > dy || (sy == dy && sx >= dx) {
		return
	}
	// Reject matches touching locked blocks on either end, or
	// destinations already covered.
	if m.collides(sx, sy, w, h) || m.collides(dx, dy, w, h) {
		return
	}
	for yy := dy; yy < dy+h; yy++ {
		for xx := dx; xx < dx+w; xx++ {
			if m.visited[yy*m.width+xx] {
				return
			}
		}
	}

	m.matches = append(m.matches, Match{
		SrcX: uint16(sx), SrcY: uint16(sy),
		DstX: uint16(dx), DstY: uint16(dy),
		W: w, H: h,
	})

	// The accepted match is the later one at its destination; it takes
	// locking rights over the 8x8 blocks it fully covers.
	m.lock(dx, dy, w, h)
	for yy := dy; yy < dy+h; yy++ {
		base := yy * m.width
		for xx := dx; xx < dx+w; xx++ {
			m.visited[base+xx] = true
		}
	}
}

func (m *Matcher) colsEqual(sx, sy, dx, dy, h int) bool {
	for row := 0; row < h; row++ {
		s := ((sy+row)*m.width + sx) * 4
		d := ((dy+row)*m.width + dx) * 4
		for i := 0; i < 4; i++ {
			if m.rgba[s+i] != m.rgba[d+i] {
				return false
			}
		}
	}
	return true
}

func (m *Matcher) rowsEqual(sx, sy, dx, dy, w int) bool {
	s := (sy*m.width + sx) * 4
	d := (dy*m.width + dx) * 4
	for i := 0; i < w*4; i++ {
		if m.rgba[s+i] != m.rgba[d+i] {
			return false
		}
	}
	return true
}

func rectsOverlap(sx, sy, dx, dy, w, h int) bool {
	return sx < dx+w && dx < sx+w && sy < dy+h && dy < sy+h
}

// collides reports whether the rectangle touches any locked block.
func (m *Matcher) collides(x, y, w, h int) bool {
	for by := y / Zone; by <= (y+h-1)/Zone; by++ {
		for bx := x / Zone; bx <= (x+w-1)/Zone; bx++ {
			if m.locked[by*m.blocksX+bx] {
				return true
			}
		}
	}
	return false
}

// lock marks the 8x8 blocks fully covered by the rectangle.
func (m *Matcher) lock(x, y, w, h int) {
	for by := (y + Zone - 1) / Zone; (by+1)*Zone <= y+h; by++ {
		for bx := (x + Zone - 1) / Zone; (bx+1)*Zone <= x+w; bx++ {
			m.locked[by*m.blocksX+bx] = true
		}
	}
}

// Matches returns the accepted matches in destination scan order.
func (m *Matcher) Matches() []Match {
	return m.matches
}

// Visited reports whether (x, y) is covered by an accepted match
// destination; such pixels are skipped by the residual coder.
func (m *Matcher) Visited(x, y int) bool {
	return m.visited[y*m.width+x]
}

// Coverage builds a per-pixel source-index map for the decoder: -1 for
// uncovered pixels, else the raster index of the source pixel.
func Coverage(matches []Match, width, height int) []int32 {
	cov := make([]int32, width*height)
	for i := range cov {
		cov[i] = -1
	}
	for _, mt := range matches {
		for dy := 0; dy < mt.H; dy++ {
			srow := (int(mt.SrcY)+dy)*width + int(mt.SrcX)
			drow := (int(mt.DstY)+dy)*width + int(mt.DstX)
			for dx := 0; dx < mt.W; dx++ {
				cov[drow+dx] = int32(srow + dx)
			}
		}
	}
	return cov
}
