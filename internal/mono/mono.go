// Package mono codes small monochrome matrices: the spatial/color
// filter tile grids, the alpha plane, and the palette index image.
//
// The writer chooses between direct and left-delta filtering of the
// symbol stream by estimated entropy, then codes the (possibly
// filtered) symbols with a trained canonical-Huffman encoder. The
// reader mirrors the context updates exactly, so masked cells can be
// skipped with Zero on both sides.
package mono

import (
	"github.com/gamecodec/gcif/internal/bitio"
	"github.com/gamecodec/gcif/internal/entropy"
)

// MaskFunc reports whether a cell is excluded from coding.
type MaskFunc func(x, y int) bool

// Params configures a mono coder per the sub-coder contract.
type Params struct {
	Data    []uint8 // row-major symbol matrix
	XSize   int
	YSize   int
	NumSyms int

	// Tuning knobs carried by the contract. The filter thresholds and
	// award weights steer richer implementations; this coder consumes
	// Mask and NumSyms and accepts the rest.
	MaxFilters   int
	MinBits      int
	MaxBits      int
	SympalThresh float64
	FilterThresh float64
	Awards       [4]int
	AwardCount   int
	LZEnable     bool

	Mask MaskFunc
}

// Filter modes.
const (
	filterDirect = 0
	filterLeft   = 1
)

// Writer codes one symbol matrix.
type Writer struct {
	p    Params
	mode int
	enc  entropy.Encoder
	prev uint8 // left context, reset per row
}

// NewWriter trains a writer over the unmasked cells of the matrix.
// Returns false only for degenerate parameters.
func NewWriter(p Params) (*Writer, bool) {
	if p.XSize <= 0 || p.YSize <= 0 || p.NumSyms <= 0 || p.NumSyms > 256 {
		return nil, false
	}
	w := &Writer{p: p}

	// Choose the filter mode by estimated entropy of each stream.
	direct := entropy.NewEstimator()
	delta := entropy.NewEstimator()
	w.forEach(func(x, y int, sym uint8, prev uint8) {
		direct.AddSingle(sym)
		delta.AddSingle(w.residual(sym, prev))
	})
	w.mode = filterDirect
	if delta.EntropyOverall() < direct.EntropyOverall() {
		w.mode = filterLeft
	}

	// Train the encoder on the chosen stream.
	w.enc.Init(p.NumSyms, entropy.ZRLESyms)
	w.forEach(func(x, y int, sym uint8, prev uint8) {
		w.enc.Add(w.symbolFor(sym, prev))
	})
	w.enc.Finalize()
	return w, true
}

// forEach walks unmasked cells in scan order, maintaining the same
// left context the streaming Write/Zero calls will see.
func (w *Writer) forEach(fn func(x, y int, sym, prev uint8)) {
	for y := 0; y < w.p.YSize; y++ {
		prev := uint8(0)
		for x := 0; x < w.p.XSize; x++ {
			if w.p.Mask != nil && w.p.Mask(x, y) {
				prev = 0
				continue
			}
			sym := w.p.Data[y*w.p.XSize+x]
			fn(x, y, sym, prev)
			prev = sym
		}
	}
}

// residual computes the left-delta residual mod NumSyms.
func (w *Writer) residual(sym, prev uint8) uint8 {
	n := uint16(w.p.NumSyms)
	return uint8((uint16(sym) + n - uint16(prev)) % n)
}

func (w *Writer) symbolFor(sym, prev uint8) uint8 {
	if w.mode == filterLeft {
		return w.residual(sym, prev)
	}
	return sym
}

// WriteTables emits the filter mode bit and the code tables.
func (w *Writer) WriteTables(bw *bitio.Writer) int {
	bw.WriteBits(uint32(w.mode), 1)
	return 1 + w.enc.WriteTables(bw)
}

// WriteRowHeader resets the left context for row y.
func (w *Writer) WriteRowHeader(y int, bw *bitio.Writer) int {
	w.prev = 0
	return 0
}

// Write codes the cell at (x, y) and returns the bits written.
func (w *Writer) Write(x, y int, bw *bitio.Writer) int {
	sym := w.p.Data[y*w.p.XSize+x]
	bits := w.enc.Write(w.symbolFor(sym, w.prev), bw)
	w.prev = sym
	return bits
}

// Zero advances the context past a masked cell without emitting bits.
func (w *Writer) Zero(x int) {
	w.prev = 0
}

// Reader decodes a matrix written by Writer.
type Reader struct {
	xsize, ysize int
	numSyms      int
	mode         int
	dec          entropy.Decoder
	prev         uint8
}

// NewReader reads the tables for a matrix of known geometry.
func NewReader(br *bitio.Reader, xsize, ysize, numSyms int) *Reader {
	r := &Reader{xsize: xsize, ysize: ysize, numSyms: numSyms}
	r.mode = int(br.ReadBits(1))
	r.dec.ReadTables(numSyms, br)
	return r
}

// ReadRowHeader resets the left context for row y.
func (r *Reader) ReadRowHeader(y int, br *bitio.Reader) {
	r.prev = 0
}

// Read decodes the cell at (x, y).
func (r *Reader) Read(x, y int, br *bitio.Reader) uint8 {
	sym := r.dec.Read(br)
	if r.mode == filterLeft {
		sym = uint8((uint16(sym) + uint16(r.prev)) % uint16(r.numSyms))
	}
	r.prev = sym
	return sym
}

// Zero mirrors Writer.Zero for masked cells.
func (r *Reader) Zero(x int) {
	r.prev = 0
}
