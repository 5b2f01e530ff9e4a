// Package entropy provides the integer-histogram entropy estimator and
// the canonical-Huffman entropy encoder/decoder used by every sub-coder
// in the codec.
package entropy

import "math/bits"

// costShift is the fixed-point shift for bit-cost values: costs are in
// units of 1/16 bit, keeping all estimator arithmetic in integers so
// that Subtract is an exact inverse of Add.
const costShift = 4

// Estimator estimates the cost in bits of coding byte streams against
// a running global histogram. All state is integral: Subtract(buf)
// after Add(buf) restores the histogram exactly.
type Estimator struct {
	hist  [256]uint32
	total uint32
}

// NewEstimator returns a zeroed estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Init resets the histogram.
func (e *Estimator) Init() {
	e.hist = [256]uint32{}
	e.total = 0
}

// Add accumulates the bytes of buf into the histogram.
func (e *Estimator) Add(buf []uint8) {
	for _, b := range buf {
		e.hist[b]++
	}
	e.total += uint32(len(buf))
}

// AddSingle accumulates one byte.
func (e *Estimator) AddSingle(b uint8) {
	e.hist[b]++
	e.total++
}

// Subtract removes the bytes of buf from the histogram. It is the
// exact inverse of Add for the same buffer.
func (e *Estimator) Subtract(buf []uint8) {
	for _, b := range buf {
		e.hist[b]--
	}
	e.total -= uint32(len(buf))
}

// cost16 approximates log2(total/count) in 1/16-bit units using integer
// arithmetic only.
func cost16(count, total uint32) uint32 {
	if count >= total {
		return 0
	}
	// ratio in 8.8 fixed point, at least 256.
	ratio := (uint64(total) << 8) / uint64(count)
	hi := bits.Len64(ratio) - 1 // integer part of log2
	// One bit of fractional refinement from the bit below the MSB.
	frac := uint32(0)
	if hi > 0 && ratio&(1<<uint(hi-1)) != 0 {
		frac = 1 << (costShift - 1)
	}
	return (uint32(hi-8) << costShift) + frac
}

// Entropy estimates the cost in bits of coding buf against the current
// histogram with buf provisionally included, mirroring how the codes
// would train the real encoder.
func (e *Estimator) Entropy(buf []uint8) uint32 {
	var local [256]uint32
	for _, b := range buf {
		local[b]++
	}
	total := e.total + uint32(len(buf))
	if total == 0 {
		return 0
	}
	var sum uint32
	for sym, n := range local {
		if n == 0 {
			continue
		}
		sum += n * cost16(e.hist[sym]+n, total)
	}
	return sum >> costShift
}

// EntropyOverall estimates the cost in bits of coding everything added
// so far with a code matched to the current histogram.
func (e *Estimator) EntropyOverall() uint32 {
	if e.total == 0 {
		return 0
	}
	var sum uint32
	for _, n := range e.hist {
		if n == 0 {
			continue
		}
		sum += n * cost16(n, e.total)
	}
	return sum >> costShift
}
