package entropy

import "github.com/gamecodec/gcif/internal/bitio"

// ZRLESyms is the conventional zero-run-length symbol budget passed by
// callers. The canonical-code implementation does not reserve run
// symbols; the knob is accepted for contract compatibility.
const ZRLESyms = 16

// Encoder is a trained canonical-Huffman encoder over a byte alphabet.
//
// Usage: Init, Add every symbol that will be written, Finalize, then
// WriteTables once and Write per symbol, in the same order as training.
type Encoder struct {
	numSyms int
	hist    []uint32
	lengths []uint8
	codes   []uint16
}

// Init prepares the encoder for an alphabet of numSyms symbols.
// zrleSyms is accepted per the entropy-encoder contract.
func (e *Encoder) Init(numSyms, zrleSyms int) {
	_ = zrleSyms
	e.numSyms = numSyms
	e.hist = make([]uint32, numSyms)
	e.lengths = make([]uint8, numSyms)
	e.codes = make([]uint16, numSyms)
}

// Add records one occurrence of symbol during training.
func (e *Encoder) Add(symbol uint8) {
	e.hist[symbol]++
}

// Finalize builds the code from the trained histogram.
func (e *Encoder) Finalize() {
	buildCodeLengths(e.hist, e.lengths)
	canonicalCodes(e.lengths, e.codes)
}

// WriteTables serializes the code lengths, one Write17 per symbol, and
// returns the number of bits written.
func (e *Encoder) WriteTables(bw *bitio.Writer) int {
	bits := 0
	for _, l := range e.lengths {
		bits += bw.Write17(uint32(l))
	}
	return bits
}

// Write emits the codeword for symbol and returns its bit length.
func (e *Encoder) Write(symbol uint8, bw *bitio.Writer) int {
	l := int(e.lengths[symbol])
	bw.WriteBits(uint32(e.codes[symbol]), l)
	return l
}

// Decoder decodes symbols written by Encoder.
type Decoder struct {
	numSyms int
	lengths []uint8

	// Canonical decode tables indexed by code length.
	firstCode [MaxCodeLength + 2]uint16
	offset    [MaxCodeLength + 2]int
	symbols   []int // symbols sorted by (length, index)
}

// ReadTables reads the code lengths serialized by WriteTables and
// rebuilds the canonical decode tables.
func (d *Decoder) ReadTables(numSyms int, br *bitio.Reader) {
	d.numSyms = numSyms
	d.lengths = make([]uint8, numSyms)
	for i := 0; i < numSyms; i++ {
		d.lengths[i] = uint8(br.Read17())
	}
	d.build()
}

func (d *Decoder) build() {
	var countPerLen [MaxCodeLength + 1]int
	for _, l := range d.lengths {
		if l > 0 {
			countPerLen[l]++
		}
	}
	d.symbols = d.symbols[:0]
	for l := 1; l <= MaxCodeLength; l++ {
		for sym, sl := range d.lengths {
			if int(sl) == l {
				d.symbols = append(d.symbols, sym)
			}
		}
	}
	code := uint16(0)
	idx := 0
	for l := 1; l <= MaxCodeLength; l++ {
		d.firstCode[l] = code
		d.offset[l] = idx
		code = (code + uint16(countPerLen[l])) << 1
		idx += countPerLen[l]
	}
}

// Read decodes one symbol, consuming its codeword bit by bit.
func (d *Decoder) Read(br *bitio.Reader) uint8 {
	code := uint16(0)
	for l := 1; l <= MaxCodeLength; l++ {
		code = code<<1 | uint16(br.ReadBit())
		var countPerLen int
		if l < MaxCodeLength {
			countPerLen = d.offset[l+1] - d.offset[l]
		} else {
			countPerLen = len(d.symbols) - d.offset[l]
		}
		if diff := int(code) - int(d.firstCode[l]); diff >= 0 && diff < countPerLen {
			return uint8(d.symbols[d.offset[l]+diff])
		}
	}
	// Corrupt stream: no codeword matched. Return zero; the container
	// hash check catches the damage.
	return 0
}
