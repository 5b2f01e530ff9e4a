package bitio

import "encoding/binary"

// Reader reads the MSB-first word stream produced by Writer.
//
// It maintains a 64-bit accumulator with the next bits in the high
// portion. Peek-then-eat is the only legal read pattern: Peek(n)
// guarantees at least n bits are available (refilling from the word
// stream when short), Eat(n) then discards up to 31 of them. Reading
// past the last data word sets the eof flag and yields zero bits.
type Reader struct {
	words     []byte // raw data-word bytes (multiple of 4)
	wordCount int
	wordsLeft int
	pos       int // byte position of the next unread word

	bits     uint64 // accumulator, next bits in the high portion
	bitsLeft int

	eof  bool
	hash WordHash
}

// NewReader creates a Reader over the data-word bytes that follow the
// container header. len(data) must be a multiple of 4.
func NewReader(data []byte) *Reader {
	return &Reader{
		words:     data,
		wordCount: len(data) / 4,
		wordsLeft: len(data) / 4,
		hash:      NewWordHash(DataSeed),
	}
}

// nextWord pulls one word from the stream, updating the streaming
// hash. Past the end it returns zero and latches eof.
func (br *Reader) nextWord() uint32 {
	if br.wordsLeft <= 0 {
		br.eof = true
		return 0
	}
	w := binary.BigEndian.Uint32(br.words[br.pos:])
	br.pos += 4
	br.wordsLeft--
	br.hash.Update(w)
	return w
}

// Peek returns at least minBits in the high bits of a 32-bit value,
// refilling the accumulator from the word stream when short.
// minBits <= 32.
func (br *Reader) Peek(minBits int) uint32 {
	for br.bitsLeft < minBits {
		w := br.nextWord()
		br.bits |= uint64(w) << uint(32-br.bitsLeft)
		br.bitsLeft += 32
		if br.bitsLeft > 64 {
			// Cannot happen: refill only runs while bitsLeft < 32.
			break
		}
	}
	return uint32(br.bits >> 32)
}

// Eat discards n bits after a Peek. n <= 31.
func (br *Reader) Eat(n int) {
	br.bits <<= uint(n)
	br.bitsLeft -= n
}

// ReadBits reads n bits, 1 <= n <= 31, returned right-justified.
func (br *Reader) ReadBits(n int) uint32 {
	v := br.Peek(n)
	br.Eat(n)
	return v >> uint(32-n)
}

// ReadBit reads a single bit.
func (br *Reader) ReadBit() uint32 {
	return br.ReadBits(1)
}

// ReadWord reads a 32-bit value written with WriteWord.
func (br *Reader) ReadWord() uint32 {
	hi := br.ReadBits(16)
	lo := br.ReadBits(16)
	return hi<<16 | lo
}

// Read17 decodes a value written with Write17.
func (br *Reader) Read17() uint32 {
	if br.ReadBit() == 0 {
		return br.ReadBits(3)
	}
	return br.ReadBits(4) + 8
}

// EOF reports whether the reader has drained past the last data word.
func (br *Reader) EOF() bool {
	return br.eof
}

// WordCount returns the total number of data words.
func (br *Reader) WordCount() int {
	return br.wordCount
}

// FinalizeHash consumes any remaining words so the streaming hash
// covers the whole body, then returns it. Idempotent once the stream
// is drained.
func (br *Reader) FinalizeHash() uint32 {
	for br.wordsLeft > 0 {
		br.nextWord()
	}
	return br.hash.Final(br.wordCount)
}

// FinalizeCheckHash reports whether the recomputed data hash equals
// want (the fastHash declared in the container header).
func (br *Reader) FinalizeCheckHash(want uint32) bool {
	return br.FinalizeHash() == want
}
