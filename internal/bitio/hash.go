package bitio

import "math/bits"

// Container hash seeds. These are part of the file format.
const (
	HeadSeed uint32 = 0x120CA71D
	DataSeed uint32 = 0xCA71D123
)

// WordHash is a seeded streaming hash over 32-bit words. It is cheap
// enough to run inline with decoding, and a single flipped bit in any
// word changes the final value with overwhelming probability.
type WordHash struct {
	h uint32
}

// NewWordHash returns a WordHash keyed with the given seed.
func NewWordHash(seed uint32) WordHash {
	return WordHash{h: seed}
}

// Update folds one word into the running hash.
func (wh *WordHash) Update(word uint32) {
	h := wh.h
	h += word * 0x9e3779b1
	h = bits.RotateLeft32(h, 13)
	h *= 0x85ebca77
	wh.h = h
}

// Final mixes in the word count and returns the hash value.
func (wh *WordHash) Final(wordCount int) uint32 {
	h := wh.h ^ uint32(wordCount)
	h ^= h >> 15
	h *= 0xc2b2ae3d
	h ^= h >> 13
	h *= 0x27d4eb2f
	h ^= h >> 16
	return h
}

// HashWords hashes a word slice in one call.
func HashWords(seed uint32, words []uint32) uint32 {
	wh := NewWordHash(seed)
	for _, w := range words {
		wh.Update(w)
	}
	return wh.Final(len(words))
}
