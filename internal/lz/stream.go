package lz

import "github.com/gamecodec/gcif/internal/bitio"

// WriteStream serializes the match list: a 16-bit count, then one
// 10-byte record per match (coordinates 16 bits each, extents minus
// one in 8 bits).
func WriteStream(bw *bitio.Writer, matches []Match) {
	bw.WriteBits(uint32(len(matches)), 16)
	for _, m := range matches {
		bw.WriteBits(uint32(m.SrcX), 16)
		bw.WriteBits(uint32(m.SrcY), 16)
		bw.WriteBits(uint32(m.DstX), 16)
		bw.WriteBits(uint32(m.DstY), 16)
		bw.WriteBits(uint32(m.W-1), 8)
		bw.WriteBits(uint32(m.H-1), 8)
	}
}

// ReadStream parses the match list written by WriteStream.
func ReadStream(br *bitio.Reader) []Match {
	count := int(br.ReadBits(16))
	matches := make([]Match, 0, count)
	for i := 0; i < count; i++ {
		var m Match
		m.SrcX = uint16(br.ReadBits(16))
		m.SrcY = uint16(br.ReadBits(16))
		m.DstX = uint16(br.ReadBits(16))
		m.DstY = uint16(br.ReadBits(16))
		m.W = int(br.ReadBits(8)) + 1
		m.H = int(br.ReadBits(8)) + 1
		matches = append(matches, m)
	}
	return matches
}
