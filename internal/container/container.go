// Package container frames the GCIF bitstream: a five-word header
// carrying the magic, dimensions and integrity hashes, followed by the
// body data words, with the data hash finalized by the reader.
package container

import (
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"

	"github.com/gamecodec/gcif/internal/bitio"
)

// Header words. HeadMagic spells "GCIF" little-endian.
const (
	HeadWords        = 5
	HeadMagic uint32 = 0x46494347
)

// Header is the decoded five-word container header.
type Header struct {
	Width, Height int

	HeadHash uint32 // hash of the first two words, keyed with HeadSeed
	FastHash uint32 // streaming data-word hash, checked on every decode
	GoodHash uint32 // strong body hash, checked on demand
}

// Errors reported by the framing layer.
var (
	ErrBadFormat   = errors.New("container: bad magic or head hash")
	ErrTruncated   = errors.New("container: truncated data")
	ErrDataCorrupt = errors.New("container: data hash mismatch")
)

// Seal wraps finished body bytes (from bitio.Writer.Finish) in the
// container header and returns the complete file contents.
func Seal(body []byte, width, height int, fastHash uint32) []byte {
	out := make([]byte, HeadWords*4+len(body))

	dims := uint32(width)<<16 | uint32(height)
	binary.BigEndian.PutUint32(out[0:], HeadMagic)
	binary.BigEndian.PutUint32(out[4:], dims)

	headHash := bitio.HashWords(bitio.HeadSeed, []uint32{HeadMagic, dims})
	binary.BigEndian.PutUint32(out[8:], headHash)
	binary.BigEndian.PutUint32(out[12:], fastHash)

	goodHash := uint32(xxhash.Sum64(body))
	binary.BigEndian.PutUint32(out[16:], goodHash)

	copy(out[HeadWords*4:], body)
	return out
}

// Parse validates the header and returns it plus the body bytes.
func Parse(data []byte) (*Header, []byte, error) {
	if len(data) < HeadWords*4 {
		return nil, nil, ErrTruncated
	}
	magic := binary.BigEndian.Uint32(data[0:])
	dims := binary.BigEndian.Uint32(data[4:])
	h := &Header{
		Width:    int(dims >> 16),
		Height:   int(dims & 0xffff),
		HeadHash: binary.BigEndian.Uint32(data[8:]),
		FastHash: binary.BigEndian.Uint32(data[12:]),
		GoodHash: binary.BigEndian.Uint32(data[16:]),
	}
	if magic != HeadMagic {
		return nil, nil, ErrBadFormat
	}
	if bitio.HashWords(bitio.HeadSeed, []uint32{magic, dims}) != h.HeadHash {
		return nil, nil, ErrBadFormat
	}
	body := data[HeadWords*4:]
	if len(body)%4 != 0 {
		return nil, nil, ErrTruncated
	}
	return h, body, nil
}

// VerifyGoodHash recomputes the strong body hash. Used by verification
// tooling; normal decodes rely on the streaming fast hash.
func (h *Header) VerifyGoodHash(body []byte) bool {
	return uint32(xxhash.Sum64(body)) == h.GoodHash
}
