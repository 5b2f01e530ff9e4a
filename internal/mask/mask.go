// Package mask implements the transparency mask coder. Fully
// transparent regions carrying a single RGBA value (the mask color)
// are lifted out of the residual coder: the mask records which pixels
// those are, and the decoder restores them from the mask color alone.
//
// The sub-stream is opaque to the rest of the codec: an enabled bit,
// the mask color, then the row-major mask bitmap packed to bytes and
// compressed with zstd, length-prefixed and word-aligned.
package mask

import (
	"errors"

	"github.com/klauspost/compress/zstd"

	"github.com/gamecodec/gcif/internal/bitio"
)

// DefaultColor is the mask color used when the image carries fully
// transparent pixels: transparent black.
const DefaultColor uint32 = 0x00000000

// Writer detects maskable pixels and serializes the mask sub-stream.
type Writer struct {
	width, height int
	enabled       bool
	color         uint32
	bits          []bool
}

// NewWriter scans the raster for pixels equal to the mask color with
// zero alpha. The mask only engages when at least one pixel qualifies.
func NewWriter(rgba []uint8, width, height int) *Writer {
	w := &Writer{
		width:  width,
		height: height,
		color:  DefaultColor,
		bits:   make([]bool, width*height),
	}
	for i := 0; i < width*height; i++ {
		px := uint32(rgba[i*4])<<24 | uint32(rgba[i*4+1])<<16 |
			uint32(rgba[i*4+2])<<8 | uint32(rgba[i*4+3])
		if rgba[i*4+3] == 0 && px == w.color {
			w.bits[i] = true
			w.enabled = true
		}
	}
	return w
}

// Enabled reports whether any pixel is masked.
func (w *Writer) Enabled() bool {
	return w.enabled
}

// Color returns the mask color.
func (w *Writer) Color() uint32 {
	return w.color
}

// Masked reports whether the pixel at (x, y) is recovered from the
// mask color instead of the residual coder.
func (w *Writer) Masked(x, y int) bool {
	return w.bits[y*w.width+x]
}

// Write serializes the mask sub-stream.
func (w *Writer) Write(bw *bitio.Writer) error {
	if !w.enabled {
		bw.WriteBit(0)
		return nil
	}
	bw.WriteBit(1)
	bw.WriteWord(w.color)

	packed := packBits(w.bits)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(packed, nil)
	enc.Close()

	bw.WriteWord(uint32(len(compressed)))
	writeAlignedBytes(bw, compressed)
	return nil
}

// Reader restores the mask from the sub-stream.
type Reader struct {
	width, height int
	enabled       bool
	color         uint32
	bits          []bool
}

// NewReader parses the mask sub-stream for an image of known size.
func NewReader(br *bitio.Reader, width, height int) (*Reader, error) {
	r := &Reader{width: width, height: height}
	if br.ReadBit() == 0 {
		r.bits = make([]bool, width*height)
		return r, nil
	}
	r.enabled = true
	r.color = br.ReadWord()

	n := int(br.ReadWord())
	if n < 0 || n > br.WordCount()*4 {
		return nil, errors.New("mask: bad sub-stream length")
	}
	compressed := readAlignedBytes(br, n)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	packed, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, err
	}
	r.bits = unpackBits(packed, width*height)
	return r, nil
}

// Enabled reports whether the mask sub-stream carried a mask.
func (r *Reader) Enabled() bool {
	return r.enabled
}

// Color returns the mask color.
func (r *Reader) Color() uint32 {
	return r.color
}

// Masked reports whether the pixel at (x, y) is masked.
func (r *Reader) Masked(x, y int) bool {
	return r.bits[y*r.width+x]
}

func packBits(bits []bool) []uint8 {
	out := make([]uint8, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i>>3] |= 0x80 >> uint(i&7)
		}
	}
	return out
}

func unpackBits(packed []uint8, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n && i>>3 < len(packed); i++ {
		out[i] = packed[i>>3]&(0x80>>uint(i&7)) != 0
	}
	return out
}

// writeAlignedBytes packs bytes four to a word, zero-padding the tail.
func writeAlignedBytes(bw *bitio.Writer, data []byte) {
	for len(data) >= 4 {
		bw.WriteWord(uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]))
		data = data[4:]
	}
	if len(data) > 0 {
		var w uint32
		for i, b := range data {
			w |= uint32(b) << uint(24-8*i)
		}
		bw.WriteWord(w)
	}
}

func readAlignedBytes(br *bitio.Reader, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		w := br.ReadWord()
		for i := 0; i < 4 && len(out) < n; i++ {
			out = append(out, byte(w>>uint(24-8*i)))
		}
	}
	return out
}
