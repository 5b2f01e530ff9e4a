// Package palette implements the indexed-color coding path: when every
// unmasked pixel's color fits a 256-entry table, the image is stored as
// the table plus a mono-coded index matrix instead of filtered
// residuals.
package palette

import (
	"github.com/gamecodec/gcif/internal/bitio"
	"github.com/gamecodec/gcif/internal/entropy"
	"github.com/gamecodec/gcif/internal/filters"
	"github.com/gamecodec/gcif/internal/mono"
)

// Max is the largest palette size.
const Max = 256

// MaskFunc reports whether a pixel is handled by the mask coder.
type MaskFunc func(x, y int) bool

// Writer holds the palette-mode encode state.
type Writer struct {
	rgba   []uint8
	width  int
	height int
	masked MaskFunc

	colors      []uint32 // RGBA words, most frequent first
	index       map[uint32]uint8
	image       []uint8 // palette index per pixel
	maskedIndex uint8
	huffThresh  int
	monoW       *mono.Writer
}

// NewWriter attempts palette generation. ok is false when the color
// count exceeds Max or no unmasked pixel exists; the caller then takes
// the RGBA path.
//
// maskEnabled/maskColor describe the transparency mask: when the mask
// color is present in the palette its index becomes the masked index,
// else the most common color stands in. Masked pixels always read back
// through the mask coder, so the stand-in never leaks into output.
func NewWriter(rgba []uint8, width, height int, masked MaskFunc, maskEnabled bool, maskColor uint32, huffThresh int) (*Writer, bool) {
	w := &Writer{
		rgba:       rgba,
		width:      width,
		height:     height,
		masked:     masked,
		index:      make(map[uint32]uint8),
		huffThresh: huffThresh,
	}

	// Build the color table and frequency counts over unmasked pixels.
	var hist [Max]uint32
	order := make([]uint32, 0, Max)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if masked(x, y) {
				continue
			}
			c := pixelWord(rgba, y*width+x)
			idx, ok := w.index[c]
			if !ok {
				if len(order) >= Max {
					return nil, false
				}
				idx = uint8(len(order))
				w.index[c] = idx
				order = append(order, c)
			}
			hist[idx]++
		}
	}
	if len(order) == 0 {
		return nil, false
	}

	// Reorder most-frequent-first. A stable insertion keeps equal
	// counts in first-seen order, so index 0 is always the most
	// common color.
	type entry struct {
		color uint32
		count uint32
	}
	entries := make([]entry, len(order))
	for i, c := range order {
		entries[i] = entry{c, hist[i]}
	}
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		j := i - 1
		for j >= 0 && entries[j].count < e.count {
			entries[j+1] = entries[j]
			j--
		}
		entries[j+1] = e
	}
	w.colors = w.colors[:0]
	for i, e := range entries {
		w.colors = append(w.colors, e.color)
		w.index[e.color] = uint8(i)
	}

	// Masked pixels carry the mask color's index when it is in the
	// palette, else the most common color.
	w.maskedIndex = 0
	if maskEnabled {
		if idx, ok := w.index[maskColor]; ok {
			w.maskedIndex = idx
		}
	}

	// Generate the index image.
	w.image = make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if masked(x, y) {
				w.image[i] = w.maskedIndex
			} else {
				w.image[i] = w.index[pixelWord(rgba, i)]
			}
		}
	}

	var ok bool
	w.monoW, ok = mono.NewWriter(mono.Params{
		Data:       w.image,
		XSize:      width,
		YSize:      height,
		NumSyms:    len(w.colors),
		MaxFilters: 32,
		MinBits:    2,
		MaxBits:    5,
		Awards:     [4]int{5, 3, 1, 1},
		AwardCount: 4,
		Mask:       func(x, y int) bool { return masked(x, y) },
	})
	if !ok {
		return nil, false
	}
	return w, true
}

// Size returns the palette size.
func (w *Writer) Size() int {
	return len(w.colors)
}

// MaskedIndex returns the palette index standing in for masked pixels.
func (w *Writer) MaskedIndex() uint8 {
	return w.maskedIndex
}

// Write serializes the palette table and the index matrix.
func (w *Writer) Write(bw *bitio.Writer) {
	bw.WriteBits(uint32(len(w.colors)-1), 8)
	bw.WriteBits(uint32(w.maskedIndex), 8)

	if len(w.colors) < w.huffThresh {
		// Small palettes go out as literal words.
		bw.WriteBit(0)
		for _, c := range w.colors {
			bw.WriteWord(c)
		}
	} else {
		bw.WriteBit(1)
		w.writeFiltered(bw)
	}

	w.monoW.WriteTables(bw)
	for y := 0; y < w.height; y++ {
		w.monoW.WriteRowHeader(y, bw)
		for x := 0; x < w.width; x++ {
			if w.masked(x, y) {
				w.monoW.Zero(x)
			} else {
				w.monoW.Write(x, y, bw)
			}
		}
	}
}

// writeFiltered codes the palette as YUVA through the best color
// filter, chosen by estimated entropy.
func (w *Writer) writeFiltered(bw *bitio.Writer) {
	bestCF := 0
	bestScore := uint32(0x7fffffff)
	ee := entropy.NewEstimator()
	buf := make([]uint8, 0, len(w.colors)*4)
	for cf := 0; cf < filters.CFCount; cf++ {
		buf = buf[:0]
		for _, c := range w.colors {
			yuv, a := paletteYUVA(c, cf)
			buf = append(buf, yuv[0], yuv[1], yuv[2], a)
		}
		if e := ee.Entropy(buf); e < bestScore {
			bestScore = e
			bestCF = cf
		}
	}
	bw.Write17(uint32(bestCF))

	var enc entropy.Encoder
	enc.Init(Max, entropy.ZRLESyms)
	for _, c := range w.colors {
		yuv, a := paletteYUVA(c, bestCF)
		enc.Add(yuv[0])
		enc.Add(yuv[1])
		enc.Add(yuv[2])
		enc.Add(a)
	}
	enc.Finalize()
	enc.WriteTables(bw)
	for _, c := range w.colors {
		yuv, a := paletteYUVA(c, bestCF)
		enc.Write(yuv[0], bw)
		enc.Write(yuv[1], bw)
		enc.Write(yuv[2], bw)
		enc.Write(a, bw)
	}
}

// paletteYUVA transforms one palette word for serialization. Alpha is
// stored inverted so opaque-heavy palettes cluster near zero.
func paletteYUVA(c uint32, cf int) ([3]uint8, uint8) {
	rgb := [3]uint8{uint8(c >> 24), uint8(c >> 16), uint8(c >> 8)}
	return filters.RGB2YUV[cf](rgb), 255 - uint8(c)
}

// Reader decodes the palette-mode sub-stream.
type Reader struct {
	width, height int
	colors        []uint32
	maskedIndex   uint8
	monoR         *mono.Reader
}

// NewReader reads the palette table.
func NewReader(br *bitio.Reader, width, height, huffThresh int) *Reader {
	r := &Reader{width: width, height: height}
	size := int(br.ReadBits(8)) + 1
	r.maskedIndex = uint8(br.ReadBits(8))

	r.colors = make([]uint32, size)
	if br.ReadBit() == 0 {
		for i := range r.colors {
			r.colors[i] = br.ReadWord()
		}
	} else {
		cf := int(br.Read17())
		var dec entropy.Decoder
		dec.ReadTables(Max, br)
		for i := range r.colors {
			yy := dec.Read(br)
			uu := dec.Read(br)
			vv := dec.Read(br)
			a := 255 - dec.Read(br)
			rgb := filters.YUV2RGB[cf]([3]uint8{yy, uu, vv})
			r.colors[i] = uint32(rgb[0])<<24 | uint32(rgb[1])<<16 | uint32(rgb[2])<<8 | uint32(a)
		}
	}

	r.monoR = mono.NewReader(br, width, height, size)
	return r
}

// ReadPixels decodes the index matrix and expands it through the
// palette. Masked pixels come from the mask color, never the palette.
func (r *Reader) ReadPixels(br *bitio.Reader, masked MaskFunc, maskColor uint32) []uint8 {
	out := make([]uint8, r.width*r.height*4)
	for y := 0; y < r.height; y++ {
		r.monoR.ReadRowHeader(y, br)
		for x := 0; x < r.width; x++ {
			i := y*r.width + x
			if masked(x, y) {
				putPixelWord(out, i, maskColor)
				r.monoR.Zero(x)
				continue
			}
			idx := r.monoR.Read(x, y, br)
			putPixelWord(out, i, r.colors[idx])
		}
	}
	return out
}

func pixelWord(rgba []uint8, i int) uint32 {
	return uint32(rgba[i*4])<<24 | uint32(rgba[i*4+1])<<16 |
		uint32(rgba[i*4+2])<<8 | uint32(rgba[i*4+3])
}

func putPixelWord(rgba []uint8, i int, c uint32) {
	rgba[i*4] = uint8(c >> 24)
	rgba[i*4+1] = uint8(c >> 16)
	rgba[i*4+2] = uint8(c >> 8)
	rgba[i*4+3] = uint8(c)
}
