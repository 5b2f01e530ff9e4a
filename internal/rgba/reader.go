package rgba

import (
	"errors"

	"github.com/gamecodec/gcif/internal/bitio"
	"github.com/gamecodec/gcif/internal/chaos"
	"github.com/gamecodec/gcif/internal/entropy"
	"github.com/gamecodec/gcif/internal/filters"
	"github.com/gamecodec/gcif/internal/mono"
)

// ErrBadTables reports structurally invalid table data. The data hash
// check remains the authority on corruption; this error only surfaces
// when decoding cannot even begin.
var ErrBadTables = errors.New("rgba: invalid table data")

// Reader decodes the RGBA sub-stream produced by Writer.
type Reader struct {
	width  int
	height int

	// masked combines the transparency mask and LZ coverage, exactly
	// as on the encode side.
	masked MaskFunc
	// maskColor fills transparency-masked pixels.
	maskColor [4]uint8
	// lzCov maps LZ-covered pixels to their source raster index.
	lzCov []int32
	// maskOnly is the transparency mask alone.
	maskOnly MaskFunc

	tileBits  int
	tileSize  int
	tilesX    int
	tilesY    int
	sfIndices []int
	sfCount   int

	ch    *chaos.State
	sfDec *mono.Reader
	cfDec *mono.Reader
	aDec  *mono.Reader
	yDec  []entropy.Decoder
	uDec  []entropy.Decoder
	vDec  []entropy.Decoder
}

// NewReader reads the RGBA tables. maskOnly is the transparency mask
// predicate; lzCov the LZ coverage map (nil when LZ is off).
func NewReader(br *bitio.Reader, width, height int, maskOnly MaskFunc, maskColor uint32, lzCov []int32) (*Reader, error) {
	r := &Reader{
		width:    width,
		height:   height,
		maskOnly: maskOnly,
		lzCov:    lzCov,
	}
	r.maskColor = [4]uint8{
		uint8(maskColor >> 24), uint8(maskColor >> 16),
		uint8(maskColor >> 8), uint8(maskColor),
	}
	r.masked = func(x, y int) bool {
		if maskOnly(x, y) {
			return true
		}
		return lzCov != nil && lzCov[y*width+x] >= 0
	}

	r.tileBits = int(br.ReadBits(3))
	if r.tileBits == 0 || r.tileBits > 5 {
		return nil, ErrBadTables
	}
	r.tileSize = 1 << uint(r.tileBits)
	r.tilesX = (width + r.tileSize - 1) >> uint(r.tileBits)
	r.tilesY = (height + r.tileSize - 1) >> uint(r.tileBits)

	designed := int(br.ReadBits(5))
	r.sfCount = filters.SFFixed + designed
	for i := 0; i < filters.SFFixed; i++ {
		r.sfIndices = append(r.sfIndices, i)
	}
	for i := 0; i < designed; i++ {
		idx := int(br.ReadBits(7))
		if idx >= filters.SFCount {
			return nil, ErrBadTables
		}
		r.sfIndices = append(r.sfIndices, idx)
	}

	r.sfDec = mono.NewReader(br, r.tilesX, r.tilesY, r.sfCount)
	r.cfDec = mono.NewReader(br, r.tilesX, r.tilesY, filters.CFCount)
	r.aDec = mono.NewReader(br, width, height, 256)

	levels := int(br.ReadBits(4)) + 1
	r.ch = chaos.New(levels, width)
	r.yDec = make([]entropy.Decoder, levels)
	r.uDec = make([]entropy.Decoder, levels)
	r.vDec = make([]entropy.Decoder, levels)
	for i := 0; i < levels; i++ {
		r.yDec[i].ReadTables(256, br)
		r.uDec[i].ReadTables(256, br)
		r.vDec[i].ReadTables(256, br)
	}
	return r, nil
}

// ReadPixels decodes the pixel stream into a W*H*4 RGBA buffer,
// mirroring the writer's scan: same row headers, same chaos updates,
// same masked-pixel handling. LZ-covered pixels are filled inline from
// their already-final source pixels so later predictions see the raw
// values.
func (r *Reader) ReadPixels(br *bitio.Reader) []uint8 {
	out := make([]uint8, r.width*r.height*4)
	sfRow := make([]uint8, r.tilesX)
	cfRow := make([]uint8, r.tilesX)
	tileMask := r.tileSize - 1

	r.ch.Start()
	var n filters.Neighborhood
	for y := 0; y < r.height; y++ {
		r.ch.StartRow()

		if y&tileMask == 0 {
			ty := y >> uint(r.tileBits)
			r.sfDec.ReadRowHeader(ty, br)
			r.cfDec.ReadRowHeader(ty, br)
			for tx := 0; tx < r.tilesX; tx++ {
				if r.tileRowMasked(tx, ty) {
					r.sfDec.Zero(tx)
					r.cfDec.Zero(tx)
					sfRow[tx] = MaskTile
					cfRow[tx] = MaskTile
				} else {
					sfRow[tx] = r.sfDec.Read(tx, ty, br)
					cfRow[tx] = r.cfDec.Read(tx, ty, br)
				}
			}
		}
		r.aDec.ReadRowHeader(y, br)

		for x := 0; x < r.width; x++ {
			idx := (y*r.width + x) * 4
			if r.maskOnly(x, y) {
				copy(out[idx:idx+4], r.maskColor[:])
				r.ch.Zero(x)
				r.aDec.Zero(x)
				continue
			}
			if r.lzCov != nil {
				if src := r.lzCov[y*r.width+x]; src >= 0 {
					copy(out[idx:idx+4], out[src*4:src*4+4])
					r.ch.Zero(x)
					r.aDec.Zero(x)
					continue
				}
			}

			ry := r.yDec[r.ch.BinY(x)].Read(br)
			ru := r.uDec[r.ch.BinU(x)].Read(br)
			rv := r.vDec[r.ch.BinV(x)].Read(br)
			r.ch.Store(x, ry, ru, rv, 0)
			a := r.aDec.Read(x, y, br)

			tx := x >> uint(r.tileBits)
			sf := sfRow[tx]
			cf := cfRow[tx]
			rgb := filters.YUV2RGB[cf]([3]uint8{ry, ru, rv})
			filters.FetchNeighborhood(out, r.width, x, y, &n)
			pred := filters.Catalog[r.sfIndices[sf]].Pred(&n)
			out[idx] = rgb[0] + pred[0]
			out[idx+1] = rgb[1] + pred[1]
			out[idx+2] = rgb[2] + pred[2]
			out[idx+3] = a
		}
	}
	return out
}

// tileRowMasked recomputes the writer's mask-tile decision for tile
// (tx, ty) from the composite mask. Both sides derive it from the same
// predicate, so the grids agree without extra bits.
func (r *Reader) tileRowMasked(tx, ty int) bool {
	x0 := tx << uint(r.tileBits)
	y0 := ty << uint(r.tileBits)
	for y := y0; y < y0+r.tileSize && y < r.height; y++ {
		for x := x0; x < x0+r.tileSize && x < r.width; x++ {
			if !r.masked(x, y) {
				return false
			}
		}
	}
	return true
}
