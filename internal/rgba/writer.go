// Package rgba implements the tile-filtered, chaos-contextual residual
// coder for RGBA rasters: the writer designs spatial and color filters
// per tile, generates the residual matrix, and codes it through
// per-context entropy encoders; the reader mirrors every step.
package rgba

import (
	"github.com/gamecodec/gcif/internal/bitio"
	"github.com/gamecodec/gcif/internal/chaos"
	"github.com/gamecodec/gcif/internal/entropy"
	"github.com/gamecodec/gcif/internal/filters"
	"github.com/gamecodec/gcif/internal/mono"
)

// Tile states, above the filter range. MaskTile marks tiles whose
// pixels are all masked; such tiles carry no filter choice at all.
// TodoTile marks tiles still awaiting filter design.
const (
	MaskTile = 0xFF
	TodoTile = 0xFE
)

// MaxPasses bounds the tile-design revisit loop.
const MaxPasses = 2

// MaskFunc reports whether a pixel is handled outside the residual
// coder (transparency mask or LZ coverage).
type MaskFunc func(x, y int) bool

// Knobs are the writer tuning parameters.
type Knobs struct {
	// RevisitCount is the number of tiles re-evaluated after pass 0
	// of the tile-design tournament.
	RevisitCount int
	// FilterSelectFuzz limits how many spatial filters, ranked by
	// residual score, enter the entropy tournament per tile. Must be
	// positive unless DisableEntropy is set.
	FilterSelectFuzz int
	// DisableEntropy skips the entropy tournament; tiles take their
	// best-scoring spatial filter and a fixed color filter.
	DisableEntropy bool
	// TileBits is the log2 of the tile edge.
	TileBits int
}

// DefaultKnobs mirror the encoder defaults.
func DefaultKnobs() Knobs {
	return Knobs{
		RevisitCount:     4096,
		FilterSelectFuzz: 20,
		TileBits:         2,
	}
}

// Error codes surfaced to the public API.
type InitError int

const (
	InitOK InitError = iota
	InitBadDims
	InitBadParams
)

// Writer holds the full encode-side state for one image.
type Writer struct {
	rgba   []uint8
	width  int
	height int
	knobs  Knobs
	masked MaskFunc

	tileBits  int
	tileSize  int
	tilesX    int
	tilesY    int
	sfTiles   []uint8 // local filter index per tile, or MaskTile
	cfTiles   []uint8
	sfIndices []int // catalog index per local filter slot
	sfCount   int

	residuals []uint8 // W*H*4, YUV residuals for unmasked pixels
	alpha     []uint8 // W*H alpha plane

	ch    *chaos.State
	sfEnc *mono.Writer
	cfEnc *mono.Writer
	aEnc  *mono.Writer
	yEnc  []entropy.Encoder // one per chaos bin
	uEnc  []entropy.Encoder
	vEnc  []entropy.Encoder
}

// NewWriter runs the whole design pipeline. masked must combine the
// transparency mask with the LZ visited predicate.
func NewWriter(rgba []uint8, width, height int, masked MaskFunc, knobs Knobs) (*Writer, InitError) {
	if width < 0 || height < 0 {
		return nil, InitBadDims
	}
	if !knobs.DisableEntropy && knobs.FilterSelectFuzz <= 0 {
		return nil, InitBadParams
	}

	w := &Writer{
		rgba:   rgba,
		width:  width,
		height: height,
		knobs:  knobs,
		masked: masked,
	}
	w.tileBits = knobs.TileBits
	w.tileSize = 1 << uint(w.tileBits)
	w.tilesX = (width + w.tileSize - 1) >> uint(w.tileBits)
	w.tilesY = (height + w.tileSize - 1) >> uint(w.tileBits)
	w.sfTiles = make([]uint8, w.tilesX*w.tilesY)
	w.cfTiles = make([]uint8, w.tilesX*w.tilesY)

	w.maskTiles()
	w.designFilters()
	w.designTiles()
	w.computeResiduals()
	w.compressAlpha()
	w.designChaos()
	w.compressSF()
	w.compressCF()
	w.initializeEncoders()

	return w, InitOK
}

// forEachTilePixel visits the unmasked pixels of tile (tx, ty) in scan
// order.
func (w *Writer) forEachTilePixel(tx, ty int, fn func(x, y int)) {
	x0 := tx << uint(w.tileBits)
	y0 := ty << uint(w.tileBits)
	for y := y0; y < y0+w.tileSize && y < w.height; y++ {
		for x := x0; x < x0+w.tileSize && x < w.width; x++ {
			if !w.masked(x, y) {
				fn(x, y)
			}
		}
	}
}

// maskTiles marks tiles whose pixels are all masked; the rest await
// filter design.
func (w *Writer) maskTiles() {
	for ty := 0; ty < w.tilesY; ty++ {
		for tx := 0; tx < w.tilesX; tx++ {
			state := uint8(MaskTile)
			w.forEachTilePixel(tx, ty, func(x, y int) {
				state = TodoTile
			})
			w.sfTiles[ty*w.tilesX+tx] = state
			w.cfTiles[ty*w.tilesX+tx] = state
		}
	}
}

// tileAward weights for the filter design tournament.
var tileAwards = [4]int{5, 3, 1, 1}

// designFilters scores the whole catalog per tile, aggregates awards,
// and selects the designed filter set for this image.
func (w *Writer) designFilters() {
	scores := filters.NewScorer(filters.SFCount)
	awards := filters.NewScorer(filters.SFCount)

	var n filters.Neighborhood
	for ty := 0; ty < w.tilesY; ty++ {
		for tx := 0; tx < w.tilesX; tx++ {
			if w.sfTiles[ty*w.tilesX+tx] == MaskTile {
				continue
			}
			scores.Reset()
			w.forEachTilePixel(tx, ty, func(x, y int) {
				filters.FetchNeighborhood(w.rgba, w.width, x, y, &n)
				idx := (y*w.width + x) * 4
				r, g, b := w.rgba[idx], w.rgba[idx+1], w.rgba[idx+2]
				for f := 0; f < filters.SFCount; f++ {
					pred := filters.Catalog[f].Pred(&n)
					s := filters.ResidualScore(r - pred[0])
					s += filters.ResidualScore(g - pred[1])
					s += filters.ResidualScore(b - pred[2])
					scores.Add(f, s)
				}
			})
			top := scores.GetTop(4, false)
			for rank, t := range top {
				awards.Add(t.Index, tileAwards[rank])
			}
		}
	}

	// The fixed filters are always available.
	w.sfIndices = w.sfIndices[:0]
	for i := 0; i < filters.SFFixed; i++ {
		w.sfIndices = append(w.sfIndices, i)
	}

	// Add designed filters in award order until accumulated coverage
	// reaches the tile count. Coverage divides by the top award
	// weight so tuned weights keep the arithmetic consistent.
	coverageThresh := w.tilesX * w.tilesY
	coverage := 0
	for _, t := range awards.GetTop(filters.MaxFilters-filters.SFFixed, true) {
		if t.Score == 0 {
			break
		}
		coverage += t.Score / tileAwards[0]
		if t.Index >= filters.SFFixed {
			w.sfIndices = append(w.sfIndices, t.Index)
		}
		if coverage >= coverageThresh || len(w.sfIndices) >= filters.MaxFilters {
			break
		}
	}
	w.sfCount = len(w.sfIndices)
}

// tileCodes materializes the YUV code streams of tile (tx, ty) under
// the local filter pair (sfLocal, cf), appending into the three
// channel buffers.
func (w *Writer) tileCodes(tx, ty, sfLocal, cf int, buf *[3][]uint8) {
	buf[0] = buf[0][:0]
	buf[1] = buf[1][:0]
	buf[2] = buf[2][:0]
	pred := filters.Catalog[w.sfIndices[sfLocal]].Pred
	xform := filters.RGB2YUV[cf]
	var n filters.Neighborhood
	w.forEachTilePixel(tx, ty, func(x, y int) {
		filters.FetchNeighborhood(w.rgba, w.width, x, y, &n)
		idx := (y*w.width + x) * 4
		p := pred(&n)
		yuv := xform([3]uint8{w.rgba[idx] - p[0], w.rgba[idx+1] - p[1], w.rgba[idx+2] - p[2]})
		buf[0] = append(buf[0], yuv[0])
		buf[1] = append(buf[1], yuv[1])
		buf[2] = append(buf[2], yuv[2])
	})
}

// rankTileFilters orders the local filter slots for one tile by raw
// residual score, so the entropy tournament only sees the most
// promising candidates (bounded by the fuzz knob).
func (w *Writer) rankTileFilters(tx, ty int) []filters.Score {
	scores := filters.NewScorer(w.sfCount)
	var n filters.Neighborhood
	w.forEachTilePixel(tx, ty, func(x, y int) {
		filters.FetchNeighborhood(w.rgba, w.width, x, y, &n)
		idx := (y*w.width + x) * 4
		r, g, b := w.rgba[idx], w.rgba[idx+1], w.rgba[idx+2]
		for f := 0; f < w.sfCount; f++ {
			pred := filters.Catalog[w.sfIndices[f]].Pred(&n)
			s := filters.ResidualScore(r - pred[0])
			s += filters.ResidualScore(g - pred[1])
			s += filters.ResidualScore(b - pred[2])
			scores.Add(f, s)
		}
	})
	k := w.knobs.FilterSelectFuzz
	if k <= 0 || k > w.sfCount {
		k = w.sfCount
	}
	return scores.GetTop(k, false)
}

// designTiles selects the (sf, cf) pair per tile by entropy after
// substitution, with a bounded revisit loop: later passes subtract a
// tile's previous contribution from the running histograms before
// re-selecting, so filter choices converge to the distribution they
// induce.
func (w *Writer) designTiles() {
	if w.knobs.DisableEntropy {
		w.designTilesFast()
		return
	}

	ee := [3]*entropy.Estimator{
		entropy.NewEstimator(), entropy.NewEstimator(), entropy.NewEstimator(),
	}
	var cand, chosen [3][]uint8
	for ch := 0; ch < 3; ch++ {
		cand[ch] = make([]uint8, 0, w.tileSize*w.tileSize)
		chosen[ch] = make([]uint8, 0, w.tileSize*w.tileSize)
	}

	revisit := w.knobs.RevisitCount
	for pass := 0; pass < MaxPasses; pass++ {
		for ty := 0; ty < w.tilesY; ty++ {
			for tx := 0; tx < w.tilesX; tx++ {
				ti := ty*w.tilesX + tx
				if w.sfTiles[ti] == MaskTile {
					continue
				}
				if pass > 0 {
					if revisit <= 0 {
						return
					}
					revisit--
					// Remove this tile's previous contribution.
					w.tileCodes(tx, ty, int(w.sfTiles[ti]), int(w.cfTiles[ti]), &chosen)
					for ch := 0; ch < 3; ch++ {
						ee[ch].Subtract(chosen[ch])
					}
				}

				bestEntropy := uint32(0x7fffffff)
				bestSF, bestCF := 0, 0
				for _, sc := range w.rankTileFilters(tx, ty) {
					sfi := sc.Index
					for cfi := 0; cfi < filters.CFCount; cfi++ {
						w.tileCodes(tx, ty, sfi, cfi, &cand)
						e := ee[0].Entropy(cand[0]) + ee[1].Entropy(cand[1]) + ee[2].Entropy(cand[2])
						if e < bestEntropy {
							bestEntropy = e
							bestSF, bestCF = sfi, cfi
						}
					}
				}

				w.sfTiles[ti] = uint8(bestSF)
				w.cfTiles[ti] = uint8(bestCF)
				w.tileCodes(tx, ty, bestSF, bestCF, &chosen)
				for ch := 0; ch < 3; ch++ {
					ee[ch].Add(chosen[ch])
				}
			}
		}
	}
}

// designTilesFast assigns each tile its best-scoring spatial filter
// and the subtract-green color filter, skipping entropy estimation.
func (w *Writer) designTilesFast() {
	for ty := 0; ty < w.tilesY; ty++ {
		for tx := 0; tx < w.tilesX; tx++ {
			ti := ty*w.tilesX + tx
			if w.sfTiles[ti] == MaskTile {
				continue
			}
			best := w.rankTileFilters(tx, ty)[0].Index
			w.sfTiles[ti] = uint8(best)
			w.cfTiles[ti] = 2
		}
	}
}

// computeResiduals executes the final tile choices into the residual
// matrix.
func (w *Writer) computeResiduals() {
	w.residuals = make([]uint8, w.width*w.height*4)
	var n filters.Neighborhood
	for ty := 0; ty < w.tilesY; ty++ {
		for tx := 0; tx < w.tilesX; tx++ {
			ti := ty*w.tilesX + tx
			if w.sfTiles[ti] == MaskTile {
				continue
			}
			pred := filters.Catalog[w.sfIndices[w.sfTiles[ti]]].Pred
			xform := filters.RGB2YUV[w.cfTiles[ti]]
			w.forEachTilePixel(tx, ty, func(x, y int) {
				filters.FetchNeighborhood(w.rgba, w.width, x, y, &n)
				idx := (y*w.width + x) * 4
				p := pred(&n)
				yuv := xform([3]uint8{w.rgba[idx] - p[0], w.rgba[idx+1] - p[1], w.rgba[idx+2] - p[2]})
				w.residuals[idx] = yuv[0]
				w.residuals[idx+1] = yuv[1]
				w.residuals[idx+2] = yuv[2]
			})
		}
	}
}

// compressAlpha hands the alpha plane to a mono coder.
func (w *Writer) compressAlpha() {
	w.alpha = make([]uint8, w.width*w.height)
	for i := 0; i < w.width*w.height; i++ {
		w.alpha[i] = w.rgba[i*4+3]
	}
	w.aEnc, _ = mono.NewWriter(mono.Params{
		Data:       w.alpha,
		XSize:      w.width,
		YSize:      w.height,
		NumSyms:    256,
		MaxFilters: 32,
		MinBits:    2,
		MaxBits:    5,
		Awards:     tileAwards,
		AwardCount: 4,
		Mask:       func(x, y int) bool { return w.masked(x, y) },
	})
}

// designChaos picks the chaos level count minimizing estimated coded
// size plus the per-level table overhead.
func (w *Writer) designChaos() {
	bestEntropy := uint32(0x7fffffff)
	bestLevels := 1

	for levels := 1; levels < chaos.MaxLevels; levels++ {
		st := chaos.New(levels, w.width)
		ee := make([]*entropy.Estimator, levels)
		for i := range ee {
			ee[i] = entropy.NewEstimator()
		}

		st.Start()
		for y := 0; y < w.height; y++ {
			st.StartRow()
			for x := 0; x < w.width; x++ {
				if w.masked(x, y) {
					st.Zero(x)
					continue
				}
				idx := (y*w.width + x) * 4
				ee[st.BinY(x)].AddSingle(w.residuals[idx])
				ee[st.BinU(x)].AddSingle(w.residuals[idx+1])
				ee[st.BinV(x)].AddSingle(w.residuals[idx+2])
				st.Store(x, w.residuals[idx], w.residuals[idx+1], w.residuals[idx+2], 0)
			}
		}

		var total uint32
		for _, e := range ee {
			total += e.EntropyOverall()
			total += 3 * 5 * 256 // per-level table overhead
		}
		if total < bestEntropy {
			bestEntropy = total
			bestLevels = levels
		}
	}

	w.ch = chaos.New(bestLevels, w.width)
}

// tileMasked is the mask delegate for the tile grids.
func (w *Writer) tileMasked(tx, ty int) bool {
	return w.sfTiles[ty*w.tilesX+tx] == MaskTile
}

func (w *Writer) compressSF() {
	w.sfEnc, _ = mono.NewWriter(mono.Params{
		Data:       w.sfTiles,
		XSize:      w.tilesX,
		YSize:      w.tilesY,
		NumSyms:    w.sfCount,
		MaxFilters: 32,
		MinBits:    2,
		MaxBits:    5,
		Awards:     tileAwards,
		AwardCount: 4,
		Mask:       w.tileMasked,
	})
}

func (w *Writer) compressCF() {
	w.cfEnc, _ = mono.NewWriter(mono.Params{
		Data:       w.cfTiles,
		XSize:      w.tilesX,
		YSize:      w.tilesY,
		NumSyms:    filters.CFCount,
		MaxFilters: 32,
		MinBits:    2,
		MaxBits:    5,
		Awards:     tileAwards,
		AwardCount: 4,
		Mask:       w.tileMasked,
	})
}

// initializeEncoders trains the per-bin Y/U/V entropy encoders by
// replaying the residual matrix through the chaos state.
func (w *Writer) initializeEncoders() {
	bins := w.ch.Levels()
	w.yEnc = make([]entropy.Encoder, bins)
	w.uEnc = make([]entropy.Encoder, bins)
	w.vEnc = make([]entropy.Encoder, bins)
	for i := 0; i < bins; i++ {
		w.yEnc[i].Init(256, entropy.ZRLESyms)
		w.uEnc[i].Init(256, entropy.ZRLESyms)
		w.vEnc[i].Init(256, entropy.ZRLESyms)
	}

	w.ch.Start()
	for y := 0; y < w.height; y++ {
		w.ch.StartRow()
		for x := 0; x < w.width; x++ {
			if w.masked(x, y) {
				w.ch.Zero(x)
				continue
			}
			idx := (y*w.width + x) * 4
			w.yEnc[w.ch.BinY(x)].Add(w.residuals[idx])
			w.uEnc[w.ch.BinU(x)].Add(w.residuals[idx+1])
			w.vEnc[w.ch.BinV(x)].Add(w.residuals[idx+2])
			w.ch.Store(x, w.residuals[idx], w.residuals[idx+1], w.residuals[idx+2], 0)
		}
	}

	for i := 0; i < bins; i++ {
		w.yEnc[i].Finalize()
		w.uEnc[i].Finalize()
		w.vEnc[i].Finalize()
	}
}

// WriteTables serializes the filter choices, sub-coder tables, and
// per-bin entropy tables.
func (w *Writer) WriteTables(bw *bitio.Writer) {
	bw.WriteBits(uint32(w.tileBits), 3)
	bw.WriteBits(uint32(w.sfCount-filters.SFFixed), 5)
	for i := filters.SFFixed; i < w.sfCount; i++ {
		bw.WriteBits(uint32(w.sfIndices[i]), 7)
	}

	w.sfEnc.WriteTables(bw)
	w.cfEnc.WriteTables(bw)
	w.aEnc.WriteTables(bw)

	bw.WriteBits(uint32(w.ch.Levels()-1), 4)
	for i := 0; i < w.ch.Levels(); i++ {
		w.yEnc[i].WriteTables(bw)
		w.uEnc[i].WriteTables(bw)
		w.vEnc[i].WriteTables(bw)
	}
}

// WritePixels walks the raster in row-major order, emitting tile-row
// headers, filter choices, and the residual and alpha streams.
func (w *Writer) WritePixels(bw *bitio.Writer) {
	w.ch.Start()
	tileMask := w.tileSize - 1

	for y := 0; y < w.height; y++ {
		w.ch.StartRow()

		if y&tileMask == 0 {
			ty := y >> uint(w.tileBits)
			w.sfEnc.WriteRowHeader(ty, bw)
			w.cfEnc.WriteRowHeader(ty, bw)
			for tx := 0; tx < w.tilesX; tx++ {
				if w.tileMasked(tx, ty) {
					w.sfEnc.Zero(tx)
					w.cfEnc.Zero(tx)
				} else {
					w.sfEnc.Write(tx, ty, bw)
					w.cfEnc.Write(tx, ty, bw)
				}
			}
		}
		w.aEnc.WriteRowHeader(y, bw)

		for x := 0; x < w.width; x++ {
			if w.masked(x, y) {
				w.ch.Zero(x)
				w.aEnc.Zero(x)
				continue
			}
			idx := (y*w.width + x) * 4
			ry, ru, rv := w.residuals[idx], w.residuals[idx+1], w.residuals[idx+2]
			w.yEnc[w.ch.BinY(x)].Write(ry, bw)
			w.uEnc[w.ch.BinU(x)].Write(ru, bw)
			w.vEnc[w.ch.BinV(x)].Write(rv, bw)
			w.ch.Store(x, ry, ru, rv, 0)
			w.aEnc.Write(x, y, bw)
		}
	}
}
