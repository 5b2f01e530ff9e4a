package gcif

import (
	"fmt"
	"image"
	"io"

	"github.com/gamecodec/gcif/internal/bitio"
	"github.com/gamecodec/gcif/internal/container"
	"github.com/gamecodec/gcif/internal/lz"
	"github.com/gamecodec/gcif/internal/mask"
	"github.com/gamecodec/gcif/internal/palette"
	"github.com/gamecodec/gcif/internal/rgba"
)

// MaxDimension is the largest width or height the container can frame:
// dimensions share one 32-bit header word, 16 bits each.
const MaxDimension = 65535

// Options controls encoding. The zero value selects the defaults.
type Options struct {
	// RevisitCount bounds how many tiles the filter-design tournament
	// re-evaluates after its first pass. Default 4096.
	RevisitCount int

	// FilterSelectFuzz limits how many spatial filters, ranked by raw
	// residual score, enter the per-tile entropy tournament. Must be
	// positive unless DisableEntropy is set. Default 20.
	FilterSelectFuzz int

	// DisableEntropy skips entropy estimation during tile design.
	// Tiles take their best-scoring spatial filter and a fixed color
	// filter. Faster, larger output.
	DisableEntropy bool

	// DisableLZ turns off the 2D block match pre-pass.
	DisableLZ bool

	// DisablePalette forces the filtered RGBA path even when every
	// color fits a 256-entry palette.
	DisablePalette bool

	// PaletteHuffThresh is the palette size at which the color table
	// switches from literal words to filtered entropy coding.
	// Default 16.
	PaletteHuffThresh int

	// TileBits is the log2 of the filter tile edge, 1..5. Default 2
	// (4x4 tiles).
	TileBits int
}

func (o *Options) withDefaults() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	if opts.RevisitCount == 0 {
		opts.RevisitCount = 4096
	}
	if opts.FilterSelectFuzz == 0 {
		opts.FilterSelectFuzz = 20
	}
	if opts.PaletteHuffThresh == 0 {
		opts.PaletteHuffThresh = 16
	}
	if opts.TileBits == 0 {
		opts.TileBits = 2
	}
	return opts
}

// Encode writes img to w as a GCIF container. The encoding is
// deterministic: the same image and options produce byte-identical
// output.
func Encode(w io.Writer, img image.Image, o *Options) error {
	opts := o.withDefaults()

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return ErrBadDims
	}
	if opts.TileBits < 1 || opts.TileBits > 5 {
		return ErrBadParams
	}
	if !opts.DisableEntropy && opts.FilterSelectFuzz <= 0 {
		return ErrBadParams
	}

	raster := toRGBA(img)

	data, err := encodeRaster(raster, width, height, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFail, err)
	}
	return nil
}

// encodeRaster runs the full pipeline over a raw RGBA raster.
func encodeRaster(raster []uint8, width, height int, opts Options) ([]byte, error) {
	bw := bitio.NewWriter(width * height)

	// Transparency mask.
	mk := mask.NewWriter(raster, width, height)
	if err := mk.Write(bw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalState, err)
	}

	// Palette attempt decides whether the LZ pre-pass pays: the index
	// matrix already covers every unmasked pixel.
	var pal *palette.Writer
	palOK := false
	if !opts.DisablePalette {
		pal, palOK = palette.NewWriter(raster, width, height, mk.Masked,
			mk.Enabled(), mk.Color(), opts.PaletteHuffThresh)
	}

	var matcher *lz.Matcher
	if !palOK && !opts.DisableLZ {
		matcher = lz.New(raster, width, height)
		lz.WriteStream(bw, matcher.Matches())
	} else {
		lz.WriteStream(bw, nil)
	}

	if palOK {
		bw.WriteBit(1)
		pal.Write(bw)
	} else {
		bw.WriteBit(0)
		masked := func(x, y int) bool {
			if mk.Masked(x, y) {
				return true
			}
			return matcher != nil && matcher.Visited(x, y)
		}
		rw, code := rgba.NewWriter(raster, width, height, masked, rgba.Knobs{
			RevisitCount:     opts.RevisitCount,
			FilterSelectFuzz: opts.FilterSelectFuzz,
			DisableEntropy:   opts.DisableEntropy,
			TileBits:         opts.TileBits,
		})
		switch code {
		case rgba.InitBadDims:
			return nil, ErrBadDims
		case rgba.InitBadParams:
			return nil, ErrBadParams
		}
		rw.WriteTables(bw)
		rw.WritePixels(bw)
	}

	body := bw.Finish()
	return container.Seal(body, width, height, bw.Finalize()), nil
}

// toRGBA flattens any image into a row-major 4-byte-per-pixel raster,
// without premultiplying alpha.
func toRGBA(img image.Image) []uint8 {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	if n, ok := img.(*image.NRGBA); ok {
		out := make([]uint8, width*height*4)
		for y := 0; y < height; y++ {
			off := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out[y*width*4:(y+1)*width*4], n.Pix[off:])
		}
		return out
	}

	out := make([]uint8, width*height*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			if a == 0 {
				out[i], out[i+1], out[i+2], out[i+3] = 0, 0, 0, 0
			} else {
				// Un-premultiply back to straight alpha.
				out[i] = uint8((r * 0xffff / a) >> 8)
				out[i+1] = uint8((g * 0xffff / a) >> 8)
				out[i+2] = uint8((bb * 0xffff / a) >> 8)
				out[i+3] = uint8(a >> 8)
			}
			i += 4
		}
	}
	return out
}
