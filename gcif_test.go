package gcif

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeDecode runs one round trip and requires bit-exact recovery.
func encodeDecode(t *testing.T, img *image.NRGBA, opts *Options) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, opts))

	decoded, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	got, ok := decoded.(*image.NRGBA)
	require.True(t, ok, "decoder must return *image.NRGBA")
	require.Equal(t, img.Bounds().Dx(), got.Bounds().Dx())
	require.Equal(t, img.Bounds().Dy(), got.Bounds().Dy())

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for y := 0; y < h; y++ {
		require.Equal(t,
			img.Pix[y*img.Stride:y*img.Stride+w*4],
			got.Pix[y*got.Stride:y*got.Stride+w*4],
			"row %d differs", y)
	}
	return buf.Bytes()
}

func newImage(w, h int, fill func(x, y int) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}
	return img
}

func TestSinglePixelRed(t *testing.T) {
	img := newImage(1, 1, func(x, y int) color.NRGBA {
		return color.NRGBA{R: 0xFF, A: 0xFF}
	})
	data := encodeDecode(t, img, nil)
	// Palette mode with one color: header plus a handful of words.
	assert.Less(t, len(data), 120)
}

func TestUniformTransparent(t *testing.T) {
	img := newImage(16, 16, func(x, y int) color.NRGBA {
		return color.NRGBA{}
	})
	data := encodeDecode(t, img, nil)
	// Everything rides on the mask; the pixel body is tables only.
	assert.Less(t, len(data), 1024)
}

func TestHorizontalGradient(t *testing.T) {
	// Forced down the filtered RGBA path: the left predictor leaves a
	// constant red residual of 32 after each tile's first column.
	img := newImage(8, 8, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 32), A: 0xFF}
	})
	encodeDecode(t, img, &Options{DisablePalette: true})
}

func TestCheckerboardPalette(t *testing.T) {
	a := color.NRGBA{R: 0x20, G: 0x80, B: 0xC0, A: 0xFF}
	b := color.NRGBA{R: 0xF0, G: 0x10, B: 0x00, A: 0xFF}
	img := newImage(64, 64, func(x, y int) color.NRGBA {
		if (x+y)%2 == 0 {
			return a
		}
		return b
	})
	data := encodeDecode(t, img, nil)
	// Two-color palette, one bit per index.
	assert.Less(t, len(data), 700)
}

func TestDuplicateBlockLZ(t *testing.T) {
	rng := rand.New(rand.NewSource(55))
	img := newImage(32, 32, func(x, y int) color.NRGBA {
		return color.NRGBA{
			R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)), A: 0xFF,
		}
	})
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x+16, y+16, img.NRGBAAt(x, y))
		}
	}
	plain := encodeDecode(t, img, nil)
	noLZ := encodeDecode(t, img, &Options{DisableLZ: true})
	// The copied quadrant must ride the match, not the residual coder.
	assert.Less(t, len(plain), len(noLZ))
}

func TestCorruptLastWord(t *testing.T) {
	img := newImage(24, 24, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x ^ y), A: 0xFF}
	})
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, &Options{DisablePalette: true}))

	data := buf.Bytes()
	data[len(data)-1] ^= 0x01

	_, err := Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrDataCorrupt)
}

func TestCorruptHeader(t *testing.T) {
	img := newImage(4, 4, func(x, y int) color.NRGBA {
		return color.NRGBA{R: 1, A: 255}
	})
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, nil))

	data := buf.Bytes()
	data[4] ^= 0x10 // dimensions word: breaks the head hash

	_, err := Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrBadFormat)
}

func TestRandomImagesRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	sizes := [][2]int{{1, 1}, {3, 5}, {7, 7}, {16, 16}, {33, 17}, {64, 48}}
	for _, sz := range sizes {
		img := newImage(sz[0], sz[1], func(x, y int) color.NRGBA {
			switch rng.Intn(5) {
			case 0:
				return color.NRGBA{} // maskable
			case 1:
				// Transparent but off-mask-color RGB must survive.
				return color.NRGBA{R: uint8(rng.Intn(256)), G: 3}
			default:
				return color.NRGBA{
					R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)),
					B: uint8(rng.Intn(256)), A: uint8(rng.Intn(256)),
				}
			}
		})
		encodeDecode(t, img, nil)
		encodeDecode(t, img, &Options{DisablePalette: true})
	}
}

func TestOptionVariantsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(101))
	img := newImage(40, 28, func(x, y int) color.NRGBA {
		return color.NRGBA{
			R: uint8(x*5 + rng.Intn(8)), G: uint8(y * 9), B: uint8((x + y) * 3), A: 0xFF,
		}
	})
	variants := []Options{
		{DisablePalette: true},
		{DisablePalette: true, DisableLZ: true},
		{DisablePalette: true, DisableEntropy: true},
		{DisablePalette: true, TileBits: 3},
		{DisablePalette: true, RevisitCount: 1},
		{DisablePalette: true, FilterSelectFuzz: 2},
	}
	for i := range variants {
		encodeDecode(t, img, &variants[i])
	}
}

func TestDeterministicEncoding(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	img := newImage(31, 19, func(x, y int) color.NRGBA {
		return color.NRGBA{
			R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)), A: 0xFF,
		}
	})
	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, img, nil))
	require.NoError(t, Encode(&b, img, nil))
	require.Equal(t, a.Bytes(), b.Bytes(), "re-encoding must be byte-identical")
}

func TestBadParams(t *testing.T) {
	img := newImage(4, 4, func(x, y int) color.NRGBA { return color.NRGBA{A: 255} })

	var buf bytes.Buffer
	err := Encode(&buf, img, &Options{TileBits: 9})
	assert.ErrorIs(t, err, ErrBadParams)

	err = Encode(&buf, img, &Options{FilterSelectFuzz: -1})
	assert.ErrorIs(t, err, ErrBadParams)

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	err = Encode(&buf, empty, nil)
	assert.ErrorIs(t, err, ErrBadDims)
}

func TestGetFeatures(t *testing.T) {
	img := newImage(21, 13, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x), G: uint8(y), A: 255}
	})
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, nil))

	f, err := GetFeatures(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 21, f.Width)
	assert.Equal(t, 13, f.Height)

	require.NoError(t, Verify(bytes.NewReader(buf.Bytes())))
}

func TestImageDecodeRegistration(t *testing.T) {
	img := newImage(6, 6, func(x, y int) color.NRGBA {
		return color.NRGBA{B: uint8(x * y), A: 255}
	})
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, nil))

	decoded, format, err := image.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "gcif", format)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
