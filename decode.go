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

// paletteHuffThresh mirrors the encoder default. The palette reader
// does not use it: the format bit in the palette table selects the
// actual representation, so the knob only matters on the encode side.
const paletteHuffThresh = 16

// Decode reads a GCIF image from r. The returned type is *image.NRGBA.
// The data hash is always verified before the image is returned; a
// mismatch yields ErrDataCorrupt even though pixels were produced.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFail, err)
	}
	return decodeBytes(data)
}

// GetFeatures reads container features without decoding pixel data.
func GetFeatures(r io.Reader) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFail, err)
	}
	hdr, _, err := container.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return &Features{
		Width:    hdr.Width,
		Height:   hdr.Height,
		HeadHash: hdr.HeadHash,
		FastHash: hdr.FastHash,
		GoodHash: hdr.GoodHash,
	}, nil
}

// Verify re-reads a container and checks the strong body hash in
// addition to the streaming hash.
func Verify(r io.Reader) error {
	data, err := readAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadFail, err)
	}
	hdr, body, err := container.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if !hdr.VerifyGoodHash(body) {
		return ErrDataCorrupt
	}
	_, err = decodeBytes(data)
	return err
}

func decodeBytes(data []byte) (image.Image, error) {
	hdr, body, err := container.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	width, height := hdr.Width, hdr.Height
	if width <= 0 || height <= 0 {
		return nil, ErrBadDims
	}

	br := bitio.NewReader(body)

	mk, err := mask.NewReader(br, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataCorrupt, err)
	}

	matches := lz.ReadStream(br)
	if !matchesValid(matches, width, height) {
		return nil, ErrDataCorrupt
	}
	var cov []int32
	if len(matches) > 0 {
		cov = lz.Coverage(matches, width, height)
	}

	var raster []uint8
	if br.ReadBit() == 1 {
		pr := palette.NewReader(br, width, height, paletteHuffThresh)
		raster = pr.ReadPixels(br, mk.Masked, mk.Color())
	} else {
		rr, err := rgba.NewReader(br, width, height, mk.Masked, mk.Color(), cov)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataCorrupt, err)
		}
		raster = rr.ReadPixels(br)
	}

	// The data hash covers every body word; it must pass before the
	// decoded pixels can be trusted.
	if !br.FinalizeCheckHash(hdr.FastHash) {
		return nil, ErrDataCorrupt
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+width*4], raster[y*width*4:])
	}
	return img, nil
}

// matchesValid bounds-checks every match record before it can index
// the raster.
func matchesValid(matches []lz.Match, width, height int) bool {
	for _, m := range matches {
		if int(m.SrcX)+m.W > width || int(m.SrcY)+m.H > height {
			return false
		}
		if int(m.DstX)+m.W > width || int(m.DstY)+m.H > height {
			return false
		}
		if m.SrcX == m.DstX && m.SrcY == m.DstY {
			return false
		}
	}
	return true
}
