// Package gcif implements a lossless codec for RGBA rasters aimed at
// game-art and sprite imagery. It combines a transparency mask coder,
// a 2D LZ match finder over pixel blocks, optional palette indexing,
// and a per-tile spatial/color-filtered residual coder that adapts to
// local pixel entropy.
//
// The package registers itself with the standard library's image
// package so image.Decode can transparently read GCIF files.
package gcif

import (
	"image"
	"image/color"
	"io"
)

func init() {
	// The magic word 0x46494347 is framed big-endian, so the on-disk
	// prefix reads "FICG".
	image.RegisterFormat("gcif", "FICG", Decode, DecodeConfig)
}

// Features describes a GCIF container without decoding pixel data.
type Features struct {
	Width  int
	Height int

	// HeadHash, FastHash and GoodHash are the header integrity words.
	HeadHash uint32
	FastHash uint32
	GoodHash uint32
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// DecodeConfig returns the color model and dimensions of a GCIF image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	f, err := GetFeatures(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      f.Width,
		Height:     f.Height,
	}, nil
}
