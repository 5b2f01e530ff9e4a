package cmd

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gamecodec/gcif"
)

var encOpts gcif.Options

var encCmd = &cobra.Command{
	Use:   "enc <input> <output.gcif>",
	Short: "Encode an image (PNG/JPEG/GIF/BMP/TIFF) to GCIF",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return wrapIOErr(gcif.ErrReadFail, err)
		}
		defer in.Close()

		img, format, err := image.Decode(in)
		if err != nil {
			return wrapIOErr(gcif.ErrReadFail, err)
		}
		b := img.Bounds()
		logVerbose("input: %s %dx%d (%s)", args[0], b.Dx(), b.Dy(), format)

		out, err := os.Create(args[1])
		if err != nil {
			return wrapIOErr(gcif.ErrWriteFail, err)
		}
		defer out.Close()

		start := time.Now()
		if err := gcif.Encode(out, img, &encOpts); err != nil {
			return err
		}
		if err := out.Close(); err != nil {
			return wrapIOErr(gcif.ErrWriteFail, err)
		}

		if st, err := os.Stat(args[1]); err == nil {
			raw := int64(b.Dx()) * int64(b.Dy()) * 4
			fmt.Printf("%s: %d bytes (%.2f:1) in %v\n",
				args[1], st.Size(), float64(raw)/float64(st.Size()), time.Since(start).Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	f := encCmd.Flags()
	f.IntVar(&encOpts.RevisitCount, "revisit", 0, "tiles re-evaluated after the first design pass (0 = default)")
	f.IntVar(&encOpts.FilterSelectFuzz, "fuzz", 0, "spatial filters entering the entropy tournament per tile (0 = default)")
	f.BoolVar(&encOpts.DisableEntropy, "no-entropy", false, "skip entropy estimation during tile design")
	f.BoolVar(&encOpts.DisableLZ, "no-lz", false, "disable the 2D block match pre-pass")
	f.BoolVar(&encOpts.DisablePalette, "no-palette", false, "force the filtered RGBA path")
	f.IntVar(&encOpts.PaletteHuffThresh, "pal-thresh", 0, "palette size switching to filtered coding (0 = default)")
	f.IntVar(&encOpts.TileBits, "tile-bits", 0, "log2 of the filter tile edge, 1..5 (0 = default)")
	rootCmd.AddCommand(encCmd)
}
