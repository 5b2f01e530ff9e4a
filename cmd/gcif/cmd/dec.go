package cmd

import (
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/gamecodec/gcif"
)

var decVerify bool

var decCmd = &cobra.Command{
	Use:   "dec <input.gcif> <output.png>",
	Short: "Decode a GCIF file to PNG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return wrapIOErr(gcif.ErrReadFail, err)
		}
		defer in.Close()

		if decVerify {
			logVerbose("verifying strong hash")
			if err := gcif.Verify(in); err != nil {
				return err
			}
			if _, err := in.Seek(0, 0); err != nil {
				return wrapIOErr(gcif.ErrReadFail, err)
			}
		}

		img, err := gcif.Decode(in)
		if err != nil {
			return err
		}
		b := img.Bounds()
		logVerbose("decoded %dx%d", b.Dx(), b.Dy())

		out, err := os.Create(args[1])
		if err != nil {
			return wrapIOErr(gcif.ErrWriteFail, err)
		}
		defer out.Close()
		if err := png.Encode(out, img); err != nil {
			return wrapIOErr(gcif.ErrWriteFail, err)
		}
		return out.Close()
	},
}

func init() {
	decCmd.Flags().BoolVar(&decVerify, "verify", false, "also check the strong body hash before decoding")
	rootCmd.AddCommand(decCmd)
}
