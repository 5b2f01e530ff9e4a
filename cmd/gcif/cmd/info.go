package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gamecodec/gcif"
)

var infoCmd = &cobra.Command{
	Use:   "info <input.gcif>",
	Short: "Display GCIF container metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return wrapIOErr(gcif.ErrReadFail, err)
		}
		defer in.Close()

		f, err := gcif.GetFeatures(in)
		if err != nil {
			return err
		}

		fmt.Printf("dimensions: %dx%d\n", f.Width, f.Height)
		fmt.Printf("head hash:  %08x\n", f.HeadHash)
		fmt.Printf("fast hash:  %08x\n", f.FastHash)
		fmt.Printf("good hash:  %08x\n", f.GoodHash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
