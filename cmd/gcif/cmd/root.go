package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gamecodec/gcif"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gcif",
	Short: "Lossless RGBA codec for game art and sprites",
	Long: `gcif — packs sprite sheets and game art losslessly by masking
transparent regions, copying repeated pixel blocks, and entropy-coding
tile-filtered residuals against local-context models.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the codec's error
// taxonomy code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gcif: %v\n", err)
		code := gcif.ExitCode(err)
		if code == 0 {
			code = 8
		}
		os.Exit(code)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"gcif %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[gcif] "+format+"\n", args...)
	}
}

// wrapIOErr tags plain I/O failures with the codec error taxonomy so
// exit codes stay stable.
func wrapIOErr(kind, err error) error {
	if err == nil {
		return nil
	}
	if gcif.ExitCode(err) != 8 {
		return err
	}
	return errors.Join(kind, err)
}
