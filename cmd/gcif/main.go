// Command gcif encodes and decodes GCIF images from the command line.
//
//	gcif enc [flags] <input.png> <output.gcif>
//	gcif dec [flags] <input.gcif> <output.png>
//	gcif info <input.gcif>
package main

import "github.com/gamecodec/gcif/cmd/gcif/cmd"

func main() {
	cmd.Execute()
}
