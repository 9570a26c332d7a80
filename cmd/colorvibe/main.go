// ColorVibe - Generate website themes from your images
//
// ColorVibe extracts a five colour palette from an image, labels its mood
// and previews it as a website theme, in the browser or the terminal.
package main

import (
	"os"

	"github.com/jmylchreest/colorvibe/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
