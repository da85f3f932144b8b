// Command coaverify verifies certificate-of-authenticity images from the command line.
package main

import (
	"os"

	"github.com/fatih/color"
)

var colorRed = color.New(color.FgRed, color.Bold)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
