package main

import (
	"os"

	"github.com/pterm/pterm"
)

// Version is set at build time via -ldflags.
var Version = "v0.0.1-alpha"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
