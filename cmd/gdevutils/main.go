package main

import (
	"os"

	"github.com/elemental-reasoning/gdevutils/internal/adapters/driving/cli"
)

// Overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
