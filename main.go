package main

import (
	"context"
	"os"

	"github.com/vibe-coding/cliprelay/cmd"
)

var version = "v0.1.0" // overridden by -ldflags "-X main.version=..."

func main() {
	cmd.Version = version
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
