package main

import (
	"context"
	"os"
)

// version подставляется при сборке: -ldflags "-X main.version=...".
var version = "ShiftBot dev"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
