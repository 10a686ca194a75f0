package main

import (
	"fmt"
	"os"

	"github.com/imkarma/planner/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("planner %s (commit: %s)\n", version, commit)
		return
	}
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
