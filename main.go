package main

import (
	"fmt"
	"os"

	"github.com/chenjicheng/upmc/internal/cli"
	"github.com/chenjicheng/upmc/internal/logging"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	err := cli.Execute(version, commit, date)
	if err != nil && !cli.Presented(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	// os.Exit skips deferred calls.
	logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
