package main

import (
	"fmt"
	"os"
	"runtime"

	"dspengine/cmd"
	"dspengine/pkg/build"
)

// main is the entry point for the dspengine demo binary. Build metadata is
// stamped in via -ldflags; Cobra (in cmd.Execute) owns argument parsing,
// mode dispatch, and the engine's start/stop lifecycle from there.
func main() {
	if err := build.Initialize(); err != nil {
		// Build metadata wasn't stamped in at link time; fall back to
		// running unversioned rather than refusing to start a demo binary.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	// Reserve one thread for the audio callback path, one for everything
	// else (CLI, TUI, transports).
	runtime.GOMAXPROCS(2)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
