// Command calcium is the lab CLI for calcium imaging projects: it
// scaffolds project directory trees, inspects the session index,
// computes stack projections, extracts per-ROI traces and runs
// recording- and group-level analysis.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
