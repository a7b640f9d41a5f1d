// randcast-node runs one participant of a threshold-BLS randomness
// beacon network: it observes chain state, signs randomness tasks
// alongside its group peers, and submits aggregated fulfillments back
// on-chain. See cli.go for the command surface.
package main

import (
	"fmt"
	"os"
)

// Automatically set through -ldflags, mirroring cmd/drand's own
// version stamping.
var (
	version   = "master"
	gitCommit = "none"
	buildDate = "unknown"
)

func main() {
	app := CLI()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
