// Command crawlerctl drives a politeness-aware crawl session from the
// command line: start, resume, stop, and inspect a running or snapshotted
// crawl.
package main

import (
	"fmt"
	"os"

	"github.com/quietpath/crawlerctl/cmd/crawlerctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
