// Command tsqueue-bench drives the tsqueue envelope/queue packages from
// the command line, for manual exploration and throughput benchmarking.
package main

import (
	"fmt"
	"os"

	"github.com/roasbeef/tsqueue/cmd/tsqueue-bench/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
