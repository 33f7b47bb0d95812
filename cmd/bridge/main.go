// Command bridge is the pool automation protocol bridge's entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/pentacore/bridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
