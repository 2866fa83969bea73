// Command stellium computes natal charts, transits and synastry, and serves
// them as MCP tools.
package main

import (
	"os"

	"github.com/roach88/stellium/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
