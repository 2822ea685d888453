// Command coursetree edits and serves course tracks.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/coursetree/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
