// Command ctfctl runs the CTF control plane: the competitor-facing HTTP
// API, the results/dead-letter queue consumers, and the leaderboard
// builder, plus one-shot operator subcommands for catalog setup and
// membership repair.
package main

import (
	"fmt"
	"os"

	"github.com/llmail-inject/ctf-control-plane/cmd/ctfctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
