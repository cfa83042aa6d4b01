// ABOUTME: Main entry point for the newsclip CLI
// ABOUTME: Injects build information and runs the root command
package main

import (
	"fmt"
	"os"

	"github.com/harper/newsclip/cmd/newsclip/commands"
)

// Set with -ldflags "-X main.version=..." at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
