// Package main is the entry point for the disc CLI.
//
// Configuration is read from the XDG config directory (see internal/config),
// overlaid with DISC_* environment variables and the --root flag, and every
// command then works on paths confined to the configured root.
package main

import (
	"os"

	"disc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
