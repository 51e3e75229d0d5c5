// Package cmd implements the CLI commands for a flag registry server.
package cmd

import (
	"github.com/spymsg/spymsg-go/cli"
)

// RootCmd represents the base "spymsgserver" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("spymsgserver",
	"Flag registry server",
	`Serve a Merkle-authenticated flag registry.

The server keeps the records of a fixed roster in a commitment tree
and accepts payload updates that carry a membership proof against the
current commitment.`)
