// Package cmd implements the CLI commands for a flag registry client.
package cmd

import (
	"github.com/spymsg/spymsg-go/cli"
)

// RootCmd represents the base "spymsgclient" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("spymsgclient",
	"Flag registry client",
	`Query and update a flag registry.

Every response is checked against the latest commitment the client has
verified, which is kept in the client's state file between runs.`)
