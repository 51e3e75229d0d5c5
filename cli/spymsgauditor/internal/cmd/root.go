// Package cmd implements the CLI commands for a flag registry auditor.
package cmd

import (
	"github.com/spymsg/spymsg-go/cli"
)

// RootCmd represents the base "spymsgauditor" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("spymsgauditor",
	"Flag registry auditor",
	`Follow a flag registry's update history and check every commitment
the server publishes against it.`)

func init() {
	RootCmd.AddCommand(cli.NewVersionCommand("spymsgauditor"))
}
