package cmd

import (
	"github.com/spymsg/spymsg-go/cli"
)

var versionCmd = cli.NewVersionCommand("spymsgclient")

func init() {
	RootCmd.AddCommand(versionCmd)
}
