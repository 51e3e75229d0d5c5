package cmd

import (
	"github.com/spymsg/spymsg-go/cli"
)

var versionCmd = cli.NewVersionCommand("spymsgserver")

func init() {
	RootCmd.AddCommand(versionCmd)
}
