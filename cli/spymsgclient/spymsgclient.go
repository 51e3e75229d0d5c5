// Executable flag registry client. Run "spymsgclient init" to create
// a configuration, then use the subcommands to query and update the
// registry.
package main

import (
	"github.com/spymsg/spymsg-go/cli"
	"github.com/spymsg/spymsg-go/cli/spymsgclient/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
