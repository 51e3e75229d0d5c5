// Executable flag registry server. Run "spymsgserver init" to create
// a configuration and a roster, then "spymsgserver run".
package main

import (
	"github.com/spymsg/spymsg-go/cli"
	"github.com/spymsg/spymsg-go/cli/spymsgserver/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
