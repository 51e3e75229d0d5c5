// Executable flag registry auditor. Run "spymsgauditor init" to
// create a configuration, then "spymsgauditor run".
package main

import (
	"github.com/spymsg/spymsg-go/cli"
	"github.com/spymsg/spymsg-go/cli/spymsgauditor/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
