package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application/server"
	"github.com/spymsg/spymsg-go/cli"
)

// runCmd represents the run command
var runCmd = cli.NewRunCommand("flag registry server", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("pid", "p", false, "Write down the process id to spymsg.pid in the current working directory")
}

func run(cmd *cobra.Command, args []string) error {
	if pid, _ := cmd.Flags().GetBool("pid"); pid {
		writePID()
	}

	conf := &server.Config{}
	if err := cli.LoadConfig(cmd, conf); err != nil {
		return err
	}
	serv, err := server.NewRegistryServer(conf)
	if err != nil {
		return err
	}

	// run the server until receiving an interrupt signal
	if err := serv.Run(conf.Addresses); err != nil {
		serv.Shutdown()
		return err
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	return serv.Shutdown()
}

func writePID() {
	pidf, err := os.OpenFile(filepath.Join(".", "spymsg.pid"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create spymsg.pid: %v\n", err)
		return
	}
	defer pidf.Close()
	if _, err := fmt.Fprint(pidf, os.Getpid()); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot write to pid file: %v\n", err)
	}
}
