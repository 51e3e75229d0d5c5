package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/application/auditor"
	"github.com/spymsg/spymsg-go/cli"
)

var runCmd = cli.NewRunCommand("flag registry auditor", run)

func init() {
	RootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {
	conf := &auditor.Config{}
	if err := cli.LoadConfig(cmd, conf); err != nil {
		return err
	}
	logger, err := application.NewLogger(conf.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	m, err := auditor.NewMonitor(conf, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("Auditing", "address", conf.Address, "interval", conf.Interval.String())
	return m.Run(ctx, conf.Interval)
}
