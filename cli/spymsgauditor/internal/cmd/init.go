package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/application/auditor"
	"github.com/spymsg/spymsg-go/cli"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
)

var initCmd = cli.NewInitCommand("the flag registry auditor", mkConfig)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().String("address", "tcp://127.0.0.1:3000", "Address of the registry server")
	initCmd.Flags().String("cert", "server.pem", "Certificate the server's TLS certificate must chain up to")
	initCmd.Flags().String("hasher", poseidon.PoseidonHasher, "Tree hasher of the registry")
	initCmd.Flags().String("roster", "roster.toml", "Roster the registry was initialized with")
	initCmd.Flags().Duration("interval", 10*time.Second, "Time between two polls of the server")
}

func mkConfig(cmd *cobra.Command, args []string) error {
	dir := cmd.Flag("dir").Value.String()
	encoding, file, err := cli.ConfigFile(cmd, dir)
	if err != nil {
		return err
	}
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logger := &application.LoggerConfig{
		Environment: "production",
		Path:        "spymsgauditor.log",
	}
	conf := auditor.NewConfig(file, encoding, logger,
		cmd.Flag("address").Value.String(),
		cmd.Flag("hasher").Value.String(),
		cmd.Flag("roster").Value.String(),
		interval)
	conf.ServerCertPath = cmd.Flag("cert").Value.String()
	return conf.Save()
}
