package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/application/client"
	"github.com/spymsg/spymsg-go/cli"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
)

var initCmd = cli.NewInitCommand("the flag registry client", mkConfig)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().String("address", "unix:///tmp/spymsg.sock", "Address of the registry server")
	initCmd.Flags().String("cert", "", "Certificate the server's TLS certificate must chain up to")
	initCmd.Flags().String("hasher", poseidon.PoseidonHasher, "Tree hasher of the registry")
}

func mkConfig(cmd *cobra.Command, args []string) error {
	dir := cmd.Flag("dir").Value.String()
	encoding, file, err := cli.ConfigFile(cmd, dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logger := &application.LoggerConfig{
		Environment: "production",
	}
	conf := client.NewConfig(file, encoding, logger,
		cmd.Flag("address").Value.String(),
		cmd.Flag("hasher").Value.String())
	conf.ServerCertPath = cmd.Flag("cert").Value.String()
	conf.StatePath = "state.json"
	return conf.Save()
}
