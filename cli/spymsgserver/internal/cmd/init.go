package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/application/server"
	"github.com/spymsg/spymsg-go/application/testutil"
	"github.com/spymsg/spymsg-go/cli"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	"github.com/spymsg/spymsg-go/utils"
)

// initCmd represents the init command
var initCmd = cli.NewInitCommand("the flag registry server", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("cert", "c", false, "Generate self-signed ssl keys/cert with sane defaults")
	initCmd.Flags().IntP("members", "m", 4, "Number of roster members to generate")
}

func initRunFunc(cmd *cobra.Command, args []string) error {
	dir := cmd.Flag("dir").Value.String()
	encoding, file, err := cli.ConfigFile(cmd, dir)
	if err != nil {
		return err
	}
	members, err := cmd.Flags().GetInt("members")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	rosterFile := "roster." + encoding
	if err := mkRoster(dir, rosterFile, encoding, members); err != nil {
		return err
	}
	if err := mkConfig(file, encoding, rosterFile); err != nil {
		return err
	}

	if cert, _ := cmd.Flags().GetBool("cert"); cert {
		return testutil.CreateTLSCert(dir)
	}
	return nil
}

func mkConfig(file, encoding, rosterFile string) error {
	addrs := []*server.Address{
		{
			ServerAddress: &application.ServerAddress{
				Address: "unix:///tmp/spymsg.sock",
			},
			AllowInput: true,
		},
		{
			ServerAddress: &application.ServerAddress{
				Address:     "tcp://0.0.0.0:3000",
				TLSCertPath: "server.pem",
				TLSKeyPath:  "server.key",
			},
		},
	}
	logger := &application.LoggerConfig{
		EnableStacktrace: true,
		Environment:      "development",
		Path:             "spymsgserver.log",
	}
	storage := &server.StorageConfig{
		Backend: server.StorageLevelDB,
		Path:    "registry.db",
	}

	conf := server.NewConfig(file, encoding, addrs, logger,
		poseidon.PoseidonHasher, "solve", rosterFile, storage)
	conf.MetricsAddress = "127.0.0.1:9100"
	return conf.Save()
}

// mkRoster writes a roster of n fresh identities and the private key
// of each member next to it.
func mkRoster(dir, rosterFile, encoding string, n int) error {
	roster, keys, err := application.GenerateRoster(n, nil)
	if err != nil {
		return err
	}
	if err := roster.Save(filepath.Join(dir, rosterFile), encoding); err != nil {
		return err
	}
	keyDir := filepath.Join(dir, "members")
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return err
	}
	for i, sk := range keys {
		name := filepath.Join(keyDir, fmt.Sprintf("%03d.priv", i))
		if err := utils.WriteFile(name, sk, 0600); err != nil {
			return err
		}
	}
	return nil
}
