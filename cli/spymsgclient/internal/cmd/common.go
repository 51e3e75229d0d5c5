package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application/client"
	"github.com/spymsg/spymsg-go/cli"
)

const configMissingUsage = `
Couldn't load client's config-file.

To create a valid config, run
  spymsgclient init --address tcp://host:3000 --cert server.pem

The client looks for a file called 'config.toml' in its current working directory.
If you prefer the config-file to be named or stored somewhere different you can
specify where to look for the config with the --config flag.`

const requestTimeout = 30 * time.Second

// newRequestCommand builds a subcommand that talks to the server.
// The client's state is saved after run succeeds.
func newRequestCommand(use, short string, args cobra.PositionalArgs,
	run func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) (interface{}, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := &client.Config{}
			if err := cli.LoadConfig(cmd, conf); err != nil {
				return fmt.Errorf("%v\n%s", err, configMissingUsage)
			}
			c, err := client.New(conf)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			result, err := run(ctx, c, cmd, args)
			if err != nil {
				return err
			}
			if err := c.SaveState(); err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cli.AddConfigFlags(cmd)
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(buf))
	return nil
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("Invalid index %q", s)
	}
	return index, nil
}
