package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application/client"
	"github.com/spymsg/spymsg-go/crypto"
)

var commitmentCmd = newRequestCommand("commitment",
	"Print the registry's current commitment.", cobra.NoArgs,
	func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) (interface{}, error) {
		return c.Commitment(ctx)
	})

var witnessCmd = newRequestCommand("witness [index]",
	"Print the record at index and its verified membership proof.", cobra.ExactArgs(1),
	func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) (interface{}, error) {
		index, err := parseIndex(args[0])
		if err != nil {
			return nil, err
		}
		return c.Witness(ctx, index)
	})

var checkCmd = newRequestCommand("check [payload]",
	"Check a payload against the flag rules, e.g. 0b011000.", cobra.ExactArgs(1),
	func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) (interface{}, error) {
		payload, err := crypto.ParseField(args[0])
		if err != nil {
			return nil, err
		}
		return c.CheckMsg(ctx, payload)
	})

var inputCmd = newRequestCommand("input [index] [payload]",
	"Replace the payload of the record at index.", cobra.ExactArgs(2),
	func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) (interface{}, error) {
		index, err := parseIndex(args[0])
		if err != nil {
			return nil, err
		}
		payload, err := crypto.ParseField(args[1])
		if err != nil {
			return nil, err
		}
		return c.InputMsg(ctx, index, payload)
	})

var eventsCmd = newRequestCommand("events",
	"Print the input-msg events after a sequence number.", cobra.NoArgs,
	func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) (interface{}, error) {
		since, err := cmd.Flags().GetUint64("since")
		if err != nil {
			return nil, err
		}
		res, err := c.Events(ctx, since)
		if err != nil {
			return nil, err
		}
		return res.ResultResponse, nil
	})

func init() {
	eventsCmd.Flags().Uint64("since", 0, "Print the events with a greater sequence number")
	RootCmd.AddCommand(commitmentCmd, witnessCmd, checkCmd, inputCmd, eventsCmd)
}
