// Package client implements a registry client: it talks to a registry
// server over a Transport and runs the consistency checks on every
// response before handing it out.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
	_ "github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	_ "github.com/spymsg/spymsg-go/crypto/hasher/shake"
	"github.com/spymsg/spymsg-go/protocol"
	checks "github.com/spymsg/spymsg-go/protocol/client"
)

// A Client sends requests to one registry server and verifies the
// responses against the latest commitment it has verified.
// A Client is not safe for concurrent use.
type Client struct {
	tr        *Transport
	hasher    hasher.TreeHasher
	cc        *checks.ConsistencyChecks
	statePath string
}

// New creates a Client from conf. The verified commitment is
// restored from conf.StatePath if that file exists.
func New(conf *Config) (*Client, error) {
	h, err := hasher.Hasher(conf.Hasher)
	if err != nil {
		return nil, err
	}
	tr, err := NewTransport(conf.Address, conf.ServerCertPath)
	if err != nil {
		return nil, err
	}
	pinned, err := LoadState(conf.StatePath)
	if err != nil {
		return nil, err
	}
	return &Client{
		tr:        tr,
		hasher:    h,
		cc:        checks.New(h, pinned),
		statePath: conf.StatePath,
	}, nil
}

// LoadState reads a commitment saved by SaveState. A missing file, or
// an empty path, yields the zero Commitment.
func LoadState(path string) (protocol.Commitment, error) {
	var c protocol.Commitment
	if path == "" {
		return c, nil
	}
	buf, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	err = json.Unmarshal(buf, &c)
	return c, err
}

// SaveState writes the verified commitment to the client's state
// file, if it has one.
func (c *Client) SaveState() error {
	if c.statePath == "" {
		return nil
	}
	buf, err := json.Marshal(c.cc.Verified)
	if err != nil {
		return err
	}
	return os.WriteFile(c.statePath, buf, 0600)
}

// Hasher returns the tree hasher the client verifies with.
func (c *Client) Hasher() hasher.TreeHasher {
	return c.hasher
}

// Verified returns the latest verified commitment.
func (c *Client) Verified() protocol.Commitment {
	return c.cc.Verified
}

func (c *Client) send(ctx context.Context, reqType int, msg []byte,
	err error) (*protocol.Response, error) {
	if err != nil {
		return nil, err
	}
	res, err := c.tr.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	return application.UnmarshalResponse(reqType, res), nil
}

// Commitment fetches and verifies the server's current commitment.
func (c *Client) Commitment(ctx context.Context) (protocol.Commitment, error) {
	msg, err := CreateCommitmentMsg()
	res, err := c.send(ctx, protocol.CommitmentType, msg, err)
	if err != nil {
		return protocol.Commitment{}, err
	}
	if err := c.cc.VerifyCommitment(res); err != nil {
		return protocol.Commitment{}, err
	}
	return c.cc.Verified, nil
}

// Witness fetches and verifies the record at index and its
// membership proof.
func (c *Client) Witness(ctx context.Context, index int) (*protocol.Witness, error) {
	msg, err := CreateWitnessMsg(index)
	res, err := c.send(ctx, protocol.WitnessType, msg, err)
	if err != nil {
		return nil, err
	}
	return c.cc.VerifyWitness(index, res)
}

// CheckMsg asks the server to check payload against the flag rules.
// The server's verdict must agree with the client's own.
func (c *Client) CheckMsg(ctx context.Context, payload crypto.Field) (
	*protocol.CheckMsgResult, error) {
	msg, err := CreateCheckMsg(payload)
	res, err := c.send(ctx, protocol.CheckMsgType, msg, err)
	if err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	result, ok := res.ResultResponse.(*protocol.CheckMsgResult)
	if !ok || result.Rules != protocol.CheckRules(payload) ||
		result.Valid != result.Rules.Valid() {
		return nil, protocol.ErrMalformedMessage
	}
	return result, nil
}

// InputMsg replaces the payload of the record at index with payload.
// It fetches a fresh witness, submits the update against the witness's
// commitment and verifies the commitment the server returns.
// A payload that breaks the flag rules is refused without contacting
// the server.
func (c *Client) InputMsg(ctx context.Context, index int, payload crypto.Field) (
	*protocol.InputMsgResult, error) {
	if !protocol.ValidatePayload(payload) {
		return nil, protocol.ErrInvalidPayload
	}
	w, err := c.Witness(ctx, index)
	if err != nil {
		return nil, err
	}
	req, err := c.cc.NewInputMsg(w, payload)
	if err != nil {
		return nil, err
	}
	msg, err := CreateInputMsg(req)
	res, err := c.send(ctx, protocol.InputMsgType, msg, err)
	if err != nil {
		return nil, err
	}
	if err := c.cc.VerifyInputMsg(req, res); err != nil {
		return nil, err
	}
	return res.ResultResponse.(*protocol.InputMsgResult), nil
}

// Events fetches the events after since. The response is returned as
// is, for an auditor to verify.
func (c *Client) Events(ctx context.Context, since uint64) (*protocol.Response, error) {
	msg, err := CreateEventsMsg(since)
	res, err := c.send(ctx, protocol.EventsType, msg, err)
	if err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}
