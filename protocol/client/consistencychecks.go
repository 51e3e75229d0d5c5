// Implements the consistency checks a registry client runs on data
// received from a registry server.
// These include witness verification before an update is submitted,
// verification of the commitment an accepted update returns, and
// rollback detection across responses.

package client

import (
	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
)

// ConsistencyChecks stores the latest commitment a client has
// verified. Every commitment the server returns afterwards must not be
// older than it, and a commitment of the same version must be equal
// to it.
type ConsistencyChecks struct {
	hasher hasher.TreeHasher

	// Verified is the latest commitment that passed the checks.
	Verified protocol.Commitment
}

// New creates an instance of ConsistencyChecks starting from the
// pinned commitment, e.g. a zero Commitment for a client that has not
// seen the registry before, or one read from persistent storage.
func New(h hasher.TreeHasher, pinned protocol.Commitment) *ConsistencyChecks {
	return &ConsistencyChecks{
		hasher:   h,
		Verified: pinned,
	}
}

// checkCommitment checks that c does not roll back or fork the
// verified history, and records it as verified.
func (cc *ConsistencyChecks) checkCommitment(c protocol.Commitment) error {
	switch {
	case c.Version < cc.Verified.Version:
		return protocol.CheckRolledBack
	case c.Version == cc.Verified.Version && !cc.Verified.Root.IsZero() && c != cc.Verified:
		return protocol.CheckBadCommitment
	}
	cc.Verified = c
	return nil
}

// VerifyCommitment checks the response to a CommitmentRequest.
func (cc *ConsistencyChecks) VerifyCommitment(msg *protocol.Response) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	c, ok := msg.ResultResponse.(*protocol.Commitment)
	if !ok {
		return protocol.ErrMalformedMessage
	}
	return cc.checkCommitment(*c)
}

// VerifyWitness checks the response to a WitnessRequest for index:
// the proof must be bound to index and verify the returned record
// against the returned commitment, and that commitment must pass the
// rollback checks. It returns the verified witness.
func (cc *ConsistencyChecks) VerifyWitness(index int, msg *protocol.Response) (
	*protocol.Witness, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	w, ok := msg.ResultResponse.(*protocol.Witness)
	if !ok {
		return nil, protocol.ErrMalformedMessage
	}
	if w.Index != index || w.Proof.Index() != index {
		return nil, protocol.CheckBadWitness
	}
	if !merkletree.Verify(cc.hasher, w.Record.Hash(cc.hasher), w.Proof, w.Commitment.Root) {
		return nil, protocol.CheckBadWitness
	}
	if err := cc.checkCommitment(w.Commitment); err != nil {
		return nil, err
	}
	return w, nil
}

// NewInputMsg builds the request replacing the payload of the record
// in w with payload. It refuses payloads that break the flag rules,
// so they are never sent.
func (cc *ConsistencyChecks) NewInputMsg(w *protocol.Witness, payload crypto.Field) (
	*protocol.InputMsgRequest, error) {
	if !protocol.ValidatePayload(payload) {
		return nil, protocol.ErrInvalidPayload
	}
	return &protocol.InputMsgRequest{
		Payload:    payload,
		Record:     w.Record,
		Index:      w.Index,
		Proof:      w.Proof,
		Commitment: w.Commitment,
	}, nil
}

// VerifyInputMsg checks the response to req. The returned commitment
// must be the one the client computes itself from req: the next
// version, with the root of req's path over the updated record. The
// returned event must announce exactly that update.
func (cc *ConsistencyChecks) VerifyInputMsg(req *protocol.InputMsgRequest,
	msg *protocol.Response) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	result, ok := msg.ResultResponse.(*protocol.InputMsgResult)
	if !ok {
		return protocol.ErrMalformedMessage
	}
	updated := req.Record.WithPayload(req.Payload)
	want := req.Commitment.Next(req.Proof.CalculateRoot(cc.hasher, updated.Hash(cc.hasher)))
	if result.Commitment != want {
		return protocol.CheckBadCommitment
	}
	ev := result.Event
	if ev.Name != protocol.InputMsgEvent || ev.Seq != want.Version ||
		ev.Index != req.Index || ev.Payload != req.Payload ||
		ev.Identity != req.Record.Identity || ev.Commitment != want {
		return protocol.CheckBadEvent
	}
	return cc.checkCommitment(want)
}
