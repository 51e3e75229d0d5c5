// This module implements a generic registry auditor, i.e. the
// functionality that clients and auditors need to verify
// a server's event history.

package auditor

import (
	"github.com/spymsg/spymsg-go/crypto/hasher"
	"github.com/spymsg/spymsg-go/merkletree"
	p "github.com/spymsg/spymsg-go/protocol"
)

// Auditor replays the input-msg events of a registry over its own copy
// of the commitment tree, and checks that every event's commitment is
// the one its update produces.
type Auditor struct {
	tree     *merkletree.CommitmentTree
	verified p.Commitment
}

// New instantiates an auditor from the registry's initial records,
// i.e. its roster. The initial commitment is version 0 over the
// records' root.
func New(h hasher.TreeHasher, records []merkletree.LeafRecord) (*Auditor, error) {
	tree, err := merkletree.BuildCommitmentTree(h, records)
	if err != nil {
		return nil, err
	}
	return &Auditor{
		tree:     tree,
		verified: p.Commitment{Root: tree.Root()},
	}, nil
}

// Verified returns the latest verified commitment.
func (a *Auditor) Verified() p.Commitment {
	return a.verified
}

// Record returns the audited record at index.
func (a *Auditor) Record(index int) (merkletree.LeafRecord, error) {
	return a.tree.Leaf(index)
}

// Update verifies the events in a response to an EventsRequest and
// advances the verified commitment to the last of them.
// Events the auditor has already verified are skipped; the first new
// event must directly follow the verified commitment.
//
// Update is all or nothing: if any event fails, the auditor's state is
// left unchanged.
func (a *Auditor) Update(msg *p.Response) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	list, ok := msg.ResultResponse.(*p.EventList)
	if !ok {
		return p.ErrMalformedMessage
	}

	tree := a.tree.Clone()
	verified := a.verified
	for _, ev := range list.Events {
		if ev == nil {
			return p.CheckBadEvent
		}
		if ev.Seq <= verified.Version {
			continue
		}
		next, err := verifyEvent(tree, verified, ev)
		if err != nil {
			return err
		}
		verified = next
	}
	a.tree, a.verified = tree, verified
	return nil
}

// verifyEvent applies ev to tree, which must be at commitment prev.
func verifyEvent(tree *merkletree.CommitmentTree, prev p.Commitment,
	ev *p.Event) (p.Commitment, error) {
	if ev.Name != p.InputMsgEvent || ev.Seq != prev.Version+1 ||
		ev.Commitment.Version != ev.Seq {
		return prev, p.CheckBadEvent
	}
	if !p.ValidatePayload(ev.Payload) {
		return prev, p.CheckBadEvent
	}
	old, err := tree.Leaf(ev.Index)
	if err != nil {
		return prev, p.CheckBadEvent
	}
	if old.Identity != ev.Identity {
		return prev, p.CheckBadEvent
	}
	if err := tree.SetLeaf(ev.Index, old.WithPayload(ev.Payload)); err != nil {
		return prev, err
	}
	if tree.Root() != ev.Commitment.Root {
		return prev, p.CheckBadCommitment
	}
	return ev.Commitment, nil
}

// Audit checks a commitment observed elsewhere, e.g. in a response to
// a CommitmentRequest, against the verified history. It must not be
// newer than the verified commitment, and at the verified version it
// must be equal to it.
func (a *Auditor) Audit(c p.Commitment) error {
	switch {
	case c.Version > a.verified.Version:
		return p.CheckBadEvent
	case c.Version == a.verified.Version && c != a.verified:
		return p.CheckBadCommitment
	}
	return nil
}
