// This module implements the flag registry directory that a registry
// server maintains.
// A directory owns the commitment tree of the registry's records and
// the Registry that guards its commitment. It answers witness queries
// from the tree and applies accepted input messages to it, so the
// tree's root always equals the registry's commitment.

package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
	"github.com/spymsg/spymsg-go/protocol/registry"
)

// ErrLedgerMismatch indicates stored leaves that do not hash to the
// stored commitment.
var ErrLedgerMismatch = errors.New("[directory] Stored leaves do not match the stored commitment")

// A Directory maintains the commitment tree and the registry.
//
// A Directory is not safe for concurrent writes: the caller must
// serialize InputMsg against every other call, while read-only calls
// may run concurrently with each other.
type Directory struct {
	tree     *merkletree.CommitmentTree
	registry *registry.Registry
}

// New constructs a Directory whose tree holds records at indices
// 0..len(records)-1, and initializes the registry's commitment to the
// tree's root. cfg.Hasher must be set.
func New(cfg registry.Config, records []merkletree.LeafRecord) (*Directory, error) {
	tree, err := merkletree.BuildCommitmentTree(cfg.Hasher, records)
	if err != nil {
		return nil, err
	}
	reg, err := registry.New(cfg)
	if err != nil {
		return nil, err
	}
	seed := make([]registry.Leaf, len(records))
	for i, r := range records {
		seed[i] = registry.Leaf{Index: i, Record: r}
	}
	if err := reg.InitState(tree.Root(), seed...); err != nil {
		return nil, err
	}
	return &Directory{tree: tree, registry: reg}, nil
}

// Open resumes the Directory persisted in cfg.Store. It rebuilds the
// tree from the stored leaves and returns ErrLedgerMismatch if its root
// differs from the stored commitment, or protocol.ErrNotInitialized if
// the store holds no commitment.
func Open(cfg registry.Config) (*Directory, error) {
	if cfg.Store == nil {
		return nil, protocol.ErrNotInitialized
	}
	reg, err := registry.New(cfg)
	if err != nil {
		return nil, err
	}
	if !reg.Initialized() {
		return nil, protocol.ErrNotInitialized
	}
	leaves, err := cfg.Store.LoadLeaves()
	if err != nil {
		return nil, err
	}
	tree := merkletree.NewCommitmentTree(cfg.Hasher)
	for _, l := range leaves {
		if err := tree.SetLeaf(l.Index, l.Record); err != nil {
			return nil, err
		}
	}
	if tree.Root() != reg.Commitment().Root {
		return nil, ErrLedgerMismatch
	}
	return &Directory{tree: tree, registry: reg}, nil
}

// Registry returns the registry of d.
func (d *Directory) Registry() *registry.Registry {
	return d.registry
}

// Commitment returns the current commitment of the registry.
func (d *Directory) Commitment() protocol.Commitment {
	return d.registry.Commitment()
}

// GetCommitment handles a CommitmentRequest.
func (d *Directory) GetCommitment(req *protocol.CommitmentRequest) (
	*protocol.Response, error) {
	return protocol.NewCommitmentResponse(d.registry.Commitment()), nil
}

// Witness returns the record stored at the requested index, its
// membership proof and the commitment the proof verifies against.
// An out-of-range index yields an ErrIndexOutOfRange response.
func (d *Directory) Witness(req *protocol.WitnessRequest) (
	*protocol.Response, error) {
	proof, err := d.tree.Witness(req.Index)
	if err != nil {
		code := protocol.ToErrorCode(err)
		return protocol.NewErrorResponse(code), code
	}
	record, err := d.tree.Leaf(req.Index)
	if err != nil {
		code := protocol.ToErrorCode(err)
		return protocol.NewErrorResponse(code), code
	}
	return protocol.NewWitnessResponse(&protocol.Witness{
		Index:      req.Index,
		Record:     record,
		Proof:      proof,
		Commitment: d.registry.Commitment(),
	}), nil
}

// CheckMsg reports whether the requested payload satisfies the flag
// rules, rule by rule. It never changes d.
func (d *Directory) CheckMsg(req *protocol.CheckMsgRequest) (
	*protocol.Response, error) {
	return protocol.NewCheckMsgResponse(protocol.CheckRules(req.Payload)), nil
}

// InputMsg applies the requested payload update. The registry checks
// the request against req.Commitment; once it commits, the record is
// written to the tree.
//
// A request without a membership proof is considered malformed.
// A rejected request leaves d unchanged and yields a response carrying
// the rejection's error code; the returned error is the rejection
// itself, for logging.
func (d *Directory) InputMsg(ctx context.Context, req *protocol.InputMsgRequest) (
	*protocol.Response, error) {
	if req.Proof == nil {
		return protocol.NewErrorResponse(protocol.ErrMalformedMessage),
			protocol.ErrMalformedMessage
	}
	receipt, err := d.registry.Apply(ctx, &registry.Transition{
		Current: req.Commitment,
		Index:   req.Index,
		Record:  req.Record,
		Payload: req.Payload,
		Proof:   req.Proof,
	})
	if err != nil {
		return protocol.NewErrorResponse(protocol.ToErrorCode(err)), err
	}
	if err := d.tree.SetLeaf(receipt.Leaf.Index, receipt.Leaf.Record); err != nil {
		panic(err)
	}
	if d.tree.Root() != receipt.Commitment.Root {
		panic(fmt.Sprintf("[directory] Tree root %v diverged from commitment %v",
			d.tree.Root(), receipt.Commitment))
	}
	return protocol.NewInputMsgResponse(receipt.Commitment, receipt.Event), nil
}

// Events returns the input-msg events after the requested sequence
// number.
func (d *Directory) Events(req *protocol.EventsRequest) (
	*protocol.Response, error) {
	return protocol.NewEventsResponse(d.registry.Events(req.Since)), nil
}
