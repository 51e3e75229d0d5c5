package registry

import (
	"context"
	"fmt"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
)

// State is a step of the transition state machine.
type State int

// A transition walks these states in order and ends in either
// Committed or Rejected.
const (
	Idle State = iota
	Validating
	Verifying
	Recomputing
	Proving
	Committing
	Committed
	Rejected
)

var stateNames = [...]string{
	Idle:        "idle",
	Validating:  "validating",
	Verifying:   "verifying",
	Recomputing: "recomputing",
	Proving:     "proving",
	Committing:  "committing",
	Committed:   "committed",
	Rejected:    "rejected",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// A Transition is a request to replace the payload of the record at
// Index. Current is the commitment Proof was built against; the
// transition only commits if the registry still holds exactly Current.
type Transition struct {
	Current protocol.Commitment
	Index   int
	Record  merkletree.LeafRecord
	Payload crypto.Field
	Proof   *merkletree.MembershipProof

	// Set by the processor once the transition is verified.
	NewRecord merkletree.LeafRecord
	NewRoot   crypto.Field

	// Attestation is an opaque proof a ProofBackend may attach.
	// It is published with the transition's event.
	Attestation []byte
}

// A ProofBackend attests to a verified transition before it is
// committed, e.g. by producing a zero-knowledge proof of it.
// Prove must honour ctx; an error rejects the transition.
type ProofBackend interface {
	Prove(ctx context.Context, t *Transition) error
}

// A Processor runs the stateless part of the state machine, from
// Validating through Proving. It never changes any state.
type Processor struct {
	hasher  hasher.TreeHasher
	backend ProofBackend
	trace   func(State)
}

// NewProcessor returns a Processor hashing with h. backend may be nil,
// in which case Proving is a no-op.
func NewProcessor(h hasher.TreeHasher, backend ProofBackend) *Processor {
	return &Processor{
		hasher:  h,
		backend: backend,
	}
}

func (p *Processor) enter(s State) {
	if p.trace != nil {
		p.trace(s)
	}
}

// Prepare validates and verifies t, fills in its NewRecord and NewRoot
// and awaits the proof backend. It returns the state the transition
// reached and, for a rejected transition, the reason.
func (p *Processor) Prepare(ctx context.Context, t *Transition) (State, error) {
	p.enter(Idle)

	p.enter(Validating)
	if !protocol.ValidatePayload(t.Payload) {
		return p.reject(protocol.ErrInvalidPayload)
	}

	p.enter(Verifying)
	if t.Index < 0 || t.Index >= merkletree.Capacity {
		return p.reject(protocol.ErrIndexOutOfRange)
	}
	if t.Proof == nil || t.Proof.Index() != t.Index {
		return p.reject(protocol.ErrProofMismatch)
	}
	if !merkletree.Verify(p.hasher, t.Record.Hash(p.hasher), t.Proof, t.Current.Root) {
		return p.reject(protocol.ErrProofMismatch)
	}

	p.enter(Recomputing)
	t.NewRecord = t.Record.WithPayload(t.Payload)
	t.NewRoot = t.Proof.CalculateRoot(p.hasher, t.NewRecord.Hash(p.hasher))

	p.enter(Proving)
	if err := ctx.Err(); err != nil {
		return p.reject(err)
	}
	if p.backend != nil {
		if err := p.backend.Prove(ctx, t); err != nil {
			return p.reject(fmt.Errorf("[registry] Proof backend: %w", err))
		}
		if err := ctx.Err(); err != nil {
			return p.reject(err)
		}
	}
	return Proving, nil
}

func (p *Processor) reject(err error) (State, error) {
	p.enter(Rejected)
	return Rejected, err
}
