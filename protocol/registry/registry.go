// Package registry implements the flag registry's transition engine.
//
// A Registry owns the commitment: the root of the commitment tree and
// the number of updates accepted so far. Updates are optimistic: a
// caller reads the commitment, builds a transition against it and the
// Registry commits the transition only if the commitment is still
// unchanged. A losing caller gets ErrStaleCommitment and must rebuild
// its transition; the Registry never retries on its behalf.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
)

// Config holds the collaborators of a Registry.
// Only Hasher is required.
type Config struct {
	Hasher  hasher.TreeHasher
	Backend ProofBackend
	Store   *Store
	Metrics *Metrics
}

// A Registry is the stateful transition engine. It is safe for
// concurrent use.
type Registry struct {
	processor *Processor
	store     *Store
	metrics   *Metrics
	now       func() time.Time

	mu          sync.Mutex
	commitment  protocol.Commitment
	initialized bool
	events      []*protocol.Event
	listeners   []func(*protocol.Event)
}

// A Receipt describes an accepted transition.
type Receipt struct {
	Commitment protocol.Commitment
	Event      *protocol.Event
	Leaf       Leaf
}

// New returns a Registry. If cfg.Store holds a commitment, the Registry
// resumes from it and its event log.
func New(cfg Config) (*Registry, error) {
	r := &Registry{
		processor: NewProcessor(cfg.Hasher, cfg.Backend),
		store:     cfg.Store,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
	if r.store == nil {
		return r, nil
	}
	c, ok, err := r.store.LoadCommitment()
	if err != nil {
		return nil, err
	}
	if !ok {
		return r, nil
	}
	events, err := r.store.LoadEvents()
	if err != nil {
		return nil, err
	}
	r.commitment = c
	r.initialized = true
	r.events = events
	r.metrics.setVersion(c.Version)
	return r, nil
}

// InitState sets the commitment to root at version 0. The optional
// seed leaves are persisted along with it. InitState may be repeated
// until the first transition is accepted; afterwards it returns
// ErrAlreadyInitialized.
func (r *Registry) InitState(root crypto.Field, seed ...Leaf) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitment.Version > 0 {
		return protocol.ErrAlreadyInitialized
	}
	c := protocol.Commitment{Root: root}
	if r.store != nil {
		if err := r.store.Init(c, seed); err != nil {
			return err
		}
	}
	r.commitment = c
	r.initialized = true
	r.metrics.setVersion(0)
	return nil
}

// Initialized reports whether InitState was called.
func (r *Registry) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// Commitment returns the current commitment. Callers build their
// transitions against it and hand it back unchanged.
func (r *Registry) Commitment() protocol.Commitment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commitment
}

// CheckMsg reports whether payload satisfies the flag rules.
// It never changes the registry.
func (r *Registry) CheckMsg(payload crypto.Field) bool {
	return protocol.ValidatePayload(payload)
}

// InputMsg replaces the payload of record, stored at index, with
// payload. proof must be the membership proof of record under the
// current commitment.
func (r *Registry) InputMsg(ctx context.Context, payload crypto.Field,
	record merkletree.LeafRecord, index int,
	proof *merkletree.MembershipProof) (*Receipt, error) {
	return r.Apply(ctx, &Transition{
		Current: r.Commitment(),
		Index:   index,
		Record:  record,
		Payload: payload,
		Proof:   proof,
	})
}

// Apply runs t through the state machine and, if every check passes
// and the commitment still equals t.Current, commits it. On any error
// the registry is left unchanged.
func (r *Registry) Apply(ctx context.Context, t *Transition) (*Receipt, error) {
	receipt, err := r.apply(ctx, t)
	r.metrics.observe(err)
	return receipt, err
}

func (r *Registry) apply(ctx context.Context, t *Transition) (*Receipt, error) {
	if !r.Initialized() {
		return nil, protocol.ErrNotInitialized
	}

	start := r.now()
	if _, err := r.processor.Prepare(ctx, t); err != nil {
		return nil, err
	}
	r.metrics.observeProving(r.now().Sub(start).Seconds())

	r.processor.enter(Committing)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitment != t.Current {
		r.processor.enter(Rejected)
		return nil, protocol.ErrStaleCommitment
	}
	next := r.commitment.Next(t.NewRoot)
	leaf := Leaf{Index: t.Index, Record: t.NewRecord}
	ev := protocol.NewInputMsgEvent(t.Index, t.NewRecord, next, r.now())
	ev.Attestation = t.Attestation
	if r.store != nil {
		if err := r.store.Commit(next, leaf, ev); err != nil {
			r.processor.enter(Rejected)
			return nil, err
		}
	}
	r.commitment = next
	r.events = append(r.events, ev)
	r.metrics.setVersion(next.Version)
	r.processor.enter(Committed)
	for _, fn := range r.listeners {
		fn(ev)
	}
	return &Receipt{
		Commitment: next,
		Event:      ev,
		Leaf:       leaf,
	}, nil
}

// OnEvent registers fn to be called with every event emitted from now
// on. fn is called with the registry locked and must not call back
// into the Registry.
func (r *Registry) OnEvent(fn func(*protocol.Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Events returns the events with a sequence number greater than since,
// in sequence order.
func (r *Registry) Events(since uint64) []*protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Seq of events[i] is i+1.
	if since >= uint64(len(r.events)) {
		return nil
	}
	return append([]*protocol.Event(nil), r.events[since:]...)
}
