package registry

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
	"github.com/spymsg/spymsg-go/storage/kv/leveldbkv"
)

func TestInputMsg(t *testing.T) {
	r, tree := NewTestRegistry(t, Config{})
	before := r.Commitment()
	rec, _ := tree.Leaf(1)
	proof, _ := tree.Witness(1)

	receipt, err := r.InputMsg(context.Background(), crypto.FieldFromUint64(0b000110), rec, 1, proof)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Commitment.Version != before.Version+1 {
		t.Fatal("Expect the version to advance by one")
	}
	if r.Commitment() != receipt.Commitment {
		t.Fatal("Expect the registry to hold the new commitment")
	}
	if receipt.Event.Name != protocol.InputMsgEvent || receipt.Event.Payload != crypto.FieldFromUint64(0b000110) {
		t.Fatal("Unexpected event", receipt.Event)
	}

	if err := tree.SetLeaf(receipt.Leaf.Index, receipt.Leaf.Record); err != nil {
		t.Fatal(err)
	}
	if tree.Root() != r.Commitment().Root {
		t.Fatal("Expect the registry root to match the updated tree")
	}
}

func TestInputMsgRejectionsKeepState(t *testing.T) {
	r, tree := NewTestRegistry(t, Config{})
	before := r.Commitment()
	rec, _ := tree.Leaf(2)
	proof, _ := tree.Witness(2)
	other, _ := tree.Witness(3)

	for _, tc := range []struct {
		name    string
		payload uint64
		index   int
		err     error
	}{
		{"invalid payload", 0b011100, 2, protocol.ErrInvalidPayload},
		{"proof for another index", 0b000001, 3, protocol.ErrProofMismatch},
		{"negative index", 0b000001, -1, protocol.ErrIndexOutOfRange},
	} {
		_, err := r.InputMsg(context.Background(), crypto.FieldFromUint64(tc.payload), rec, tc.index, proof)
		if err != tc.err {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.err)
		}
	}
	// a valid proof for a different record
	if _, err := r.InputMsg(context.Background(), crypto.FieldFromUint64(1), rec, 3, other); err != protocol.ErrProofMismatch {
		t.Error("Expect a proof of another leaf to be rejected, got", err)
	}
	if r.Commitment() != before || len(r.Events(0)) != 0 {
		t.Fatal("Expect rejections not to change the registry")
	}
}

func TestReplayIsStale(t *testing.T) {
	r, tree := NewTestRegistry(t, Config{})
	tr := NewTestTransition(t, tree, r.Commitment(), 0, 0b000001)
	if _, err := r.Apply(context.Background(), tr); err != nil {
		t.Fatal(err)
	}
	after := r.Commitment()

	replay := NewTestTransition(t, tree, tr.Current, 0, 0b000001)
	if _, err := r.Apply(context.Background(), replay); err != protocol.ErrStaleCommitment {
		t.Fatal("Expect a replayed transition to be stale, got", err)
	}
	// tree was not updated, so its witness is stale against the live root
	stale := NewTestTransition(t, tree, after, 1, 0b000001)
	if _, err := r.Apply(context.Background(), stale); err != protocol.ErrProofMismatch {
		t.Fatal("Expect a stale witness to mismatch the live root, got", err)
	}
	if r.Commitment() != after {
		t.Fatal("Expect the commitment to be unchanged")
	}
}

func TestApplyStates(t *testing.T) {
	r, tree := NewTestRegistry(t, Config{})
	var trace []State
	r.processor.trace = func(s State) { trace = append(trace, s) }
	prepared := []State{Idle, Validating, Verifying, Recomputing, Proving, Committing}

	tr := NewTestTransition(t, tree, r.Commitment(), 0, 0b000001)
	if _, err := r.Apply(context.Background(), tr); err != nil {
		t.Fatal(err)
	}
	if want := append(prepared, Committed); !reflect.DeepEqual(trace, want) {
		t.Errorf("commit: states = %v, want %v", trace, want)
	}

	trace = nil
	replay := NewTestTransition(t, tree, tr.Current, 0, 0b000001)
	if _, err := r.Apply(context.Background(), replay); err != protocol.ErrStaleCommitment {
		t.Fatal("Expect ErrStaleCommitment, got", err)
	}
	if want := append(prepared, Rejected); !reflect.DeepEqual(trace, want) {
		t.Errorf("stale: states = %v, want %v", trace, want)
	}
}

func TestConcurrentTransitionsOneWinner(t *testing.T) {
	r, tree := NewTestRegistry(t, Config{})
	c := r.Commitment()
	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
		stale     int
	)
	for i := 0; i < n; i++ {
		tr := NewTestTransition(t, tree, c, i%TestMembers, 0b000001)
		wg.Add(1)
		go func(tr *Transition) {
			defer wg.Done()
			_, err := r.Apply(context.Background(), tr)
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				committed++
			case protocol.ErrStaleCommitment:
				stale++
			default:
				t.Error("Unexpected error", err)
			}
		}(tr)
	}
	wg.Wait()
	if committed != 1 || stale != n-1 {
		t.Fatal("Expect exactly one winner", "committed", committed, "stale", stale)
	}
	if r.Commitment().Version != 1 {
		t.Fatal("Expect a single version bump")
	}
}

func TestIndexBoundaries(t *testing.T) {
	r, err := New(Config{Hasher: poseidon.New()})
	if err != nil {
		t.Fatal(err)
	}
	full, err := merkletree.BuildCommitmentTree(poseidon.New(), merkletree.StaticTestRecords(merkletree.Capacity))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.InitState(full.Root()); err != nil {
		t.Fatal(err)
	}
	for _, index := range []int{0, 255} {
		tr := NewTestTransition(t, full, r.Commitment(), index, 0b001100)
		receipt, err := r.Apply(context.Background(), tr)
		if err != nil {
			t.Fatalf("Apply at index %d: %v", index, err)
		}
		if err := full.SetLeaf(index, receipt.Leaf.Record); err != nil {
			t.Fatal(err)
		}
	}
	proof, _ := full.Witness(255)
	rec, _ := full.Leaf(255)
	if _, err := r.InputMsg(context.Background(), crypto.FieldFromUint64(1), rec, 256, proof); err != protocol.ErrIndexOutOfRange {
		t.Fatal("Expect index 256 to be out of range, got", err)
	}
}

func TestNotInitialized(t *testing.T) {
	r, err := New(Config{Hasher: poseidon.New()})
	if err != nil {
		t.Fatal(err)
	}
	tree := newTestTree(t)
	tr := NewTestTransition(t, tree, r.Commitment(), 0, 1)
	if _, err := r.Apply(context.Background(), tr); err != protocol.ErrNotInitialized {
		t.Fatal("Expect ErrNotInitialized, got", err)
	}
}

func TestInitState(t *testing.T) {
	r, tree := NewTestRegistry(t, Config{})
	// re-initialization is allowed before the first transition
	if err := r.InitState(tree.Root()); err != nil {
		t.Fatal(err)
	}
	tr := NewTestTransition(t, tree, r.Commitment(), 0, 1)
	if _, err := r.Apply(context.Background(), tr); err != nil {
		t.Fatal(err)
	}
	if err := r.InitState(tree.Root()); err != protocol.ErrAlreadyInitialized {
		t.Fatal("Expect ErrAlreadyInitialized, got", err)
	}
}

func TestCheckMsg(t *testing.T) {
	r, _ := NewTestRegistry(t, Config{})
	before := r.Commitment()
	if !r.CheckMsg(crypto.FieldFromUint64(0b000110)) || r.CheckMsg(crypto.FieldFromUint64(0b000010)) {
		t.Fatal("Unexpected CheckMsg results")
	}
	if r.Commitment() != before {
		t.Fatal("Expect CheckMsg not to change the registry")
	}
}

func TestEvents(t *testing.T) {
	r, tree := NewTestRegistry(t, Config{})
	var notified []*protocol.Event
	r.OnEvent(func(ev *protocol.Event) { notified = append(notified, ev) })

	for i, payload := range []uint64{0b000001, 0b000110, 0b001100} {
		tr := NewTestTransition(t, tree, r.Commitment(), i, payload)
		receipt, err := r.Apply(context.Background(), tr)
		if err != nil {
			t.Fatal(err)
		}
		if err := tree.SetLeaf(i, receipt.Leaf.Record); err != nil {
			t.Fatal(err)
		}
	}
	events := r.Events(0)
	if len(events) != 3 || len(notified) != 3 {
		t.Fatal("Expect 3 events", "got", len(events), "notified", len(notified))
	}
	for i, ev := range events {
		if ev.Seq != uint64(i+1) || ev != notified[i] {
			t.Fatal("Unexpected event order")
		}
	}
	if since := r.Events(2); len(since) != 1 || since[0].Seq != 3 {
		t.Fatal("Expect only events after 2")
	}
	if len(r.Events(3)) != 0 {
		t.Fatal("Expect no events after the latest")
	}
}

func TestBackendErrorKeepsState(t *testing.T) {
	errBackend := errors.New("no")
	r, tree := NewTestRegistry(t, Config{
		Backend: backendFunc(func(context.Context, *Transition) error { return errBackend }),
	})
	before := r.Commitment()
	_, err := r.Apply(context.Background(), NewTestTransition(t, tree, before, 0, 1))
	if !errors.Is(err, errBackend) {
		t.Fatal("Expect the backend error, got", err)
	}
	if protocol.ToErrorCode(err) != protocol.ErrInternal {
		t.Fatal("Expect a backend error to be reported as internal")
	}
	if r.Commitment() != before {
		t.Fatal("Expect the registry to be unchanged")
	}
}

func TestRegistryReload(t *testing.T) {
	db, err := leveldbkv.OpenDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewStore(db)
	r, tree := NewTestRegistry(t, Config{Store: store})
	tr := NewTestTransition(t, tree, r.Commitment(), 2, 0b000110)
	receipt, err := r.Apply(context.Background(), tr)
	if err != nil {
		t.Fatal(err)
	}

	reloaded, err := New(Config{Hasher: poseidon.New(), Store: store})
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Commitment() != receipt.Commitment {
		t.Fatal("Expect the reloaded commitment to match")
	}
	events := reloaded.Events(0)
	if len(events) != 1 || events[0].ID != receipt.Event.ID {
		t.Fatal("Expect the event log to be reloaded")
	}
	leaves, err := store.LoadLeaves()
	if err != nil {
		t.Fatal(err)
	}
	if len(leaves) != TestMembers || leaves[2].Record != receipt.Leaf.Record {
		t.Fatal("Expect the updated leaf to be stored")
	}
}
