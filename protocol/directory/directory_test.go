package directory

import (
	"context"
	"testing"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
	"github.com/spymsg/spymsg-go/protocol/registry"
	"github.com/spymsg/spymsg-go/storage/kv/leveldbkv"
)

func witness(t *testing.T, d *Directory, index int) *protocol.Witness {
	res, err := d.Witness(&protocol.WitnessRequest{Index: index})
	if err != nil {
		t.Fatal(err)
	}
	return res.ResultResponse.(*protocol.Witness)
}

func inputMsg(w *protocol.Witness, payload uint64) *protocol.InputMsgRequest {
	return &protocol.InputMsgRequest{
		Payload:    crypto.FieldFromUint64(payload),
		Record:     w.Record,
		Index:      w.Index,
		Proof:      w.Proof,
		Commitment: w.Commitment,
	}
}

func TestWitness(t *testing.T) {
	d := NewTestDirectory(t)
	h := poseidon.New()
	for _, index := range []int{0, 3, 255} {
		w := witness(t, d, index)
		if w.Proof.Index() != index {
			t.Fatal("Expect the proof to be bound to", index)
		}
		if !merkletree.Verify(h, w.Record.Hash(h), w.Proof, w.Commitment.Root) {
			t.Fatal("Expect the witness to verify against its commitment", index)
		}
	}
	for _, index := range []int{-1, merkletree.Capacity} {
		res, err := d.Witness(&protocol.WitnessRequest{Index: index})
		if err != protocol.ErrIndexOutOfRange || res.Error != protocol.ErrIndexOutOfRange {
			t.Fatal("Expect ErrIndexOutOfRange for", index, "got", err)
		}
	}
}

func TestInputMsg(t *testing.T) {
	d := NewTestDirectory(t)
	w := witness(t, d, 2)
	res, err := d.InputMsg(context.Background(), inputMsg(w, 0b000110))
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Validate(); err != nil {
		t.Fatal(err)
	}
	result := res.ResultResponse.(*protocol.InputMsgResult)
	if result.Commitment != d.Commitment() || result.Commitment.Version != 1 {
		t.Fatal("Unexpected commitment", result.Commitment)
	}

	after := witness(t, d, 2)
	if after.Record.Payload != crypto.FieldFromUint64(0b000110) {
		t.Fatal("Expect the tree to hold the new payload")
	}
	if after.Record.Identity != w.Record.Identity {
		t.Fatal("Expect the identity to be unchanged")
	}
}

func TestInputMsgRejected(t *testing.T) {
	d := NewTestDirectory(t)
	w := witness(t, d, 1)
	before := d.Commitment()

	for _, tc := range []struct {
		name string
		req  *protocol.InputMsgRequest
		want protocol.ErrorCode
	}{
		{"invalid payload", inputMsg(w, 0b000010), protocol.ErrInvalidPayload},
		{"missing proof", &protocol.InputMsgRequest{Index: 1, Commitment: before}, protocol.ErrMalformedMessage},
		{"wrong index", func() *protocol.InputMsgRequest {
			req := inputMsg(w, 1)
			req.Index = 0
			return req
		}(), protocol.ErrProofMismatch},
		{"forged record", func() *protocol.InputMsgRequest {
			req := inputMsg(w, 1)
			req.Record.Payload = crypto.FieldFromUint64(1)
			return req
		}(), protocol.ErrProofMismatch},
	} {
		res, _ := d.InputMsg(context.Background(), tc.req)
		if res.Error != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, res.Error, tc.want)
		}
	}
	if d.Commitment() != before {
		t.Fatal("Expect rejected requests not to change the directory")
	}
}

func TestStaleWitness(t *testing.T) {
	d := NewTestDirectory(t)
	w0 := witness(t, d, 0)
	w1 := witness(t, d, 1)
	if _, err := d.InputMsg(context.Background(), inputMsg(w0, 0b000001)); err != nil {
		t.Fatal(err)
	}
	res, err := d.InputMsg(context.Background(), inputMsg(w1, 0b000001))
	if err != protocol.ErrStaleCommitment || res.Error != protocol.ErrStaleCommitment {
		t.Fatal("Expect a witness of an old commitment to be stale, got", err)
	}
	// replaying the accepted request
	if _, err := d.InputMsg(context.Background(), inputMsg(w0, 0b000001)); err != protocol.ErrStaleCommitment {
		t.Fatal("Expect a replay to be stale, got", err)
	}
	// a fresh witness succeeds
	if _, err := d.InputMsg(context.Background(), inputMsg(witness(t, d, 1), 0b000001)); err != nil {
		t.Fatal(err)
	}
}

func TestCheckMsg(t *testing.T) {
	d := NewTestDirectory(t)
	res, _ := d.CheckMsg(&protocol.CheckMsgRequest{Payload: crypto.FieldFromUint64(0b101100)})
	result := res.ResultResponse.(*protocol.CheckMsgResult)
	if result.Valid || result.Rules.FlagFourExcludesFiveSix {
		t.Fatal("Expect 0b101100 to break the third rule")
	}
}

func TestEvents(t *testing.T) {
	d := NewTestDirectory(t)
	for i := 0; i < 3; i++ {
		if _, err := d.InputMsg(context.Background(), inputMsg(witness(t, d, i), 0b001100)); err != nil {
			t.Fatal(err)
		}
	}
	res, _ := d.Events(&protocol.EventsRequest{Since: 1})
	list := res.ResultResponse.(*protocol.EventList)
	if len(list.Events) != 2 || list.Events[0].Seq != 2 || list.Events[1].Index != 2 {
		t.Fatal("Unexpected events", list.Events)
	}
}

func TestOpen(t *testing.T) {
	db, err := leveldbkv.OpenDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cfg := registry.Config{Hasher: poseidon.New(), Store: registry.NewStore(db)}

	if _, err := Open(cfg); err != protocol.ErrNotInitialized {
		t.Fatal("Expect ErrNotInitialized for an empty store, got", err)
	}

	d, err := New(cfg, merkletree.StaticTestRecords(TestMembers))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.InputMsg(context.Background(), inputMsg(witness(t, d, 3), 0b000110)); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Commitment() != d.Commitment() {
		t.Fatal("Expect the reopened directory to resume the commitment")
	}
	if witness(t, reopened, 3).Record != witness(t, d, 3).Record {
		t.Fatal("Expect the reopened tree to hold the updated record")
	}
	// the reopened directory accepts further updates
	if _, err := reopened.InputMsg(context.Background(), inputMsg(witness(t, reopened, 0), 0b000001)); err != nil {
		t.Fatal(err)
	}
}

func TestOpenMismatch(t *testing.T) {
	db, err := leveldbkv.OpenMemDB()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	store := registry.NewStore(db)
	cfg := registry.Config{Hasher: poseidon.New(), Store: store}
	if _, err := New(cfg, merkletree.StaticTestRecords(TestMembers)); err != nil {
		t.Fatal(err)
	}
	// drop a leaf behind the directory's back
	if err := store.Init(protocol.Commitment{Root: crypto.FieldFromUint64(1)}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(cfg); err != ErrLedgerMismatch {
		t.Fatal("Expect ErrLedgerMismatch, got", err)
	}
}
