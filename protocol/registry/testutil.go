package registry

import (
	"testing"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
)

// TestMembers is the number of records seeded by NewTestRegistry.
const TestMembers = 4

// NewTestRegistry returns an initialized Registry together with the
// commitment tree it was initialized from, for _tests_.
// The tree holds TestMembers static records with a zero payload.
func NewTestRegistry(t *testing.T, cfg Config) (*Registry, *merkletree.CommitmentTree) {
	if cfg.Hasher == nil {
		cfg.Hasher = poseidon.New()
	}
	tree, err := merkletree.BuildCommitmentTree(cfg.Hasher, merkletree.StaticTestRecords(TestMembers))
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var seed []Leaf
	for i := 0; i < TestMembers; i++ {
		rec, _ := tree.Leaf(i)
		seed = append(seed, Leaf{Index: i, Record: rec})
	}
	if err := r.InitState(tree.Root(), seed...); err != nil {
		t.Fatal(err)
	}
	return r, tree
}

// NewTestTransition builds the transition of the record at index in
// tree to payload, against commitment c, for _tests_.
func NewTestTransition(t *testing.T, tree *merkletree.CommitmentTree,
	c protocol.Commitment, index int, payload uint64) *Transition {
	rec, err := tree.Leaf(index)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := tree.Witness(index)
	if err != nil {
		t.Fatal(err)
	}
	return &Transition{
		Current: c,
		Index:   index,
		Record:  rec,
		Payload: crypto.FieldFromUint64(payload),
		Proof:   proof,
	}
}
