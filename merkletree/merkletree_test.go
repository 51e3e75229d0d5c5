package merkletree

import (
	"testing"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	"github.com/spymsg/spymsg-go/crypto/hasher/shake"
)

var testHashers = []hasher.TreeHasher{poseidon.New(), shake.New()}

func TestEmptyTreeRoot(t *testing.T) {
	for _, h := range testHashers {
		m := NewCommitmentTree(h)
		want := LeafRecord{}.Hash(h)
		for level := 0; level < TreeHeight; level++ {
			want = h.HashInterior(want, want)
		}
		if m.Root() != want {
			t.Errorf("%s: unexpected empty root", h.ID())
		}
	}
}

func TestRootIsFunctionOfLeaves(t *testing.T) {
	for _, h := range testHashers {
		records := StaticTestRecords(4)
		m1, err := BuildCommitmentTree(h, records)
		if err != nil {
			t.Fatal(err)
		}
		// same leaves, inserted in a different order
		m2 := NewCommitmentTree(h)
		for i := len(records) - 1; i >= 0; i-- {
			if err := m2.SetLeaf(i, records[i]); err != nil {
				t.Fatal(err)
			}
		}
		if m1.Root() != m2.Root() {
			t.Errorf("%s: expect equal roots for equal leaf sequences", h.ID())
		}
		// swapping two leaves changes the sequence and the root
		if err := m2.SetLeaf(0, records[1]); err != nil {
			t.Fatal(err)
		}
		if err := m2.SetLeaf(1, records[0]); err != nil {
			t.Fatal(err)
		}
		if m1.Root() == m2.Root() {
			t.Errorf("%s: expect different roots for reordered leaves", h.ID())
		}
	}
}

func TestSetLeafChangesRootIffLeafHashChanges(t *testing.T) {
	h := poseidon.New()
	m, err := BuildCommitmentTree(h, StaticTestRecords(4))
	if err != nil {
		t.Fatal(err)
	}
	before := m.Root()

	// rewriting the same record keeps the root
	r, err := m.Leaf(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetLeaf(2, r); err != nil {
		t.Fatal(err)
	}
	if m.Root() != before {
		t.Fatal("Expect the root to be unchanged")
	}

	if err := m.SetLeaf(2, r.WithPayload(crypto.FieldFromUint64(4))); err != nil {
		t.Fatal(err)
	}
	if m.Root() == before {
		t.Fatal("Expect the root to change")
	}
}

func TestSetLeafKeepsOtherWitnessesValid(t *testing.T) {
	h := poseidon.New()
	m, err := BuildCommitmentTree(h, StaticTestRecords(8))
	if err != nil {
		t.Fatal(err)
	}
	r, _ := m.Leaf(3)
	if err := m.SetLeaf(3, r.WithPayload(crypto.FieldFromUint64(1))); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < Capacity; i++ {
		proof, err := m.Witness(i)
		if err != nil {
			t.Fatal(err)
		}
		leaf, _ := m.Leaf(i)
		if !Verify(h, leaf.Hash(h), proof, m.Root()) {
			t.Fatalf("Witness of leaf %d is not valid against the new root", i)
		}
	}
}

func TestIndexBoundaries(t *testing.T) {
	m := NewCommitmentTree(poseidon.New())
	r := LeafRecord{Identity: StaticTestIdentity(0)}
	for _, tc := range []struct {
		index int
		want  error
	}{
		{0, nil},
		{Capacity - 1, nil},
		{Capacity, ErrIndexOutOfRange},
		{-1, ErrIndexOutOfRange},
	} {
		if err := m.SetLeaf(tc.index, r); err != tc.want {
			t.Errorf("SetLeaf(%d) = %v, want %v", tc.index, err, tc.want)
		}
		if _, err := m.Witness(tc.index); err != tc.want {
			t.Errorf("Witness(%d) = %v, want %v", tc.index, err, tc.want)
		}
		if _, err := m.Leaf(tc.index); err != tc.want {
			t.Errorf("Leaf(%d) = %v, want %v", tc.index, err, tc.want)
		}
	}
	if _, err := BuildCommitmentTree(poseidon.New(), make([]LeafRecord, Capacity+1)); err != ErrIndexOutOfRange {
		t.Error("Expect too many records to be rejected")
	}
}

func TestClone(t *testing.T) {
	m, err := BuildCommitmentTree(poseidon.New(), StaticTestRecords(2))
	if err != nil {
		t.Fatal(err)
	}
	c := m.Clone()
	if err := m.SetLeaf(5, LeafRecord{Identity: StaticTestIdentity(5)}); err != nil {
		t.Fatal(err)
	}
	if c.Root() == m.Root() {
		t.Fatal("Expect the clone to be unaffected by later changes")
	}
	if r, _ := c.Leaf(5); r != (LeafRecord{}) {
		t.Fatal("Expect the clone's slot to stay empty")
	}
}
