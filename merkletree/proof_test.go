package merkletree

import (
	"encoding/json"
	"testing"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
)

func TestWitnessSelfConsistency(t *testing.T) {
	for _, h := range testHashers {
		m, err := BuildCommitmentTree(h, StaticTestRecords(5))
		if err != nil {
			t.Fatal(err)
		}
		for _, i := range []int{0, 1, 4, 100, Capacity - 1} {
			proof, err := m.Witness(i)
			if err != nil {
				t.Fatal(err)
			}
			leafHash, err := m.LeafHash(i)
			if err != nil {
				t.Fatal(err)
			}
			if !Verify(h, leafHash, proof, m.Root()) {
				t.Errorf("%s: witness of leaf %d does not verify", h.ID(), i)
			}
			if got := proof.Index(); got != i {
				t.Errorf("%s: proof.Index() = %d, want %d", h.ID(), got, i)
			}
		}
	}
}

func TestVerifyRejectsWrongInputs(t *testing.T) {
	h := poseidon.New()
	m, err := BuildCommitmentTree(h, StaticTestRecords(4))
	if err != nil {
		t.Fatal(err)
	}
	proof, _ := m.Witness(1)
	leaf, _ := m.Leaf(1)
	leafHash := leaf.Hash(h)

	if Verify(h, leafHash, proof, crypto.FieldFromUint64(1)) {
		t.Error("Expect verification against a wrong root to fail")
	}
	other, _ := m.Leaf(2)
	if Verify(h, other.Hash(h), proof, m.Root()) {
		t.Error("Expect verification of another leaf to fail")
	}
	if Verify(h, leafHash, nil, m.Root()) {
		t.Error("Expect verification of a nil proof to fail")
	}

	tampered := *proof
	tampered.Path[3].Sibling = crypto.FieldFromUint64(42)
	if Verify(h, leafHash, &tampered, m.Root()) {
		t.Error("Expect verification of a tampered sibling to fail")
	}
	flipped := *proof
	flipped.Path[0].IsLeft = !flipped.Path[0].IsLeft
	if Verify(h, leafHash, &flipped, m.Root()) {
		t.Error("Expect verification with a flipped direction to fail")
	}
}

func TestWitnessGoesStale(t *testing.T) {
	h := poseidon.New()
	m, err := BuildCommitmentTree(h, StaticTestRecords(4))
	if err != nil {
		t.Fatal(err)
	}
	proof, _ := m.Witness(0)
	leaf, _ := m.Leaf(0)

	// leaf 1 is the sibling of leaf 0
	r1, _ := m.Leaf(1)
	if err := m.SetLeaf(1, r1.WithPayload(crypto.FieldFromUint64(1))); err != nil {
		t.Fatal(err)
	}
	if Verify(h, leaf.Hash(h), proof, m.Root()) {
		t.Fatal("Expect the old witness to be stale after a change on its path")
	}
	fresh, _ := m.Witness(0)
	if !Verify(h, leaf.Hash(h), fresh, m.Root()) {
		t.Fatal("Expect a fresh witness to verify")
	}
}

func TestProofJSON(t *testing.T) {
	m, err := BuildCommitmentTree(poseidon.New(), StaticTestRecords(3))
	if err != nil {
		t.Fatal(err)
	}
	proof, _ := m.Witness(2)
	b, err := json.Marshal(proof)
	if err != nil {
		t.Fatal(err)
	}
	var decoded MembershipProof
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != *proof {
		t.Fatal("Unexpected proof after decoding")
	}

	short := `{"path":[{"sibling":"0x01","is_left":true}]}`
	if err := json.Unmarshal([]byte(short), &decoded); err == nil {
		t.Fatal("Expect a proof with too few steps to be rejected")
	}
}
