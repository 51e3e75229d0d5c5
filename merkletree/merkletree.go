package merkletree

import (
	"errors"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
)

const (
	// TreeHeight is the number of levels between a leaf and the root.
	TreeHeight = 8

	// Capacity is the number of leaf slots, indexed 0..Capacity-1.
	Capacity = 1 << TreeHeight
)

var (
	// ErrIndexOutOfRange indicates a leaf index outside [0, Capacity).
	ErrIndexOutOfRange = errors.New("[merkletree] Leaf index out of range")
)

// CommitmentTree is the authoritative off-chain copy of the registry:
// the leaf records, every node hash, and the cached root.
// nodes[0] holds the leaf hashes and nodes[TreeHeight][0] is the root.
//
// A CommitmentTree is not safe for concurrent use; a caller sharing it
// between goroutines must treat every SetLeaf/Witness/Root sequence
// touching the same path as one critical section.
type CommitmentTree struct {
	hasher  hasher.TreeHasher
	records [Capacity]LeafRecord
	nodes   [TreeHeight + 1][]crypto.Field
}

// NewCommitmentTree returns a tree whose slots all hold the hash of
// the zero LeafRecord.
func NewCommitmentTree(h hasher.TreeHasher) *CommitmentTree {
	m := &CommitmentTree{hasher: h}
	empty := LeafRecord{}.Hash(h)
	for level := 0; level <= TreeHeight; level++ {
		m.nodes[level] = make([]crypto.Field, Capacity>>uint(level))
		for i := range m.nodes[level] {
			m.nodes[level][i] = empty
		}
		empty = h.HashInterior(empty, empty)
	}
	return m
}

// BuildCommitmentTree returns a tree holding records at indices
// 0..len(records)-1.
func BuildCommitmentTree(h hasher.TreeHasher, records []LeafRecord) (*CommitmentTree, error) {
	if len(records) > Capacity {
		return nil, ErrIndexOutOfRange
	}
	m := NewCommitmentTree(h)
	for i, r := range records {
		if err := m.SetLeaf(i, r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func checkIndex(index int) error {
	if index < 0 || index >= Capacity {
		return ErrIndexOutOfRange
	}
	return nil
}

// SetLeaf stores r at index and rehashes the path from that leaf up to
// the root. All other nodes are left untouched.
func (m *CommitmentTree) SetLeaf(index int, r LeafRecord) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	m.records[index] = r
	m.nodes[0][index] = r.Hash(m.hasher)
	pos := index
	for level := 0; level < TreeHeight; level++ {
		pos >>= 1
		m.nodes[level+1][pos] = m.hasher.HashInterior(
			m.nodes[level][2*pos],
			m.nodes[level][2*pos+1])
	}
	return nil
}

// Leaf returns the record stored at index.
func (m *CommitmentTree) Leaf(index int) (LeafRecord, error) {
	if err := checkIndex(index); err != nil {
		return LeafRecord{}, err
	}
	return m.records[index], nil
}

// LeafHash returns the hash stored in the slot at index.
func (m *CommitmentTree) LeafHash(index int) (crypto.Field, error) {
	if err := checkIndex(index); err != nil {
		return crypto.Field{}, err
	}
	return m.nodes[0][index], nil
}

// Witness returns the membership proof of the leaf at index against the
// current root. The proof goes stale as soon as SetLeaf changes any node
// on the same path.
func (m *CommitmentTree) Witness(index int) (*MembershipProof, error) {
	if err := checkIndex(index); err != nil {
		return nil, err
	}
	proof := new(MembershipProof)
	pos := index
	for level := 0; level < TreeHeight; level++ {
		proof.Path[level] = ProofStep{
			Sibling: m.nodes[level][pos^1],
			IsLeft:  pos&1 == 0,
		}
		pos >>= 1
	}
	return proof, nil
}

// Root returns the cached root of the tree.
func (m *CommitmentTree) Root() crypto.Field {
	return m.nodes[TreeHeight][0]
}

// Hasher returns the tree's hash functions.
func (m *CommitmentTree) Hasher() hasher.TreeHasher {
	return m.hasher
}

// Clone returns a copy of the tree m.
// Any later change to the original tree m does not affect the cloned tree,
// and vice versa.
func (m *CommitmentTree) Clone() *CommitmentTree {
	c := &CommitmentTree{
		hasher:  m.hasher,
		records: m.records,
	}
	for level := range m.nodes {
		c.nodes[level] = append([]crypto.Field(nil), m.nodes[level]...)
	}
	return c
}
