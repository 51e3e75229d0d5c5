package merkletree

import (
	"encoding/json"
	"fmt"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
)

// ProofStep is one level of a MembershipProof: the sibling hash and
// whether the running node is the left child at that level.
type ProofStep struct {
	Sibling crypto.Field `json:"sibling"`
	IsLeft  bool         `json:"is_left"`
}

// MembershipProof is the authentication path of one leaf, ordered from
// the leaf level to the level just below the root. It is meaningful only
// relative to a specific leaf index and a specific root.
type MembershipProof struct {
	Path [TreeHeight]ProofStep `json:"path"`
}

// Index returns the leaf index implied by the direction bits of p.
func (p *MembershipProof) Index() int {
	index := 0
	for level, step := range p.Path {
		if !step.IsLeft {
			index |= 1 << uint(level)
		}
	}
	return index
}

// CalculateRoot folds the path of p over leafHash and returns the
// resulting root.
func (p *MembershipProof) CalculateRoot(h hasher.TreeHasher, leafHash crypto.Field) crypto.Field {
	current := leafHash
	for _, step := range p.Path {
		if step.IsLeft {
			current = h.HashInterior(current, step.Sibling)
		} else {
			current = h.HashInterior(step.Sibling, current)
		}
	}
	return current
}

// Verify recomputes the root from leafHash and the proof p, and compares
// it to claimedRoot. It has no side effects.
func Verify(h hasher.TreeHasher, leafHash crypto.Field, p *MembershipProof,
	claimedRoot crypto.Field) bool {
	if p == nil {
		return false
	}
	return p.CalculateRoot(h, leafHash) == claimedRoot
}

// UnmarshalJSON decodes a proof and rejects paths that do not have
// exactly TreeHeight steps.
func (p *MembershipProof) UnmarshalJSON(b []byte) error {
	var raw struct {
		Path []ProofStep `json:"path"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw.Path) != TreeHeight {
		return fmt.Errorf("[merkletree] Membership proof must have %d steps (got %d)",
			TreeHeight, len(raw.Path))
	}
	copy(p.Path[:], raw.Path)
	return nil
}
