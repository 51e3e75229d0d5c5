/*
Package merkletree implements the fixed-height commitment tree of the
registry and its membership proofs.

Commitment Tree

The commitment tree is a complete binary Merkle tree of height TreeHeight
with Capacity leaf slots. Every slot holds the hash of one LeafRecord;
slots that were never set hold the hash of the zero record, so the root
is a pure function of the ordered sequence of leaf hashes. The tree keeps
every level in memory, which makes reading the root O(1) and updating a
leaf O(TreeHeight): SetLeaf rehashes exactly the path from the leaf to the
root and leaves all other nodes untouched.

Membership Proofs

A MembershipProof is the ordered list of TreeHeight sibling hashes from a
leaf up to the root, each paired with the side the running node sits on.
Verify folds the path over a leaf hash and compares the result with a
claimed root. The proof implies the leaf index through its direction bits
(see MembershipProof.Index); callers that care which slot is being proven
must compare that index with the expected one.

The hash functions are provided by the hasher package
(see https://godoc.org/github.com/spymsg/spymsg-go/crypto/hasher).
*/
package merkletree
