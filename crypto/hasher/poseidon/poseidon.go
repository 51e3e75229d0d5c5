// Package poseidon registers a TreeHasher built on the Poseidon hash
// over the BN254 scalar field. Leaf and interior hashes are separated
// by arity: interior nodes always hash exactly two inputs while leaf
// records hash three.
//
// Import it with a blank identifier to make the hasher available
// through hasher.Hasher(poseidon.PoseidonHasher).
package poseidon

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
)

func init() {
	hasher.RegisterHasher(PoseidonHasher, New)
}

// PoseidonHasher is the identity of the Poseidon tree hasher.
const PoseidonHasher = "Poseidon"

type poseidonHasher struct{}

// New returns an instance of the Poseidon tree hasher.
func New() hasher.TreeHasher {
	return poseidonHasher{}
}

func (poseidonHasher) ID() string {
	return PoseidonHasher
}

func (poseidonHasher) HashLeaf(fields ...crypto.Field) crypto.Field {
	if len(fields) == 2 {
		panic("[poseidon] A leaf record must not have the arity of an interior node")
	}
	return hash(fields...)
}

func (poseidonHasher) HashInterior(left, right crypto.Field) crypto.Field {
	return hash(left, right)
}

func hash(fields ...crypto.Field) crypto.Field {
	in := make([]*big.Int, len(fields))
	for i := range fields {
		in[i] = fields[i].Big()
	}
	out, err := poseidon.Hash(in)
	if err != nil {
		// inputs are canonical field elements, so the only
		// possible failure is an unsupported arity.
		panic(err)
	}
	f, err := crypto.FieldFromBig(out)
	if err != nil {
		panic(err)
	}
	return f
}
