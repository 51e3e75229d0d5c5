// Package shake registers a TreeHasher built on SHAKE128. Outputs are
// reduced modulo the BN254 scalar field so that roots stay field
// elements. Leaf and interior hashes are separated by a one byte
// identifier prefix.
package shake

import (
	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
)

func init() {
	hasher.RegisterHasher(SHAKEHasher, New)
}

const (
	// SHAKEHasher is the identity of the SHAKE128 tree hasher.
	SHAKEHasher = crypto.HashID

	leafIdentifier     = 'L'
	interiorIdentifier = 'I'
)

type shakeHasher struct{}

// New returns an instance of the SHAKE128 tree hasher.
func New() hasher.TreeHasher {
	return shakeHasher{}
}

func (shakeHasher) ID() string {
	return SHAKEHasher
}

func (shakeHasher) HashLeaf(fields ...crypto.Field) crypto.Field {
	ms := make([][]byte, 0, len(fields)+1)
	ms = append(ms, []byte{leafIdentifier})
	for i := range fields {
		ms = append(ms, fields[i][:])
	}
	return crypto.ReduceBytes(crypto.Digest(ms...))
}

func (shakeHasher) HashInterior(left, right crypto.Field) crypto.Field {
	return crypto.ReduceBytes(crypto.Digest(
		[]byte{interiorIdentifier},
		left[:],
		right[:],
	))
}
