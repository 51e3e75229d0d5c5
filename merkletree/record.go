package merkletree

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher"
	"github.com/spymsg/spymsg-go/crypto/sign"
)

// IdentitySize is the size of an Identity in bytes.
const IdentitySize = sign.PublicKeySize

// ErrBadIdentity indicates an identity of the wrong length or encoding.
var ErrBadIdentity = errors.New("[merkletree] Malformed identity")

// Identity is the public-key-like value identifying a participant.
// It is opaque to the tree beyond being hashed.
type Identity [IdentitySize]byte

// IdentityFromPublicKey returns the identity of the given public key.
func IdentityFromPublicKey(pk sign.PublicKey) (Identity, error) {
	var id Identity
	if len(pk) != IdentitySize {
		return id, ErrBadIdentity
	}
	copy(id[:], pk)
	return id, nil
}

// ParseIdentity decodes a hex-encoded identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != IdentitySize {
		return id, ErrBadIdentity
	}
	copy(id[:], b)
	return id, nil
}

// String returns id in hex.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	v, err := ParseIdentity(string(text))
	if err != nil {
		return fmt.Errorf("%v: %q", err, text)
	}
	*id = v
	return nil
}

// A LeafRecord is the content of one slot of the commitment tree:
// a participant identity and its payload. Records are values; an
// update replaces the whole record.
type LeafRecord struct {
	Identity Identity     `json:"identity" toml:"identity" yaml:"identity"`
	Payload  crypto.Field `json:"payload" toml:"payload" yaml:"payload"`
}

// Fields serializes r into field elements in hashing order: the high
// and low 128-bit halves of the identity, then the payload.
func (r LeafRecord) Fields() []crypto.Field {
	hi, err := crypto.FieldFromBytes(r.Identity[:IdentitySize/2])
	if err != nil {
		panic(err)
	}
	lo, err := crypto.FieldFromBytes(r.Identity[IdentitySize/2:])
	if err != nil {
		panic(err)
	}
	return []crypto.Field{hi, lo, r.Payload}
}

// Hash returns the leaf hash of r.
func (r LeafRecord) Hash(h hasher.TreeHasher) crypto.Field {
	return h.HashLeaf(r.Fields()...)
}

// WithPayload returns a copy of r holding payload.
func (r LeafRecord) WithPayload(payload crypto.Field) LeafRecord {
	return LeafRecord{
		Identity: r.Identity,
		Payload:  payload,
	}
}
