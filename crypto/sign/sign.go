// Package sign generates the ed25519 key pairs whose public halves
// serve as participant identities in the registry.
package sign

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/ed25519"
)

const (
	// PrivateKeySize is the size of a private key in bytes.
	PrivateKeySize = 64
	// PublicKeySize is the size of a public key in bytes.
	PublicKeySize = 32
)

// ErrGetPubKey occurs if the PublicKey cannot be derived from the
// PrivateKey.
var ErrGetPubKey = errors.New("[sign] Failed to get the public-key from the private-key")

// PrivateKey wraps an ed25519 private key.
type PrivateKey ed25519.PrivateKey

// PublicKey wraps an ed25519 public key.
type PublicKey ed25519.PublicKey

// GenerateKey generates a new key pair using the entropy from rnd.
// If rnd is nil, crypto/rand.Reader is used.
func GenerateKey(rnd io.Reader) (PrivateKey, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	_, sk, err := ed25519.GenerateKey(rnd)
	return PrivateKey(sk), err
}

// Public returns the public key corresponding to key.
func (key PrivateKey) Public() (PublicKey, bool) {
	pk, ok := ed25519.PrivateKey(key).Public().(ed25519.PublicKey)
	return PublicKey(pk), ok
}
