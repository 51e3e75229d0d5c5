// Package crypto contains the cryptographic primitives shared by the
// registry:
// - Field, a canonical element of the BN254 scalar field, which is the
// value type of payloads, leaf hashes and commitments
// - Digest, a SHAKE128-based hash of arbitrary data.
//
// Tree hash functions live in the hasher package and its subpackages;
// identity keys live in the sign package.
package crypto
