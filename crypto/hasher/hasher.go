package hasher

import (
	"fmt"
	"sort"

	"github.com/spymsg/spymsg-go/crypto"
)

// TreeHasher provides the hash functions of the commitment tree.
// Leaf and interior hashes must be domain separated from each other.
type TreeHasher interface {
	// ID returns the name of the hash function.
	ID() string

	// HashLeaf computes the hash of a serialized leaf record as:
	// H(fields[0] || ... || fields[n-1]). The order of fields matters.
	HashLeaf(fields ...crypto.Field) crypto.Field

	// HashInterior computes the hash of an interior node as:
	// H(left || right)
	HashInterior(left, right crypto.Field) crypto.Field
}

var hashers = make(map[string]TreeHasher)

// RegisterHasher registers a hasher for use.
func RegisterHasher(h string, f func() TreeHasher) {
	if _, ok := hashers[h]; ok {
		panic(fmt.Sprintf("RegisterHasher(%v) is already registered", h))
	}
	hashers[h] = f()
}

// Hasher returns a registered TreeHasher identified by the given name.
func Hasher(h string) (TreeHasher, error) {
	if f, ok := hashers[h]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("Hasher(%v) is unknown hasher", h)
}

// Registered returns the names of all registered hashers.
func Registered() []string {
	names := make([]string, 0, len(hashers))
	for name := range hashers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
