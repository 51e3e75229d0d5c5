package directory

import (
	"testing"

	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol/registry"
)

// TestMembers is the number of records of a test directory.
const TestMembers = 4

// NewTestDirectory creates a Directory of TestMembers static records
// with a zero payload, for testing server-side operations.
func NewTestDirectory(t *testing.T) *Directory {
	d, err := New(registry.Config{Hasher: poseidon.New()},
		merkletree.StaticTestRecords(TestMembers))
	if err != nil {
		t.Fatal(err)
	}
	return d
}
