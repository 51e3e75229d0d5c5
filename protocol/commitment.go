package protocol

import (
	"fmt"

	"github.com/spymsg/spymsg-go/crypto"
)

// A Commitment is the registry's attested state: the root of the
// commitment tree and the number of updates accepted so far.
// A Commitment with Version 0 has not had any update applied.
// Commitments are comparable with ==.
type Commitment struct {
	Root    crypto.Field `json:"root" toml:"root" yaml:"root"`
	Version uint64       `json:"version" toml:"version" yaml:"version"`
}

// Next returns the commitment that follows c once root is accepted.
func (c Commitment) Next(root crypto.Field) Commitment {
	return Commitment{Root: root, Version: c.Version + 1}
}

func (c Commitment) String() string {
	return fmt.Sprintf("%s@%d", c.Root, c.Version)
}
