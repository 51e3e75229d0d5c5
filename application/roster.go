package application

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/spymsg/spymsg-go/crypto/sign"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/utils"
)

// A Roster lists the records a registry starts from. Record i is
// stored at index i.
type Roster struct {
	Records []merkletree.LeafRecord `toml:"records" yaml:"records"`
}

// GenerateRoster creates a roster of n members, each with a fresh
// ed25519 identity and a zero payload. The private halves are
// returned alongside, in roster order.
// If rnd is nil, crypto/rand.Reader is used.
func GenerateRoster(n int, rnd io.Reader) (*Roster, []sign.PrivateKey, error) {
	if n < 1 || n > merkletree.Capacity {
		return nil, nil, fmt.Errorf("Roster size must be in [1, %d] (got %d)",
			merkletree.Capacity, n)
	}
	roster := &Roster{Records: make([]merkletree.LeafRecord, n)}
	keys := make([]sign.PrivateKey, n)
	for i := range roster.Records {
		sk, err := sign.GenerateKey(rnd)
		if err != nil {
			return nil, nil, err
		}
		pk, ok := sk.Public()
		if !ok {
			return nil, nil, sign.ErrGetPubKey
		}
		id, err := merkletree.IdentityFromPublicKey(pk)
		if err != nil {
			return nil, nil, err
		}
		roster.Records[i] = merkletree.LeafRecord{Identity: id}
		keys[i] = sk
	}
	return roster, keys, nil
}

// LoadRoster reads a roster in the given encoding, "toml" or "yaml".
func LoadRoster(file, encoding string) (*Roster, error) {
	buf, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("Cannot read roster: %v", err)
	}
	var roster Roster
	switch encoding {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(buf))
		dec.KnownFields(true)
		err = dec.Decode(&roster)
	default:
		_, err = toml.Decode(string(buf), &roster)
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to load roster: %v", err)
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// Validate checks that r fits the tree and that no identity occurs
// twice.
func (r *Roster) Validate() error {
	if len(r.Records) < 1 || len(r.Records) > merkletree.Capacity {
		return fmt.Errorf("Roster size must be in [1, %d] (got %d)",
			merkletree.Capacity, len(r.Records))
	}
	seen := make(map[merkletree.Identity]int, len(r.Records))
	for i, rec := range r.Records {
		if j, ok := seen[rec.Identity]; ok {
			return fmt.Errorf("Identity %s appears at %d and %d", rec.Identity, j, i)
		}
		seen[rec.Identity] = i
	}
	return nil
}

// Save writes r to file in the given encoding. It refuses to
// overwrite an existing file.
func (r *Roster) Save(file, encoding string) error {
	var buf bytes.Buffer
	var err error
	switch encoding {
	case "yaml":
		err = yaml.NewEncoder(&buf).Encode(r)
	default:
		err = toml.NewEncoder(&buf).Encode(r)
	}
	if err != nil {
		return err
	}
	return utils.WriteFile(file, buf.Bytes(), 0644)
}
