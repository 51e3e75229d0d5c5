package merkletree

import (
	"bytes"
	"strconv"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/sign"
)

// StaticTestIdentity returns a deterministic identity for _tests_.
func StaticTestIdentity(i int) Identity {
	seed := crypto.Digest([]byte("static test identity"), []byte(strconv.Itoa(i)))
	sk, err := sign.GenerateKey(bytes.NewReader(seed))
	if err != nil {
		panic(err)
	}
	pk, ok := sk.Public()
	if !ok {
		panic(sign.ErrGetPubKey)
	}
	id, err := IdentityFromPublicKey(pk)
	if err != nil {
		panic(err)
	}
	return id
}

// StaticTestRecords returns n records with static identities and a zero
// payload for _tests_.
func StaticTestRecords(n int) []LeafRecord {
	records := make([]LeafRecord, n)
	for i := range records {
		records[i] = LeafRecord{Identity: StaticTestIdentity(i)}
	}
	return records
}
