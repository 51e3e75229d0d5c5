package crypto

import (
	"bytes"
	"testing"
)

func TestDigest(t *testing.T) {
	d := Digest([]byte("a"), []byte("b"))
	if len(d) != HashSizeByte {
		t.Fatal("Unexpected digest size", "got", len(d))
	}
	if !bytes.Equal(d, Digest([]byte("ab"))) {
		t.Error("Expect the inputs to be concatenated")
	}
	if bytes.Equal(d, Digest([]byte("ba"))) {
		t.Error("Expect the digest to depend on the input order")
	}
}
