package sign

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	sk, err := GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sk) != PrivateKeySize {
		t.Fatal("Unexpected private key size", "got", len(sk))
	}
	pk, ok := sk.Public()
	if !ok {
		t.Fatal(ErrGetPubKey)
	}
	if len(pk) != PublicKeySize {
		t.Fatal("Unexpected public key size", "got", len(pk))
	}
}

func TestGenerateKeyDeterministic(t *testing.T) {
	seed := []byte("deterministic tests need 256 bit")
	sk1, err := GenerateKey(bytes.NewReader(seed))
	if err != nil {
		t.Fatal(err)
	}
	sk2, err := GenerateKey(bytes.NewReader(seed))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sk1, sk2) {
		t.Fatal("Expect the same seed to produce the same key")
	}
}

type testErrorRandReader struct{}

func (er testErrorRandReader) Read([]byte) (int, error) {
	return 0, errors.New("Not enough entropy!")
}

func TestGenerateKeyNoEntropy(t *testing.T) {
	if _, err := GenerateKey(testErrorRandReader{}); err == nil {
		t.Fatal("Expect an error when the reader fails")
	}
}
