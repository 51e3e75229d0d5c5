package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// FieldSize is the size of an encoded Field in bytes.
const FieldSize = 32

var (
	// ErrNotInField indicates a value that is negative or not smaller
	// than the field modulus.
	ErrNotInField = errors.New("[crypto] Value is not a canonical field element")
)

var modulus = fr.Modulus()

// Field is a canonical element of the BN254 scalar field, stored as a
// fixed-width 256-bit unsigned integer in big-endian byte order.
// The zero value is the field's zero. Fields are comparable with ==.
type Field [FieldSize]byte

// Modulus returns a copy of the field modulus.
func Modulus() *big.Int {
	return new(big.Int).Set(modulus)
}

// FieldFromUint64 returns v as a field element.
func FieldFromUint64(v uint64) Field {
	var f Field
	binary.BigEndian.PutUint64(f[FieldSize-8:], v)
	return f
}

// FieldFromBig returns b as a field element.
// It returns ErrNotInField if b is negative or not smaller than the modulus.
func FieldFromBig(b *big.Int) (Field, error) {
	var f Field
	if b.Sign() < 0 || b.Cmp(modulus) >= 0 {
		return f, ErrNotInField
	}
	b.FillBytes(f[:])
	return f, nil
}

// FieldFromBytes interprets b as a big-endian unsigned integer of at most
// FieldSize bytes and returns it as a field element.
func FieldFromBytes(b []byte) (Field, error) {
	if len(b) > FieldSize {
		return Field{}, ErrNotInField
	}
	return FieldFromBig(new(big.Int).SetBytes(b))
}

// ReduceBytes interprets b as a big-endian unsigned integer and
// returns it reduced modulo the field modulus.
func ReduceBytes(b []byte) Field {
	n := new(big.Int).SetBytes(b)
	n.Mod(n, modulus)
	var f Field
	n.FillBytes(f[:])
	return f
}

// ParseField parses s as an unsigned integer. The base is implied by the
// prefix as in big.Int.SetString with base 0: "0x" for hex, "0b" for
// binary, "0o" for octal, decimal otherwise.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Field{}, fmt.Errorf("[crypto] Cannot parse field element %q", s)
	}
	return FieldFromBig(n)
}

// Big returns f as a new big.Int.
func (f Field) Big() *big.Int {
	return new(big.Int).SetBytes(f[:])
}

// IsZero reports whether f is the field's zero.
func (f Field) IsZero() bool {
	return f == Field{}
}

// Bit returns the i-th bit of f, counting from the least significant bit.
func (f Field) Bit(i uint) uint8 {
	if i >= FieldSize*8 {
		return 0
	}
	return (f[FieldSize-1-i/8] >> (i % 8)) & 1
}

// Low64 returns the 64 least significant bits of f.
func (f Field) Low64() uint64 {
	return binary.BigEndian.Uint64(f[FieldSize-8:])
}

// String returns f in hex with a "0x" prefix.
func (f Field) String() string {
	return "0x" + hex.EncodeToString(f[:])
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	v, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
