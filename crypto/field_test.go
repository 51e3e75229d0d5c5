package crypto

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestFieldFromUint64(t *testing.T) {
	f := FieldFromUint64(0x2c)
	if f.Low64() != 0x2c {
		t.Fatal("Unexpected low bits", "want", 0x2c, "got", f.Low64())
	}
	if f.Big().Uint64() != 0x2c {
		t.Fatal("Unexpected big.Int value", "got", f.Big())
	}
	if FieldFromUint64(0) != (Field{}) || !FieldFromUint64(0).IsZero() {
		t.Fatal("Expect 0 to be the zero value")
	}
}

func TestFieldBits(t *testing.T) {
	f := FieldFromUint64(0b101100)
	want := []uint8{0, 0, 1, 1, 0, 1, 0, 0}
	for i, w := range want {
		if got := f.Bit(uint(i)); got != w {
			t.Errorf("Bit(%d) = %d, want %d", i, got, w)
		}
	}
	// bits past the first byte
	g := FieldFromUint64(1 << 9)
	if g.Bit(9) != 1 || g.Bit(1) != 0 {
		t.Error("Bit() does not cross byte boundaries correctly")
	}
	if g.Bit(1000) != 0 {
		t.Error("Expect out of range bits to be zero")
	}
}

func TestFieldRange(t *testing.T) {
	if _, err := FieldFromBig(Modulus()); err != ErrNotInField {
		t.Fatal("Expect the modulus to be rejected", "got", err)
	}
	if _, err := FieldFromBig(big.NewInt(-1)); err != ErrNotInField {
		t.Fatal("Expect negative values to be rejected", "got", err)
	}
	max := new(big.Int).Sub(Modulus(), big.NewInt(1))
	f, err := FieldFromBig(max)
	if err != nil {
		t.Fatal(err)
	}
	if f.Big().Cmp(max) != 0 {
		t.Fatal("Round trip through Field changed the value")
	}
	if _, err := FieldFromBytes(make([]byte, FieldSize+1)); err != ErrNotInField {
		t.Fatal("Expect oversized input to be rejected")
	}
}

func TestReduceBytes(t *testing.T) {
	b := make([]byte, FieldSize)
	for i := range b {
		b[i] = 0xff
	}
	f := ReduceBytes(b)
	if f.Big().Cmp(Modulus()) >= 0 {
		t.Fatal("Expect the reduced value to be smaller than the modulus")
	}
}

func TestParseField(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want uint64
	}{
		{"24", 24},
		{"0x18", 24},
		{"0b011000", 24},
		{" 7 ", 7},
	} {
		f, err := ParseField(tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if f.Low64() != tc.want {
			t.Errorf("ParseField(%q) = %v, want %d", tc.in, f, tc.want)
		}
	}
	if _, err := ParseField("not a number"); err == nil {
		t.Error("Expect an error for malformed input")
	}
	if _, err := ParseField("-1"); err == nil {
		t.Error("Expect an error for a negative value")
	}
}

func TestFieldJSON(t *testing.T) {
	type wrapper struct {
		Value Field
	}
	in := wrapper{Value: FieldFromUint64(0xbeef)}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out wrapper
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.Value != in.Value {
		t.Fatal("Unexpected value after decoding", "want", in.Value, "got", out.Value)
	}
}
