package kv

import (
	"bytes"
	"testing"
)

func TestPrefixRange(t *testing.T) {
	for _, tc := range []struct {
		prefix []byte
		limit  []byte
	}{
		{[]byte("e"), []byte("f")},
		{[]byte{'l', 0xff}, []byte{'m'}},
		{[]byte{0xff, 0xff}, nil},
	} {
		rg := PrefixRange(tc.prefix)
		if !bytes.Equal(rg.Start, tc.prefix) {
			t.Errorf("PrefixRange(%x).Start = %x", tc.prefix, rg.Start)
		}
		if !bytes.Equal(rg.Limit, tc.limit) {
			t.Errorf("PrefixRange(%x).Limit = %x, want %x", tc.prefix, rg.Limit, tc.limit)
		}
	}
}
