// Package kvtest holds behaviour checks shared by every kv.DB
// implementation, for _tests_.
package kvtest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/spymsg/spymsg-go/storage/kv"
)

// Run exercises db through the whole kv.DB interface.
// db must be empty.
func Run(t *testing.T, db kv.DB) {
	t.Run("GetPutDelete", func(t *testing.T) { testGetPutDelete(t, db) })
	t.Run("Batch", func(t *testing.T) { testBatch(t, db) })
	t.Run("Iterator", func(t *testing.T) { testIterator(t, db) })
}

func testGetPutDelete(t *testing.T, db kv.DB) {
	key := []byte("gpd-key")
	if _, err := db.Get(key); err != db.ErrNotFound() {
		t.Fatal("Expect ErrNotFound for a missing key, got", err)
	}
	if err := db.Put(key, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	v, err := db.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(v, []byte("v1")) {
		t.Fatal("Unexpected value", "want", "v1", "got", string(v))
	}
	if err := db.Delete(key); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Get(key); err != db.ErrNotFound() {
		t.Fatal("Expect ErrNotFound after Delete, got", err)
	}
}

func testBatch(t *testing.T, db kv.DB) {
	if err := db.Put([]byte("b-old"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	wb := db.NewBatch()
	wb.Put([]byte("b-1"), []byte("one"))
	wb.Put([]byte("b-2"), []byte("two"))
	wb.Delete([]byte("b-old"))
	if _, err := db.Get([]byte("b-1")); err != db.ErrNotFound() {
		t.Fatal("Expect batched writes to stay invisible before Write")
	}
	if err := db.Write(wb); err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]string{"b-1": "one", "b-2": "two"} {
		v, err := db.Get([]byte(k))
		if err != nil {
			t.Fatal(err)
		}
		if string(v) != want {
			t.Errorf("Get(%s) = %s, want %s", k, v, want)
		}
	}
	if _, err := db.Get([]byte("b-old")); err != db.ErrNotFound() {
		t.Fatal("Expect the batched delete to be applied")
	}

	wb.Reset()
	wb.Put([]byte("b-3"), []byte("three"))
	if err := db.Write(wb); err != nil {
		t.Fatal(err)
	}
	if v, _ := db.Get([]byte("b-1")); string(v) != "one" {
		t.Fatal("Expect Reset to drop earlier operations only")
	}
}

func testIterator(t *testing.T, db kv.DB) {
	for i := 0; i < 5; i++ {
		if err := db.Put([]byte(fmt.Sprintf("it-%d", i)), []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Put([]byte("iu"), []byte("outside")); err != nil {
		t.Fatal(err)
	}

	it := db.NewIterator(kv.PrefixRange([]byte("it-")))
	n := 0
	for ok := it.First(); ok; ok = it.Next() {
		want := fmt.Sprintf("it-%d", n)
		if string(it.Key()) != want {
			t.Fatal("Unexpected key", "want", want, "got", string(it.Key()))
		}
		if !bytes.Equal(it.Value(), []byte{byte(n)}) {
			t.Fatal("Unexpected value for", want)
		}
		n++
	}
	it.Release()
	if err := it.Error(); err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatal("Expect 5 entries in range, got", n)
	}

	it = db.NewIterator(kv.PrefixRange([]byte("it-")))
	n = 0
	for it.Next() {
		n++
	}
	if it.Next() {
		t.Fatal("Expect an exhausted iterator to stay exhausted")
	}
	it.Release()
	if n != 5 {
		t.Fatal("Expect Next on a fresh iterator to visit all entries, got", n)
	}
}
