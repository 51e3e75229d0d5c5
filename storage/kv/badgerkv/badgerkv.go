// Package badgerkv implements the kv interface using badger.
package badgerkv

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"

	"github.com/spymsg/spymsg-go/storage/kv"
)

type badgerkv struct {
	db *badger.DB
}

// OpenDB opens, creating it if needed, the badger database in dir.
func OpenDB(dir string) (kv.DB, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenMemDB opens a badger database kept in memory.
func OpenMemDB() (kv.DB, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (kv.DB, error) {
	db, err := badger.Open(opts.WithLogger(nil).WithSyncWrites(true))
	if err != nil {
		return nil, err
	}
	return Wrap(db), nil
}

// Wrap uses a badger.DB as a kv.DB.
func Wrap(db *badger.DB) kv.DB {
	return &badgerkv{db: db}
}

func (b *badgerkv) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (b *badgerkv) Put(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerkv) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

type op struct {
	key, value []byte
	del        bool
}

type batch struct {
	ops []op
}

func (wb *batch) Reset() {
	wb.ops = wb.ops[:0]
}

func (wb *batch) Put(key, value []byte) {
	wb.ops = append(wb.ops, op{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

func (wb *batch) Delete(key []byte) {
	wb.ops = append(wb.ops, op{key: append([]byte(nil), key...), del: true})
}

func (b *badgerkv) NewBatch() kv.Batch {
	return new(batch)
}

// Write applies every operation of wb in a single transaction.
func (b *badgerkv) Write(wb kv.Batch) error {
	bb, ok := wb.(*batch)
	if !ok {
		return kv.ErrWrongBatch
	}
	return b.db.Update(func(txn *badger.Txn) error {
		for _, o := range bb.ops {
			var err error
			if o.del {
				err = txn.Delete(o.key)
			} else {
				err = txn.Set(o.key, o.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *badgerkv) NewIterator(rg *kv.Range) kv.Iterator {
	if rg == nil {
		rg = &kv.Range{}
	}
	txn := b.db.NewTransaction(false)
	return &iterator{
		txn: txn,
		it:  txn.NewIterator(badger.DefaultIteratorOptions),
		rg:  rg,
	}
}

func (b *badgerkv) Close() error {
	return b.db.Close()
}

func (b *badgerkv) ErrNotFound() error {
	return badger.ErrKeyNotFound
}

type iterator struct {
	txn      *badger.Txn
	it       *badger.Iterator
	rg       *kv.Range
	key      []byte
	value    []byte
	err      error
	started  bool
	released bool
}

func (i *iterator) First() bool {
	if i.released {
		return false
	}
	i.started = true
	i.it.Seek(i.rg.Start)
	return i.load()
}

func (i *iterator) Next() bool {
	if !i.started {
		return i.First()
	}
	if i.released || i.key == nil {
		return false
	}
	i.it.Next()
	return i.load()
}

func (i *iterator) load() bool {
	i.key, i.value = nil, nil
	if i.released || i.err != nil || !i.it.Valid() {
		return false
	}
	item := i.it.Item()
	if i.rg.Limit != nil && bytes.Compare(item.Key(), i.rg.Limit) >= 0 {
		return false
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		i.err = err
		return false
	}
	i.key = item.KeyCopy(nil)
	i.value = value
	return true
}

func (i *iterator) Key() []byte {
	return i.key
}

func (i *iterator) Value() []byte {
	return i.value
}

func (i *iterator) Release() {
	if i.released {
		return
	}
	i.released = true
	i.it.Close()
	i.txn.Discard()
}

func (i *iterator) Error() error {
	return i.err
}
