package registry

import (
	"encoding/binary"
	"encoding/json"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
	"github.com/spymsg/spymsg-go/storage/kv"
)

// Key prefixes of the ledger.
const (
	commitmentIdentifier = 'C'
	leafIdentifier       = 'L'
	eventIdentifier      = 'E'
)

const (
	commitmentSize = crypto.FieldSize + 8
	leafRecordSize = merkletree.IdentitySize + crypto.FieldSize
)

// A Leaf is a record together with its slot in the commitment tree.
type Leaf struct {
	Index  int
	Record merkletree.LeafRecord
}

// Store keeps the registry ledger in a kv.DB: the commitment, the
// leaf records and the event log. Every accepted transition is
// written as one batch, so the three never disagree on disk.
type Store struct {
	db kv.DB
}

// NewStore returns a Store backed by db.
func NewStore(db kv.DB) *Store {
	return &Store{db: db}
}

func commitmentKey() []byte {
	return []byte{commitmentIdentifier}
}

func leafKey(index int) []byte {
	return []byte{leafIdentifier, byte(index)}
}

func eventKey(seq uint64) []byte {
	key := make([]byte, 9)
	key[0] = eventIdentifier
	binary.BigEndian.PutUint64(key[1:], seq)
	return key
}

func encodeCommitment(c protocol.Commitment) []byte {
	buf := make([]byte, 0, commitmentSize)
	buf = append(buf, c.Root[:]...)
	buf = binary.BigEndian.AppendUint64(buf, c.Version)
	return buf
}

func decodeCommitment(buf []byte) (protocol.Commitment, error) {
	var c protocol.Commitment
	if len(buf) != commitmentSize {
		return c, kv.ErrBadBufferLength
	}
	root, err := crypto.FieldFromBytes(buf[:crypto.FieldSize])
	if err != nil {
		return c, err
	}
	c.Root = root
	c.Version = binary.BigEndian.Uint64(buf[crypto.FieldSize:])
	return c, nil
}

func encodeLeafRecord(r merkletree.LeafRecord) []byte {
	buf := make([]byte, 0, leafRecordSize)
	buf = append(buf, r.Identity[:]...)
	buf = append(buf, r.Payload[:]...)
	return buf
}

func decodeLeafRecord(buf []byte) (merkletree.LeafRecord, error) {
	var r merkletree.LeafRecord
	if len(buf) != leafRecordSize {
		return r, kv.ErrBadBufferLength
	}
	copy(r.Identity[:], buf[:merkletree.IdentitySize])
	payload, err := crypto.FieldFromBytes(buf[merkletree.IdentitySize:])
	if err != nil {
		return r, err
	}
	r.Payload = payload
	return r, nil
}

// LoadCommitment returns the stored commitment. ok is false if the
// registry was never initialized.
func (s *Store) LoadCommitment() (c protocol.Commitment, ok bool, err error) {
	buf, err := s.db.Get(commitmentKey())
	if err == s.db.ErrNotFound() {
		return c, false, nil
	}
	if err != nil {
		return c, false, err
	}
	c, err = decodeCommitment(buf)
	if err != nil {
		return c, false, err
	}
	return c, true, nil
}

// LoadLeaves returns every stored leaf record in index order.
func (s *Store) LoadLeaves() ([]Leaf, error) {
	var leaves []Leaf
	it := s.db.NewIterator(kv.PrefixRange([]byte{leafIdentifier}))
	for ok := it.First(); ok; ok = it.Next() {
		key := it.Key()
		if len(key) != 2 {
			it.Release()
			return nil, kv.ErrBadBufferLength
		}
		r, err := decodeLeafRecord(it.Value())
		if err != nil {
			it.Release()
			return nil, err
		}
		leaves = append(leaves, Leaf{Index: int(key[1]), Record: r})
	}
	it.Release()
	return leaves, it.Error()
}

// LoadEvents returns the event log in sequence order.
func (s *Store) LoadEvents() ([]*protocol.Event, error) {
	var events []*protocol.Event
	it := s.db.NewIterator(kv.PrefixRange([]byte{eventIdentifier}))
	for ok := it.First(); ok; ok = it.Next() {
		ev := new(protocol.Event)
		if err := json.Unmarshal(it.Value(), ev); err != nil {
			it.Release()
			return nil, err
		}
		events = append(events, ev)
	}
	it.Release()
	return events, it.Error()
}

// Init replaces any stored leaves with leaves and writes the initial
// commitment.
func (s *Store) Init(c protocol.Commitment, leaves []Leaf) error {
	wb := s.db.NewBatch()
	old, err := s.LoadLeaves()
	if err != nil {
		return err
	}
	for _, l := range old {
		wb.Delete(leafKey(l.Index))
	}
	for _, l := range leaves {
		wb.Put(leafKey(l.Index), encodeLeafRecord(l.Record))
	}
	wb.Put(commitmentKey(), encodeCommitment(c))
	return s.db.Write(wb)
}

// Commit writes the outcome of an accepted transition: the new
// commitment, the updated leaf and the event announcing it.
func (s *Store) Commit(c protocol.Commitment, leaf Leaf, ev *protocol.Event) error {
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	wb := s.db.NewBatch()
	wb.Put(leafKey(leaf.Index), encodeLeafRecord(leaf.Record))
	wb.Put(eventKey(ev.Seq), evBytes)
	wb.Put(commitmentKey(), encodeCommitment(c))
	return s.db.Write(wb)
}
