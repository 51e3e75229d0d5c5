// Copyright 2014-2015 The Coname Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package kv defines the key-value store the registry ledger is kept
// in. A store must make every Write atomic and durable before it
// returns, so a crash never exposes half of a batch.
package kv

import "errors"

// DB is an ordered key-value store. Get returns the error reported by
// ErrNotFound when the key is absent. Write applies a Batch atomically.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Write(Batch) error
	NewIterator(*Range) Iterator
	Close() error

	ErrNotFound() error
}

// A Batch collects Put-s and Delete-s to be applied by DB.Write.
type Batch interface {
	Reset()
	Put(key, value []byte)
	Delete(key []byte)
}

// Iterator walks the entries of a Range in key order. First and Next
// report whether the iterator is positioned on an entry. Key and Value
// are only valid until the next call to Next or Release. Error may be
// called after Release.
type Iterator interface {
	Key() []byte
	Value() []byte
	First() bool
	Next() bool
	Release()
	Error() error
}

// Range is the half-open key range [Start, Limit).
// A nil Limit means the range is unbounded above.
type Range struct {
	Start []byte
	Limit []byte
}

// PrefixRange returns the range of all keys starting with prefix.
func PrefixRange(prefix []byte) *Range {
	start := append([]byte(nil), prefix...)
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] < 0xff {
			limit := append([]byte(nil), prefix[:i+1]...)
			limit[i]++
			return &Range{Start: start, Limit: limit}
		}
	}
	return &Range{Start: start}
}

var (
	// ErrBadBufferLength indicates a stored value of unexpected size.
	ErrBadBufferLength = errors.New("[kv] Bad KV buffer's length")
	// ErrWrongBatch indicates a Batch created by a different DB.
	ErrWrongBatch = errors.New("[kv] Batch does not belong to this DB")
)
