// Copyright (C) 2024 kushdb authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package runtime

import (
	"bytes"

	"github.com/dchest/siphash"
)

// The ABIHT* and ABIBytes* constants name the generic build-side hash
// table generated code declares external (package translate's HashJoin
// and GroupByAggregate translators). A single byte-oriented table
// serves both operators: keys and payloads are opaque byte blobs the
// translator serializes from whatever scalar/string columns it needs,
// an untyped slot allocator keyed by a hash computed over raw tuple
// bytes.
const (
	ABIHTCreate     = "HTCreate"
	ABIHTInsert     = "HTInsert"
	ABIHTProbeFirst = "HTProbeFirst"
	ABIHTProbeNext  = "HTProbeNext"
	ABIHTKeyPtr     = "HTKeyPtr"
	ABIHTKeyLen     = "HTKeyLen"
	ABIHTValPtr     = "HTValPtr"
	ABIHTValLen     = "HTValLen"
	ABIHTFree       = "HTFree"

	// ABIHTUpsert is GroupByAggregate's building block: find the entry
	// whose key exactly matches (not just hash-matches), or insert one
	// seeded with initVal, and return a pointer to its value slot so the
	// caller can read-modify-write the running aggregate in place.
	ABIHTUpsert = "HTUpsert"
	// ABIHTAllFirst/ABIHTAllNext walk every entry in insertion order,
	// used once per GroupByAggregate query to emit one row per group
	// after the build pass over the child has finished.
	ABIHTAllFirst = "HTAllFirst"
	ABIHTAllNext  = "HTAllNext"

	ABIHashBytes  = "HashBytes"
	ABIBytesEqual = "BytesEqual"
)

// HashBytes hashes an arbitrary byte slice with the same keyed siphash
// Hash uses, so string keys and composite scalar keys
// bucket consistently regardless of which ABI symbol produced them.
func HashBytes(b []byte) uint64 { return siphash.Hash(siphashKey0, siphashKey1, b) }

// BytesEqual is the exact-match check a probe performs after a hash
// match, guarding against hash collisions the bucket alone can't rule
// out.
func BytesEqual(a, b []byte) bool { return bytes.Equal(a, b) }

// htEntry is one chained entry in a bucket.
type htEntry struct {
	hash     uint64
	key, val []byte
	next     *htEntry
	allNext  *htEntry
}

// HashTable is the Go reference implementation of the declared-external
// ABIHT* symbols: a separate-chaining hash table over opaque key/value
// byte blobs, used by the test suite and by any purely-Go execution
// path exercising translate's HashJoin/GroupByAggregate without going
// through an external compiler or JIT.
type HashTable struct {
	buckets        []*htEntry
	allHead, allTail *htEntry
}

const htBucketCountLog2 = 16

// NewHashTable allocates an empty table, the Go analogue of HTCreate.
func NewHashTable() *HashTable {
	return &HashTable{buckets: make([]*htEntry, 1<<htBucketCountLog2)}
}

func (h *HashTable) bucketIndex(hash uint64) uint64 {
	return hash & (1<<htBucketCountLog2 - 1)
}

// Insert adds one (key, val) pair under hash, the analogue of HTInsert.
func (h *HashTable) Insert(hash uint64, key, val []byte) {
	idx := h.bucketIndex(hash)
	e := &htEntry{hash: hash, key: append([]byte(nil), key...), val: append([]byte(nil), val...)}
	e.next = h.buckets[idx]
	h.buckets[idx] = e
	h.linkAll(e)
}

func (h *HashTable) linkAll(e *htEntry) {
	if h.allTail == nil {
		h.allHead, h.allTail = e, e
		return
	}
	h.allTail.allNext = e
	h.allTail = e
}

// Upsert returns the value slot for the entry whose key exactly matches
// (hash + byte equality), inserting one seeded with initVal if none
// exists yet, the analogue of HTUpsert.
func (h *HashTable) Upsert(hash uint64, key, initVal []byte) []byte {
	idx := h.bucketIndex(hash)
	for e := h.buckets[idx]; e != nil; e = e.next {
		if e.hash == hash && bytes.Equal(e.key, key) {
			return e.val
		}
	}
	e := &htEntry{hash: hash, key: append([]byte(nil), key...), val: append([]byte(nil), initVal...)}
	e.next = h.buckets[idx]
	h.buckets[idx] = e
	h.linkAll(e)
	return e.val
}

// AllFirst/AllNext walk every entry in insertion order.
func (h *HashTable) AllFirst() *HTIter {
	if h.allHead == nil {
		return nil
	}
	return &HTIter{e: h.allHead}
}

func (it *HTIter) AllNext() *HTIter {
	if it.e.allNext == nil {
		return nil
	}
	return &HTIter{e: it.e.allNext}
}

// HTIter walks one bucket's chain; nil means exhausted.
type HTIter struct {
	e *htEntry
}

// ProbeFirst returns the first chained entry whose hash matches, the
// analogue of HTProbeFirst.
func (h *HashTable) ProbeFirst(hash uint64) *HTIter {
	for e := h.buckets[h.bucketIndex(hash)]; e != nil; e = e.next {
		if e.hash == hash {
			return &HTIter{e: e}
		}
	}
	return nil
}

// ProbeNext advances past it to the next same-bucket entry matching
// it's hash, the analogue of HTProbeNext.
func (it *HTIter) ProbeNext() *HTIter {
	hash := it.e.hash
	for e := it.e.next; e != nil; e = e.next {
		if e.hash == hash {
			return &HTIter{e: e}
		}
	}
	return nil
}

func (it *HTIter) Key() []byte { return it.e.key }
func (it *HTIter) Val() []byte { return it.e.val }
