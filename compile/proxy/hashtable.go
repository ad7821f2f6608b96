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

package proxy

import (
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/runtime"
)

// HashRuntime declares the external byte-keyed hash table symbols
// (package runtime's ABIHT* constants) once per program; HashJoin and
// GroupByAggregate translators build on it rather than on compile.Builder
// directly.
type HashRuntime struct {
	b compile.Builder

	bytePtr, i64, u32, voidPtr compile.Type

	create                      compile.Function
	insert, upsert              compile.Function
	probeFirst, probeNext        compile.Function
	allFirst, allNext            compile.Function
	keyPtr, keyLen, valPtr, valLen compile.Function
	free                        compile.Function

	hashBytes, bytesEqual compile.Function
}

// DeclareHashRuntime registers external declarations for every ABIHT*
// and ABIHashBytes/ABIBytesEqual symbol.
func DeclareHashRuntime(b compile.Builder) *HashRuntime {
	bytePtr := b.PointerType(b.I8Type())
	i64 := b.I64Type()
	u32 := b.UI32Type()
	voidPtr := b.PointerType(b.VoidType())
	boolT := b.I8Type()

	hr := &HashRuntime{b: b, bytePtr: bytePtr, i64: i64, u32: u32, voidPtr: voidPtr}
	hr.create = b.DeclareExternal(runtime.ABIHTCreate, voidPtr, nil)
	hr.insert = b.DeclareExternal(runtime.ABIHTInsert, b.VoidType(),
		[]compile.Type{voidPtr, i64, bytePtr, u32, bytePtr, u32})
	hr.upsert = b.DeclareExternal(runtime.ABIHTUpsert, bytePtr,
		[]compile.Type{voidPtr, i64, bytePtr, u32, bytePtr, u32})
	hr.probeFirst = b.DeclareExternal(runtime.ABIHTProbeFirst, voidPtr, []compile.Type{voidPtr, i64})
	hr.probeNext = b.DeclareExternal(runtime.ABIHTProbeNext, voidPtr, []compile.Type{voidPtr})
	hr.allFirst = b.DeclareExternal(runtime.ABIHTAllFirst, voidPtr, []compile.Type{voidPtr})
	hr.allNext = b.DeclareExternal(runtime.ABIHTAllNext, voidPtr, []compile.Type{voidPtr})
	hr.keyPtr = b.DeclareExternal(runtime.ABIHTKeyPtr, bytePtr, []compile.Type{voidPtr})
	hr.keyLen = b.DeclareExternal(runtime.ABIHTKeyLen, u32, []compile.Type{voidPtr})
	hr.valPtr = b.DeclareExternal(runtime.ABIHTValPtr, bytePtr, []compile.Type{voidPtr})
	hr.valLen = b.DeclareExternal(runtime.ABIHTValLen, u32, []compile.Type{voidPtr})
	hr.free = b.DeclareExternal(runtime.ABIHTFree, b.VoidType(), []compile.Type{voidPtr})
	hr.hashBytes = b.DeclareExternal(runtime.ABIHashBytes, i64, []compile.Type{bytePtr, u32})
	hr.bytesEqual = b.DeclareExternal(runtime.ABIBytesEqual, boolT,
		[]compile.Type{bytePtr, u32, bytePtr, u32})
	return hr
}

// Table wraps a single table instance (the void* handle HTCreate hands
// back).
type Table struct {
	hr  *HashRuntime
	ptr compile.Value
}

// Create allocates a new table.
func (hr *HashRuntime) Create() Table {
	return Table{hr: hr, ptr: hr.b.Call(hr.create)}
}

func (t Table) Value() compile.Value { return t.ptr }

// HashBytes hashes an arbitrary byte buffer (ptr, len both raw Values),
// used to compute the hash for both Insert/Upsert and Probe.
func (hr *HashRuntime) HashBytes(ptr, length compile.Value) Scalar {
	return Scalar{hr.b, hr.i64, hr.b.Call(hr.hashBytes, ptr, length)}
}

// BytesEqual performs the exact-match check after a hash-bucket match.
func (hr *HashRuntime) BytesEqual(aPtr, aLen, bPtr, bLen compile.Value) Bool {
	return Bool{hr.b, hr.b.Call(hr.bytesEqual, aPtr, aLen, bPtr, bLen)}
}

// Insert appends a (key,val) pair unconditionally (HashJoin's build
// side: multiple rows may legitimately share a key).
func (t Table) Insert(hash, keyPtr, keyLen, valPtr, valLen compile.Value) {
	t.hr.b.Call(t.hr.insert, t.ptr, hash, keyPtr, keyLen, valPtr, valLen)
}

// Upsert returns a pointer to the value slot for key, inserting one
// seeded with (initValPtr,len) if absent (GroupByAggregate's running
// accumulator).
func (t Table) Upsert(hash, keyPtr, keyLen, initValPtr, initValLen compile.Value) compile.Value {
	return t.hr.b.Call(t.hr.upsert, t.ptr, hash, keyPtr, keyLen, initValPtr, initValLen)
}

// Iter wraps one hash-table iterator (nil-able void* handle).
type Iter struct {
	hr  *HashRuntime
	ptr compile.Value
}

func (it Iter) Value() compile.Value { return it.ptr }

// WrapIter rewraps a raw iterator handle (e.g. one round-tripped through
// an Alloca slot so a translator can loop on it across IR basic blocks)
// as an Iter.
func (hr *HashRuntime) WrapIter(ptr compile.Value) Iter {
	return Iter{hr: hr, ptr: ptr}
}

func (t Table) ProbeFirst(hash compile.Value) Iter {
	return Iter{hr: t.hr, ptr: t.hr.b.Call(t.hr.probeFirst, t.ptr, hash)}
}

func (it Iter) ProbeNext() Iter {
	return Iter{hr: it.hr, ptr: it.hr.b.Call(it.hr.probeNext, it.ptr)}
}

func (t Table) AllFirst() Iter {
	return Iter{hr: t.hr, ptr: t.hr.b.Call(t.hr.allFirst, t.ptr)}
}

func (it Iter) AllNext() Iter {
	return Iter{hr: it.hr, ptr: it.hr.b.Call(it.hr.allNext, it.ptr)}
}

func (it Iter) KeyPtr() compile.Value { return it.hr.b.Call(it.hr.keyPtr, it.ptr) }
func (it Iter) KeyLen() compile.Value { return it.hr.b.Call(it.hr.keyLen, it.ptr) }
func (it Iter) ValPtr() compile.Value { return it.hr.b.Call(it.hr.valPtr, it.ptr) }
func (it Iter) ValLen() compile.Value { return it.hr.b.Call(it.hr.valLen, it.ptr) }

// IsNil compares the iterator handle against a null void pointer, the
// loop-termination test every probe/scan loop in package translate uses.
func (it Iter) IsNil() Bool {
	null := it.hr.b.NullPtr(it.hr.voidPtr)
	return Bool{it.hr.b, it.hr.b.Cmp(compile.CmpEQ, it.ptr, null)}
}

func (t Table) Free() { t.hr.b.Call(t.hr.free, t.ptr) }
