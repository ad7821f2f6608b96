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

// RowRuntime declares the external append-then-sort row buffer symbols
// (package runtime's ABIRowBuffer*/ABISortBy* constants) OrderBy's
// translator builds on.
type RowRuntime struct {
	b compile.Builder

	voidPtr, bytePtr, u32 compile.Type

	create, append, rowPtr, length, free compile.Function
	sortI64Asc, sortI64Desc              compile.Function
	sortF64Asc, sortF64Desc              compile.Function
	sortBytesAsc, sortBytesDesc          compile.Function
}

// DeclareRowRuntime registers external declarations for the row-buffer
// and per-key-kind sort symbols.
func DeclareRowRuntime(b compile.Builder) *RowRuntime {
	voidPtr := b.PointerType(b.VoidType())
	bytePtr := b.PointerType(b.I8Type())
	u32 := b.UI32Type()

	rr := &RowRuntime{b: b, voidPtr: voidPtr, bytePtr: bytePtr, u32: u32}
	rr.create = b.DeclareExternal(runtime.ABIRowBufferCreate, voidPtr, []compile.Type{u32})
	rr.append = b.DeclareExternal(runtime.ABIRowBufferAppend, u32, []compile.Type{voidPtr, bytePtr})
	rr.rowPtr = b.DeclareExternal(runtime.ABIRowBufferRowPtr, bytePtr, []compile.Type{voidPtr, u32})
	rr.length = b.DeclareExternal(runtime.ABIRowBufferLen, u32, []compile.Type{voidPtr})
	rr.free = b.DeclareExternal(runtime.ABIRowBufferFree, b.VoidType(), []compile.Type{voidPtr})
	rr.sortI64Asc = b.DeclareExternal(runtime.ABISortByI64Asc, b.VoidType(), []compile.Type{voidPtr, u32})
	rr.sortI64Desc = b.DeclareExternal(runtime.ABISortByI64Desc, b.VoidType(), []compile.Type{voidPtr, u32})
	rr.sortF64Asc = b.DeclareExternal(runtime.ABISortByF64Asc, b.VoidType(), []compile.Type{voidPtr, u32})
	rr.sortF64Desc = b.DeclareExternal(runtime.ABISortByF64Desc, b.VoidType(), []compile.Type{voidPtr, u32})
	rr.sortBytesAsc = b.DeclareExternal(runtime.ABISortByBytesAsc, b.VoidType(),
		[]compile.Type{voidPtr, u32, u32})
	rr.sortBytesDesc = b.DeclareExternal(runtime.ABISortByBytesDesc, b.VoidType(),
		[]compile.Type{voidPtr, u32, u32})
	return rr
}

// Buffer wraps one row buffer instance.
type Buffer struct {
	rr     *RowRuntime
	ptr    compile.Value
	stride int
}

// Create allocates a buffer of fixed row width (in bytes).
func (rr *RowRuntime) Create(stride int) Buffer {
	ptr := rr.b.Call(rr.create, rr.b.ConstInt(rr.u32, int64(stride)))
	return Buffer{rr: rr, ptr: ptr, stride: stride}
}

func (bf Buffer) Value() compile.Value { return bf.ptr }

// Append copies stride bytes from row into the buffer.
func (bf Buffer) Append(row compile.Value) { bf.rr.b.Call(bf.rr.append, bf.ptr, row) }

// Len returns the row count so far.
func (bf Buffer) Len() compile.Value { return bf.rr.b.Call(bf.rr.length, bf.ptr) }

// RowPtr returns a pointer to the row at sorted position idx.
func (bf Buffer) RowPtr(idx compile.Value) compile.Value {
	return bf.rr.b.Call(bf.rr.rowPtr, bf.ptr, idx)
}

func (bf Buffer) Free() { bf.rr.b.Call(bf.rr.free, bf.ptr) }

// SortByI64, SortByF64 and SortByBytes reorder the buffer's permutation
// by the field found at byteOffset (and, for SortByBytes, length bytes
// long), stably. OrderBy's translator applies one call per sort key,
// back-to-front, to compose a multi-key ordering from single-key passes.
func (bf Buffer) SortByI64(byteOffset int, desc bool) {
	fn := bf.rr.sortI64Asc
	if desc {
		fn = bf.rr.sortI64Desc
	}
	bf.rr.b.Call(fn, bf.ptr, bf.rr.b.ConstInt(bf.rr.u32, int64(byteOffset)))
}

func (bf Buffer) SortByF64(byteOffset int, desc bool) {
	fn := bf.rr.sortF64Asc
	if desc {
		fn = bf.rr.sortF64Desc
	}
	bf.rr.b.Call(fn, bf.ptr, bf.rr.b.ConstInt(bf.rr.u32, int64(byteOffset)))
}

func (bf Buffer) SortByBytes(byteOffset, length int, desc bool) {
	fn := bf.rr.sortBytesAsc
	if desc {
		fn = bf.rr.sortBytesDesc
	}
	bf.rr.b.Call(fn, bf.ptr, bf.rr.b.ConstInt(bf.rr.u32, int64(byteOffset)),
		bf.rr.b.ConstInt(bf.rr.u32, int64(length)))
}
