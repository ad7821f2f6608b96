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

package translate

import (
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
)

// record is a flat byte buffer holding one or more column values back
// to back, used to build HashJoin/GroupByAggregate keys and payloads
// and OrderBy's materialized rows. Fields are addressed by byte offset
// through PointerCast rather than through a compile.Builder struct
// type and multi-index GEP: GEP's contract (established by scan.go) is
// single-index pointer arithmetic that preserves the base's own type,
// which matches a byte-addressed layout directly and is exactly what
// package runtime's ABIHT*/ABIRowBuffer* functions already expect as
// raw byte-buffer key/value slots.
type record struct {
	base        compile.Value // PointerType(I8Type)
	offsets     []int
	types       []compile.Type
	scalarTypes []catalog.ScalarType
	size        int
}

// buildRecord serializes vals into a freshly alloca'd byte buffer.
func buildRecord(ctx *Context, vals []RowValue) *record {
	b := ctx.B
	types := make([]compile.Type, len(vals))
	scalarTypes := make([]catalog.ScalarType, len(vals))
	offsets := make([]int, len(vals))
	total := 0
	for i, v := range vals {
		t := CompileType(b, ctx.StringRT, v.Type())
		types[i] = t
		scalarTypes[i] = v.Type()
		offsets[i] = total
		total += b.SizeOf(t)
	}
	if total == 0 {
		total = 1 // Alloca(ArrayType(I8, 0)) would be a zero-size object
	}

	// Alloca of an array type decays to a pointer to its element type
	// (I8Type here), matching GEP's single-index pointer-arithmetic
	// contract directly — no further cast is needed before indexing.
	base := b.Alloca(b.ArrayType(b.I8Type(), total))

	r := &record{base: base, offsets: offsets, types: types, scalarTypes: scalarTypes, size: total}
	for i, v := range vals {
		b.Store(r.field(ctx, i), v.Value())
	}
	return r
}

// buildKeyRecord is like buildRecord but serializes each String field as
// its siphash (I64) rather than as its {data,length} record pointer.
// HashJoin/GroupByAggregate keys are compared for content equality
// (BytesEqual over the serialized bytes), and two rows holding equal
// strings at different addresses must still compare equal — a raw
// pointer wouldn't give that, but a content hash does (up to the usual,
// astronomically unlikely, 64-bit collision). Key records are
// write-only — nothing ever reads one back through recordFromPointer —
// so the substitution is invisible to callers on either side of a join.
func buildKeyRecord(ctx *Context, vals []RowValue) *record {
	keyed := make([]RowValue, len(vals))
	for i, v := range vals {
		if v.Type() == catalog.String {
			keyed[i] = ScalarValue(catalog.I64, v.Str().Hash())
		} else {
			keyed[i] = v
		}
	}
	return buildRecord(ctx, keyed)
}

// field returns a pointer to the i'th field, typed as PointerType(types[i]).
func (r *record) field(ctx *Context, i int) compile.Value {
	b := ctx.B
	fieldPtr := b.GEP(r.base, b.ConstInt(b.I32Type(), int64(r.offsets[i])))
	return b.PointerCast(fieldPtr, b.PointerType(r.types[i]))
}

// load reads back field i as the RowValue it was stored as.
func (r *record) load(ctx *Context, i int) RowValue {
	return wrapLoaded(ctx, r.scalarTypes[i], ctx.B.Load(r.field(ctx, i)))
}

// loadAll reads back every field, in order.
func (r *record) loadAll(ctx *Context) []RowValue {
	out := make([]RowValue, len(r.types))
	for i := range r.types {
		out[i] = r.load(ctx, i)
	}
	return out
}

// recordFromPointer wraps a byte pointer (e.g. a hash table's key/val
// slot, or a row buffer's row pointer) that is already known to hold a
// record serialized with the given scalar types, without re-running
// buildRecord's Alloca/Store sequence.
func recordFromPointer(ctx *Context, base compile.Value, scalarTypes []catalog.ScalarType) *record {
	b := ctx.B
	types := make([]compile.Type, len(scalarTypes))
	offsets := make([]int, len(scalarTypes))
	total := 0
	for i, st := range scalarTypes {
		t := CompileType(b, ctx.StringRT, st)
		types[i] = t
		offsets[i] = total
		total += b.SizeOf(t)
	}
	return &record{base: base, offsets: offsets, types: types, scalarTypes: scalarTypes, size: total}
}
