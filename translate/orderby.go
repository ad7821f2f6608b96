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
	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/proxy"
)

// orderByTranslator buffers every row the child produces into a
// fixed-stride row buffer, each row holding the schema's own columns
// followed by one sort-key field per SortKeys entry, then applies one
// stable sort per key, back-to-front, composing a multi-key ordering
// from single-key passes the way an LSD radix sort composes a total
// order from per-digit passes. ORDER BY is handled by materializing
// every row before sorting rather than sorting incrementally.
//
// Sort-key fields are always stored as I64 or F64 regardless of the
// source column's declared width: integers narrower than I64 are
// widened (matching widenToI64's use elsewhere), and a String key is
// stored as its siphash (String.Hash) rather than as its bytes, since
// the row buffer's stride is fixed and a string's length is not. This
// orders String keys by hash rather than lexicographically — a
// deliberate approximation, not a bug, but one worth being honest
// about rather than silently calling it "the" ORDER BY semantics for
// strings.
type orderByTranslator struct {
	base
	op    *algebra.Op
	child Translator

	schemaTypes []catalog.ScalarType
	stride      int
	schemaSize  int
	buf         proxy.Buffer
}

func newOrderBy(ctx *Context, op *algebra.Op, child Translator) *orderByTranslator {
	t := &orderByTranslator{base: base{ctx: ctx}, op: op, child: child}
	b := ctx.B
	for _, c := range op.Schema() {
		t.schemaTypes = append(t.schemaTypes, c.Type)
		t.schemaSize += b.SizeOf(CompileType(b, ctx.StringRT, c.Type))
	}
	t.stride = t.schemaSize + 8*len(op.SortKeys) // every sort-key field is I64 or F64, both 8 bytes
	return t
}

func (t *orderByTranslator) Produce() {
	t.buf = t.ctx.RowRT.Create(t.stride)
	t.child.Produce()
	t.sortAndEmit()
}

func (t *orderByTranslator) Consume(src Translator) {
	vals := src.Values()
	rowVals := append([]RowValue(nil), vals.Vals...)
	for _, k := range t.op.SortKeys {
		rowVals = append(rowVals, t.sortKeyField(vals, k))
	}
	rec := buildRecord(t.ctx, rowVals)
	t.buf.Append(rec.base)
}

// sortKeyField evaluates one SortKey expression and returns the RowValue
// actually stored in the row buffer for it (always I64 or F64).
func (t *orderByTranslator) sortKeyField(vals *SchemaValues, k algebra.SortKey) RowValue {
	b := t.ctx.B
	v := EvalExpr(t.ctx, vals, k.Expr)
	switch k.Expr.Type {
	case catalog.F64:
		return v
	case catalog.String:
		return ScalarValue(catalog.I64, v.Str().Hash())
	default:
		widened := widenToI64(b, k.Expr.Type, v.Value())
		return ScalarValue(catalog.I64, proxy.NewScalar(b, b.I64Type(), widened))
	}
}

// sortAndEmit applies one stable sort per key (least significant first)
// then walks the buffer in its final order, emitting one tuple per row.
func (t *orderByTranslator) sortAndEmit() {
	for i := len(t.op.SortKeys) - 1; i >= 0; i-- {
		k := t.op.SortKeys[i]
		offset := t.schemaSize + 8*i
		desc := k.Dir == algebra.Descending
		if k.Expr.Type == catalog.F64 {
			t.buf.SortByF64(offset, desc)
		} else {
			t.buf.SortByI64(offset, desc)
		}
	}

	b := t.ctx.B
	i64 := b.I64Type()
	u32 := b.UI32Type()
	n := b.Convert(t.buf.Len(), i64)

	idx := b.Alloca(i64)
	b.Store(idx, b.ConstInt(i64, 0))

	cond := b.GenerateBlock()
	body := b.GenerateBlock()
	exit := b.GenerateBlock()

	b.Br(cond)
	b.SetCurrentBlock(cond)
	i := b.Load(idx)
	keepGoing := b.Cmp(compile.CmpLT, i, n)
	b.CondBr(keepGoing, body, exit)

	b.SetCurrentBlock(body)
	rowIdx := b.Convert(i, u32)
	rowPtr := t.buf.RowPtr(rowIdx)
	rec := recordFromPointer(t.ctx, rowPtr, t.schemaTypes)
	t.values = SchemaValues{Cols: t.op.Schema(), Vals: rec.loadAll(t.ctx)}
	t.parent.Consume(t)

	next := b.Add(i, b.ConstInt(i64, 1))
	b.Store(idx, next)
	b.Br(cond)

	b.SetCurrentBlock(exit)
}
