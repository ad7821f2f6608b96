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
	"github.com/kushdb/kushc/compile"
)

// scanTranslator is the one leaf translator kind: it owns the only loop
// that actually advances a row index, materializing each column's value
// from the table's backing arrays (ctx.Source) before handing control
// to its parent.
type scanTranslator struct {
	base
	op *algebra.Op
}

func newScan(ctx *Context, op *algebra.Op) *scanTranslator {
	return &scanTranslator{base: base{ctx: ctx}, op: op}
}

func (t *scanTranslator) Produce() {
	b := t.ctx.B
	i64 := b.I64Type()
	n := t.ctx.Source.RowCount(t.op.Table)

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
	schema := t.op.Schema()
	vals := make([]RowValue, len(schema))
	for ci, col := range schema {
		// Source.Array returns a PointerType(elementType) value; GEP with
		// one index advances by one element and keeps that same type
		// (array-to-pointer decay), so the result is already the right
		// pointer-to-element type to Load from.
		arr := t.ctx.Source.Array(t.op.Table, ci)
		elemPtr := b.GEP(arr, i)
		vals[ci] = wrapLoaded(t.ctx, col.Type, b.Load(elemPtr))
	}
	t.values = SchemaValues{Cols: schema, Vals: vals}

	t.parent.Consume(t)

	next := b.Add(i, b.ConstInt(i64, 1))
	b.Store(idx, next)
	b.Br(cond)

	b.SetCurrentBlock(exit)
}

func (t *scanTranslator) Consume(Translator) {
	panic("translate: Scan has no children, Consume is never called")
}
