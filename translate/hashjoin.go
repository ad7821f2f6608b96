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

// hashJoinTranslator builds a byte-keyed hash table from the left
// child's rows, keyed by LeftKeys, then probes it once per right-child
// row keyed by RightKeys, emitting one combined (or projected) tuple
// per match. Keys and payloads are whole serialized rows rather than
// row-id indirection, since this engine has no separate row-id layer.
type hashJoinTranslator struct {
	base
	op          *algebra.Op
	left, right Translator

	leftSchema []catalog.Column
	table      proxy.Table
}

func newHashJoin(ctx *Context, op *algebra.Op, left, right Translator) *hashJoinTranslator {
	return &hashJoinTranslator{
		base:       base{ctx: ctx},
		op:         op,
		left:       left,
		right:      right,
		leftSchema: op.Left().Schema(),
	}
}

func (t *hashJoinTranslator) Produce() {
	t.table = t.ctx.HashRT.Create()
	t.left.Produce()
	t.right.Produce()
	t.table.Free()
}

func (t *hashJoinTranslator) Consume(src Translator) {
	switch src {
	case t.left:
		t.build(src.Values())
	case t.right:
		t.probe(src.Values())
	default:
		panic("translate: HashJoin.Consume called with unknown source")
	}
}

// build inserts one (key, row) pair per left row; HashJoin's build side
// allows duplicate keys (Insert, not Upsert), since several left rows
// may legitimately share a join key.
func (t *hashJoinTranslator) build(vals *SchemaValues) {
	b := t.ctx.B
	u32 := b.UI32Type()

	key := buildKeyRecord(t.ctx, evalExprList(t.ctx, vals, t.op.LeftKeys))
	payload := buildRecord(t.ctx, vals.Vals)
	hash := t.ctx.HashRT.HashBytes(key.base, b.ConstInt(u32, int64(key.size)))

	t.table.Insert(hash.Value(), key.base, b.ConstInt(u32, int64(key.size)),
		payload.base, b.ConstInt(u32, int64(payload.size)))
}

// probe computes one right row's key, walks every hash-matched bucket
// entry, and for each one whose key bytes are an exact match, emits the
// combined tuple.
func (t *hashJoinTranslator) probe(vals *SchemaValues) {
	b := t.ctx.B
	u32 := b.UI32Type()
	voidPtr := b.PointerType(b.VoidType())

	key := buildKeyRecord(t.ctx, evalExprList(t.ctx, vals, t.op.RightKeys))
	keyLen := b.ConstInt(u32, int64(key.size))
	hash := t.ctx.HashRT.HashBytes(key.base, keyLen)

	iterSlot := b.Alloca(voidPtr)
	b.Store(iterSlot, t.table.ProbeFirst(hash.Value()).Value())

	cond := b.GenerateBlock()
	body := b.GenerateBlock()
	matchThen := b.GenerateBlock()
	matchAfter := b.GenerateBlock()
	exit := b.GenerateBlock()

	b.Br(cond)
	b.SetCurrentBlock(cond)
	cur := t.ctx.HashRT.WrapIter(b.Load(iterSlot))
	notNil := cur.IsNil().Not().Value()
	b.CondBr(notNil, body, exit)

	b.SetCurrentBlock(body)
	eq := t.ctx.HashRT.BytesEqual(cur.KeyPtr(), cur.KeyLen(), key.base, keyLen)
	zero := b.ConstInt(b.I8Type(), 0)
	isMatch := b.Cmp(compile.CmpNEQ, eq.Value(), zero)
	b.CondBr(isMatch, matchThen, matchAfter)

	b.SetCurrentBlock(matchThen)
	t.emitMatch(vals, cur)
	b.Br(matchAfter)

	b.SetCurrentBlock(matchAfter)
	b.Store(iterSlot, cur.ProbeNext().Value())
	b.Br(cond)

	b.SetCurrentBlock(exit)
}

// emitMatch reconstructs the matched left row from the hash table's
// value slot, concatenates it with the probing right row, applies
// Projection if present, and hands the result to the parent.
func (t *hashJoinTranslator) emitMatch(rightVals *SchemaValues, cur proxy.Iter) {
	leftScalarTypes := make([]catalog.ScalarType, len(t.leftSchema))
	for i, c := range t.leftSchema {
		leftScalarTypes[i] = c.Type
	}
	leftVals := recordFromPointer(t.ctx, cur.ValPtr(), leftScalarTypes).loadAll(t.ctx)
	combinedVals := append(append([]RowValue(nil), leftVals...), rightVals.Vals...)

	if t.op.Projection == nil {
		t.values = SchemaValues{Cols: t.op.Schema(), Vals: combinedVals}
	} else {
		combinedCols := append(append([]catalog.Column(nil), t.leftSchema...), rightVals.Cols...)
		combinedScope := &SchemaValues{Cols: combinedCols, Vals: combinedVals}
		t.values = SchemaValues{Cols: t.op.Schema(), Vals: evalExprList(t.ctx, combinedScope, t.op.Projection)}
	}
	t.parent.Consume(t)
}
