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
	"fmt"
	"math"

	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/proxy"
)

// aggSlot locates one aggregate's running-accumulator fields within the
// flat byte record every group's hash-table value slot holds. COUNT/
// SUM/MIN/MAX keep a single field of the aggregate's own scalar type;
// AVG keeps a running F64 sum plus an I64 count and divides at emission
// time, rather than keeping an intermediate running average.
type aggSlot struct {
	agg   algebra.AggFunc
	typ   catalog.ScalarType // output type (Sum/Min/Max/Count)
	start int                // index into the flat accumulator field list
}

// groupByAggregateTranslator hashes each incoming row's GroupKeys,
// upserts a running accumulator per group, and — once the child has
// produced every row — walks the table once to emit one output tuple
// per group.
type groupByAggregateTranslator struct {
	base
	op    *algebra.Op
	child Translator

	slots      []aggSlot
	groupTypes []catalog.ScalarType
	valueTypes []catalog.ScalarType // groupTypes ++ flat accumulator fields, in field order
	table      proxy.Table
}

// The hash table's key bytes (buildKeyRecord) hash-substitute any String
// group column for content-equal lookup, so they can't be read back as a
// String record afterwards — the value slot carries the actual GroupKeys
// values (untouched) ahead of the accumulator fields instead, the same
// key/payload split HashJoin's build side uses.
func newGroupByAggregate(ctx *Context, op *algebra.Op, child Translator) *groupByAggregateTranslator {
	t := &groupByAggregateTranslator{base: base{ctx: ctx}, op: op, child: child}

	for _, k := range op.GroupKeys {
		t.groupTypes = append(t.groupTypes, k.Type)
	}
	t.valueTypes = append([]catalog.ScalarType(nil), t.groupTypes...)
	for _, a := range op.Aggregates {
		slot := aggSlot{agg: a.Agg, typ: a.Type, start: len(t.valueTypes)}
		if a.Agg == algebra.Avg {
			t.valueTypes = append(t.valueTypes, catalog.F64, catalog.I64)
		} else {
			t.valueTypes = append(t.valueTypes, a.Type)
		}
		t.slots = append(t.slots, slot)
	}
	return t
}

func (t *groupByAggregateTranslator) Produce() {
	t.table = t.ctx.HashRT.Create()
	t.child.Produce()
	t.emitGroups()
	t.table.Free()
}

func (t *groupByAggregateTranslator) Consume(src Translator) {
	if src != t.child {
		panic("translate: GroupByAggregate.Consume called with unknown source")
	}
	t.accumulate(src.Values())
}

// accumulate upserts the running accumulator for this row's group key,
// then updates every aggregate's field(s) in place.
func (t *groupByAggregateTranslator) accumulate(vals *SchemaValues) {
	b := t.ctx.B
	u32 := b.UI32Type()

	key := buildKeyRecord(t.ctx, evalExprList(t.ctx, vals, t.op.GroupKeys))
	keyLen := b.ConstInt(u32, int64(key.size))
	hash := t.ctx.HashRT.HashBytes(key.base, keyLen)

	init := buildRecord(t.ctx, t.identityValues(vals))
	valPtr := t.table.Upsert(hash.Value(), key.base, keyLen, init.base, b.ConstInt(u32, int64(init.size)))
	rec := recordFromPointer(t.ctx, valPtr, t.valueTypes)

	for i, a := range t.op.Aggregates {
		t.updateSlot(rec, t.slots[i], a, vals)
	}
}

// identityValues builds the full value slot a freshly inserted group
// starts from: the row's own GroupKeys values (kept verbatim, for later
// re-emission) followed by the per-aggregate seed — 0 for COUNT/SUM/AVG,
// the widest sentinel for MIN/MAX so the very first row always replaces
// it.
func (t *groupByAggregateTranslator) identityValues(vals *SchemaValues) []RowValue {
	b := t.ctx.B
	out := evalExprList(t.ctx, vals, t.op.GroupKeys)
	for _, a := range t.op.Aggregates {
		switch a.Agg {
		case algebra.Count:
			out = append(out, ScalarValue(catalog.I64, proxy.ConstInt(b, b.I64Type(), 0)))
		case algebra.Sum:
			out = append(out, ScalarValue(a.Type, zeroScalar(b, a.Type)))
		case algebra.Min:
			out = append(out, ScalarValue(a.Type, maxSentinel(b, a.Type)))
		case algebra.Max:
			out = append(out, ScalarValue(a.Type, minSentinel(b, a.Type)))
		case algebra.Avg:
			out = append(out, ScalarValue(catalog.F64, proxy.ConstF64(b, 0)))
			out = append(out, ScalarValue(catalog.I64, proxy.ConstInt(b, b.I64Type(), 0)))
		default:
			panic(fmt.Sprintf("translate: unhandled aggregate kind %v", a.Agg))
		}
	}
	return out
}

// updateSlot performs the in-place read-modify-write for one aggregate
// against the row currently in scope.
func (t *groupByAggregateTranslator) updateSlot(rec *record, slot aggSlot, a *algebra.Expr, vals *SchemaValues) {
	b := t.ctx.B
	switch a.Agg {
	case algebra.Count:
		cur := rec.load(t.ctx, slot.start).Scalar()
		one := proxy.ConstInt(b, b.I64Type(), 1)
		b.Store(rec.field(t.ctx, slot.start), cur.Add(one).Value())

	case algebra.Sum:
		operand := EvalExpr(t.ctx, vals, a.Operand).Scalar()
		cur := rec.load(t.ctx, slot.start).Scalar()
		b.Store(rec.field(t.ctx, slot.start), cur.Add(operand).Value())

	case algebra.Min:
		operand := EvalExpr(t.ctx, vals, a.Operand).Scalar()
		cur := rec.load(t.ctx, slot.start).Scalar()
		replaceIfTrue(b, operand.Lt(cur), func() { b.Store(rec.field(t.ctx, slot.start), operand.Value()) })

	case algebra.Max:
		operand := EvalExpr(t.ctx, vals, a.Operand).Scalar()
		cur := rec.load(t.ctx, slot.start).Scalar()
		replaceIfTrue(b, operand.Gt(cur), func() { b.Store(rec.field(t.ctx, slot.start), operand.Value()) })

	case algebra.Avg:
		operand := EvalExpr(t.ctx, vals, a.Operand).Scalar()
		operandF64 := proxy.NewScalar(b, b.F64Type(), widenToF64(b, a.Operand.Type, operand.Value()))
		curSum := rec.load(t.ctx, slot.start).Scalar()
		b.Store(rec.field(t.ctx, slot.start), curSum.Add(operandF64).Value())
		curCount := rec.load(t.ctx, slot.start+1).Scalar()
		one := proxy.ConstInt(b, b.I64Type(), 1)
		b.Store(rec.field(t.ctx, slot.start+1), curCount.Add(one).Value())

	default:
		panic(fmt.Sprintf("translate: unhandled aggregate kind %v", a.Agg))
	}
}

// replaceIfTrue wraps the block-conditional idiom select.go uses for a
// conditional statement that produces no SSA value of its own.
func replaceIfTrue(b compile.Builder, cond proxy.Bool, then func()) {
	thenBlock := b.GenerateBlock()
	afterBlock := b.GenerateBlock()
	zero := b.ConstInt(b.I8Type(), 0)
	b.CondBr(b.Cmp(compile.CmpNEQ, cond.Value(), zero), thenBlock, afterBlock)

	b.SetCurrentBlock(thenBlock)
	then()
	b.Br(afterBlock)

	b.SetCurrentBlock(afterBlock)
}

// emitGroups walks every group once the child has finished producing,
// reconstructing the group key and final aggregate values and handing
// one tuple per group to the parent.
func (t *groupByAggregateTranslator) emitGroups() {
	b := t.ctx.B
	voidPtr := b.PointerType(b.VoidType())

	iterSlot := b.Alloca(voidPtr)
	b.Store(iterSlot, t.table.AllFirst().Value())

	cond := b.GenerateBlock()
	body := b.GenerateBlock()
	exit := b.GenerateBlock()

	b.Br(cond)
	b.SetCurrentBlock(cond)
	cur := t.ctx.HashRT.WrapIter(b.Load(iterSlot))
	notNil := cur.IsNil().Not().Value()
	b.CondBr(notNil, body, exit)

	b.SetCurrentBlock(body)
	t.emitGroup(cur)
	b.Store(iterSlot, cur.AllNext().Value())
	b.Br(cond)

	b.SetCurrentBlock(exit)
}

func (t *groupByAggregateTranslator) emitGroup(cur proxy.Iter) {
	value := recordFromPointer(t.ctx, cur.ValPtr(), t.valueTypes)

	keyVals := make([]RowValue, len(t.groupTypes))
	for i := range t.groupTypes {
		keyVals[i] = value.load(t.ctx, i)
	}

	aggVals := make([]RowValue, len(t.op.Aggregates))
	for i, a := range t.op.Aggregates {
		slot := t.slots[i]
		switch a.Agg {
		case algebra.Avg:
			sum := value.load(t.ctx, slot.start).Scalar()
			count := value.load(t.ctx, slot.start+1).Scalar()
			countF64 := proxy.NewScalar(t.ctx.B, t.ctx.B.F64Type(), widenToF64(t.ctx.B, catalog.I64, count.Value()))
			aggVals[i] = ScalarValue(catalog.F64, sum.Div(countF64))
		default:
			aggVals[i] = value.load(t.ctx, slot.start)
		}
	}

	t.values = SchemaValues{
		Cols: t.op.Schema(),
		Vals: append(append([]RowValue(nil), keyVals...), aggVals...),
	}
	t.parent.Consume(t)
}

// integerCompileType returns the integer compile.Type for t; Sum/Min/Max/
// Avg only ever run over numeric columns, so String/Bool never reach here.
func integerCompileType(b compile.Builder, t catalog.ScalarType) compile.Type {
	switch t {
	case catalog.I8:
		return b.I8Type()
	case catalog.I16:
		return b.I16Type()
	case catalog.I32:
		return b.I32Type()
	case catalog.I64:
		return b.I64Type()
	default:
		panic(fmt.Sprintf("translate: aggregate accumulator type %v is not numeric", t))
	}
}

func zeroScalar(b compile.Builder, t catalog.ScalarType) proxy.Scalar {
	if t == catalog.F64 {
		return proxy.ConstF64(b, 0)
	}
	return proxy.ConstInt(b, integerCompileType(b, t), 0)
}

// maxSentinel and minSentinel seed MIN/MAX accumulators with a value no
// real row can beat, so the first row observed always replaces it.
func maxSentinel(b compile.Builder, t catalog.ScalarType) proxy.Scalar {
	if t == catalog.F64 {
		return proxy.ConstF64(b, math.MaxFloat64)
	}
	return proxy.ConstInt(b, integerCompileType(b, t), math.MaxInt64)
}

func minSentinel(b compile.Builder, t catalog.ScalarType) proxy.Scalar {
	if t == catalog.F64 {
		return proxy.ConstF64(b, -math.MaxFloat64)
	}
	return proxy.ConstInt(b, integerCompileType(b, t), math.MinInt64)
}
