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

	"github.com/kushdb/kushc/algebra"
)

// Translate builds the translator tree for a frozen plan rooted at op,
// wiring each node's parent pointer bottom-up as algebra.Op's own
// Children are walked top-down, one recursive dispatch per operator
// kind.
func Translate(ctx *Context, op *algebra.Op) Translator {
	switch op.Kind {
	case algebra.ScanOp:
		return newScan(ctx, op)

	case algebra.SelectOp:
		child := Translate(ctx, op.Left())
		t := newSelect(ctx, op, child)
		child.setParent(t)
		return t

	case algebra.CrossProductOp:
		left := Translate(ctx, op.Left())
		right := Translate(ctx, op.Right())
		t := newCrossProduct(ctx, op, left, right)
		left.setParent(t)
		right.setParent(t)
		return t

	case algebra.HashJoinOp:
		left := Translate(ctx, op.Left())
		right := Translate(ctx, op.Right())
		t := newHashJoin(ctx, op, left, right)
		left.setParent(t)
		right.setParent(t)
		return t

	case algebra.GroupByAggregateOp:
		child := Translate(ctx, op.Left())
		t := newGroupByAggregate(ctx, op, child)
		child.setParent(t)
		return t

	case algebra.OrderByOp:
		child := Translate(ctx, op.Left())
		t := newOrderBy(ctx, op, child)
		child.setParent(t)
		return t

	case algebra.OutputOp:
		child := Translate(ctx, op.Left())
		t := newOutput(ctx, child)
		child.setParent(t)
		return t

	default:
		panic(fmt.Sprintf("translate: unhandled op kind %v", op.Kind))
	}
}

// Emit builds op's translator tree and drives it once, emitting every
// instruction the query needs into whatever function is currently
// active on ctx.B. Callers (the driver) are responsible for having
// already created that function and its entry block.
func Emit(ctx *Context, op *algebra.Op) {
	Translate(ctx, op).Produce()
}
