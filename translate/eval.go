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
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile/proxy"
)

// EvalExpr compiles e against values (the tuple currently in scope) into
// IR, returning the resulting RowValue. It assumes e has already been
// type-checked against values' schema by algebra's build-time
// validation — EvalExpr itself performs no further checking.
//
// KindAggregate is not handled here: aggregate calls only ever appear
// directly under GroupByAggregateOp.Aggregates, which the
// GroupByAggregate translator evaluates specially (it needs the running
// accumulator, not a one-shot value).
func EvalExpr(ctx *Context, values *SchemaValues, e *algebra.Expr) RowValue {
	switch e.Kind {
	case algebra.KindIntLiteral:
		return ScalarValue(catalog.I64, proxy.ConstInt(ctx.B, ctx.B.I64Type(), e.IntValue))

	case algebra.KindColumnRef:
		return values.At(e.ColIndex)

	case algebra.KindBinary:
		return evalBinary(ctx, values, e)

	case algebra.KindStringPred:
		subject := EvalExpr(ctx, values, e.Children[0]).Str()
		needle := EvalExpr(ctx, values, e.Children[1]).Str()
		switch e.StrPred {
		case algebra.Contains:
			return BoolValue(subject.Contains(needle))
		case algebra.StartsWith:
			return BoolValue(subject.StartsWith(needle))
		case algebra.EndsWith:
			return BoolValue(subject.EndsWith(needle))
		default:
			panic(fmt.Sprintf("translate: unhandled string predicate %v", e.StrPred))
		}

	default:
		panic(fmt.Sprintf("translate: EvalExpr cannot evaluate %v directly", e.Kind))
	}
}

// evalExprList evaluates each of exprs against values, in order — the
// shared helper HashJoin's key building and projection evaluation, and
// GroupByAggregate's group-key building, all use.
func evalExprList(ctx *Context, values *SchemaValues, exprs []*algebra.Expr) []RowValue {
	out := make([]RowValue, len(exprs))
	for i, e := range exprs {
		out[i] = EvalExpr(ctx, values, e)
	}
	return out
}

func evalBinary(ctx *Context, values *SchemaValues, e *algebra.Expr) RowValue {
	op := e.Op
	if op.isLogical() {
		lhs := EvalExpr(ctx, values, e.Children[0]).Bool()
		rhs := EvalExpr(ctx, values, e.Children[1]).Bool()
		switch op {
		case algebra.AND:
			return BoolValue(lhs.And(rhs))
		case algebra.OR:
			return BoolValue(lhs.Or(rhs))
		case algebra.XOR:
			// a XOR b, over 0/1 booleans, agrees with a != b.
			return BoolValue(lhs.Neq(rhs))
		}
	}

	childType := e.Children[0].Type
	if op.isComparison() {
		switch childType {
		case catalog.Bool:
			lhs := EvalExpr(ctx, values, e.Children[0]).Bool()
			rhs := EvalExpr(ctx, values, e.Children[1]).Bool()
			return BoolValue(boolCompare(op, lhs, rhs))
		case catalog.String:
			lhs := EvalExpr(ctx, values, e.Children[0]).Str()
			rhs := EvalExpr(ctx, values, e.Children[1]).Str()
			return BoolValue(stringCompare(op, lhs, rhs))
		default:
			lhs := EvalExpr(ctx, values, e.Children[0]).Scalar()
			rhs := EvalExpr(ctx, values, e.Children[1]).Scalar()
			return BoolValue(scalarCompare(op, lhs, rhs))
		}
	}

	// arithmetic
	lhs := EvalExpr(ctx, values, e.Children[0]).Scalar()
	rhs := EvalExpr(ctx, values, e.Children[1]).Scalar()
	switch op {
	case algebra.ADD:
		return ScalarValue(e.Type, lhs.Add(rhs))
	case algebra.SUB:
		return ScalarValue(e.Type, lhs.Sub(rhs))
	case algebra.MUL:
		return ScalarValue(e.Type, lhs.Mul(rhs))
	case algebra.DIV:
		return ScalarValue(e.Type, lhs.Div(rhs))
	case algebra.MOD:
		return ScalarValue(e.Type, scalarMod(lhs, rhs))
	default:
		panic(fmt.Sprintf("translate: unhandled binary op %v", op))
	}
}

// scalarMod computes a - (a/b)*b: compile.Builder has no native
// remainder instruction, so MOD is expressed in terms of Div/Mul/Sub,
// the usual fallback for a target lacking an integer remainder opcode.
func scalarMod(a, b proxy.Scalar) proxy.Scalar {
	q := a.Div(b)
	return a.Sub(q.Mul(b))
}

func boolCompare(op algebra.BinaryOp, a, b proxy.Bool) proxy.Bool {
	switch op {
	case algebra.EQ:
		return a.Eq(b)
	case algebra.NEQ:
		return a.Neq(b)
	default:
		panic(fmt.Sprintf("translate: bool values only support =/<> comparisons, got %v", op))
	}
}

func stringCompare(op algebra.BinaryOp, a, b proxy.String) proxy.Bool {
	switch op {
	case algebra.EQ:
		return a.Eq(b)
	case algebra.NEQ:
		return a.Neq(b)
	default:
		panic(fmt.Sprintf("translate: string values only support =/<> comparisons, got %v", op))
	}
}

func scalarCompare(op algebra.BinaryOp, a, b proxy.Scalar) proxy.Bool {
	switch op {
	case algebra.EQ:
		return a.Eq(b)
	case algebra.NEQ:
		return a.Neq(b)
	case algebra.LT:
		return a.Lt(b)
	case algebra.LTE:
		return a.Lte(b)
	case algebra.GT:
		return a.Gt(b)
	case algebra.GTE:
		return a.Gte(b)
	default:
		panic(fmt.Sprintf("translate: unhandled comparison %v", op))
	}
}
