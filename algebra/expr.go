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

package algebra

import (
	"fmt"

	"github.com/kushdb/kushc/catalog"
)

// BinaryOp enumerates the scalar binary operators a query plan may carry.
type BinaryOp uint8

const (
	ADD BinaryOp = iota
	SUB
	MUL
	DIV
	MOD
	AND
	OR
	XOR
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
)

var binaryOpNames = [...]string{
	ADD: "+", SUB: "-", MUL: "*", DIV: "/", MOD: "%",
	AND: "AND", OR: "OR", XOR: "XOR",
	EQ: "=", NEQ: "<>", LT: "<", LTE: "<=", GT: ">", GTE: ">=",
}

func (b BinaryOp) String() string {
	if int(b) < len(binaryOpNames) {
		return binaryOpNames[b]
	}
	return "?binop"
}

func (b BinaryOp) isComparison() bool {
	switch b {
	case EQ, NEQ, LT, LTE, GT, GTE:
		return true
	}
	return false
}

func (b BinaryOp) isLogical() bool {
	switch b {
	case AND, OR, XOR:
		return true
	}
	return false
}

// StringPred enumerates the string predicate operators.
type StringPred uint8

const (
	Contains StringPred = iota
	StartsWith
	EndsWith
)

func (p StringPred) String() string {
	switch p {
	case Contains:
		return "CONTAINS"
	case StartsWith:
		return "STARTS_WITH"
	case EndsWith:
		return "ENDS_WITH"
	default:
		return "?strpred"
	}
}

// AggFunc enumerates the aggregate call kinds an Expr may carry.
type AggFunc uint8

const (
	Count AggFunc = iota
	Sum
	Min
	Max
	Avg
)

func (f AggFunc) String() string {
	switch f {
	case Count:
		return "COUNT"
	case Sum:
		return "SUM"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Avg:
		return "AVG"
	default:
		return "?agg"
	}
}

// ExprKind tags the variant held by an Expr.
type ExprKind uint8

const (
	KindIntLiteral ExprKind = iota
	KindColumnRef
	KindBinary
	KindStringPred
	KindAggregate
)

// Expr is a tagged scalar expression node. It owns its children; the tree
// is acyclic and, once attached to a frozen Plan, immutable.
type Expr struct {
	Kind ExprKind
	Type catalog.ScalarType

	// KindIntLiteral
	IntValue int64

	// KindColumnRef: index into the producing operator's Schema().
	ColName  string
	ColIndex int

	// KindBinary
	Op       BinaryOp
	Children [2]*Expr // left, right (Children[1] unused for non-binary)

	// KindStringPred
	StrPred StringPred
	// StrPred operands reuse Children[0] (subject), Children[1] (needle)

	// KindAggregate
	Agg     AggFunc
	Operand *Expr // nil for COUNT(*)
}

// IntLiteral builds an integer literal expression.
func IntLiteral(v int64) *Expr {
	return &Expr{Kind: KindIntLiteral, Type: catalog.I64, IntValue: v}
}

// ColumnRef builds a reference to column name resolved against whatever
// schema the caller evaluates it in; idx is the position in that schema,
// recorded so translators need not re-resolve names at emission time.
func ColumnRef(name string, idx int, t catalog.ScalarType) *Expr {
	return &Expr{Kind: KindColumnRef, Type: t, ColName: name, ColIndex: idx}
}

// Binary builds a binary arithmetic/logical/comparison expression. This
// constructor does not check typing; the plan builder's constructors
// re-derive and validate it when the expression is attached to an Op.
func Binary(op BinaryOp, lhs, rhs *Expr, t catalog.ScalarType) *Expr {
	return &Expr{Kind: KindBinary, Type: t, Op: op, Children: [2]*Expr{lhs, rhs}}
}

// StringPredicate builds a string predicate expression (contains,
// startsWith, endsWith).
func StringPredicate(p StringPred, subject, needle *Expr) *Expr {
	return &Expr{Kind: KindStringPred, Type: catalog.Bool, StrPred: p, Children: [2]*Expr{subject, needle}}
}

// Aggregate builds an aggregate call. operand is nil for COUNT(*).
func Aggregate(f AggFunc, operand *Expr, t catalog.ScalarType) *Expr {
	return &Expr{Kind: KindAggregate, Type: t, Agg: f, Operand: operand}
}

func (e *Expr) String() string {
	switch e.Kind {
	case KindIntLiteral:
		return fmt.Sprintf("%d", e.IntValue)
	case KindColumnRef:
		return e.ColName
	case KindBinary:
		return fmt.Sprintf("(%s %s %s)", e.Children[0], e.Op, e.Children[1])
	case KindStringPred:
		return fmt.Sprintf("%s(%s, %s)", e.StrPred, e.Children[0], e.Children[1])
	case KindAggregate:
		if e.Operand == nil {
			return fmt.Sprintf("%s(*)", e.Agg)
		}
		return fmt.Sprintf("%s(%s)", e.Agg, e.Operand)
	default:
		return "?expr"
	}
}

// Walk calls fn for e and every descendant, pre-order.
func (e *Expr) Walk(fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch e.Kind {
	case KindBinary, KindStringPred:
		e.Children[0].Walk(fn)
		e.Children[1].Walk(fn)
	case KindAggregate:
		e.Operand.Walk(fn)
	}
}
