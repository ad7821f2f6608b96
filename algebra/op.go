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
	"strings"

	"github.com/kushdb/kushc/catalog"
)

// OpKind tags the variant held by an Op.
type OpKind uint8

const (
	ScanOp OpKind = iota
	SelectOp
	HashJoinOp
	CrossProductOp
	GroupByAggregateOp
	OrderByOp
	OutputOp
)

func (k OpKind) String() string {
	switch k {
	case ScanOp:
		return "Scan"
	case SelectOp:
		return "Select"
	case HashJoinOp:
		return "HashJoin"
	case CrossProductOp:
		return "CrossProduct"
	case GroupByAggregateOp:
		return "GroupByAggregate"
	case OrderByOp:
		return "OrderBy"
	case OutputOp:
		return "Output"
	default:
		return "?op"
	}
}

// SortDirection orders an OrderBy key.
type SortDirection uint8

const (
	Ascending SortDirection = iota
	Descending
)

// SortKey pairs an expression with a sort direction.
type SortKey struct {
	Expr *Expr
	Dir  SortDirection
}

// Op is one node of a frozen relational-algebra plan tree. The tree is
// acyclic, every referenced column resolves to exactly one producing
// operator in the subtree, and paired expression types match — all
// enforced at construction time by the NewXxx constructors in build.go.
// Once built, a plan is immutable: no field is mutated after the
// constructor returns.
type Op struct {
	Kind   OpKind
	schema []catalog.Column

	// Children, owned. Scan has none; Select/GroupByAggregate/OrderBy/
	// Output have exactly one; HashJoin/CrossProduct have exactly two
	// (left = Children[0], right = Children[1]).
	Children []*Op

	// ScanOp
	Table   catalog.TableID
	Relname string

	// SelectOp
	Predicate *Expr

	// HashJoinOp
	LeftKeys   []*Expr
	RightKeys  []*Expr
	Projection []*Expr

	// GroupByAggregateOp
	GroupKeys  []*Expr
	Aggregates []*Expr

	// OrderByOp
	SortKeys []SortKey
}

// Schema returns the ordered (name, type) list this operator produces.
func (o *Op) Schema() []catalog.Column { return o.schema }

// Left returns the left (or only) child, or nil for Scan.
func (o *Op) Left() *Op {
	if len(o.Children) == 0 {
		return nil
	}
	return o.Children[0]
}

// Right returns the right child for binary operators, or nil.
func (o *Op) Right() *Op {
	if len(o.Children) < 2 {
		return nil
	}
	return o.Children[1]
}

func (o *Op) String() string {
	var b strings.Builder
	printOp(&b, 0, o)
	return b.String()
}

func printOp(b *strings.Builder, indent int, o *Op) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
	fmt.Fprintf(b, "%s", o.Kind)
	switch o.Kind {
	case ScanOp:
		fmt.Fprintf(b, "(%s)", o.Relname)
	case SelectOp:
		fmt.Fprintf(b, "(%s)", o.Predicate)
	case HashJoinOp:
		fmt.Fprintf(b, "(left=%v right=%v)", o.LeftKeys, o.RightKeys)
	case GroupByAggregateOp:
		fmt.Fprintf(b, "(keys=%v aggs=%v)", o.GroupKeys, o.Aggregates)
	case OrderByOp:
		fmt.Fprintf(b, "(%v)", o.SortKeys)
	}
	b.WriteByte('\n')
	for _, c := range o.Children {
		printOp(b, indent+2, c)
	}
}
