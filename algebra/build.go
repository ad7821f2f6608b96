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
	"golang.org/x/exp/slices"

	"github.com/kushdb/kushc/catalog"
)

// NewScan builds a leaf operator reading the named relation. The schema is
// taken verbatim from the resolver.
func NewScan(res catalog.Resolver, relname string) (*Op, error) {
	id, cols, err := res.Table(relname)
	if err != nil {
		return nil, newErr(UnknownRelation, "%s: %v", relname, err)
	}
	return &Op{
		Kind:    ScanOp,
		schema:  append([]catalog.Column(nil), cols...),
		Table:   id,
		Relname: relname,
	}, nil
}

// NewSelect builds a filter over child, keeping child's schema. pred must
// type-check to Bool against child's schema.
func NewSelect(child *Op, pred *Expr) (*Op, error) {
	if pred.Type != catalog.Bool {
		return nil, newErr(TypeMismatch, "SELECT predicate must be bool, got %s", pred.Type)
	}
	if err := checkExprAgainst(pred, child.schema); err != nil {
		return nil, err
	}
	return &Op{
		Kind:      SelectOp,
		schema:    child.schema,
		Children:  []*Op{child},
		Predicate: pred,
	}, nil
}

// NewCrossProduct builds the unrestricted product of left and right,
// concatenating their schemas.
func NewCrossProduct(left, right *Op) (*Op, error) {
	schema := make([]catalog.Column, 0, len(left.schema)+len(right.schema))
	schema = append(schema, left.schema...)
	schema = append(schema, right.schema...)
	return &Op{
		Kind:     CrossProductOp,
		schema:   schema,
		Children: []*Op{left, right},
	}, nil
}

// NewHashJoin builds an equi-join keyed by leftKeys/rightKeys (paired
// positionally; must be the same length and pairwise type-compatible).
// projection (evaluated against the concatenated left+right schema)
// determines HashJoin's output schema; if projection is nil the output is
// the concatenation of both input schemas (like CrossProduct).
func NewHashJoin(left, right *Op, leftKeys, rightKeys []*Expr, projection []*Expr) (*Op, error) {
	if len(leftKeys) != len(rightKeys) {
		return nil, newErr(ArityMismatch, "HashJoin: %d left keys vs %d right keys", len(leftKeys), len(rightKeys))
	}
	if len(leftKeys) == 0 {
		return nil, newErr(ArityMismatch, "HashJoin requires at least one key pair")
	}
	for i := range leftKeys {
		if err := checkExprAgainst(leftKeys[i], left.schema); err != nil {
			return nil, err
		}
		if err := checkExprAgainst(rightKeys[i], right.schema); err != nil {
			return nil, err
		}
		if leftKeys[i].Type != rightKeys[i].Type {
			return nil, newErr(TypeMismatch, "HashJoin key %d: %s vs %s", i, leftKeys[i].Type, rightKeys[i].Type)
		}
	}
	combined := make([]catalog.Column, 0, len(left.schema)+len(right.schema))
	combined = append(combined, left.schema...)
	combined = append(combined, right.schema...)

	schema := combined
	if projection != nil {
		schema = make([]catalog.Column, len(projection))
		for i, p := range projection {
			if err := checkExprAgainst(p, combined); err != nil {
				return nil, err
			}
			schema[i] = catalog.Column{Name: p.String(), Type: p.Type}
		}
	}
	return &Op{
		Kind:       HashJoinOp,
		schema:     schema,
		Children:   []*Op{left, right},
		LeftKeys:   leftKeys,
		RightKeys:  rightKeys,
		Projection: projection,
	}, nil
}

// NewGroupByAggregate builds a grouping+aggregation operator. groupKeys
// are evaluated over child's schema; aggregates likewise, though their
// Agg.Operand (if any) must reference child's schema. The output schema is
// groupKeys followed by aggregates, in order.
func NewGroupByAggregate(child *Op, groupKeys, aggregates []*Expr) (*Op, error) {
	for _, k := range groupKeys {
		if err := checkExprAgainst(k, child.schema); err != nil {
			return nil, err
		}
	}
	for _, a := range aggregates {
		if a.Kind != KindAggregate {
			return nil, newErr(TypeMismatch, "GroupByAggregate: %s is not an aggregate", a)
		}
		if a.Operand != nil {
			if err := checkExprAgainst(a.Operand, child.schema); err != nil {
				return nil, err
			}
		} else if a.Agg != Count {
			return nil, newErr(ArityMismatch, "%s requires an operand", a.Agg)
		}
	}
	schema := make([]catalog.Column, 0, len(groupKeys)+len(aggregates))
	for _, k := range groupKeys {
		schema = append(schema, catalog.Column{Name: k.String(), Type: k.Type})
	}
	for _, a := range aggregates {
		schema = append(schema, catalog.Column{Name: a.String(), Type: a.Type})
	}
	return &Op{
		Kind:       GroupByAggregateOp,
		schema:     schema,
		Children:   []*Op{child},
		GroupKeys:  groupKeys,
		Aggregates: aggregates,
	}, nil
}

// NewOrderBy builds a sort over child, preserving child's schema.
func NewOrderBy(child *Op, keys []SortKey) (*Op, error) {
	if len(keys) == 0 {
		return nil, newErr(ArityMismatch, "OrderBy requires at least one sort key")
	}
	for _, k := range keys {
		if err := checkExprAgainst(k.Expr, child.schema); err != nil {
			return nil, err
		}
	}
	return &Op{
		Kind:     OrderByOp,
		schema:   child.schema,
		Children: []*Op{child},
		SortKeys: keys,
	}, nil
}

// NewOutput builds the terminal operator that prints child's rows.
// Output's own schema always equals child's schema.
func NewOutput(child *Op) (*Op, error) {
	return &Op{
		Kind:     OutputOp,
		schema:   child.schema,
		Children: []*Op{child},
	}, nil
}

// checkExprAgainst verifies every column reference in e resolves within
// schema and recomputes e's declared type bottom-up, catching mismatches
// introduced by callers that built Expr nodes by hand instead of through
// the typed helpers below.
func checkExprAgainst(e *Expr, schema []catalog.Column) error {
	var walkErr error
	e.Walk(func(n *Expr) {
		if walkErr != nil {
			return
		}
		if n.Kind == KindColumnRef {
			idx := slices.IndexFunc(schema, func(c catalog.Column) bool { return c.Name == n.ColName })
			if idx < 0 {
				walkErr = newErr(UnknownColumn, "%s", n.ColName)
				return
			}
			n.ColIndex = idx
			n.Type = schema[idx].Type
		}
	})
	if walkErr != nil {
		return walkErr
	}
	return retype(e)
}

// retype recomputes Type bottom-up and validates operand typing for
// binary/string-predicate/aggregate nodes whose children were just
// resolved by checkExprAgainst.
func retype(e *Expr) error {
	switch e.Kind {
	case KindIntLiteral, KindColumnRef:
		return nil
	case KindBinary:
		l, r := e.Children[0], e.Children[1]
		if err := retype(l); err != nil {
			return err
		}
		if err := retype(r); err != nil {
			return err
		}
		if l.Type != r.Type {
			return newErr(TypeMismatch, "%s: %s vs %s", e.Op, l.Type, r.Type)
		}
		if e.Op.isComparison() {
			e.Type = catalog.Bool
		} else if e.Op.isLogical() {
			if l.Type != catalog.Bool {
				return newErr(TypeMismatch, "%s requires bool operands, got %s", e.Op, l.Type)
			}
			e.Type = catalog.Bool
		} else {
			e.Type = l.Type
		}
		return nil
	case KindStringPred:
		if err := retype(e.Children[0]); err != nil {
			return err
		}
		if err := retype(e.Children[1]); err != nil {
			return err
		}
		if e.Children[0].Type != catalog.String || e.Children[1].Type != catalog.String {
			return newErr(TypeMismatch, "%s requires string operands", e.StrPred)
		}
		e.Type = catalog.Bool
		return nil
	case KindAggregate:
		if e.Operand != nil {
			return retype(e.Operand)
		}
		return nil
	default:
		return newErr(TypeMismatch, "unrecognized expression kind %d", e.Kind)
	}
}
