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

import "github.com/kushdb/kushc/algebra"

// crossProductTranslator nests the right child's loop inside the left
// child's: for every left tuple, drive the right child's Produce to
// completion, concatenating schemas as algebra.NewCrossProduct does.
// This is the unrestricted nested-loop join; HashJoin exists precisely
// because this translator is O(|left| * |right|).
type crossProductTranslator struct {
	base
	op          *algebra.Op
	left, right Translator
	leftVals    *SchemaValues
}

func newCrossProduct(ctx *Context, op *algebra.Op, left, right Translator) *crossProductTranslator {
	return &crossProductTranslator{base: base{ctx: ctx}, op: op, left: left, right: right}
}

func (t *crossProductTranslator) Produce() { t.left.Produce() }

func (t *crossProductTranslator) Consume(src Translator) {
	switch src {
	case t.left:
		t.leftVals = src.Values()
		t.right.Produce()
	case t.right:
		combined := SchemaValues{
			Cols: t.op.Schema(),
			Vals: append(append([]RowValue(nil), t.leftVals.Vals...), src.Values().Vals...),
		}
		t.values = combined
		t.parent.Consume(t)
	default:
		panic("translate: CrossProduct.Consume called with unknown source")
	}
}
