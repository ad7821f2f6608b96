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

package proxy

import "github.com/kushdb/kushc/compile"

// Bool wraps an I8-typed value used as a boolean (zero/nonzero), the
// same convention compile.Builder.Cmp's result uses.
type Bool struct {
	b compile.Builder
	v compile.Value
}

// NewBool wraps an existing boolean-valued handle.
func NewBool(b compile.Builder, v compile.Value) Bool { return Bool{b: b, v: v} }

// ConstBool builds a boolean constant.
func ConstBool(b compile.Builder, lit bool) Bool {
	var i int64
	if lit {
		i = 1
	}
	return Bool{b: b, v: b.ConstInt(b.I8Type(), i)}
}

func (bl Bool) Value() compile.Value { return bl.v }

// Not returns the logical negation.
func (bl Bool) Not() Bool { return Bool{bl.b, bl.b.LNot(bl.v)} }

// And and Or implement short-circuit-free logical combination: both
// sides are always evaluated, matching proxy::Boolean::operator&&/||,
// which likewise never branches around the right-hand side.
func (bl Bool) And(rhs Bool) Bool {
	zero := bl.b.ConstInt(bl.b.I8Type(), 0)
	lhsTrue := bl.b.Cmp(compile.CmpNEQ, bl.v, zero)
	rhsTrue := bl.b.Cmp(compile.CmpNEQ, rhs.v, zero)
	return Bool{bl.b, bl.b.Mul(lhsTrue, rhsTrue)}
}

func (bl Bool) Or(rhs Bool) Bool {
	zero := bl.b.ConstInt(bl.b.I8Type(), 0)
	lhsTrue := bl.b.Cmp(compile.CmpNEQ, bl.v, zero)
	rhsTrue := bl.b.Cmp(compile.CmpNEQ, rhs.v, zero)
	sum := bl.b.Add(lhsTrue, rhsTrue)
	return Bool{bl.b, bl.b.Cmp(compile.CmpGT, sum, zero)}
}

func (bl Bool) Eq(rhs Bool) Bool  { return Bool{bl.b, bl.b.Cmp(compile.CmpEQ, bl.v, rhs.v)} }
func (bl Bool) Neq(rhs Bool) Bool { return Bool{bl.b, bl.b.Cmp(compile.CmpNEQ, bl.v, rhs.v)} }
