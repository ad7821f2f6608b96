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

// Package proxy wraps compile.Value handles in typed Go values that
// overload the operations translate's Produce/Consume implementations
// need, instead of making every translator call the untyped
// compile.Builder API directly.
//
// Each scalar type gets its own proxy wrapping a builder reference and
// overloading the arithmetic and comparison operations it supports. Go
// has no operator overloading, so each proxy exposes these as named
// methods instead, but keeps the same shape: a builder reference plus
// one underlying value, with every arithmetic/comparison method
// returning a freshly built proxy of the appropriate type.
package proxy

import "github.com/kushdb/kushc/compile"

// Scalar wraps a single compile.Value of one of the integer or float
// scalar kinds (I8, I16, I32, I64, F64) and exposes arithmetic and
// comparison as methods, mirroring proxy::Int8/Int16/Int32/Int64/Double.
type Scalar struct {
	b   compile.Builder
	typ compile.Type
	v   compile.Value
}

// NewScalar wraps an existing value of type t.
func NewScalar(b compile.Builder, t compile.Type, v compile.Value) Scalar {
	return Scalar{b: b, typ: t, v: v}
}

// ConstInt builds a scalar integer constant of type t.
func ConstInt(b compile.Builder, t compile.Type, lit int64) Scalar {
	return Scalar{b: b, typ: t, v: b.ConstInt(t, lit)}
}

// ConstF64 builds an F64 constant.
func ConstF64(b compile.Builder, lit float64) Scalar {
	t := b.F64Type()
	return Scalar{b: b, typ: t, v: b.ConstF64(lit)}
}

// Value returns the underlying handle, for callers that must drop to
// the raw Builder API (e.g. to pass an argument to Call).
func (s Scalar) Value() compile.Value { return s.v }

// Type returns the scalar's compile.Type.
func (s Scalar) Type() compile.Type { return s.typ }

func (s Scalar) Add(rhs Scalar) Scalar { return Scalar{s.b, s.typ, s.b.Add(s.v, rhs.v)} }
func (s Scalar) Sub(rhs Scalar) Scalar { return Scalar{s.b, s.typ, s.b.Sub(s.v, rhs.v)} }
func (s Scalar) Mul(rhs Scalar) Scalar { return Scalar{s.b, s.typ, s.b.Mul(s.v, rhs.v)} }
func (s Scalar) Div(rhs Scalar) Scalar { return Scalar{s.b, s.typ, s.b.Div(s.v, rhs.v)} }

func (s Scalar) cmp(pred compile.Predicate, rhs Scalar) Bool {
	return Bool{s.b, s.b.Cmp(pred, s.v, rhs.v)}
}

func (s Scalar) Eq(rhs Scalar) Bool  { return s.cmp(compile.CmpEQ, rhs) }
func (s Scalar) Neq(rhs Scalar) Bool { return s.cmp(compile.CmpNEQ, rhs) }
func (s Scalar) Lt(rhs Scalar) Bool  { return s.cmp(compile.CmpLT, rhs) }
func (s Scalar) Lte(rhs Scalar) Bool { return s.cmp(compile.CmpLTE, rhs) }
func (s Scalar) Gt(rhs Scalar) Bool  { return s.cmp(compile.CmpGT, rhs) }
func (s Scalar) Gte(rhs Scalar) Bool { return s.cmp(compile.CmpGTE, rhs) }
