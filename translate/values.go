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

	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/proxy"
)

// RowValue is one materialized column value of a tuple currently in
// scope, tagged by the ScalarType it came from so callers need not
// guess which proxy field is live. It holds the live proxy value itself
// rather than a variable name string; compile/source's Backend still
// turns every value back into a C variable name at Emit time.
type RowValue struct {
	typ  catalog.ScalarType
	sc   proxy.Scalar
	bl   proxy.Bool
	str  proxy.String
}

func ScalarValue(t catalog.ScalarType, s proxy.Scalar) RowValue { return RowValue{typ: t, sc: s} }
func BoolValue(b proxy.Bool) RowValue                           { return RowValue{typ: catalog.Bool, bl: b} }
func StringValue(s proxy.String) RowValue                       { return RowValue{typ: catalog.String, str: s} }

func (v RowValue) Type() catalog.ScalarType { return v.typ }

func (v RowValue) Scalar() proxy.Scalar {
	if v.typ == catalog.Bool {
		panic("translate: Scalar() on a Bool RowValue")
	}
	return v.sc
}

func (v RowValue) Bool() proxy.Bool {
	if v.typ != catalog.Bool {
		panic("translate: Bool() on a non-Bool RowValue")
	}
	return v.bl
}

func (v RowValue) Str() proxy.String {
	if v.typ != catalog.String {
		panic("translate: Str() on a non-String RowValue")
	}
	return v.str
}

// Value returns the underlying compile.Value regardless of kind, for
// generic storage (the hash-table key/payload and row-buffer
// serialization every blocking operator needs).
func (v RowValue) Value() compile.Value {
	switch v.typ {
	case catalog.Bool:
		return v.bl.Value()
	case catalog.String:
		return v.str.Value()
	default:
		return v.sc.Value()
	}
}

// CompileType returns the compile.Type a column of ScalarType t is
// represented as: record pointer for String, I8 for Bool, the matching
// integer/float width otherwise.
func CompileType(b compile.Builder, strRT *proxy.StringRuntime, t catalog.ScalarType) compile.Type {
	switch t {
	case catalog.Bool:
		return b.I8Type()
	case catalog.I8:
		return b.I8Type()
	case catalog.I16:
		return b.I16Type()
	case catalog.I32:
		return b.I32Type()
	case catalog.I64:
		return b.I64Type()
	case catalog.F64:
		return b.F64Type()
	case catalog.String:
		return b.PointerType(strRT.RecordType())
	default:
		panic(fmt.Sprintf("translate: no compile type for %v", t))
	}
}

// wrapLoaded wraps a value just Load()ed from an array element (or a
// struct field) of ScalarType t as the matching RowValue kind.
func wrapLoaded(ctx *Context, t catalog.ScalarType, v compile.Value) RowValue {
	switch t {
	case catalog.Bool:
		return BoolValue(proxy.NewBool(ctx.B, v))
	case catalog.String:
		return StringValue(proxy.NewString(ctx.StringRT, v))
	default:
		return ScalarValue(t, proxy.NewScalar(ctx.B, CompileType(ctx.B, ctx.StringRT, t), v))
	}
}

// SchemaValues is the ordered set of materialized column values a
// translator's Produce/Consume call makes available for the tuple
// currently passing through it (the Values() a Translator exposes to
// its parent).
type SchemaValues struct {
	Cols []catalog.Column
	Vals []RowValue
}

// Index returns the position of a column by name, or -1.
func (s *SchemaValues) Index(name string) int {
	for i, c := range s.Cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// At returns the i'th value.
func (s *SchemaValues) At(i int) RowValue { return s.Vals[i] }
