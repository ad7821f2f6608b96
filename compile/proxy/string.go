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

import (
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/runtime"
)

// StringRuntime declares, once per program, the external string runtime
// functions (package runtime's ABIString* symbols) and hands back a
// StringRuntime value that String proxies call through.
type StringRuntime struct {
	b          compile.Builder
	recordType compile.Type

	contains, startsWith, endsWith compile.Function
	equals, notEquals              compile.Function
	hash                           compile.Function
}

// DeclareStringRuntime registers external declarations for every
// ABIString* symbol against b's string record layout (compile/abi.go),
// so later String proxies need only Call through the handles here.
func DeclareStringRuntime(b compile.Builder) *StringRuntime {
	record := b.StructType([]compile.Type{b.PointerType(b.I8Type()), b.UI32Type()})
	ptr := b.PointerType(record)
	boolT := b.I8Type()

	sr := &StringRuntime{b: b, recordType: record}
	sr.contains = b.DeclareExternal(runtime.ABIStringContains, boolT, []compile.Type{ptr, ptr})
	sr.startsWith = b.DeclareExternal(runtime.ABIStringStartsWith, boolT, []compile.Type{ptr, ptr})
	sr.endsWith = b.DeclareExternal(runtime.ABIStringEndsWith, boolT, []compile.Type{ptr, ptr})
	sr.equals = b.DeclareExternal(runtime.ABIStringEquals, boolT, []compile.Type{ptr, ptr})
	sr.notEquals = b.DeclareExternal(runtime.ABIStringNotEquals, boolT, []compile.Type{ptr, ptr})
	sr.hash = b.DeclareExternal(runtime.ABIStringHash, b.I64Type(), []compile.Type{ptr})
	return sr
}

// RecordType is the `{data: i8*, length: u32}` struct type every String
// proxy's underlying alloca has.
func (sr *StringRuntime) RecordType() compile.Type { return sr.recordType }

// String wraps a pointer to a string record, exposing the predicates a
// string-view-style proxy needs: Contains, StartsWith, EndsWith, ==, !=.
type String struct {
	rt  *StringRuntime
	ptr compile.Value
}

// NewString wraps an existing pointer-to-record value.
func NewString(rt *StringRuntime, ptr compile.Value) String { return String{rt: rt, ptr: ptr} }

// Global materializes a compile-time string literal as a `{data, length}`
// record and returns a proxy over a pointer to it. ConstStringGlobal only
// hands back a bare char pointer (the bytes themselves), so Global builds
// the record around it: an alloca of RecordType, with the data field
// pointed at the global and the length field set to len(lit).
func Global(rt *StringRuntime, b compile.Builder, lit string) String {
	data := b.ConstStringGlobal(lit)
	rec := b.Alloca(rt.recordType)
	b.Store(b.Field(rec, 0), data)
	b.Store(b.Field(rec, 1), b.ConstInt(b.UI32Type(), int64(len(lit))))
	return String{rt: rt, ptr: rec}
}

func (s String) Value() compile.Value { return s.ptr }

// DataPtr and Len read back the record's two fields directly, for
// callers that need the raw bytes rather than a call through the
// ABIString* predicates.
func (s String) DataPtr(b compile.Builder) compile.Value { return b.Load(b.Field(s.ptr, 0)) }
func (s String) Len(b compile.Builder) compile.Value     { return b.Load(b.Field(s.ptr, 1)) }

func (s String) Contains(rhs String) Bool {
	return Bool{s.rt.b, s.rt.b.Call(s.rt.contains, s.ptr, rhs.ptr)}
}

func (s String) StartsWith(rhs String) Bool {
	return Bool{s.rt.b, s.rt.b.Call(s.rt.startsWith, s.ptr, rhs.ptr)}
}

func (s String) EndsWith(rhs String) Bool {
	return Bool{s.rt.b, s.rt.b.Call(s.rt.endsWith, s.ptr, rhs.ptr)}
}

func (s String) Eq(rhs String) Bool {
	return Bool{s.rt.b, s.rt.b.Call(s.rt.equals, s.ptr, rhs.ptr)}
}

func (s String) Neq(rhs String) Bool {
	return Bool{s.rt.b, s.rt.b.Call(s.rt.notEquals, s.ptr, rhs.ptr)}
}

// Hash calls the declared-external siphash runtime function, returning
// an I64 scalar proxy suitable as a hash-table key.
func (s String) Hash() Scalar {
	return Scalar{s.rt.b, s.rt.b.I64Type(), s.rt.b.Call(s.rt.hash, s.ptr)}
}
