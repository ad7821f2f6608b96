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

// Package translate walks a frozen algebra.Op plan tree and emits IR
// against a compile.Builder using the produce/consume push model: each
// operator's translator drives its child's Produce, and the child calls
// back into its parent's Consume once a tuple is materialized, so
// control never leaves generated code between a Scan's innermost loop
// and the operators stacked above it.
//
// The Translator/Factory split mirrors driving a producer with a
// callback interface instead of an iterator, the same push-style
// pipeline idiom a query sink uses to consume rows as they're produced.
package translate

import (
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/proxy"
	"github.com/kushdb/kushc/runtime"
)

// ArraySource resolves a Scan operator's columns to the typed array
// pointers and row count generated code actually loops over. The driver
// supplies the concrete implementation, wiring table/column pairs to
// whatever function arguments (or global pointers) hold the decoded
// column data for this query.
type ArraySource interface {
	// Array returns a pointer to colIndex's backing array for table
	// (element type matches the column's ScalarType; String columns are
	// arrays of `{data,length}` records rather than of pointers).
	Array(table catalog.TableID, colIndex int) compile.Value
	// RowCount returns table's row count as an I64 scalar.
	RowCount(table catalog.TableID) compile.Value
}

// Context bundles the builder and the declared runtime-function handles
// every translator needs, so constructors don't each re-declare the
// external symbols package proxy wraps.
type Context struct {
	B      compile.Builder
	Source ArraySource

	StringRT *proxy.StringRuntime
	HashRT   *proxy.HashRuntime
	RowRT    *proxy.RowRuntime

	print, printF64, printString, printNewline compile.Function
}

// NewContext declares every runtime symbol translate's operators may
// call and returns a ready-to-use Context.
func NewContext(b compile.Builder, source ArraySource) *Context {
	ctx := &Context{
		B:        b,
		Source:   source,
		StringRT: proxy.DeclareStringRuntime(b),
		HashRT:   proxy.DeclareHashRuntime(b),
		RowRT:    proxy.DeclareRowRuntime(b),
	}
	ctx.print = b.DeclareExternal(runtime.ABIPrint, b.VoidType(), []compile.Type{b.I64Type()})
	ctx.printF64 = b.DeclareExternal(runtime.ABIPrintF64, b.VoidType(), []compile.Type{b.F64Type()})
	ctx.printString = b.DeclareExternal(runtime.ABIPrintString, b.VoidType(),
		[]compile.Type{b.PointerType(ctx.StringRT.RecordType())})
	ctx.printNewline = b.DeclareExternal(runtime.ABIPrintNewline, b.VoidType(), nil)
	return ctx
}
