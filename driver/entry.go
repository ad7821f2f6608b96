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

// Package driver wires a frozen algebra.Op plan tree, a catalog.Resolver's
// worth of literal data, and one of compile/source or compile/bitcode's
// Backend together into the two execution paths: RunSourceText (path A,
// emit-compile-link-load-execute a shared library) and RunBitcode (path
// B, run an in-memory module on this package's interpreter). Path A
// follows the usual load/resolve/call shape for invoking a freshly built
// shared library and does not unload it; both paths report an identical
// Timing/Error taxonomy.
package driver

import (
	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/translate"
)

// EntrySymbol is the fixed name assigned to the generated program's sole
// entry point: C-linkage, signature void().
const EntrySymbol = "compute"

// buildProgram declares compute() against b, wires a constArraySource
// over data, and emits root's translated IR into compute()'s body. It is
// shared by RunSourceText and RunBitcode so both paths generate from the
// identical sequence of Builder calls.
func buildProgram(b compile.Builder, root *algebra.Op, data Dataset) {
	ctx := translate.NewContext(b, nil)
	src := newConstArraySource(data)
	src.ctx = ctx
	ctx.Source = src

	fn := b.CreateExternal(EntrySymbol, b.VoidType(), nil)
	b.SetCurrentFunction(fn)
	b.SetCurrentBlock(b.GenerateBlock())

	translate.Emit(ctx, root)
	b.Return(nil)
}
