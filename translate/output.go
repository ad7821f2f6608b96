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

import "github.com/kushdb/kushc/catalog"

// outputTranslator is always the plan root: it prints each column of
// every tuple it receives, '|'-delimited, one row per line — a fixed
// output contract the scenario tests check byte-for-byte.
type outputTranslator struct {
	base
	child Translator
}

func newOutput(ctx *Context, child Translator) *outputTranslator {
	return &outputTranslator{base: base{ctx: ctx}, child: child}
}

func (t *outputTranslator) Produce() { t.child.Produce() }

func (t *outputTranslator) Consume(src Translator) {
	b := t.ctx.B
	vals := src.Values()
	for i, col := range vals.Cols {
		v := vals.At(i)
		switch col.Type {
		case catalog.F64:
			b.Call(t.ctx.printF64, v.Value())
		case catalog.String:
			b.Call(t.ctx.printString, v.Value())
		default:
			b.Call(t.ctx.print, widenToI64(b, col.Type, v.Value()))
		}
	}
	b.Call(t.ctx.printNewline)
}
