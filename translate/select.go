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
	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/compile"
)

// selectTranslator passes its child's tuple upward unchanged whenever
// the predicate holds, materializing nothing of its own (Select keeps
// its child's schema verbatim — algebra.NewSelect already enforces
// this).
type selectTranslator struct {
	base
	op    *algebra.Op
	child Translator
}

func newSelect(ctx *Context, op *algebra.Op, child Translator) *selectTranslator {
	return &selectTranslator{base: base{ctx: ctx}, op: op, child: child}
}

func (t *selectTranslator) Produce() { t.child.Produce() }

func (t *selectTranslator) Consume(src Translator) {
	b := t.ctx.B
	keep := EvalExpr(t.ctx, src.Values(), t.op.Predicate).Bool()

	thenBlock := b.GenerateBlock()
	afterBlock := b.GenerateBlock()
	zero := b.ConstInt(b.I8Type(), 0)
	cond := b.Cmp(compile.CmpNEQ, keep.Value(), zero)
	b.CondBr(cond, thenBlock, afterBlock)

	b.SetCurrentBlock(thenBlock)
	t.values = *src.Values()
	t.parent.Consume(t)
	b.Br(afterBlock)

	b.SetCurrentBlock(afterBlock)
}
