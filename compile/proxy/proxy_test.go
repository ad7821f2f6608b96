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

package proxy_test

import (
	"testing"

	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/bitcode"
	"github.com/kushdb/kushc/compile/proxy"
)

func TestScalarArithmeticAndCompare(t *testing.T) {
	b := bitcode.New()
	fn := b.CreateInternal("test_arith", b.I8Type(), nil)
	b.SetCurrentFunction(fn)
	b.SetCurrentBlock(b.GenerateBlock())

	i32 := b.I32Type()
	lhs := proxy.ConstInt(b, i32, 3)
	rhs := proxy.ConstInt(b, i32, 10)

	sum := lhs.Add(rhs)
	if sum.Type() != i32 {
		t.Fatalf("expected sum type to be i32")
	}
	lt := lhs.Lt(rhs)
	if lt.Value() == nil {
		t.Fatalf("expected non-nil comparison value")
	}
}

func TestBoolAndOr(t *testing.T) {
	b := bitcode.New()
	fn := b.CreateInternal("test_bool", b.I8Type(), nil)
	b.SetCurrentFunction(fn)
	b.SetCurrentBlock(b.GenerateBlock())

	tru := proxy.ConstBool(b, true)
	fls := proxy.ConstBool(b, false)

	and := tru.And(fls)
	or := tru.Or(fls)
	not := tru.Not()

	for _, v := range []compile.Value{and.Value(), or.Value(), not.Value()} {
		if v == nil {
			t.Fatalf("expected non-nil bool value")
		}
	}
}

func TestStringPredicates(t *testing.T) {
	b := bitcode.New()
	fn := b.CreateInternal("test_str", b.I8Type(), nil)
	b.SetCurrentFunction(fn)
	b.SetCurrentBlock(b.GenerateBlock())

	rt := proxy.DeclareStringRuntime(b)
	a := proxy.Global(rt, b, "hello world")
	needle := proxy.Global(rt, b, "world")

	contains := a.Contains(needle)
	eq := a.Eq(needle)
	h := a.Hash()

	if contains.Value() == nil || eq.Value() == nil {
		t.Fatalf("expected non-nil predicate results")
	}
	if ht, ok := h.Type().(*bitcode.Type); !ok || ht.Kind != bitcode.I64 {
		t.Fatalf("expected Hash to return an i64 scalar")
	}
}
