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

package bitcode_test

import (
	"bytes"
	"testing"

	"github.com/kushdb/kushc/compile/bitcode"
)

// buildAdder returns a module with one internal function "adder" that
// loads two allocated i64 cells, adds them, and returns.
func buildAdder() *bitcode.Module {
	b := bitcode.New()
	fn := b.CreateInternal("adder", b.I64Type(), nil)
	b.SetCurrentFunction(fn)
	b.SetCurrentBlock(b.GenerateBlock())

	a := b.Alloca(b.I64Type())
	c := b.Alloca(b.I64Type())
	b.Store(a, b.ConstInt(b.I64Type(), 1))
	b.Store(c, b.ConstInt(b.I64Type(), 2))
	sum := b.Add(b.Load(a), b.Load(c))
	b.Return(sum)
	return b.Module
}

func TestSerializeIsDeterministic(t *testing.T) {
	first := buildAdder().Serialize()
	second := buildAdder().Serialize()
	if !bytes.Equal(first, second) {
		t.Fatalf("Serialize output differs across identical builds:\n%s\nvs\n%s", first, second)
	}
	if len(first) == 0 {
		t.Fatal("Serialize produced empty output")
	}
}

func TestAllocaDecaysArrayToElementPointer(t *testing.T) {
	b := bitcode.New()
	fn := b.CreateInternal("decay", b.VoidType(), nil)
	b.SetCurrentFunction(fn)
	b.SetCurrentBlock(b.GenerateBlock())

	arr := b.Alloca(b.ArrayType(b.I32Type(), 4))
	typ := arr.ValueType().(*bitcode.Type)
	if typ.Kind != bitcode.Pointer || typ.Elem.(*bitcode.Type).Kind != bitcode.I32 {
		t.Fatalf("Alloca(ArrayType(i32,4)).ValueType() = %+v, want a pointer to i32", typ)
	}
	b.Return(nil)
}
