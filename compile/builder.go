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

// Package compile defines the program-builder facade: a capability-typed
// client API that translators use to emit IR without committing to a
// concrete backend. compile/source implements it by writing C source text
// (path A); compile/bitcode implements it by building a typed module in
// memory (path B). Both backends implement every method — partial
// backends are not permitted.
package compile

// Type, Value, Block and Function are opaque handles. Each backend defines
// its own concrete type satisfying the marker method; callers never
// inspect a handle's concrete type.
type (
	Type interface{ isType() }
	// Value is a reference to an SSA value of a fixed Type, produced by
	// at most one instruction.
	Value interface {
		isValue()
		ValueType() Type
	}
	Block    interface{ isBlock() }
	Function interface{ isFunction() }
)

// Predicate is the comparison kind passed to Builder.Cmp.
type Predicate uint8

const (
	CmpEQ Predicate = iota
	CmpNEQ
	CmpLT
	CmpLTE
	CmpGT
	CmpGTE
)

func (p Predicate) String() string {
	switch p {
	case CmpEQ:
		return "=="
	case CmpNEQ:
		return "!="
	case CmpLT:
		return "<"
	case CmpLTE:
		return "<="
	case CmpGT:
		return ">"
	case CmpGTE:
		return ">="
	default:
		return "?pred"
	}
}

// Builder is the capability set both backends must implement in full.
// Methods are grouped by concern: types, memory, functions, control
// flow, arithmetic/compare, globals.
type Builder interface {
	// --- types ---
	VoidType() Type
	I8Type() Type
	I16Type() Type
	I32Type() Type
	I64Type() Type
	UI32Type() Type
	F64Type() Type
	StructType(fields []Type) Type
	PointerType(elem Type) Type
	ArrayType(elem Type, length int) Type
	TypeOf(v Value) Type
	SizeOf(t Type) int

	// --- memory ---
	Alloca(t Type) Value
	NullPtr(t Type) Value
	GEP(base Value, indices ...Value) Value
	// Field selects struct field index by position: base must be a
	// pointer to a StructType, and the result is a pointer to that
	// field's type. Distinct from GEP, which only ever performs
	// array-element pointer arithmetic.
	Field(base Value, index int) Value
	PointerCast(v Value, t Type) Value
	Load(ptr Value) Value
	Store(ptr, val Value)
	Memcpy(dst, src, n Value)

	// --- functions ---
	CreateInternal(name string, ret Type, params []Type) Function
	CreateExternal(name string, ret Type, params []Type) Function
	DeclareExternal(name string, ret Type, params []Type) Function
	ArgumentsOf(fn Function) []Value
	CurrentFunction() Function
	SetCurrentFunction(fn Function)
	Return(v Value)
	Call(fn Function, args ...Value) Value

	// --- control flow ---
	GenerateBlock() Block
	CurrentBlock() Block
	SetCurrentBlock(b Block)
	Br(target Block)
	CondBr(cond Value, thenBlock, elseBlock Block)
	Phi(t Type) Value
	AddPhiIncoming(phi Value, val Value, from Block)

	// --- arithmetic / compare, per scalar type ---
	Add(a, b Value) Value
	Sub(a, b Value) Value
	Mul(a, b Value) Value
	Div(a, b Value) Value
	Cmp(pred Predicate, a, b Value) Value
	LNot(v Value) Value
	ConstInt(t Type, v int64) Value
	ConstF64(v float64) Value
	// Convert performs a numeric scalar conversion (integer widen/
	// narrow, int<->float), the one cast compile.Builder exposes —
	// pointer reinterpretation goes through PointerCast instead.
	Convert(v Value, t Type) Value

	// --- globals ---
	ConstStringGlobal(s string) Value
}
