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

// Package bitcode implements compile.Builder by building a typed module in
// memory (path B): a Go analogue of an LLVM module (functions,
// basic blocks, instructions, values) without a cgo binding to LLVM. The
// module is serializable and can be handed to the driver's JIT stage.
package bitcode

import (
	"fmt"

	"github.com/kushdb/kushc/compile"
)

// TypeKind tags a Type's shape.
type TypeKind uint8

const (
	Void TypeKind = iota
	I8
	I16
	I32
	I64
	UI32
	F64
	Struct
	Pointer
	Array
)

// Type is bitcode's concrete compile.Type.
type Type struct {
	Kind     TypeKind
	Fields   []compile.Type // Struct
	Elem     compile.Type   // Pointer, Array
	Length   int            // Array
}

func (*Type) isType() {}

func (t *Type) size() int {
	switch t.Kind {
	case Void:
		return 0
	case I8:
		return 1
	case I16:
		return 2
	case I32, UI32:
		return 4
	case I64, F64, Pointer:
		return 8
	case Struct:
		n := 0
		for _, f := range t.Fields {
			n += f.(*Type).size()
		}
		return n
	case Array:
		return t.Elem.(*Type).size() * t.Length
	default:
		return 0
	}
}

// Op enumerates bitcode instruction opcodes.
type Op uint8

const (
	OpAlloca Op = iota
	OpNullPtr
	OpGEP
	OpPtrCast
	OpLoad
	OpStore
	OpMemcpy
	OpCall
	OpReturn
	OpBr
	OpCondBr
	OpPhi
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpCmp
	OpLNot
	OpConstInt
	OpConstF64
	OpConstString
	OpConvert
	OpField
)

// Instr is one SSA instruction. It produces at most one Value (Result,
// nil for void instructions like Store/Br/CondBr/Return).
type Instr struct {
	Op      Op
	Type    compile.Type
	Args    []*Value
	Blocks  []*BasicBlock // branch targets, or phi incoming blocks
	Pred    compile.Predicate
	IntLit  int64
	F64Lit  float64
	StrLit  string
	Callee  *Func
	Result  *Value
}

// Value is a handle to an instruction's result, or a function argument.
type Value struct {
	id    int
	typ   compile.Type
	instr *Instr // nil for arguments
}

func (*Value) isValue()                  {}
func (v *Value) ValueType() compile.Type { return v.typ }

// BasicBlock owns an ordered instruction list plus successor/predecessor
// adjacency, filled in as Br/CondBr instructions are emitted.
type BasicBlock struct {
	Name    string
	Instrs  []*Instr
	Succs   []*BasicBlock
	Preds   []*BasicBlock
	fn      *Func
}

func (*BasicBlock) isBlock() {}

// Func owns an ordered sequence of BasicBlocks (entry is Blocks[0]).
type Func struct {
	Name       string
	Ret        compile.Type
	Params     []compile.Type
	Args       []*Value
	External   bool // declare-external: linker-resolved, no blocks
	Internal   bool // create-internal or create-external: has a body
	Blocks     []*BasicBlock
}

func (*Func) isFunction() {}

// Module is the list of functions built so far — the bitcode analogue of
// a native object module. Types and string constants are not held here;
// they live on the instructions that use them.
type Module struct {
	Funcs    []*Func
	nextID   int
	nextBB   int
}

// Backend is the in-memory implementation of compile.Builder.
type Backend struct {
	Module   *Module
	curFn    *Func
	curBlock *BasicBlock
}

// New returns a fresh bitcode builder over an empty module.
func New() *Backend {
	return &Backend{Module: &Module{}}
}

func (b *Backend) value(t compile.Type, instr *Instr) *Value {
	b.Module.nextID++
	v := &Value{id: b.Module.nextID, typ: t, instr: instr}
	if instr != nil {
		instr.Result = v
	}
	return v
}

func (b *Backend) append(instr *Instr) {
	b.curBlock.Instrs = append(b.curBlock.Instrs, instr)
}

// --- types ---

func (b *Backend) VoidType() compile.Type { return &Type{Kind: Void} }
func (b *Backend) I8Type() compile.Type   { return &Type{Kind: I8} }
func (b *Backend) I16Type() compile.Type  { return &Type{Kind: I16} }
func (b *Backend) I32Type() compile.Type  { return &Type{Kind: I32} }
func (b *Backend) I64Type() compile.Type  { return &Type{Kind: I64} }
func (b *Backend) UI32Type() compile.Type { return &Type{Kind: UI32} }
func (b *Backend) F64Type() compile.Type  { return &Type{Kind: F64} }

func (b *Backend) StructType(fields []compile.Type) compile.Type {
	return &Type{Kind: Struct, Fields: fields}
}

func (b *Backend) PointerType(elem compile.Type) compile.Type {
	return &Type{Kind: Pointer, Elem: elem}
}

func (b *Backend) ArrayType(elem compile.Type, length int) compile.Type {
	return &Type{Kind: Array, Elem: elem, Length: length}
}

func (b *Backend) TypeOf(v compile.Value) compile.Type { return v.(*Value).typ }
func (b *Backend) SizeOf(t compile.Type) int           { return t.(*Type).size() }

// --- memory ---

// Alloca allocates space for t and returns a pointer to it. An array
// type decays to a pointer to its element (IntLit records the element
// count for the interpreter's allocation size), the same convention
// GEP's single-index pointer arithmetic assumes for every pointer it is
// handed, and the same convention compile/source's Alloca already
// applies by declaring a C array and handing back a pointer to its
// first element.
func (b *Backend) Alloca(t compile.Type) compile.Value {
	if at, ok := t.(*Type); ok && at.Kind == Array {
		instr := &Instr{Op: OpAlloca, Type: b.PointerType(at.Elem), IntLit: int64(at.Length)}
		v := b.value(instr.Type, instr)
		b.append(instr)
		return v
	}
	instr := &Instr{Op: OpAlloca, Type: b.PointerType(t), IntLit: 1}
	v := b.value(instr.Type, instr)
	b.append(instr)
	return v
}

func (b *Backend) NullPtr(t compile.Type) compile.Value {
	instr := &Instr{Op: OpNullPtr, Type: t}
	v := b.value(t, instr)
	b.append(instr)
	return v
}

func (b *Backend) GEP(base compile.Value, indices ...compile.Value) compile.Value {
	args := []*Value{base.(*Value)}
	for _, idx := range indices {
		args = append(args, idx.(*Value))
	}
	instr := &Instr{Op: OpGEP, Type: base.(*Value).typ, Args: args}
	v := b.value(instr.Type, instr)
	b.append(instr)
	return v
}

func (b *Backend) Field(base compile.Value, index int) compile.Value {
	structType := base.(*Value).typ.(*Type).Elem.(*Type)
	fieldType := structType.Fields[index]
	ptrType := b.PointerType(fieldType)
	instr := &Instr{Op: OpField, Type: ptrType, Args: []*Value{base.(*Value)}, IntLit: int64(index)}
	v := b.value(ptrType, instr)
	b.append(instr)
	return v
}

func (b *Backend) PointerCast(v compile.Value, t compile.Type) compile.Value {
	instr := &Instr{Op: OpPtrCast, Type: t, Args: []*Value{v.(*Value)}}
	r := b.value(t, instr)
	b.append(instr)
	return r
}

func (b *Backend) Load(ptr compile.Value) compile.Value {
	elem := ptr.(*Value).typ.(*Type).Elem
	instr := &Instr{Op: OpLoad, Type: elem, Args: []*Value{ptr.(*Value)}}
	v := b.value(elem, instr)
	b.append(instr)
	return v
}

func (b *Backend) Store(ptr, val compile.Value) {
	instr := &Instr{Op: OpStore, Args: []*Value{ptr.(*Value), val.(*Value)}}
	b.append(instr)
}

func (b *Backend) Memcpy(dst, src, n compile.Value) {
	instr := &Instr{Op: OpMemcpy, Args: []*Value{dst.(*Value), src.(*Value), n.(*Value)}}
	b.append(instr)
}

// --- functions ---

func (b *Backend) newFunc(name string, ret compile.Type, params []compile.Type) *Func {
	fn := &Func{Name: name, Ret: ret, Params: params}
	args := make([]*Value, len(params))
	for i, t := range params {
		b.Module.nextID++
		args[i] = &Value{id: b.Module.nextID, typ: t}
	}
	fn.Args = args
	b.Module.Funcs = append(b.Module.Funcs, fn)
	return fn
}

func (b *Backend) CreateInternal(name string, ret compile.Type, params []compile.Type) compile.Function {
	fn := b.newFunc(name, ret, params)
	fn.Internal = true
	return fn
}

func (b *Backend) CreateExternal(name string, ret compile.Type, params []compile.Type) compile.Function {
	fn := b.newFunc(name, ret, params)
	fn.Internal = true
	return fn
}

func (b *Backend) DeclareExternal(name string, ret compile.Type, params []compile.Type) compile.Function {
	fn := b.newFunc(name, ret, params)
	fn.External = true
	return fn
}

func (b *Backend) ArgumentsOf(fn compile.Function) []compile.Value {
	args := fn.(*Func).Args
	out := make([]compile.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func (b *Backend) CurrentFunction() compile.Function {
	if b.curFn == nil {
		return nil
	}
	return b.curFn
}

func (b *Backend) SetCurrentFunction(fn compile.Function) { b.curFn = fn.(*Func) }

func (b *Backend) Return(v compile.Value) {
	instr := &Instr{Op: OpReturn}
	if v != nil {
		instr.Args = []*Value{v.(*Value)}
	}
	b.append(instr)
}

func (b *Backend) Call(fn compile.Function, args ...compile.Value) compile.Value {
	f := fn.(*Func)
	vargs := make([]*Value, len(args))
	for i, a := range args {
		vargs[i] = a.(*Value)
	}
	instr := &Instr{Op: OpCall, Type: f.Ret, Args: vargs, Callee: f}
	if f.Ret.(*Type).Kind == Void {
		b.append(instr)
		return nil
	}
	v := b.value(f.Ret, instr)
	b.append(instr)
	return v
}

// --- control flow ---

func (b *Backend) GenerateBlock() compile.Block {
	b.Module.nextBB++
	blk := &BasicBlock{Name: fmt.Sprintf("bb%d", b.Module.nextBB), fn: b.curFn}
	b.curFn.Blocks = append(b.curFn.Blocks, blk)
	return blk
}

func (b *Backend) CurrentBlock() compile.Block {
	if b.curBlock == nil {
		return nil
	}
	return b.curBlock
}

func (b *Backend) SetCurrentBlock(blk compile.Block) { b.curBlock = blk.(*BasicBlock) }

func link(from, to *BasicBlock) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

func (b *Backend) Br(target compile.Block) {
	t := target.(*BasicBlock)
	instr := &Instr{Op: OpBr, Blocks: []*BasicBlock{t}}
	b.append(instr)
	link(b.curBlock, t)
}

func (b *Backend) CondBr(cond compile.Value, thenBlock, elseBlock compile.Block) {
	tb, eb := thenBlock.(*BasicBlock), elseBlock.(*BasicBlock)
	instr := &Instr{Op: OpCondBr, Args: []*Value{cond.(*Value)}, Blocks: []*BasicBlock{tb, eb}}
	b.append(instr)
	link(b.curBlock, tb)
	link(b.curBlock, eb)
}

func (b *Backend) Phi(t compile.Type) compile.Value {
	instr := &Instr{Op: OpPhi, Type: t}
	v := b.value(t, instr)
	b.append(instr)
	return v
}

func (b *Backend) AddPhiIncoming(phi compile.Value, val compile.Value, from compile.Block) {
	pv := phi.(*Value)
	pv.instr.Args = append(pv.instr.Args, val.(*Value))
	pv.instr.Blocks = append(pv.instr.Blocks, from.(*BasicBlock))
}

// --- arithmetic / compare ---

func (b *Backend) binop(op Op, a, c compile.Value) compile.Value {
	av := a.(*Value)
	instr := &Instr{Op: op, Type: av.typ, Args: []*Value{av, c.(*Value)}}
	v := b.value(av.typ, instr)
	b.append(instr)
	return v
}

func (b *Backend) Add(a, c compile.Value) compile.Value { return b.binop(OpAdd, a, c) }
func (b *Backend) Sub(a, c compile.Value) compile.Value { return b.binop(OpSub, a, c) }
func (b *Backend) Mul(a, c compile.Value) compile.Value { return b.binop(OpMul, a, c) }
func (b *Backend) Div(a, c compile.Value) compile.Value { return b.binop(OpDiv, a, c) }

func (b *Backend) Cmp(pred compile.Predicate, a, c compile.Value) compile.Value {
	instr := &Instr{Op: OpCmp, Type: b.I8Type(), Args: []*Value{a.(*Value), c.(*Value)}, Pred: pred}
	v := b.value(instr.Type, instr)
	b.append(instr)
	return v
}

func (b *Backend) LNot(v compile.Value) compile.Value {
	instr := &Instr{Op: OpLNot, Type: b.I8Type(), Args: []*Value{v.(*Value)}}
	r := b.value(instr.Type, instr)
	b.append(instr)
	return r
}

func (b *Backend) ConstInt(t compile.Type, v int64) compile.Value {
	instr := &Instr{Op: OpConstInt, Type: t, IntLit: v}
	r := b.value(t, instr)
	b.append(instr)
	return r
}

func (b *Backend) ConstF64(v float64) compile.Value {
	instr := &Instr{Op: OpConstF64, Type: b.F64Type(), F64Lit: v}
	r := b.value(instr.Type, instr)
	b.append(instr)
	return r
}

func (b *Backend) Convert(v compile.Value, t compile.Type) compile.Value {
	instr := &Instr{Op: OpConvert, Type: t, Args: []*Value{v.(*Value)}}
	r := b.value(t, instr)
	b.append(instr)
	return r
}

// --- globals ---

func (b *Backend) ConstStringGlobal(s string) compile.Value {
	t := b.PointerType(b.I8Type())
	instr := &Instr{Op: OpConstString, Type: t, StrLit: s}
	r := b.value(t, instr)
	b.append(instr)
	return r
}
