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

// Package source implements compile.Builder by writing syntactically
// valid C source text, one statement per instruction, with fresh variable
// names drawn from a monotonic counter (path A). The generated file is
// handed to an external compiler by the driver package.
package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kushdb/kushc/compile"
)

type cType struct {
	name   string // C spelling, e.g. "int32_t", "struct s3"
	size   int
	fields []compile.Type // non-nil for struct types
	elem   compile.Type   // non-nil for pointer/array types
	length int            // array length
}

func (*cType) isType() {}

type cValue struct {
	name string // C identifier, e.g. "v17"
	typ  compile.Type
	// lit holds a literal spelling (e.g. "42", "3.5") used in place of a
	// named temporary when the value was produced by a constant, so
	// constant folding at the C compiler level is trivial.
	lit string
}

func (*cValue) isValue()           {}
func (v *cValue) ValueType() compile.Type { return v.typ }

func (v *cValue) text() string {
	if v.lit != "" {
		return v.lit
	}
	return v.name
}

type cBlock struct {
	label string
	fn    *cFunction
}

func (*cBlock) isBlock() {}

type cFunction struct {
	name       string
	ret        compile.Type
	params     []compile.Type
	args       []compile.Value
	external   bool // declared-external: no body emitted here
	definedIn  bool // create-external: defined elsewhere in same module
	blocks     []*cBlock
	terminated map[string]bool
}

func (*cFunction) isFunction() {}

// Backend is the source-text implementation of compile.Builder.
type Backend struct {
	out        strings.Builder
	decls      strings.Builder
	counter    int
	curFn      *cFunction
	curBlock   *cBlock
	funcs      []*cFunction
	structSeq  int
	stmtBuf    *strings.Builder // points at the body buffer of curFn while building
	bodies     map[*cFunction]*strings.Builder
}

// New returns a fresh source-text builder.
func New() *Backend {
	return &Backend{bodies: make(map[*cFunction]*strings.Builder)}
}

func (b *Backend) fresh() string {
	b.counter++
	return "v" + strconv.Itoa(b.counter)
}

func (b *Backend) emit(format string, args ...any) {
	buf := b.bodies[b.curFn]
	fmt.Fprintf(buf, format, args...)
	buf.WriteByte('\n')
}

// --- types ---

func (b *Backend) VoidType() compile.Type  { return &cType{name: "void"} }
func (b *Backend) I8Type() compile.Type    { return &cType{name: "int8_t", size: 1} }
func (b *Backend) I16Type() compile.Type   { return &cType{name: "int16_t", size: 2} }
func (b *Backend) I32Type() compile.Type   { return &cType{name: "int32_t", size: 4} }
func (b *Backend) I64Type() compile.Type   { return &cType{name: "int64_t", size: 8} }
func (b *Backend) UI32Type() compile.Type  { return &cType{name: "uint32_t", size: 4} }
func (b *Backend) F64Type() compile.Type   { return &cType{name: "double", size: 8} }

func (b *Backend) StructType(fields []compile.Type) compile.Type {
	b.structSeq++
	name := fmt.Sprintf("struct s%d", b.structSeq)
	var decl strings.Builder
	fmt.Fprintf(&decl, "%s {\n", name)
	for i, f := range fields {
		fmt.Fprintf(&decl, "  %s f%d;\n", f.(*cType).spelling(), i)
	}
	decl.WriteString("};\n")
	b.decls.WriteString(decl.String())
	size := 0
	for _, f := range fields {
		size += f.(*cType).size
	}
	return &cType{name: name, size: size, fields: fields}
}

func (b *Backend) PointerType(elem compile.Type) compile.Type {
	return &cType{name: elem.(*cType).spelling() + " *", size: 8, elem: elem}
}

func (b *Backend) ArrayType(elem compile.Type, length int) compile.Type {
	et := elem.(*cType)
	return &cType{name: et.name, size: et.size * length, elem: elem, length: length}
}

func (t *cType) spelling() string { return t.name }

func (b *Backend) TypeOf(v compile.Value) compile.Type { return v.(*cValue).typ }

func (b *Backend) SizeOf(t compile.Type) int { return t.(*cType).size }

// --- memory ---

func (b *Backend) Alloca(t compile.Type) compile.Value {
	name := b.fresh()
	ct := t.(*cType)
	if ct.elem != nil && ct.length > 0 {
		// Array types decay to a pointer-to-element value, the same
		// convention GEP's single-index pointer arithmetic already
		// assumes for every other pointer it's handed.
		elemSpelling := ct.elem.(*cType).spelling()
		b.emit("%s %s[%d];", elemSpelling, name, ct.length)
		ptr := &cType{name: elemSpelling + " *", size: 8, elem: ct.elem}
		return &cValue{name: name, typ: ptr}
	}
	b.emit("%s %s;", ct.spelling(), name)
	ptr := &cType{name: ct.spelling() + " *", size: 8, elem: t}
	return &cValue{name: "(&" + name + ")", typ: ptr}
}

func (b *Backend) NullPtr(t compile.Type) compile.Value {
	return &cValue{lit: "((" + t.(*cType).spelling() + ")0)", typ: t}
}

func (b *Backend) GEP(base compile.Value, indices ...compile.Value) compile.Value {
	bt := base.(*cValue)
	name := b.fresh()
	idxExpr := bt.text()
	for _, idx := range indices {
		idxExpr = fmt.Sprintf("(&%s[%s])", idxExpr, idx.(*cValue).text())
	}
	b.emit("%s %s = %s;", bt.typ.(*cType).spelling(), name, idxExpr)
	return &cValue{name: name, typ: bt.typ}
}

func (b *Backend) Field(base compile.Value, index int) compile.Value {
	bt := base.(*cValue)
	st := bt.typ.(*cType).elem.(*cType)
	fieldType := st.fields[index].(*cType)
	ptrSpelling := fieldType.spelling() + " *"
	name := b.fresh()
	b.emit("%s %s = &(%s)->f%d;", ptrSpelling, name, bt.text(), index)
	return &cValue{name: name, typ: &cType{name: ptrSpelling, size: 8, elem: fieldType}}
}

func (b *Backend) PointerCast(v compile.Value, t compile.Type) compile.Value {
	name := b.fresh()
	b.emit("%s %s = (%s)%s;", t.(*cType).spelling(), name, t.(*cType).spelling(), v.(*cValue).text())
	return &cValue{name: name, typ: t}
}

func (b *Backend) Load(ptr compile.Value) compile.Value {
	pt := ptr.(*cValue)
	elem := pt.typ.(*cType).elem
	name := b.fresh()
	b.emit("%s %s = *%s;", elem.(*cType).spelling(), name, pt.text())
	return &cValue{name: name, typ: elem}
}

func (b *Backend) Store(ptr, val compile.Value) {
	b.emit("*%s = %s;", ptr.(*cValue).text(), val.(*cValue).text())
}

func (b *Backend) Memcpy(dst, src, n compile.Value) {
	b.emit("memcpy((void*)%s, (void*)%s, (size_t)%s);", dst.(*cValue).text(), src.(*cValue).text(), n.(*cValue).text())
}

// --- functions ---

func (b *Backend) paramTypesStr(params []compile.Type) string {
	if len(params) == 0 {
		return "void"
	}
	parts := make([]string, len(params))
	for i, t := range params {
		parts[i] = fmt.Sprintf("%s a%d", t.(*cType).spelling(), i)
	}
	return strings.Join(parts, ", ")
}

func (b *Backend) newFunc(name string, ret compile.Type, params []compile.Type) *cFunction {
	fn := &cFunction{name: name, ret: ret, params: params, terminated: map[string]bool{}}
	args := make([]compile.Value, len(params))
	for i, t := range params {
		args[i] = &cValue{name: fmt.Sprintf("a%d", i), typ: t}
	}
	fn.args = args
	b.funcs = append(b.funcs, fn)
	return fn
}

func (b *Backend) CreateInternal(name string, ret compile.Type, params []compile.Type) compile.Function {
	fn := b.newFunc(name, ret, params)
	b.bodies[fn] = &strings.Builder{}
	return fn
}

func (b *Backend) CreateExternal(name string, ret compile.Type, params []compile.Type) compile.Function {
	fn := b.newFunc(name, ret, params)
	fn.definedIn = true
	b.bodies[fn] = &strings.Builder{}
	return fn
}

func (b *Backend) DeclareExternal(name string, ret compile.Type, params []compile.Type) compile.Function {
	fn := b.newFunc(name, ret, params)
	fn.external = true
	fmt.Fprintf(&b.decls, "extern %s %s(%s);\n", ret.(*cType).spelling(), name, b.paramTypesStr(params))
	return fn
}

func (b *Backend) ArgumentsOf(fn compile.Function) []compile.Value { return fn.(*cFunction).args }

func (b *Backend) CurrentFunction() compile.Function { return b.curFn }

func (b *Backend) SetCurrentFunction(fn compile.Function) { b.curFn = fn.(*cFunction) }

func (b *Backend) Return(v compile.Value) {
	if v == nil {
		b.emit("return;")
	} else {
		b.emit("return %s;", v.(*cValue).text())
	}
	b.curBlock.fn.terminated[b.curBlock.label] = true
}

func (b *Backend) Call(fn compile.Function, args ...compile.Value) compile.Value {
	f := fn.(*cFunction)
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.(*cValue).text()
	}
	call := fmt.Sprintf("%s(%s)", f.name, strings.Join(parts, ", "))
	if f.ret.(*cType).name == "void" {
		b.emit("%s;", call)
		return nil
	}
	name := b.fresh()
	b.emit("%s %s = %s;", f.ret.(*cType).spelling(), name, call)
	return &cValue{name: name, typ: f.ret}
}

// --- control flow ---

func (b *Backend) GenerateBlock() compile.Block {
	blk := &cBlock{label: fmt.Sprintf("L%d", len(b.curFn.blocks)), fn: b.curFn}
	b.curFn.blocks = append(b.curFn.blocks, blk)
	return blk
}

func (b *Backend) CurrentBlock() compile.Block { return b.curBlock }

func (b *Backend) SetCurrentBlock(blk compile.Block) {
	b.curBlock = blk.(*cBlock)
	b.emit("%s:;", b.curBlock.label)
}

func (b *Backend) Br(target compile.Block) {
	b.emit("goto %s;", target.(*cBlock).label)
	b.curBlock.fn.terminated[b.curBlock.label] = true
}

func (b *Backend) CondBr(cond compile.Value, thenBlock, elseBlock compile.Block) {
	b.emit("if (%s) goto %s; else goto %s;", cond.(*cValue).text(), thenBlock.(*cBlock).label, elseBlock.(*cBlock).label)
	b.curBlock.fn.terminated[b.curBlock.label] = true
}

// Phi emits a loop-carried local instead of an SSA phi node: C has no
// phi instruction, so a stack slot plays the same role and
// AddPhiIncoming becomes an assignment emitted at the current insertion
// point; the named predecessor block is recorded only in a C comment.
func (b *Backend) Phi(t compile.Type) compile.Value {
	name := b.fresh()
	b.emit("%s %s;", t.(*cType).spelling(), name)
	return &cValue{name: name, typ: t}
}

func (b *Backend) AddPhiIncoming(phi compile.Value, val compile.Value, from compile.Block) {
	b.emit("%s = %s; /* incoming from %s */", phi.(*cValue).text(), val.(*cValue).text(), from.(*cBlock).label)
}

// --- arithmetic / compare ---

func (b *Backend) binop(op string, a, c compile.Value) compile.Value {
	av, cv := a.(*cValue), c.(*cValue)
	name := b.fresh()
	b.emit("%s %s = %s %s %s;", av.typ.(*cType).spelling(), name, av.text(), op, cv.text())
	return &cValue{name: name, typ: av.typ}
}

func (b *Backend) Add(a, c compile.Value) compile.Value { return b.binop("+", a, c) }
func (b *Backend) Sub(a, c compile.Value) compile.Value { return b.binop("-", a, c) }
func (b *Backend) Mul(a, c compile.Value) compile.Value { return b.binop("*", a, c) }
func (b *Backend) Div(a, c compile.Value) compile.Value { return b.binop("/", a, c) }

func (b *Backend) Cmp(pred compile.Predicate, a, c compile.Value) compile.Value {
	av, cv := a.(*cValue), c.(*cValue)
	name := b.fresh()
	i8 := b.I8Type()
	b.emit("int8_t %s = (%s %s %s) ? 1 : 0;", name, av.text(), pred, cv.text())
	return &cValue{name: name, typ: i8}
}

func (b *Backend) LNot(v compile.Value) compile.Value {
	vv := v.(*cValue)
	name := b.fresh()
	b.emit("int8_t %s = !%s;", name, vv.text())
	return &cValue{name: name, typ: b.I8Type()}
}

func (b *Backend) ConstInt(t compile.Type, v int64) compile.Value {
	return &cValue{lit: strconv.FormatInt(v, 10), typ: t}
}

func (b *Backend) ConstF64(v float64) compile.Value {
	return &cValue{lit: strconv.FormatFloat(v, 'g', -1, 64), typ: b.F64Type()}
}

func (b *Backend) Convert(v compile.Value, t compile.Type) compile.Value {
	vv := v.(*cValue)
	tt := t.(*cType)
	name := b.fresh()
	b.emit("%s %s = (%s)%s;", tt.name, name, tt.name, vv.text())
	return &cValue{name: name, typ: t}
}

// --- globals ---

var globalSeq int

func (b *Backend) ConstStringGlobal(s string) compile.Value {
	globalSeq++
	name := fmt.Sprintf("g_str%d", globalSeq)
	fmt.Fprintf(&b.decls, "static const char %s[] = %q;\n", name, s)
	ptr := &cType{name: "const char *", size: 8}
	return &cValue{lit: name, typ: ptr}
}

// Emit serializes the complete translation unit: declarations, then every
// defined function body in creation order. External-only declarations
// produce no body.
func (b *Backend) Emit() string {
	var out strings.Builder
	out.WriteString("#include <stdint.h>\n#include <string.h>\n\n")
	out.WriteString(b.decls.String())
	out.WriteByte('\n')
	for _, fn := range b.funcs {
		if fn.external {
			continue
		}
		fmt.Fprintf(&out, "%s %s(%s) {\n", fn.ret.(*cType).spelling(), fn.name, b.paramTypesStr(fn.params))
		out.WriteString(b.bodies[fn].String())
		out.WriteString("}\n\n")
	}
	return out.String()
}
