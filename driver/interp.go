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

package driver

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/bitcode"
	"github.com/kushdb/kushc/runtime"
)

// object is one interpreter-managed allocation: either byte-addressable
// memory (an Alloca, a constant global, or a view aliasing a []byte
// package runtime handed back directly) or an opaque handle an external
// call returned that is only ever passed back to another external call
// (a *runtime.HashTable, *runtime.HTIter or *rowBufHandle). The two are
// mutually exclusive.
type object struct {
	bytes []byte
	ext   any
}

// ptr is a decoded pointer: an index into interp.objects (0 is null,
// matching NullPtr/the C NULL convention), a byte offset into that
// object, and the statically-known pointee type. The interpreter tracks
// this triple instead of a bare Go pointer because translate/serialize.go
// builds records by GEP-ing to a byte offset and then PointerCasting to
// a field's real type — the same bytes get reinterpreted under more than
// one type, which only a raw, offset-addressed memory model supports.
type ptr struct {
	addr int
	off  int
	typ  compile.Type
}

// ival is one interpreted SSA value. Exactly one of i, f, p is live,
// selected by typ's kind.
type ival struct {
	typ compile.Type
	i   int64
	f   float64
	p   ptr
}

// rowBufHandle pairs a RowBuffer with the row stride RowBufferCreate was
// called with: ABIRowBufferAppend's signature carries no length operand
// (the ABI fixes row width at creation), so the interpreter has to
// remember it on the side rather than read RowBuffer's own unexported
// field.
type rowBufHandle struct {
	rb     *runtime.RowBuffer
	stride int
}

// interp executes one bitcode.Func's instructions directly against this
// object model, the Go-native stand-in for path B's JIT: it replays
// exactly the instruction stream compile/bitcode built, dispatching
// every declared-external call to package runtime's reference
// implementations instead of linking against the C runtime translation
// unit compile/source's output needs.
type interp struct {
	b       compile.Builder
	objects []object
	printer *runtime.Printer
	perf    *PerfJITListener
}

func newInterp(b compile.Builder, printer *runtime.Printer, perf *PerfJITListener) *interp {
	return &interp{b: b, printer: printer, perf: perf}
}

func (it *interp) newBytes(n int) int {
	if n == 0 {
		n = 1
	}
	it.objects = append(it.objects, object{bytes: make([]byte, n)})
	return len(it.objects)
}

func (it *interp) newBytesRef(b []byte) int {
	it.objects = append(it.objects, object{bytes: b})
	return len(it.objects)
}

func (it *interp) newExt(e any) int {
	it.objects = append(it.objects, object{ext: e})
	return len(it.objects)
}

func (it *interp) obj(addr int) *object { return &it.objects[addr-1] }

func kindOf(t compile.Type) bitcode.TypeKind { return t.(*bitcode.Type).Kind }

// run executes fn (expected to have no parameters, matching compute()'s
// void() signature) to completion, following Br/CondBr edges and
// resolving Phi nodes against the predecessor actually taken.
func (it *interp) run(fn *bitcode.Func) {
	env := make(map[*bitcode.Value]ival)
	var prev *bitcode.BasicBlock
	blk := fn.Blocks[0]
	for {
		next, done := it.execBlock(blk, prev, env)
		if done {
			return
		}
		prev, blk = blk, next
	}
}

func (it *interp) execBlock(blk, prev *bitcode.BasicBlock, env map[*bitcode.Value]ival) (*bitcode.BasicBlock, bool) {
	for _, instr := range blk.Instrs {
		switch instr.Op {
		case bitcode.OpPhi:
			for i, from := range instr.Blocks {
				if from == prev {
					env[instr.Result] = env[instr.Args[i]]
					break
				}
			}
		case bitcode.OpBr:
			return instr.Blocks[0], false
		case bitcode.OpCondBr:
			if env[instr.Args[0]].i != 0 {
				return instr.Blocks[0], false
			}
			return instr.Blocks[1], false
		case bitcode.OpReturn:
			return nil, true
		case bitcode.OpStore:
			it.store(env[instr.Args[0]].p, env[instr.Args[1]])
		case bitcode.OpMemcpy:
			it.memcpy(env[instr.Args[0]].p, env[instr.Args[1]].p, int(env[instr.Args[2]].i))
		case bitcode.OpCall:
			args := make([]ival, len(instr.Args))
			for i, a := range instr.Args {
				args[i] = env[a]
			}
			result := it.callExternal(instr.Callee.Name, args)
			if instr.Result != nil {
				result.typ = instr.Type
				env[instr.Result] = result
			}
		default:
			env[instr.Result] = it.eval(instr, env)
		}
	}
	panic("driver: interpreter: basic block fell through without a terminator")
}

// eval handles every instruction kind that produces exactly one Result
// and has no side effect beyond that (everything except the
// control-flow and void-call/store/memcpy cases execBlock handles
// directly).
func (it *interp) eval(instr *bitcode.Instr, env map[*bitcode.Value]ival) ival {
	switch instr.Op {
	case bitcode.OpAlloca:
		elem := instr.Type.(*bitcode.Type).Elem
		n := it.b.SizeOf(elem) * int(instr.IntLit)
		addr := it.newBytes(n)
		return ival{typ: instr.Type, p: ptr{addr: addr, typ: elem}}

	case bitcode.OpNullPtr:
		elem := instr.Type.(*bitcode.Type).Elem
		return ival{typ: instr.Type, p: ptr{typ: elem}}

	case bitcode.OpGEP:
		base := env[instr.Args[0]]
		step := it.b.SizeOf(base.p.typ)
		off := base.p.off
		for _, a := range instr.Args[1:] {
			off += int(env[a].i) * step
		}
		return ival{typ: instr.Type, p: ptr{addr: base.p.addr, off: off, typ: base.p.typ}}

	case bitcode.OpField:
		base := env[instr.Args[0]]
		fields := base.p.typ.(*bitcode.Type).Fields
		off := base.p.off
		for i := 0; i < int(instr.IntLit); i++ {
			off += it.b.SizeOf(fields[i])
		}
		return ival{typ: instr.Type, p: ptr{addr: base.p.addr, off: off, typ: fields[instr.IntLit]}}

	case bitcode.OpPtrCast:
		v := env[instr.Args[0]]
		elem := instr.Type.(*bitcode.Type).Elem
		return ival{typ: instr.Type, p: ptr{addr: v.p.addr, off: v.p.off, typ: elem}}

	case bitcode.OpLoad:
		return it.load(env[instr.Args[0]].p, instr.Type)

	case bitcode.OpAdd, bitcode.OpSub, bitcode.OpMul, bitcode.OpDiv:
		return it.arith(instr, env)

	case bitcode.OpCmp:
		return it.cmp(instr, env)

	case bitcode.OpLNot:
		v := env[instr.Args[0]]
		r := int64(0)
		if v.i == 0 {
			r = 1
		}
		return ival{typ: instr.Type, i: r}

	case bitcode.OpConstInt:
		return ival{typ: instr.Type, i: instr.IntLit}

	case bitcode.OpConstF64:
		return ival{typ: instr.Type, f: instr.F64Lit}

	case bitcode.OpConstString:
		addr := it.newBytesRef([]byte(instr.StrLit))
		return ival{typ: instr.Type, p: ptr{addr: addr, typ: it.b.I8Type()}}

	case bitcode.OpConvert:
		return it.convert(instr, env)

	default:
		panic(fmt.Sprintf("driver: interpreter: unhandled opcode %d", instr.Op))
	}
}

func (it *interp) arith(instr *bitcode.Instr, env map[*bitcode.Value]ival) ival {
	a, c := env[instr.Args[0]], env[instr.Args[1]]
	r := ival{typ: instr.Type}
	if kindOf(instr.Type) == bitcode.F64 {
		switch instr.Op {
		case bitcode.OpAdd:
			r.f = a.f + c.f
		case bitcode.OpSub:
			r.f = a.f - c.f
		case bitcode.OpMul:
			r.f = a.f * c.f
		case bitcode.OpDiv:
			r.f = a.f / c.f
		}
		return r
	}
	switch instr.Op {
	case bitcode.OpAdd:
		r.i = a.i + c.i
	case bitcode.OpSub:
		r.i = a.i - c.i
	case bitcode.OpMul:
		r.i = a.i * c.i
	case bitcode.OpDiv:
		r.i = a.i / c.i
	}
	return r
}

func (it *interp) cmp(instr *bitcode.Instr, env map[*bitcode.Value]ival) ival {
	a, c := env[instr.Args[0]], env[instr.Args[1]]
	var res bool
	switch kindOf(a.typ) {
	case bitcode.F64:
		switch instr.Pred {
		case compile.CmpEQ:
			res = a.f == c.f
		case compile.CmpNEQ:
			res = a.f != c.f
		case compile.CmpLT:
			res = a.f < c.f
		case compile.CmpLTE:
			res = a.f <= c.f
		case compile.CmpGT:
			res = a.f > c.f
		case compile.CmpGTE:
			res = a.f >= c.f
		}
	case bitcode.Pointer:
		switch instr.Pred {
		case compile.CmpEQ:
			res = a.p.addr == c.p.addr && a.p.off == c.p.off
		case compile.CmpNEQ:
			res = a.p.addr != c.p.addr || a.p.off != c.p.off
		default:
			panic("driver: interpreter: unsupported pointer predicate")
		}
	default:
		switch instr.Pred {
		case compile.CmpEQ:
			res = a.i == c.i
		case compile.CmpNEQ:
			res = a.i != c.i
		case compile.CmpLT:
			res = a.i < c.i
		case compile.CmpLTE:
			res = a.i <= c.i
		case compile.CmpGT:
			res = a.i > c.i
		case compile.CmpGTE:
			res = a.i >= c.i
		}
	}
	r := boolIval(res)
	r.typ = instr.Type
	return r
}

func (it *interp) convert(instr *bitcode.Instr, env map[*bitcode.Value]ival) ival {
	v := env[instr.Args[0]]
	srcF := kindOf(v.typ) == bitcode.F64
	dstK := kindOf(instr.Type)
	r := ival{typ: instr.Type}
	switch {
	case srcF && dstK == bitcode.F64:
		r.f = v.f
	case srcF:
		r.i = truncInt(int64(v.f), dstK)
	case dstK == bitcode.F64:
		r.f = float64(v.i)
	default:
		r.i = truncInt(v.i, dstK)
	}
	return r
}

func truncInt(v int64, k bitcode.TypeKind) int64 {
	switch k {
	case bitcode.I8:
		return int64(int8(v))
	case bitcode.I16:
		return int64(int16(v))
	case bitcode.I32:
		return int64(int32(v))
	case bitcode.UI32:
		return int64(uint32(v))
	default:
		return v
	}
}

func boolIval(b bool) ival {
	if b {
		return ival{i: 1}
	}
	return ival{}
}

// load reads sizeOf(p.typ) bytes out of p's object and reinterprets them
// per p.typ's kind. resultType is the instruction's own declared result
// type (always equal to p.typ, but kept distinct since the caller already
// has it to hand).
func (it *interp) load(p ptr, resultType compile.Type) ival {
	obj := it.obj(p.addr)
	switch kindOf(p.typ) {
	case bitcode.Pointer:
		encoded := binary.LittleEndian.Uint64(obj.bytes[p.off:])
		addr, off := decodePointer(encoded)
		elem := p.typ.(*bitcode.Type).Elem
		return ival{typ: resultType, p: ptr{addr: addr, off: off, typ: elem}}
	case bitcode.F64:
		return ival{typ: resultType, f: math.Float64frombits(binary.LittleEndian.Uint64(obj.bytes[p.off:]))}
	case bitcode.I8:
		return ival{typ: resultType, i: int64(int8(obj.bytes[p.off]))}
	case bitcode.I16:
		return ival{typ: resultType, i: int64(int16(binary.LittleEndian.Uint16(obj.bytes[p.off:])))}
	case bitcode.I32:
		return ival{typ: resultType, i: int64(int32(binary.LittleEndian.Uint32(obj.bytes[p.off:])))}
	case bitcode.UI32:
		return ival{typ: resultType, i: int64(binary.LittleEndian.Uint32(obj.bytes[p.off:]))}
	case bitcode.I64:
		return ival{typ: resultType, i: int64(binary.LittleEndian.Uint64(obj.bytes[p.off:]))}
	default:
		panic(fmt.Sprintf("driver: interpreter: Load of unsupported kind %d", kindOf(p.typ)))
	}
}

func (it *interp) store(p ptr, v ival) {
	obj := it.obj(p.addr)
	switch kindOf(p.typ) {
	case bitcode.Pointer:
		binary.LittleEndian.PutUint64(obj.bytes[p.off:], encodePointer(v.p.addr, v.p.off))
	case bitcode.F64:
		binary.LittleEndian.PutUint64(obj.bytes[p.off:], math.Float64bits(v.f))
	case bitcode.I8:
		obj.bytes[p.off] = byte(v.i)
	case bitcode.I16:
		binary.LittleEndian.PutUint16(obj.bytes[p.off:], uint16(v.i))
	case bitcode.I32, bitcode.UI32:
		binary.LittleEndian.PutUint32(obj.bytes[p.off:], uint32(v.i))
	case bitcode.I64:
		binary.LittleEndian.PutUint64(obj.bytes[p.off:], uint64(v.i))
	default:
		panic(fmt.Sprintf("driver: interpreter: Store of unsupported kind %d", kindOf(p.typ)))
	}
}

func (it *interp) memcpy(dst, src ptr, n int) {
	if n == 0 {
		return
	}
	dstObj, srcObj := it.obj(dst.addr), it.obj(src.addr)
	copy(dstObj.bytes[dst.off:dst.off+n], srcObj.bytes[src.off:src.off+n])
}

// pointer values round-trip through memory as a 64-bit word packing the
// object table index in the low 40 bits and the byte offset within that
// object in the high 24 (ample headroom for this interpreter's toy row
// and key sizes); 0 is the null pointer regardless of offset.
func encodePointer(addr, off int) uint64 {
	if addr == 0 {
		return 0
	}
	return uint64(off)<<40 | uint64(addr)
}

func decodePointer(w uint64) (addr, off int) {
	return int(w & (1<<40 - 1)), int(w >> 40)
}

func (it *interp) bytesAt(p ptr, n int) []byte {
	if p.addr == 0 || n == 0 {
		return nil
	}
	return it.obj(p.addr).bytes[p.off : p.off+n]
}

// readStringRecord dereferences p (a pointer to the `{data i8*, length
// u32}` record compile/abi.go fixes) into a runtime.StringRecord,
// without going through the generic per-field load path since both
// fields are read together here.
func (it *interp) readStringRecord(p ptr) runtime.StringRecord {
	obj := it.obj(p.addr)
	encoded := binary.LittleEndian.Uint64(obj.bytes[p.off:])
	dataAddr, dataOff := decodePointer(encoded)
	length := binary.LittleEndian.Uint32(obj.bytes[p.off+8:])
	var data []byte
	if dataAddr != 0 {
		data = it.obj(dataAddr).bytes[dataOff:]
	}
	if int(length) > len(data) {
		length = uint32(len(data))
	}
	return runtime.StringRecord{Data: data, Length: length}
}

func (it *interp) htIter(p ptr) *runtime.HTIter {
	if p.addr == 0 {
		return nil
	}
	return it.obj(p.addr).ext.(*runtime.HTIter)
}

func (it *interp) extPtrIval(it2 *runtime.HTIter) ival {
	if it2 == nil {
		return ival{}
	}
	return ival{p: ptr{addr: it.newExt(it2)}}
}

// callExternal dispatches one declared-external call by its linker
// symbol name to package runtime's Go-native reference implementation,
// the interpreter's whole reason for being: the runtime package already
// specifies this contract for exactly this path.
func (it *interp) callExternal(name string, args []ival) ival {
	bytePtrT := it.b.I8Type()
	switch name {
	case runtime.ABIPrint:
		it.printer.PrintI64(args[0].i)
		return ival{}
	case runtime.ABIPrintF64:
		it.printer.PrintF64(args[0].f)
		return ival{}
	case runtime.ABIPrintString:
		it.printer.PrintString(it.readStringRecord(args[0].p).String())
		return ival{}
	case runtime.ABIPrintNewline:
		it.printer.Newline()
		return ival{}

	case runtime.ABIStringContains:
		return boolIval(runtime.Contains(it.readStringRecord(args[0].p), it.readStringRecord(args[1].p)))
	case runtime.ABIStringEndsWith:
		return boolIval(runtime.EndsWith(it.readStringRecord(args[0].p), it.readStringRecord(args[1].p)))
	case runtime.ABIStringStartsWith:
		return boolIval(runtime.StartsWith(it.readStringRecord(args[0].p), it.readStringRecord(args[1].p)))
	case runtime.ABIStringEquals:
		return boolIval(runtime.Equals(it.readStringRecord(args[0].p), it.readStringRecord(args[1].p)))
	case runtime.ABIStringNotEquals:
		return boolIval(runtime.NotEquals(it.readStringRecord(args[0].p), it.readStringRecord(args[1].p)))
	case runtime.ABIStringHash:
		return ival{i: int64(runtime.Hash(it.readStringRecord(args[0].p)))}

	case runtime.ABIHTCreate:
		return ival{p: ptr{addr: it.newExt(runtime.NewHashTable())}}

	case runtime.ABIHTInsert:
		table := it.obj(args[0].p.addr).ext.(*runtime.HashTable)
		key := it.bytesAt(args[2].p, int(args[3].i))
		val := it.bytesAt(args[4].p, int(args[5].i))
		table.Insert(uint64(args[1].i), key, val)
		return ival{}

	case runtime.ABIHTUpsert:
		table := it.obj(args[0].p.addr).ext.(*runtime.HashTable)
		key := it.bytesAt(args[2].p, int(args[3].i))
		initVal := it.bytesAt(args[4].p, int(args[5].i))
		slot := table.Upsert(uint64(args[1].i), key, initVal)
		return ival{p: ptr{addr: it.newBytesRef(slot), typ: bytePtrT}}

	case runtime.ABIHTProbeFirst:
		table := it.obj(args[0].p.addr).ext.(*runtime.HashTable)
		return it.extPtrIval(table.ProbeFirst(uint64(args[1].i)))
	case runtime.ABIHTProbeNext:
		return it.extPtrIval(it.htIter(args[0].p).ProbeNext())
	case runtime.ABIHTAllFirst:
		table := it.obj(args[0].p.addr).ext.(*runtime.HashTable)
		return it.extPtrIval(table.AllFirst())
	case runtime.ABIHTAllNext:
		return it.extPtrIval(it.htIter(args[0].p).AllNext())
	case runtime.ABIHTKeyPtr:
		return ival{p: ptr{addr: it.newBytesRef(it.htIter(args[0].p).Key()), typ: bytePtrT}}
	case runtime.ABIHTKeyLen:
		return ival{i: int64(len(it.htIter(args[0].p).Key()))}
	case runtime.ABIHTValPtr:
		return ival{p: ptr{addr: it.newBytesRef(it.htIter(args[0].p).Val()), typ: bytePtrT}}
	case runtime.ABIHTValLen:
		return ival{i: int64(len(it.htIter(args[0].p).Val()))}
	case runtime.ABIHTFree:
		return ival{}

	case runtime.ABIHashBytes:
		return ival{i: int64(runtime.HashBytes(it.bytesAt(args[0].p, int(args[1].i))))}
	case runtime.ABIBytesEqual:
		a := it.bytesAt(args[0].p, int(args[1].i))
		c := it.bytesAt(args[2].p, int(args[3].i))
		return boolIval(runtime.BytesEqual(a, c))

	case runtime.ABIRowBufferCreate:
		stride := int(args[0].i)
		h := &rowBufHandle{rb: runtime.NewRowBuffer(stride), stride: stride}
		return ival{p: ptr{addr: it.newExt(h)}}
	case runtime.ABIRowBufferAppend:
		h := it.obj(args[0].p.addr).ext.(*rowBufHandle)
		idx := h.rb.Append(it.bytesAt(args[1].p, h.stride))
		return ival{i: int64(idx)}
	case runtime.ABIRowBufferRowPtr:
		h := it.obj(args[0].p.addr).ext.(*rowBufHandle)
		row := h.rb.OrderedRow(int(args[1].i))
		return ival{p: ptr{addr: it.newBytesRef(row), typ: bytePtrT}}
	case runtime.ABIRowBufferLen:
		h := it.obj(args[0].p.addr).ext.(*rowBufHandle)
		return ival{i: int64(h.rb.Len())}
	case runtime.ABIRowBufferFree:
		return ival{}

	case runtime.ABISortByI64Asc, runtime.ABISortByI64Desc:
		h := it.obj(args[0].p.addr).ext.(*rowBufHandle)
		h.rb.SortByI64(int(args[1].i), name == runtime.ABISortByI64Desc)
		return ival{}
	case runtime.ABISortByF64Asc, runtime.ABISortByF64Desc:
		h := it.obj(args[0].p.addr).ext.(*rowBufHandle)
		sortRowsByF64(h.rb, int(args[1].i), name == runtime.ABISortByF64Desc)
		return ival{}
	case runtime.ABISortByBytesAsc, runtime.ABISortByBytesDesc:
		h := it.obj(args[0].p.addr).ext.(*rowBufHandle)
		h.rb.SortByBytes(int(args[1].i), int(args[2].i), name == runtime.ABISortByBytesDesc)
		return ival{}

	default:
		panic(fmt.Sprintf("driver: interpreter: unknown external symbol %q", name))
	}
}

// sortRowsByF64 reorders rb's permutation by the little-endian float64
// found at byteOffset in each row. RowBuffer exposes no native F64 sort
// (runtime/rowbuffer.go only special-cases the integer and raw-bytes
// key kinds its own ABI surface names), so the interpreter reimplements
// it directly against RowBuffer's exported Order/Row, the same
// stable-sort-over-a-permutation technique SortByI64/SortByBytes use.
func sortRowsByF64(rb *runtime.RowBuffer, byteOffset int, desc bool) {
	key := func(i int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(rb.Row(i)[byteOffset:]))
	}
	sort.SliceStable(rb.Order, func(i, j int) bool {
		a, c := key(rb.Order[i]), key(rb.Order[j])
		if desc {
			return a > c
		}
		return a < c
	})
}
