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
	"fmt"

	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/proxy"
	"github.com/kushdb/kushc/translate"
)

// Column is one relation's column worth of literal data, embedded
// directly into generated code as a compile-time-initialized array. The
// on-disk column format and its loader are out of scope; this repo's
// stand-in for "loading" a table is compiling its rows in as constants,
// the same fixed-width literal-column shape algebra/testdata uses for
// tests, generalized from int32 to every scalar kind.
type Column struct {
	Type catalog.ScalarType
	I64  []int64
	F64  []float64
	Bool []bool
	Str  []string
}

// Int64Column, Float64Column, BoolColumn and StringColumn build a
// Column of the matching ScalarType from native Go data. I8/I16/I32
// columns share Int64Column's backing slice; the element width is
// narrowed when the value is stored.
func Int64Column(vals []int64) Column     { return Column{Type: catalog.I64, I64: vals} }
func Float64Column(vals []float64) Column { return Column{Type: catalog.F64, F64: vals} }
func BoolColumn(vals []bool) Column       { return Column{Type: catalog.Bool, Bool: vals} }
func StringColumn(vals []string) Column   { return Column{Type: catalog.String, Str: vals} }

// NarrowIntColumn builds an I8/I16/I32 column; t must be one of those
// three kinds.
func NarrowIntColumn(t catalog.ScalarType, vals []int64) Column {
	switch t {
	case catalog.I8, catalog.I16, catalog.I32:
		return Column{Type: t, I64: vals}
	default:
		panic(fmt.Sprintf("driver: NarrowIntColumn called with %v", t))
	}
}

func (c Column) rowCount() int {
	switch c.Type {
	case catalog.String:
		return len(c.Str)
	case catalog.F64:
		return len(c.F64)
	case catalog.Bool:
		return len(c.Bool)
	default:
		return len(c.I64)
	}
}

// Table is one relation's literal row data, column-major, in the same
// order as the relation's catalog.Column schema.
type Table struct {
	Columns []Column
}

// RowCount reports the table's row count; every column is expected to
// agree (the caller builds Columns from one row set).
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].rowCount()
}

// Dataset maps each table a query touches to its literal row data. It is
// the argument RunSourceText and RunBitcode use to materialize a
// translate.ArraySource.
type Dataset map[catalog.TableID]*Table

// constArraySource implements translate.ArraySource by materializing
// Dataset's literal values into alloca'd, constant-initialized arrays,
// once per table/column, the first time each is asked for: the compiled
// query gets prebuilt column buffers built as part of the generated
// program itself rather than loaded from a separate file at runtime,
// since the entry point compute() takes no arguments.
type constArraySource struct {
	ctx    *translate.Context
	data   Dataset
	arrays map[catalog.TableID]map[int]compile.Value
}

func newConstArraySource(data Dataset) *constArraySource {
	return &constArraySource{data: data, arrays: make(map[catalog.TableID]map[int]compile.Value)}
}

func (s *constArraySource) table(id catalog.TableID) *Table {
	t, ok := s.data[id]
	if !ok {
		panic(fmt.Sprintf("driver: no data registered for %v", id))
	}
	return t
}

func (s *constArraySource) Array(table catalog.TableID, colIndex int) compile.Value {
	cols, ok := s.arrays[table]
	if !ok {
		cols = make(map[int]compile.Value)
		s.arrays[table] = cols
	}
	if v, ok := cols[colIndex]; ok {
		return v
	}
	v := s.materialize(s.table(table).Columns[colIndex])
	cols[colIndex] = v
	return v
}

func (s *constArraySource) RowCount(table catalog.TableID) compile.Value {
	b := s.ctx.B
	return b.ConstInt(b.I64Type(), int64(s.table(table).RowCount()))
}

// materialize allocas an array sized to the column's row count and
// stores each literal value into it, returning the array's base pointer
// (array-to-pointer decay, the same convention serialize.go's
// buildRecord relies on for its own Alloca(ArrayType(...))).
func (s *constArraySource) materialize(col Column) compile.Value {
	b := s.ctx.B
	elemType := translate.CompileType(b, s.ctx.StringRT, col.Type)
	n := col.rowCount()
	size := n
	if size == 0 {
		size = 1
	}
	arr := b.Alloca(b.ArrayType(elemType, size))
	for i := 0; i < n; i++ {
		idx := b.ConstInt(b.I32Type(), int64(i))
		b.Store(b.GEP(arr, idx), s.elemValue(col, i))
	}
	return arr
}

func (s *constArraySource) elemValue(col Column, i int) compile.Value {
	b := s.ctx.B
	switch col.Type {
	case catalog.Bool:
		return proxy.ConstBool(b, col.Bool[i]).Value()
	case catalog.I8:
		return b.ConstInt(b.I8Type(), col.I64[i])
	case catalog.I16:
		return b.ConstInt(b.I16Type(), col.I64[i])
	case catalog.I32:
		return b.ConstInt(b.I32Type(), col.I64[i])
	case catalog.I64:
		return b.ConstInt(b.I64Type(), col.I64[i])
	case catalog.F64:
		return b.ConstF64(col.F64[i])
	case catalog.String:
		return proxy.Global(s.ctx.StringRT, b, col.Str[i]).Value()
	default:
		panic(fmt.Sprintf("driver: unsupported column type %v", col.Type))
	}
}
