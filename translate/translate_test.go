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

package translate_test

import (
	"fmt"
	"testing"

	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
	"github.com/kushdb/kushc/compile/bitcode"
	"github.com/kushdb/kushc/compile/proxy"
	"github.com/kushdb/kushc/translate"
)

// fakeResolver is a fixed, in-memory catalog.Resolver for two relations:
// people(id i64, name string, age i64) and depts(id i64, dept string).
type fakeResolver struct {
	tables map[string]catalog.TableID
	schema map[catalog.TableID][]catalog.Column
}

func newFakeResolver() *fakeResolver {
	people := catalog.TableID(1)
	depts := catalog.TableID(2)
	return &fakeResolver{
		tables: map[string]catalog.TableID{"people": people, "depts": depts},
		schema: map[catalog.TableID][]catalog.Column{
			people: {
				{Name: "id", Type: catalog.I64},
				{Name: "name", Type: catalog.String},
				{Name: "age", Type: catalog.I64},
			},
			depts: {
				{Name: "id", Type: catalog.I64},
				{Name: "dept", Type: catalog.String},
			},
		},
	}
}

func (r *fakeResolver) Table(name string) (catalog.TableID, []catalog.Column, error) {
	id, ok := r.tables[name]
	if !ok {
		return 0, nil, fmt.Errorf("no such relation %q", name)
	}
	return id, r.schema[id], nil
}

func (r *fakeResolver) Column(t catalog.TableID, name string) (catalog.ColumnID, catalog.ScalarType, error) {
	for i, c := range r.schema[t] {
		if c.Name == name {
			return catalog.ColumnID(i), c.Type, nil
		}
	}
	return 0, 0, fmt.Errorf("no such column %q", name)
}

// fakeArraySource hands back freshly alloca'd (uninitialized) arrays: the
// tests here only check that translate builds well-formed IR, never that
// generated code computes a particular answer, so the backing data's
// actual contents don't matter.
type fakeArraySource struct {
	b        compile.Builder
	strRT    *proxy.StringRuntime
	rowCount int64
}

func (s *fakeArraySource) Array(table catalog.TableID, colIndex int) compile.Value {
	cols := map[catalog.TableID][]catalog.ScalarType{
		1: {catalog.I64, catalog.String, catalog.I64},
		2: {catalog.I64, catalog.String},
	}[table]
	elemType := translate.CompileType(s.b, s.strRT, cols[colIndex])
	arr := s.b.Alloca(s.b.ArrayType(elemType, 4))
	return arr
}

func (s *fakeArraySource) RowCount(table catalog.TableID) compile.Value {
	return s.b.ConstInt(s.b.I64Type(), s.rowCount)
}

// newTestContext builds a bitcode module with one function/block current,
// ready for a translator to emit into, plus a Context wired to
// fakeArraySource.
func newTestContext(t *testing.T, name string) (*translate.Context, compile.Builder) {
	t.Helper()
	b := bitcode.New()
	fn := b.CreateInternal(name, b.VoidType(), nil)
	b.SetCurrentFunction(fn)
	b.SetCurrentBlock(b.GenerateBlock())

	ctx := translate.NewContext(b, nil)
	src := &fakeArraySource{b: b, strRT: ctx.StringRT, rowCount: 4}
	ctx.Source = src
	return ctx, b
}

func peopleScan(t *testing.T, res *fakeResolver) *algebra.Op {
	t.Helper()
	scan, err := algebra.NewScan(res, "people")
	if err != nil {
		t.Fatalf("NewScan(people): %v", err)
	}
	return scan
}

func deptsScan(t *testing.T, res *fakeResolver) *algebra.Op {
	t.Helper()
	scan, err := algebra.NewScan(res, "depts")
	if err != nil {
		t.Fatalf("NewScan(depts): %v", err)
	}
	return scan
}

func TestEmitScanSelectOutput(t *testing.T) {
	res := newFakeResolver()
	scan := peopleScan(t, res)

	pred := algebra.Binary(algebra.GT, algebra.ColumnRef("age", 2, catalog.I64), algebra.IntLiteral(18), catalog.Bool)
	sel, err := algebra.NewSelect(scan, pred)
	if err != nil {
		t.Fatalf("NewSelect: %v", err)
	}
	out, err := algebra.NewOutput(sel)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx, _ := newTestContext(t, "scan_select_output")
	translate.Emit(ctx, out)
}

func TestEmitCrossProduct(t *testing.T) {
	res := newFakeResolver()
	left := peopleScan(t, res)
	right := deptsScan(t, res)

	cp, err := algebra.NewCrossProduct(left, right)
	if err != nil {
		t.Fatalf("NewCrossProduct: %v", err)
	}
	out, err := algebra.NewOutput(cp)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx, _ := newTestContext(t, "cross_product")
	translate.Emit(ctx, out)
}

func TestEmitHashJoin(t *testing.T) {
	res := newFakeResolver()
	left := peopleScan(t, res)
	right := deptsScan(t, res)

	leftKey := algebra.ColumnRef("id", 0, catalog.I64)
	rightKey := algebra.ColumnRef("id", 0, catalog.I64)
	join, err := algebra.NewHashJoin(left, right, []*algebra.Expr{leftKey}, []*algebra.Expr{rightKey}, nil)
	if err != nil {
		t.Fatalf("NewHashJoin: %v", err)
	}
	out, err := algebra.NewOutput(join)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx, _ := newTestContext(t, "hash_join")
	translate.Emit(ctx, out)
}

func TestEmitHashJoinWithStringKeyAndProjection(t *testing.T) {
	res := newFakeResolver()
	left := peopleScan(t, res)
	right := deptsScan(t, res)

	leftKey := algebra.ColumnRef("name", 1, catalog.String)
	rightKey := algebra.ColumnRef("dept", 1, catalog.String)
	projection := []*algebra.Expr{
		algebra.ColumnRef("id", 0, catalog.I64),
		algebra.ColumnRef("dept", 4, catalog.String),
	}
	join, err := algebra.NewHashJoin(left, right, []*algebra.Expr{leftKey}, []*algebra.Expr{rightKey}, projection)
	if err != nil {
		t.Fatalf("NewHashJoin: %v", err)
	}
	out, err := algebra.NewOutput(join)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx, _ := newTestContext(t, "hash_join_string_key")
	translate.Emit(ctx, out)
}

func TestEmitGroupByAggregate(t *testing.T) {
	res := newFakeResolver()
	scan := peopleScan(t, res)

	groupKeys := []*algebra.Expr{algebra.ColumnRef("name", 1, catalog.String)}
	aggregates := []*algebra.Expr{
		algebra.Aggregate(algebra.Count, nil, catalog.I64),
		algebra.Aggregate(algebra.Sum, algebra.ColumnRef("age", 2, catalog.I64), catalog.I64),
		algebra.Aggregate(algebra.Min, algebra.ColumnRef("age", 2, catalog.I64), catalog.I64),
		algebra.Aggregate(algebra.Max, algebra.ColumnRef("age", 2, catalog.I64), catalog.I64),
		algebra.Aggregate(algebra.Avg, algebra.ColumnRef("age", 2, catalog.I64), catalog.F64),
	}
	gb, err := algebra.NewGroupByAggregate(scan, groupKeys, aggregates)
	if err != nil {
		t.Fatalf("NewGroupByAggregate: %v", err)
	}
	out, err := algebra.NewOutput(gb)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx, _ := newTestContext(t, "group_by_aggregate")
	translate.Emit(ctx, out)
}

func TestEmitOrderBy(t *testing.T) {
	res := newFakeResolver()
	scan := peopleScan(t, res)

	keys := []algebra.SortKey{
		{Expr: algebra.ColumnRef("age", 2, catalog.I64), Dir: algebra.Descending},
		{Expr: algebra.ColumnRef("name", 1, catalog.String), Dir: algebra.Ascending},
	}
	ob, err := algebra.NewOrderBy(scan, keys)
	if err != nil {
		t.Fatalf("NewOrderBy: %v", err)
	}
	out, err := algebra.NewOutput(ob)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx, _ := newTestContext(t, "order_by")
	translate.Emit(ctx, out)
}

func TestEmitFullPipeline(t *testing.T) {
	// Scan -> Select -> HashJoin -> GroupByAggregate -> OrderBy -> Output,
	// exercising every operator kind in one tree.
	res := newFakeResolver()
	left := peopleScan(t, res)
	right := deptsScan(t, res)

	pred := algebra.Binary(algebra.GT, algebra.ColumnRef("age", 2, catalog.I64), algebra.IntLiteral(0), catalog.Bool)
	sel, err := algebra.NewSelect(left, pred)
	if err != nil {
		t.Fatalf("NewSelect: %v", err)
	}

	leftKey := algebra.ColumnRef("id", 0, catalog.I64)
	rightKey := algebra.ColumnRef("id", 0, catalog.I64)
	join, err := algebra.NewHashJoin(sel, right, []*algebra.Expr{leftKey}, []*algebra.Expr{rightKey}, nil)
	if err != nil {
		t.Fatalf("NewHashJoin: %v", err)
	}

	groupKeys := []*algebra.Expr{algebra.ColumnRef("dept", 4, catalog.String)}
	aggregates := []*algebra.Expr{algebra.Aggregate(algebra.Count, nil, catalog.I64)}
	gb, err := algebra.NewGroupByAggregate(join, groupKeys, aggregates)
	if err != nil {
		t.Fatalf("NewGroupByAggregate: %v", err)
	}

	keys := []algebra.SortKey{{Expr: algebra.ColumnRef("COUNT(*)", 1, catalog.I64), Dir: algebra.Descending}}
	ob, err := algebra.NewOrderBy(gb, keys)
	if err != nil {
		t.Fatalf("NewOrderBy: %v", err)
	}
	out, err := algebra.NewOutput(ob)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx, _ := newTestContext(t, "full_pipeline")
	translate.Emit(ctx, out)
}

func TestTranslatePanicsOnUnhandledKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Translate to panic on an unhandled Op kind")
		}
	}()
	ctx, _ := newTestContext(t, "unhandled_kind")
	translate.Translate(ctx, &algebra.Op{Kind: 99})
}
